package entity

import (
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// User represents a person known to the system, either provisioned from the
// identity provider on first sight or registered through the legacy flow.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Subject      string    `bson:"subject" json:"-"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	Bio          *string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Photos       []string  `bson:"photos" json:"photos"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfilePicture returns the canonical reference of the first photo, if any.
func (u *User) ProfilePicture() *string {
	if u == nil || len(u.Photos) == 0 {
		return nil
	}
	ref, ok := mediaref.Decode(u.Photos[0]).Canonical()
	if !ok {
		return nil
	}
	return &ref
}

// Identity is what the identity provider vouches for after verifying a token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// OwnerSummary is the display data joined onto feed items.
type OwnerSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ProfilePicture *string `json:"profilePicture"`
}

// Summary returns the display data for u.
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{ID: u.ID, Name: u.Name, ProfilePicture: u.ProfilePicture()}
}

// ValidObjectID reports whether id has the 24 hex character shape used for
// user and media identifiers.
func ValidObjectID(id string) bool {
	return mediaref.ValidID(id)
}
