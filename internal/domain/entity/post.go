package entity

import (
	"slices"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// MaxDescriptionLength bounds post descriptions and user bios, in characters.
const MaxDescriptionLength = 500

// Post is a feed entry referencing exactly one media record.
type Post struct {
	ID            string       `json:"id"`
	ExternalRef   string       `json:"externalRef"`
	OwnerID       string       `json:"ownerId"`
	MediaRef      mediaref.Ref `json:"mediaRef"`
	NeedsNewImage bool         `json:"needsNewImage"`
	Description   *string      `json:"description,omitempty"`
	LikeCount     int          `json:"likeCount"`
	LikedBy       []string     `json:"likedBy"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// HasLiked reports whether userID is in the like set.
func (p *Post) HasLiked(userID string) bool {
	return userID != "" && slices.Contains(p.LikedBy, userID)
}

// FeedItem is a post joined with its owner's display data.
type FeedItem struct {
	Post  Post          `json:"post"`
	Owner *OwnerSummary `json:"owner,omitempty"`
}

// LikeState is the outcome of a toggle or check.
type LikeState struct {
	LikeCount int  `json:"likeCount"`
	Liked     bool `json:"liked"`
}

// MediaOutcome records what the second step of a post deletion did.
type MediaOutcome string

const (
	MediaOutcomeDeleted  MediaOutcome = "deleted"
	MediaOutcomeRetained MediaOutcome = "retained"
	MediaOutcomeSkipped  MediaOutcome = "skipped"
	MediaOutcomeFailed   MediaOutcome = "failed"
)

// DeleteOutcome is returned by post deletion.
type DeleteOutcome struct {
	PostID         string       `json:"postId"`
	DeletedMediaID *string      `json:"deletedMediaId"`
	Media          MediaOutcome `json:"mediaOutcome"`
}
