package dto

import (
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// UserResponse is the DTO for a user.
type UserResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email,omitempty"`
	Bio            *string  `json:"bio"`
	ProfilePicture *string  `json:"profilePicture"`
	Photos         []string `json:"photos"`
	CreatedAt      string   `json:"createdAt"`
}

// AuthResponse is the DTO for a successful register or login.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// ToUserResponse converts an entity.User to a UserResponse DTO. Photos are
// rendered as canonical media references.
func ToUserResponse(user entity.User) UserResponse {
	photos := make([]string, 0, len(user.Photos))
	for _, p := range user.Photos {
		photos = append(photos, canonicalOrRaw(p))
	}
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture(),
		Photos:         photos,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}

// ToPublicUserResponse omits the email address.
func ToPublicUserResponse(user entity.User) UserResponse {
	resp := ToUserResponse(user)
	resp.Email = ""
	return resp
}

// MessageResponse is a generic response for success/error messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
