package dto

import (
	"math"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	ImageURL    string  `json:"imageUrl"`
	Description *string `json:"description"`
	ExternalRef string  `json:"externalRef" binding:"omitempty,externalref"`
}

// UpdatePostRequest is the body of PUT /posts/:externalRef.
type UpdatePostRequest struct {
	Description *string `json:"description"`
}

// PostResponse is the DTO for a post as seen by one viewer.
type PostResponse struct {
	ID            string               `json:"id"`
	ExternalRef   string               `json:"externalRef"`
	OwnerID       string               `json:"ownerId"`
	ImageURL      *string              `json:"imageUrl"`
	NeedsNewImage bool                 `json:"needsNewImage,omitempty"`
	Description   *string              `json:"description"`
	LikeCount     int                  `json:"likeCount"`
	HasLiked      bool                 `json:"hasLiked"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	User          *entity.OwnerSummary `json:"user,omitempty"`
}

// Pagination describes a feed page.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// FeedResponse is the body of GET /posts.
type FeedResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// DeletePostResponse reports both steps of a post deletion.
type DeletePostResponse struct {
	Message        string  `json:"message"`
	PostID         string  `json:"postId"`
	DeletedMediaID *string `json:"deletedMediaId"`
	MediaOutcome   string  `json:"mediaOutcome"`
}

// ToPostResponse renders post for viewerID. Only resolved references are
// exposed as an image URL, always in canonical form.
func ToPostResponse(post entity.Post, viewerID string) PostResponse {
	var imageURL *string
	if c, ok := post.MediaRef.Canonical(); ok {
		imageURL = &c
	}
	return PostResponse{
		ID:            post.ID,
		ExternalRef:   post.ExternalRef,
		OwnerID:       post.OwnerID,
		ImageURL:      imageURL,
		NeedsNewImage: post.NeedsNewImage,
		Description:   post.Description,
		LikeCount:     post.LikeCount,
		HasLiked:      post.HasLiked(viewerID),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// ToFeedResponse renders a feed page for viewerID.
func ToFeedResponse(items []entity.FeedItem, total int64, page, limit int, viewerID string) FeedResponse {
	posts := make([]PostResponse, 0, len(items))
	for _, item := range items {
		p := ToPostResponse(item.Post, viewerID)
		p.User = item.Owner
		posts = append(posts, p)
	}
	return FeedResponse{
		Posts: posts,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
			Limit: limit,
		},
	}
}

func canonicalOrRaw(ref string) string {
	if c, err := mediaref.Canonicalize(ref); err == nil {
		return c
	}
	return ref
}
