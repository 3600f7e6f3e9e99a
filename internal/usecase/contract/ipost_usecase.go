package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// FeedPage is a page of the reverse chronological feed.
type FeedPage struct {
	Items []entity.FeedItem
	Total int64
	Page  int
	Limit int
}

// IPostUseCase defines post store operations.
type IPostUseCase interface {
	CreatePost(ctx context.Context, ownerID, externalRef, mediaRef string, description *string) (*entity.Post, error)
	GetPost(ctx context.Context, externalRef string) (*entity.Post, error)
	ListFeed(ctx context.Context, page, limit int) (*FeedPage, error)
	UpdateDescription(ctx context.Context, externalRef, ownerID string, description *string) (*entity.Post, error)
	DeletePost(ctx context.Context, externalRef, ownerID string) (*entity.DeleteOutcome, error)
	ToggleLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error)
	CheckLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error)
}
