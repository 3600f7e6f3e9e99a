package contract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// IPostRepository defines the interface for post data persistence.
type IPostRepository interface {
	// CreatePost fails with ErrDuplicateExternalRef when the unique index rejects the insert.
	CreatePost(ctx context.Context, post *entity.Post) error
	GetPostByExternalRef(ctx context.Context, externalRef string) (*entity.Post, error)
	ListFeed(ctx context.Context, page, limit int) ([]entity.FeedItem, int64, error)
	ListPostsByOwner(ctx context.Context, ownerID string) ([]*entity.Post, error)
	// UpdateDescription applies only when ownerID owns the post.
	UpdateDescription(ctx context.Context, externalRef, ownerID string, description *string) (*entity.Post, error)
	// DeletePost removes the post only when ownerID owns it and returns the removed record.
	DeletePost(ctx context.Context, externalRef, ownerID string) (*entity.Post, error)
	// ToggleLike flips userID's membership in a single conditional update.
	ToggleLike(ctx context.Context, externalRef, userID string) (*entity.Post, error)

	// IteratePosts streams every post to fn. A stored record that cannot be
	// decoded is passed as a nil post with a *PostDecodeError and iteration
	// continues. Iteration stops at the first error fn returns.
	IteratePosts(ctx context.Context, fn func(p *entity.Post, decodeErr error) error) error
	// ReplaceMediaRef rewrites media_ref when it still holds the expected stored string.
	ReplaceMediaRef(ctx context.Context, postID string, expected mediaref.Ref, canonical string) error
	// DeletePostIfMediaRef removes the post when media_ref still holds the expected stored string.
	DeletePostIfMediaRef(ctx context.Context, postID string, expected mediaref.Ref) error
	// MarkPending clears media_ref and flags the posts as needing a new image.
	MarkPending(ctx context.Context, postIDs []string) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CountPendingPosts(ctx context.Context) (int64, error)
}
