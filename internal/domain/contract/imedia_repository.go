package contract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// IMediaRepository defines the interface for media data persistence.
type IMediaRepository interface {
	CreateMedia(ctx context.Context, media *entity.Media) error
	// GetMediaByID returns the record including its payload.
	GetMediaByID(ctx context.Context, mediaID string) (*entity.Media, error)
	// GetMediaMetaByID returns the record without its payload.
	GetMediaMetaByID(ctx context.Context, mediaID string) (*entity.Media, error)
	// ListMediaByOwner returns metadata only, newest first. A nil category lists all.
	ListMediaByOwner(ctx context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error)
	// DeleteOwnedMedia removes the record only when ownerID owns it.
	// It returns false when nothing matched.
	DeleteOwnedMedia(ctx context.Context, mediaID, ownerID string) (bool, error)
	MediaExists(ctx context.Context, mediaID string) (bool, error)
	// ExistingMediaIDs returns the subset of ids present in the store.
	ExistingMediaIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	ListMediaIDsByCategory(ctx context.Context, category entity.MediaCategory) ([]string, error)
	DeleteMediaByIDs(ctx context.Context, ids []string) (int64, error)
	CountMediaByCategory(ctx context.Context) (map[entity.MediaCategory]int64, error)
	TotalPayloadBytes(ctx context.Context) (int64, error)
}
