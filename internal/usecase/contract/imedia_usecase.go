package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// UploadInput carries a single image upload.
type UploadInput struct {
	OwnerID     string
	Category    entity.MediaCategory
	Data        []byte
	Description *string
}

// IMediaUseCase defines media store operations.
type IMediaUseCase interface {
	Upload(ctx context.Context, in UploadInput) (*entity.Media, error)
	GetMedia(ctx context.Context, mediaID string) (*entity.Media, error)
	ListByOwner(ctx context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error)
	DeleteMedia(ctx context.Context, mediaID, requesterID string) error
}
