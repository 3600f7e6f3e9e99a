package mocks

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// MockMediaUsecase keeps media in a map keyed by id.
type MockMediaUsecase struct {
	ShouldFailUpload bool
	ShouldFailDelete bool

	Media      map[string]*entity.Media
	LastUpload usecasecontract.UploadInput
}

var _ usecasecontract.IMediaUseCase = (*MockMediaUsecase)(nil)

func NewMockMediaUsecase() *MockMediaUsecase {
	return &MockMediaUsecase{Media: make(map[string]*entity.Media)}
}

func (m *MockMediaUsecase) Upload(ctx context.Context, in usecasecontract.UploadInput) (*entity.Media, error) {
	m.LastUpload = in
	if m.ShouldFailUpload {
		return nil, apperror.Internal(apperror.CodeUploadServerError, errors.New("disk full"))
	}
	if !in.Category.Valid() {
		return nil, apperror.Validation(apperror.CodeUploadInvalidType, "type must be one of profile, post, feed")
	}
	media := &entity.Media{
		ID:       "64b7f0c2a1b2c3d4e5f600aa",
		OwnerID:  in.OwnerID,
		Category: in.Category,
		MimeType: "image/jpeg",
		Attributes: entity.MediaAttributes{
			Size:        len(in.Data),
			Description: in.Description,
		},
	}
	m.Media[media.ID] = media
	return media, nil
}

func (m *MockMediaUsecase) GetMedia(ctx context.Context, mediaID string) (*entity.Media, error) {
	if !entity.ValidObjectID(mediaID) {
		return nil, apperror.Validation(apperror.CodeMediaInvalidID, "invalid media id")
	}
	media, ok := m.Media[mediaID]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeMediaNotFound, "media", mediaID)
	}
	return media, nil
}

func (m *MockMediaUsecase) ListByOwner(ctx context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error) {
	out := []*entity.Media{}
	for _, media := range m.Media {
		if media.OwnerID == ownerID && (category == nil || media.Category == *category) {
			out = append(out, media)
		}
	}
	return out, nil
}

func (m *MockMediaUsecase) DeleteMedia(ctx context.Context, mediaID, requesterID string) error {
	if m.ShouldFailDelete {
		return apperror.Internal(apperror.CodeMediaServerError, errors.New("database is down"))
	}
	media, ok := m.Media[mediaID]
	if !ok {
		return apperror.NotFound(apperror.CodeMediaNotFound, "media", mediaID)
	}
	if media.OwnerID != requesterID {
		return apperror.Forbidden(apperror.CodeMediaForbidden, "media", mediaID)
	}
	delete(m.Media, mediaID)
	return nil
}
