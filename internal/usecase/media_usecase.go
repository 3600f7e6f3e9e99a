package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/metrics"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// MediaUsecase implements the media store on top of a repository and the
// image normalizer.
type MediaUsecase struct {
	mediaRepo  contract.IMediaRepository
	normalizer contract.IImageNormalizer
	idGen      contract.IObjectIDGenerator
	logger     usecasecontract.IAppLogger
	config     usecasecontract.IConfigProvider
}

// NewMediaUsecase creates a new MediaUsecase instance.
func NewMediaUsecase(
	mediaRepo contract.IMediaRepository,
	normalizer contract.IImageNormalizer,
	idGen contract.IObjectIDGenerator,
	logger usecasecontract.IAppLogger,
	cfg usecasecontract.IConfigProvider,
) *MediaUsecase {
	return &MediaUsecase{
		mediaRepo:  mediaRepo,
		normalizer: normalizer,
		idGen:      idGen,
		logger:     logger,
		config:     cfg,
	}
}

var _ usecasecontract.IMediaUseCase = (*MediaUsecase)(nil)

// Upload normalizes and stores one image.
func (uc *MediaUsecase) Upload(ctx context.Context, in usecasecontract.UploadInput) (*entity.Media, error) {
	category := string(in.Category)
	if !in.Category.Valid() {
		metrics.ObserveUpload(category, "rejected", 0)
		return nil, apperror.Validation(apperror.CodeUploadInvalidType, "type must be one of profile, post, feed")
	}
	if len(in.Data) == 0 {
		metrics.ObserveUpload(category, "rejected", 0)
		return nil, apperror.Validation(apperror.CodeUploadNoFile, "no file uploaded")
	}
	if limit := uc.config.GetMaxUploadBytes(); limit > 0 && int64(len(in.Data)) > limit {
		metrics.ObserveUpload(category, "rejected", 0)
		return nil, apperror.Validation(apperror.CodeUploadTooLarge, "file exceeds the upload size limit")
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > entity.MaxDescriptionLength {
		metrics.ObserveUpload(category, "rejected", 0)
		return nil, apperror.Validation(apperror.CodeUploadInvalidMetadata, "metadata description is too long")
	}

	img, err := uc.normalizer.Normalize(in.Data)
	if err != nil {
		metrics.ObserveUpload(category, "rejected", 0)
		switch {
		case errors.Is(err, contract.ErrUnsupportedPayload):
			return nil, apperror.Wrap(apperror.KindValidation, apperror.CodeUploadUnsupportedPayload, "file is not a supported image", err)
		case errors.Is(err, contract.ErrPayloadTooLarge):
			return nil, apperror.Wrap(apperror.KindValidation, apperror.CodeUploadTooLarge, "normalized image exceeds the size limit", err)
		default:
			uc.logger.Errorf("failed to normalize upload for user %s: %v", in.OwnerID, err)
			return nil, apperror.Internal(apperror.CodeUploadServerError, err)
		}
	}

	media := &entity.Media{
		ID:       uc.idGen.NewObjectID(),
		OwnerID:  in.OwnerID,
		Category: in.Category,
		Payload:  img.Data,
		MimeType: img.MimeType,
		Attributes: entity.MediaAttributes{
			Width:       img.Width,
			Height:      img.Height,
			Size:        len(img.Data),
			Description: in.Description,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.mediaRepo.CreateMedia(ctx, media); err != nil {
		metrics.ObserveUpload(category, "error", 0)
		uc.logger.Errorf("failed to store media for user %s: %v", in.OwnerID, err)
		return nil, apperror.Internal(apperror.CodeUploadServerError, err)
	}

	metrics.ObserveUpload(category, "stored", len(img.Data))
	uc.logger.Infof("media stored: id=%s owner=%s category=%s size=%d %dx%d",
		media.ID, media.OwnerID, media.Category, media.Attributes.Size, img.Width, img.Height)
	return media, nil
}

// GetMedia returns a record with its payload.
func (uc *MediaUsecase) GetMedia(ctx context.Context, mediaID string) (*entity.Media, error) {
	if !entity.ValidObjectID(mediaID) {
		return nil, apperror.Validation(apperror.CodeMediaInvalidID, "invalid media id")
	}
	mediaID = strings.ToLower(mediaID)
	media, err := uc.mediaRepo.GetMediaByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, contract.ErrMediaNotFound) {
			return nil, apperror.NotFound(apperror.CodeMediaNotFound, "media", mediaID)
		}
		uc.logger.Errorf("failed to load media %s: %v", mediaID, err)
		return nil, apperror.Internal(apperror.CodeMediaServerError, err)
	}
	return media, nil
}

// ListByOwner returns metadata for ownerID's media, newest first.
func (uc *MediaUsecase) ListByOwner(ctx context.Context, ownerID string, category *entity.MediaCategory) ([]*entity.Media, error) {
	if !entity.ValidObjectID(ownerID) {
		return nil, apperror.Validation(apperror.CodeMediaInvalidUserID, "invalid user id")
	}
	if category != nil && !category.Valid() {
		return nil, apperror.Validation(apperror.CodeMediaInvalidType, "type must be one of profile, post, feed")
	}
	list, err := uc.mediaRepo.ListMediaByOwner(ctx, ownerID, category)
	if err != nil {
		uc.logger.Errorf("failed to list media for user %s: %v", ownerID, err)
		return nil, apperror.Internal(apperror.CodeMediaServerError, err)
	}
	return list, nil
}

// DeleteMedia removes a record owned by requesterID.
func (uc *MediaUsecase) DeleteMedia(ctx context.Context, mediaID, requesterID string) error {
	if !entity.ValidObjectID(mediaID) {
		return apperror.Validation(apperror.CodeMediaInvalidID, "invalid media id")
	}
	mediaID = strings.ToLower(mediaID)
	deleted, err := uc.mediaRepo.DeleteOwnedMedia(ctx, mediaID, requesterID)
	if err != nil {
		uc.logger.Errorf("failed to delete media %s: %v", mediaID, err)
		return apperror.Internal(apperror.CodeMediaServerError, err)
	}
	if deleted {
		uc.logger.Infof("media deleted: id=%s owner=%s", mediaID, requesterID)
		return nil
	}

	exists, err := uc.mediaRepo.MediaExists(ctx, mediaID)
	if err != nil {
		uc.logger.Errorf("failed to check media %s: %v", mediaID, err)
		return apperror.Internal(apperror.CodeMediaServerError, err)
	}
	if exists {
		return apperror.Forbidden(apperror.CodeMediaForbidden, "media", mediaID)
	}
	return apperror.NotFound(apperror.CodeMediaNotFound, "media", mediaID)
}
