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
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/metrics"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// MaxFeedPageSize caps the limit query parameter of the feed.
const MaxFeedPageSize = 50

// PostUsecase implements the post store.
type PostUsecase struct {
	postRepo  contract.IPostRepository
	mediaRepo contract.IMediaRepository
	uuidgen   contract.IUUIDGenerator
	validator usecasecontract.IValidator
	logger    usecasecontract.IAppLogger
	feedCache contract.IFeedCache
}

// NewPostUsecase creates a new PostUsecase instance.
func NewPostUsecase(
	postRepo contract.IPostRepository,
	mediaRepo contract.IMediaRepository,
	uuidgen contract.IUUIDGenerator,
	validator usecasecontract.IValidator,
	logger usecasecontract.IAppLogger,
) *PostUsecase {
	return &PostUsecase{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		uuidgen:   uuidgen,
		validator: validator,
		logger:    logger,
	}
}

var _ usecasecontract.IPostUseCase = (*PostUsecase)(nil)

// SetFeedCache enables the optional feed page cache.
func (uc *PostUsecase) SetFeedCache(cache contract.IFeedCache) {
	uc.feedCache = cache
}

func (uc *PostUsecase) invalidateFeed(ctx context.Context) {
	if uc.feedCache == nil {
		return
	}
	if err := uc.feedCache.InvalidateFeed(ctx); err != nil {
		uc.logger.Warningf("cache error: invalidate feed: %v", err)
	}
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > entity.MaxDescriptionLength {
		return apperror.Validation(apperror.CodePostDescriptionTooLong, "description must be at most 500 characters")
	}
	return nil
}

// CreatePost persists a post with a canonical media reference.
func (uc *PostUsecase) CreatePost(ctx context.Context, ownerID, externalRef, mediaRef string, description *string) (*entity.Post, error) {
	externalRef = strings.TrimSpace(externalRef)
	mediaRef = strings.TrimSpace(mediaRef)
	if externalRef == "" || mediaRef == "" {
		return nil, apperror.Validation(apperror.CodePostMissingFields, "imageUrl and externalRef are required")
	}
	if err := uc.validator.ValidateExternalRef(externalRef); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, apperror.CodePostMissingFields, "invalid externalRef", err)
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	ref := mediaref.Decode(mediaRef)
	if !ref.IsResolved() {
		return nil, apperror.Validation(apperror.CodePostInvalidMediaRef, "imageUrl does not reference a media record")
	}
	exists, err := uc.mediaRepo.MediaExists(ctx, ref.ID())
	if err != nil {
		uc.logger.Errorf("failed to check media %s for post %s: %v", ref.ID(), externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	if !exists {
		return nil, apperror.NotFound(apperror.CodePostMediaNotFound, "media", ref.ID())
	}

	now := time.Now().UTC()
	post := &entity.Post{
		ID:          uc.uuidgen.NewUUID(),
		ExternalRef: externalRef,
		OwnerID:     ownerID,
		MediaRef:    mediaref.Resolved(ref.ID()),
		Description: description,
		LikeCount:   0,
		LikedBy:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.postRepo.CreatePost(ctx, post); err != nil {
		if errors.Is(err, contract.ErrDuplicateExternalRef) {
			return nil, apperror.Conflict(apperror.CodePostDuplicateID, "a post with this externalRef already exists").WithResource("post", externalRef)
		}
		uc.logger.Errorf("failed to create post %s: %v", externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	if ref.NeedsRepair() {
		uc.logger.Infof("post %s created with repaired media reference (%s)", externalRef, ref.Defects())
	}

	uc.invalidateFeed(ctx)
	return post, nil
}

// GetPost finds a post by its external reference.
func (uc *PostUsecase) GetPost(ctx context.Context, externalRef string) (*entity.Post, error) {
	post, err := uc.postRepo.GetPostByExternalRef(ctx, externalRef)
	if err != nil {
		if errors.Is(err, contract.ErrPostNotFound) {
			return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
		}
		uc.logger.Errorf("failed to load post %s: %v", externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	return post, nil
}

// ListFeed returns a reverse chronological page of posts joined with owners.
func (uc *PostUsecase) ListFeed(ctx context.Context, page, limit int) (*usecasecontract.FeedPage, error) {
	if page < 1 || limit < 1 || limit > MaxFeedPageSize {
		return nil, apperror.Validation(apperror.CodePostInvalidPagination, "page must be >= 1 and limit between 1 and 50")
	}

	if uc.feedCache != nil {
		start := time.Now()
		cached, found, err := uc.feedCache.GetFeedPage(ctx, page, limit)
		elapsed := time.Since(start)
		switch {
		case err != nil:
			uc.logger.Warningf("cache error: feed page=%d limit=%d err=%v took=%s", page, limit, err, elapsed)
		case found && cached != nil:
			metrics.IncFeedHit()
			metrics.AddHitDuration(elapsed.Seconds())
			uc.logger.Debugf("cache hit: feed page=%d limit=%d took=%s", page, limit, elapsed)
			return &usecasecontract.FeedPage{Items: cached.Items, Total: cached.Total, Page: page, Limit: limit}, nil
		default:
			metrics.IncFeedMiss()
			metrics.AddMissDuration(elapsed.Seconds())
		}
	}

	items, total, err := uc.postRepo.ListFeed(ctx, page, limit)
	if err != nil {
		uc.logger.Errorf("failed to list feed page=%d limit=%d: %v", page, limit, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}

	if uc.feedCache != nil {
		if err := uc.feedCache.SetFeedPage(ctx, page, limit, &contract.CachedFeedPage{Items: items, Total: total}); err != nil {
			uc.logger.Warningf("cache error: set feed page=%d limit=%d err=%v", page, limit, err)
		}
	}
	return &usecasecontract.FeedPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// loadOwned returns the post when ownerID owns it.
func (uc *PostUsecase) loadOwned(ctx context.Context, externalRef, ownerID string) (*entity.Post, error) {
	post, err := uc.GetPost(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != ownerID {
		return nil, apperror.Forbidden(apperror.CodePostForbidden, "post", externalRef)
	}
	return post, nil
}

// UpdateDescription changes the description of an owned post.
func (uc *PostUsecase) UpdateDescription(ctx context.Context, externalRef, ownerID string, description *string) (*entity.Post, error) {
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if _, err := uc.loadOwned(ctx, externalRef, ownerID); err != nil {
		return nil, err
	}
	post, err := uc.postRepo.UpdateDescription(ctx, externalRef, ownerID, description)
	if err != nil {
		if errors.Is(err, contract.ErrPostNotFound) {
			return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
		}
		uc.logger.Errorf("failed to update post %s: %v", externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	uc.invalidateFeed(ctx)
	return post, nil
}

// DeletePost removes an owned post and then makes a best effort attempt to
// reclaim its media. A failure in the second step never restores the post.
func (uc *PostUsecase) DeletePost(ctx context.Context, externalRef, ownerID string) (*entity.DeleteOutcome, error) {
	if _, err := uc.loadOwned(ctx, externalRef, ownerID); err != nil {
		return nil, err
	}
	deleted, err := uc.postRepo.DeletePost(ctx, externalRef, ownerID)
	if err != nil {
		if errors.Is(err, contract.ErrPostNotFound) {
			return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
		}
		uc.logger.Errorf("failed to delete post %s: %v", externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	uc.invalidateFeed(ctx)

	outcome := &entity.DeleteOutcome{PostID: deleted.ID, Media: entity.MediaOutcomeSkipped}
	if deleted.MediaRef.IsResolved() {
		mediaID := deleted.MediaRef.ID()
		removed, err := uc.mediaRepo.DeleteOwnedMedia(ctx, mediaID, ownerID)
		switch {
		case err != nil:
			outcome.Media = entity.MediaOutcomeFailed
			uc.logger.Errorf("post %s deleted but media %s could not be removed: %v", externalRef, mediaID, err)
		case removed:
			outcome.Media = entity.MediaOutcomeDeleted
			outcome.DeletedMediaID = &mediaID
		default:
			outcome.Media = entity.MediaOutcomeRetained
		}
	}
	metrics.IncCascadeOutcome(string(outcome.Media))
	uc.logger.Infof("post deleted: ref=%s owner=%s media=%s", externalRef, ownerID, outcome.Media)
	return outcome, nil
}

// ToggleLike adds or removes userID from the like set in one atomic update.
func (uc *PostUsecase) ToggleLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error) {
	post, err := uc.postRepo.ToggleLike(ctx, externalRef, userID)
	if err != nil {
		if errors.Is(err, contract.ErrPostNotFound) {
			return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
		}
		uc.logger.Errorf("failed to toggle like on post %s: %v", externalRef, err)
		return nil, apperror.Internal(apperror.CodePostServerError, err)
	}
	state := &entity.LikeState{LikeCount: post.LikeCount, Liked: post.HasLiked(userID)}
	metrics.IncLikeToggle(state.Liked)
	uc.invalidateFeed(ctx)
	return state, nil
}

// CheckLike reports userID's like state without changing it.
func (uc *PostUsecase) CheckLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error) {
	post, err := uc.GetPost(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	return &entity.LikeState{LikeCount: post.LikeCount, Liked: post.HasLiked(userID)}, nil
}
