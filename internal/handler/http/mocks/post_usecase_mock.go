package mocks

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// MockPostUsecase is a mock implementation of the post usecase.
type MockPostUsecase struct {
	ShouldFailCreate   bool
	ShouldFailFeed     bool
	ShouldFailGet      bool
	ShouldForbidUpdate bool
	ShouldFailDelete   bool

	MockPost    entity.Post
	MockFeed    []entity.FeedItem
	MockOutcome entity.DeleteOutcome
	Liked       bool
}

var _ usecasecontract.IPostUseCase = (*MockPostUsecase)(nil)

func NewMockPostUsecase() *MockPostUsecase {
	return &MockPostUsecase{
		MockPost: entity.Post{
			ID:          "post-1",
			ExternalRef: "ext-1",
			OwnerID:     MockUserID,
			MediaRef:    mediaref.Resolved("64b7f0c2a1b2c3d4e5f6000a"),
			LikedBy:     []string{},
		},
		MockOutcome: entity.DeleteOutcome{PostID: "post-1", Media: entity.MediaOutcomeSkipped},
	}
}

func (m *MockPostUsecase) CreatePost(ctx context.Context, ownerID, externalRef, mediaRef string, description *string) (*entity.Post, error) {
	if m.ShouldFailCreate {
		return nil, apperror.Conflict(apperror.CodePostDuplicateID, "a post with this externalRef already exists")
	}
	if externalRef == "" || mediaRef == "" {
		return nil, apperror.Validation(apperror.CodePostMissingFields, "imageUrl and externalRef are required")
	}
	ref := mediaref.Decode(mediaRef)
	if !ref.IsResolved() {
		return nil, apperror.Validation(apperror.CodePostInvalidMediaRef, "imageUrl does not reference a media record")
	}
	p := m.MockPost
	p.OwnerID, p.ExternalRef, p.MediaRef, p.Description = ownerID, externalRef, mediaref.Resolved(ref.ID()), description
	return &p, nil
}

func (m *MockPostUsecase) GetPost(ctx context.Context, externalRef string) (*entity.Post, error) {
	if m.ShouldFailGet || externalRef != m.MockPost.ExternalRef {
		return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
	}
	p := m.MockPost
	return &p, nil
}

func (m *MockPostUsecase) ListFeed(ctx context.Context, page, limit int) (*usecasecontract.FeedPage, error) {
	if m.ShouldFailFeed {
		return nil, apperror.Internal(apperror.CodePostServerError, errors.New("connection reset by peer"))
	}
	if page < 1 || limit < 1 || limit > 50 {
		return nil, apperror.Validation(apperror.CodePostInvalidPagination, "page must be >= 1 and limit between 1 and 50")
	}
	return &usecasecontract.FeedPage{Items: m.MockFeed, Total: int64(len(m.MockFeed)), Page: page, Limit: limit}, nil
}

func (m *MockPostUsecase) UpdateDescription(ctx context.Context, externalRef, ownerID string, description *string) (*entity.Post, error) {
	if m.ShouldForbidUpdate {
		return nil, apperror.Forbidden(apperror.CodePostForbidden, "post", externalRef)
	}
	p := m.MockPost
	p.Description = description
	return &p, nil
}

func (m *MockPostUsecase) DeletePost(ctx context.Context, externalRef, ownerID string) (*entity.DeleteOutcome, error) {
	if m.ShouldFailDelete {
		return nil, apperror.NotFound(apperror.CodePostNotFound, "post", externalRef)
	}
	out := m.MockOutcome
	return &out, nil
}

func (m *MockPostUsecase) ToggleLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error) {
	m.Liked = !m.Liked
	count := 0
	if m.Liked {
		count = 1
	}
	return &entity.LikeState{LikeCount: count, Liked: m.Liked}, nil
}

func (m *MockPostUsecase) CheckLike(ctx context.Context, externalRef, userID string) (*entity.LikeState, error) {
	count := 0
	if m.Liked {
		count = 1
	}
	return &entity.LikeState{LikeCount: count, Liked: m.Liked}, nil
}
