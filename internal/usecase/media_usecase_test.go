package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/imaging"
	"github.com/mikiasgoitom/Snapfeed/internal/testutil"
	"github.com/mikiasgoitom/Snapfeed/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaUsecase(repo *testutil.MediaRepoStub, cfg *testutil.ConfigStub) *usecase.MediaUsecase {
	return usecase.NewMediaUsecase(repo, imaging.NewNormalizer(2048, 80, 10<<20), &testutil.IDGen{}, &testutil.NopLogger{}, cfg)
}

func TestUpload_DownscalesAndNormalizes(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	uc := newMediaUsecase(repo, testutil.NewConfigStub())

	media, err := uc.Upload(context.Background(), usecasecontract.UploadInput{
		OwnerID:  alice,
		Category: entity.MediaCategoryPost,
		Data:     testutil.TinyPNG(3000, 2000),
	})
	require.NoError(t, err)

	assert.True(t, entity.ValidObjectID(media.ID))
	assert.Equal(t, entity.MediaCategoryPost, media.Category)
	assert.Equal(t, "image/jpeg", media.MimeType)
	assert.LessOrEqual(t, media.Attributes.Width, 2048)
	assert.Equal(t, len(media.Payload), media.Attributes.Size)

	stored, err := uc.GetMedia(context.Background(), strings.ToUpper(media.ID))
	require.NoError(t, err)
	assert.Equal(t, media.ID, stored.ID)
}

func TestUpload_Rejections(t *testing.T) {
	cfg := testutil.NewConfigStub()
	cfg.MaxUploadBytes = 64 << 10
	uc := newMediaUsecase(testutil.NewMediaRepoStub(), cfg)
	long := strings.Repeat("x", entity.MaxDescriptionLength+1)

	tests := []struct {
		name string
		in   usecasecontract.UploadInput
		code apperror.Code
	}{
		{"unknown category", usecasecontract.UploadInput{Category: "banner", Data: testutil.TinyPNG(4, 4)}, apperror.CodeUploadInvalidType},
		{"no data", usecasecontract.UploadInput{Category: entity.MediaCategoryFeed}, apperror.CodeUploadNoFile},
		{"over the upload limit", usecasecontract.UploadInput{Category: entity.MediaCategoryFeed, Data: make([]byte, 65<<10)}, apperror.CodeUploadTooLarge},
		{"not an image", usecasecontract.UploadInput{Category: entity.MediaCategoryFeed, Data: []byte("hello")}, apperror.CodeUploadUnsupportedPayload},
		{"description too long", usecasecontract.UploadInput{Category: entity.MediaCategoryFeed, Data: testutil.TinyPNG(4, 4), Description: &long}, apperror.CodeUploadInvalidMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.OwnerID = alice
			_, err := uc.Upload(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestGetMedia_Errors(t *testing.T) {
	uc := newMediaUsecase(testutil.NewMediaRepoStub(), testutil.NewConfigStub())

	_, err := uc.GetMedia(context.Background(), "xyz")
	assert.Equal(t, apperror.CodeMediaInvalidID, apperror.CodeOf(err))

	_, err = uc.GetMedia(context.Background(), missing)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListByOwner_FiltersByCategory(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	uc := newMediaUsecase(repo, testutil.NewConfigStub())
	ctx := context.Background()

	for _, c := range []entity.MediaCategory{entity.MediaCategoryProfile, entity.MediaCategoryPost, entity.MediaCategoryPost} {
		_, err := uc.Upload(ctx, usecasecontract.UploadInput{OwnerID: alice, Category: c, Data: testutil.TinyPNG(8, 8)})
		require.NoError(t, err)
	}

	all, err := uc.ListByOwner(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, m := range all {
		assert.Nil(t, m.Payload)
	}

	post := entity.MediaCategoryPost
	posts, err := uc.ListByOwner(ctx, alice, &post)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	bad := entity.MediaCategory("banner")
	_, err = uc.ListByOwner(ctx, alice, &bad)
	assert.Equal(t, apperror.CodeMediaInvalidType, apperror.CodeOf(err))

	_, err = uc.ListByOwner(ctx, "not-an-id", nil)
	assert.Equal(t, apperror.CodeMediaInvalidUserID, apperror.CodeOf(err))
}

func TestDeleteMedia_Ownership(t *testing.T) {
	repo := testutil.NewMediaRepoStub()
	uc := newMediaUsecase(repo, testutil.NewConfigStub())
	ctx := context.Background()

	media, err := uc.Upload(ctx, usecasecontract.UploadInput{OwnerID: alice, Category: entity.MediaCategoryFeed, Data: testutil.TinyPNG(8, 8)})
	require.NoError(t, err)

	err = uc.DeleteMedia(ctx, media.ID, bob)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, uc.DeleteMedia(ctx, media.ID, alice))
	assert.Equal(t, 0, repo.Len())

	err = uc.DeleteMedia(ctx, media.ID, alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
