package main

import (
	"context"
	"testing"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	"github.com/mikiasgoitom/Snapfeed/internal/testutil"
	"github.com/mikiasgoitom/Snapfeed/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner        = "64b7f0c2a1b2c3d4e5f60001"
	profileMedia = "64b7f0c2a1b2c3d4e5f600a1"
	postMedia    = "64b7f0c2a1b2c3d4e5f600a2"
	feedMedia    = "64b7f0c2a1b2c3d4e5f600a3"
)

func TestPurgeCategories(t *testing.T) {
	all, err := purgeCategories("", true)
	require.NoError(t, err)
	assert.Equal(t, entity.MediaCategories(), all)

	one, err := purgeCategories("feed", false)
	require.NoError(t, err)
	assert.Equal(t, []entity.MediaCategory{entity.MediaCategoryFeed}, one)

	_, err = purgeCategories("", false)
	assert.Error(t, err)
	_, err = purgeCategories("feed", true)
	assert.Error(t, err)
}

func newPurgeFixture() (*usecase.IntegrityAuditor, *testutil.MediaRepoStub, *testutil.PostRepoStub) {
	media := testutil.NewMediaRepoStub()
	posts := testutil.NewPostRepoStub()
	media.Put(&entity.Media{ID: profileMedia, OwnerID: owner, Category: entity.MediaCategoryProfile, Payload: []byte{1}})
	media.Put(&entity.Media{ID: postMedia, OwnerID: owner, Category: entity.MediaCategoryPost, Payload: []byte{2}})
	media.Put(&entity.Media{ID: feedMedia, OwnerID: owner, Category: entity.MediaCategoryFeed, Payload: []byte{3}})
	for id, m := range map[string]string{"p-post": postMedia, "p-feed": feedMedia} {
		posts.Put(&entity.Post{ID: id, ExternalRef: "ext-" + id, OwnerID: owner, MediaRef: mediaref.Resolved(m), LikedBy: []string{}, CreatedAt: time.Now().UTC()})
	}
	auditor := usecase.NewIntegrityAuditor(posts, media, testutil.NewUserRepoStub(), &testutil.NopLogger{}, testutil.NewConfigStub())
	return auditor, media, posts
}

func TestRunPurge_AllCategories(t *testing.T) {
	auditor, media, posts := newPurgeFixture()
	ctx := context.Background()

	dry, err := runPurge(ctx, auditor, entity.MediaCategories(), true)
	require.NoError(t, err)
	require.Len(t, dry, 3)
	assert.Equal(t, 3, media.Len())

	reports, err := runPurge(ctx, auditor, entity.MediaCategories(), false)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	var pending int
	var deleted int64
	for _, r := range reports {
		pending += r.PostsMarkedPending
		deleted += r.MediaDeleted
	}
	assert.Equal(t, 2, pending)
	assert.Equal(t, int64(3), deleted)
	assert.Zero(t, media.Len())
	assert.True(t, posts.Get("p-post").NeedsNewImage)
	assert.True(t, posts.Get("p-feed").MediaRef.IsPending())
}

func TestRunPurge_StopsAtInvalidCategory(t *testing.T) {
	auditor, media, _ := newPurgeFixture()

	reports, err := runPurge(context.Background(), auditor, []entity.MediaCategory{entity.MediaCategoryFeed, "banner"}, false)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeMediaInvalidType, apperror.CodeOf(err))
	assert.Len(t, reports, 1)
	assert.Equal(t, 2, media.Len())
}
