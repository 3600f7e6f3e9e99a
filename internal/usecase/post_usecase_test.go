package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/validator"
	"github.com/mikiasgoitom/Snapfeed/internal/testutil"
	"github.com/mikiasgoitom/Snapfeed/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice   = "64b7f0c2a1b2c3d4e5f60001"
	bob     = "64b7f0c2a1b2c3d4e5f60002"
	mediaA  = "64b7f0c2a1b2c3d4e5f6000a"
	mediaB  = "64b7f0c2a1b2c3d4e5f6000b"
	missing = "64b7f0c2a1b2c3d4e5f6000f"
)

type postFixture struct {
	uc    *usecase.PostUsecase
	posts *testutil.PostRepoStub
	media *testutil.MediaRepoStub
	cache *testutil.FeedCacheStub
	log   *testutil.NopLogger
}

func newPostFixture() *postFixture {
	f := &postFixture{
		posts: testutil.NewPostRepoStub(),
		media: testutil.NewMediaRepoStub(),
		cache: testutil.NewFeedCacheStub(),
		log:   &testutil.NopLogger{},
	}
	f.uc = usecase.NewPostUsecase(f.posts, f.media, &testutil.IDGen{}, validator.NewValidator(), f.log)
	f.uc.SetFeedCache(f.cache)
	return f
}

func (f *postFixture) seedMedia(id, owner string) {
	f.media.Put(&entity.Media{
		ID:        id,
		OwnerID:   owner,
		Category:  entity.MediaCategoryPost,
		Payload:   []byte{0xff, 0xd8},
		MimeType:  "image/jpeg",
		CreatedAt: time.Now().UTC(),
	})
}

func TestCreatePost_StoresCanonicalReference(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	ctx := context.Background()

	post, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.NoError(t, err)
	assert.Equal(t, mediaref.Encode(mediaA), post.MediaRef.Raw())
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, post.LikedBy)

	_, err = f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, apperror.CodePostDuplicateID, apperror.CodeOf(err))
}

func TestCreatePost_RepairsInputReferences(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)

	post, err := f.uc.CreatePost(context.Background(), alice, "ext-2", "https://old-host.example/media/"+mediaA, nil)
	require.NoError(t, err)
	assert.Equal(t, "/media/"+mediaA, post.MediaRef.Raw())
	assert.False(t, post.MediaRef.NeedsRepair())
}

func TestCreatePost_Rejections(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	long := string(make([]rune, entity.MaxDescriptionLength+1))

	tests := []struct {
		name        string
		externalRef string
		mediaRef    string
		description *string
		kind        apperror.Kind
		code        apperror.Code
	}{
		{"missing fields", "", "", nil, apperror.KindValidation, apperror.CodePostMissingFields},
		{"malformed reference", "ext-a", "not-a-ref", nil, apperror.KindValidation, apperror.CodePostInvalidMediaRef},
		{"absent media", "ext-b", mediaref.Encode(missing), nil, apperror.KindNotFound, apperror.CodePostMediaNotFound},
		{"description too long", "ext-c", mediaref.Encode(mediaA), &long, apperror.KindValidation, apperror.CodePostDescriptionTooLong},
		{"bad external ref", "has space", mediaref.Encode(mediaA), nil, apperror.KindValidation, apperror.CodePostMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreatePost(context.Background(), alice, tt.externalRef, tt.mediaRef, tt.description)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
	assert.Equal(t, 0, f.posts.Len())
}

func TestCreatePost_ConcurrentDuplicates(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.CreatePost(context.Background(), alice, "ext-race", mediaref.Encode(mediaA), nil)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.CodeOf(err) == apperror.CodePostDuplicateID:
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
	assert.Equal(t, 1, f.posts.Len())
}

func TestToggleLike_Involution(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	ctx := context.Background()
	_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.NoError(t, err)

	state, err := f.uc.ToggleLike(ctx, "ext-1", bob)
	require.NoError(t, err)
	assert.Equal(t, entity.LikeState{LikeCount: 1, Liked: true}, *state)

	check, err := f.uc.CheckLike(ctx, "ext-1", bob)
	require.NoError(t, err)
	assert.True(t, check.Liked)

	state, err = f.uc.ToggleLike(ctx, "ext-1", bob)
	require.NoError(t, err)
	assert.Equal(t, entity.LikeState{LikeCount: 0, Liked: false}, *state)

	_, err = f.uc.ToggleLike(ctx, "nope", bob)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestToggleLike_ConcurrentUsersKeepCountConsistent(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	ctx := context.Background()
	_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.NoError(t, err)

	users := []string{alice, bob, "64b7f0c2a1b2c3d4e5f60003", "64b7f0c2a1b2c3d4e5f60004"}
	var wg sync.WaitGroup
	for _, u := range users {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				_, _ = f.uc.ToggleLike(ctx, "ext-1", u)
			}(u)
		}
	}
	wg.Wait()

	post, err := f.uc.GetPost(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, len(post.LikedBy), post.LikeCount)
	assert.Equal(t, len(users), post.LikeCount, "three toggles per user leave everyone liked")
}

func TestDeletePost_Cascade(t *testing.T) {
	ctx := context.Background()

	t.Run("owner's media is reclaimed", func(t *testing.T) {
		f := newPostFixture()
		f.seedMedia(mediaA, alice)
		_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
		require.NoError(t, err)

		out, err := f.uc.DeletePost(ctx, "ext-1", alice)
		require.NoError(t, err)
		assert.Equal(t, entity.MediaOutcomeDeleted, out.Media)
		require.NotNil(t, out.DeletedMediaID)
		assert.Equal(t, mediaA, *out.DeletedMediaID)
		assert.Equal(t, 0, f.media.Len())
	})

	t.Run("someone else's media is retained", func(t *testing.T) {
		f := newPostFixture()
		f.seedMedia(mediaB, bob)
		_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaB), nil)
		require.NoError(t, err)

		out, err := f.uc.DeletePost(ctx, "ext-1", alice)
		require.NoError(t, err)
		assert.Equal(t, entity.MediaOutcomeRetained, out.Media)
		assert.Nil(t, out.DeletedMediaID)
		assert.Equal(t, 1, f.media.Len())
	})

	t.Run("dangling reference does not block deletion", func(t *testing.T) {
		f := newPostFixture()
		f.posts.Put(&entity.Post{ID: "p1", ExternalRef: "ext-1", OwnerID: alice, MediaRef: mediaref.Resolved(missing)})

		out, err := f.uc.DeletePost(ctx, "ext-1", alice)
		require.NoError(t, err)
		assert.Equal(t, entity.MediaOutcomeRetained, out.Media)
		assert.Equal(t, 0, f.posts.Len())
	})

	t.Run("pending post skips the media step", func(t *testing.T) {
		f := newPostFixture()
		f.posts.Put(&entity.Post{ID: "p1", ExternalRef: "ext-1", OwnerID: alice, MediaRef: mediaref.Pending(), NeedsNewImage: true})

		out, err := f.uc.DeletePost(ctx, "ext-1", alice)
		require.NoError(t, err)
		assert.Equal(t, entity.MediaOutcomeSkipped, out.Media)
	})

	t.Run("media failure keeps the post deleted", func(t *testing.T) {
		f := newPostFixture()
		f.seedMedia(mediaA, alice)
		_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
		require.NoError(t, err)
		f.media.FailDelete = true

		out, err := f.uc.DeletePost(ctx, "ext-1", alice)
		require.NoError(t, err)
		assert.Equal(t, entity.MediaOutcomeFailed, out.Media)
		assert.Equal(t, 0, f.posts.Len())
		assert.NotEmpty(t, f.log.Errors)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		f := newPostFixture()
		f.seedMedia(mediaA, alice)
		_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
		require.NoError(t, err)

		_, err = f.uc.DeletePost(ctx, "ext-1", bob)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		assert.Equal(t, 1, f.posts.Len())
	})
}

func TestUpdateDescription(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	ctx := context.Background()
	_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.NoError(t, err)

	desc := "sunset"
	post, err := f.uc.UpdateDescription(ctx, "ext-1", alice, &desc)
	require.NoError(t, err)
	require.NotNil(t, post.Description)
	assert.Equal(t, "sunset", *post.Description)

	_, err = f.uc.UpdateDescription(ctx, "ext-1", bob, &desc)
	assert.Equal(t, apperror.CodePostForbidden, apperror.CodeOf(err))

	_, err = f.uc.UpdateDescription(ctx, "ext-404", alice, &desc)
	assert.Equal(t, apperror.CodePostNotFound, apperror.CodeOf(err))
}

func TestListFeed_CachesAndInvalidates(t *testing.T) {
	f := newPostFixture()
	f.seedMedia(mediaA, alice)
	ctx := context.Background()
	_, err := f.uc.CreatePost(ctx, alice, "ext-1", mediaref.Encode(mediaA), nil)
	require.NoError(t, err)

	page, err := f.uc.ListFeed(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.True(t, f.cache.Cached(1, 10))

	_, err = f.uc.ToggleLike(ctx, "ext-1", bob)
	require.NoError(t, err)
	assert.False(t, f.cache.Cached(1, 10))

	page, err = f.uc.ListFeed(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Post.HasLiked(bob))

	_, err = f.uc.ListFeed(ctx, 0, 10)
	assert.Equal(t, apperror.CodePostInvalidPagination, apperror.CodeOf(err))
	_, err = f.uc.ListFeed(ctx, 1, usecase.MaxFeedPageSize+1)
	assert.Equal(t, apperror.CodePostInvalidPagination, apperror.CodeOf(err))
}
