package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	s := newTestServer(nil)
	w := s.do(http.MethodPost, "/posts", dto.CreatePostRequest{
		ImageURL:    "https://old-host.example/media/64B7F0C2A1B2C3D4E5F6000A",
		ExternalRef: "firestore-123",
	}, mocks.MockValidToken)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.ImageURL)
	assert.Equal(t, "/media/64b7f0c2a1b2c3d4e5f6000a", *resp.ImageURL)
	assert.Equal(t, "firestore-123", resp.ExternalRef)
	assert.Equal(t, mocks.MockUserID, resp.OwnerID)
}

func TestCreatePost_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		req    dto.CreatePostRequest
		fail   bool
		status int
		code   string
	}{
		{"missing fields", dto.CreatePostRequest{ImageURL: "/media/64b7f0c2a1b2c3d4e5f6000a"}, false, http.StatusBadRequest, "POST_MISSING_FIELDS"},
		{"external ref with a slash", dto.CreatePostRequest{ImageURL: "/media/64b7f0c2a1b2c3d4e5f6000a", ExternalRef: "a/b"}, false, http.StatusBadRequest, "POST_MISSING_FIELDS"},
		{"malformed reference", dto.CreatePostRequest{ImageURL: "/uploads/cat.png", ExternalRef: "x1"}, false, http.StatusBadRequest, "POST_INVALID_MEDIA_REF"},
		{"duplicate", dto.CreatePostRequest{ImageURL: "/media/64b7f0c2a1b2c3d4e5f6000a", ExternalRef: "x1"}, true, http.StatusBadRequest, "POST_DUPLICATE_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			s.posts.ShouldFailCreate = tt.fail
			assertError(t, s.do(http.MethodPost, "/posts", tt.req, mocks.MockValidToken), tt.status, tt.code)
		})
	}
}

func TestGetFeed(t *testing.T) {
	s := newTestServer(nil)
	liked := s.posts.MockPost
	liked.LikedBy = []string{mocks.MockUserID}
	liked.LikeCount = 1
	pending := s.posts.MockPost
	pending.ExternalRef = "ext-2"
	pending.MediaRef = mediaref.Pending()
	pending.NeedsNewImage = true
	owner := entity.OwnerSummary{ID: mocks.MockUserID, Name: "Test User"}
	s.posts.MockFeed = []entity.FeedItem{
		{Post: liked, Owner: &owner},
		{Post: pending, Owner: &owner},
	}

	w := s.do(http.MethodGet, "/posts?page=1&limit=1", nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.Pagination{Total: 2, Page: 1, Pages: 2, Limit: 1}, resp.Pagination)
	require.Len(t, resp.Posts, 2)
	assert.True(t, resp.Posts[0].HasLiked)
	assert.Equal(t, "Test User", resp.Posts[0].User.Name)
	assert.Nil(t, resp.Posts[1].ImageURL)
	assert.True(t, resp.Posts[1].NeedsNewImage)
}

func TestGetFeed_Errors(t *testing.T) {
	s := newTestServer(nil)
	assertError(t, s.do(http.MethodGet, "/posts?page=abc", nil, mocks.MockValidToken), http.StatusBadRequest, "POST_INVALID_PAGINATION")
	assertError(t, s.do(http.MethodGet, "/posts?limit=500", nil, mocks.MockValidToken), http.StatusBadRequest, "POST_INVALID_PAGINATION")

	s.posts.ShouldFailFeed = true
	w := s.do(http.MethodGet, "/posts", nil, mocks.MockValidToken)
	assertError(t, w, http.StatusInternalServerError, "POST_SERVER_ERROR")
	assert.Equal(t, "internal server error", decodeError(t, w).Error)
}

func TestGetPost(t *testing.T) {
	s := newTestServer(nil)
	w := s.do(http.MethodGet, "/posts/ext-1", nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"imageUrl":"/media/64b7f0c2a1b2c3d4e5f6000a"`)

	assertError(t, s.do(http.MethodGet, "/posts/nope", nil, mocks.MockValidToken), http.StatusNotFound, "POST_NOT_FOUND")
}

func TestUpdatePost(t *testing.T) {
	s := newTestServer(nil)
	desc := "sunset"
	w := s.do(http.MethodPut, "/posts/ext-1", dto.UpdatePostRequest{Description: &desc}, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sunset")

	s.posts.ShouldForbidUpdate = true
	w = s.do(http.MethodPut, "/posts/ext-1", dto.UpdatePostRequest{Description: &desc}, mocks.MockValidToken)
	assertError(t, w, http.StatusForbidden, "POST_FORBIDDEN")
}

func TestDeletePost(t *testing.T) {
	s := newTestServer(nil)
	mediaID := "64b7f0c2a1b2c3d4e5f6000a"
	s.posts.MockOutcome = entity.DeleteOutcome{PostID: "post-1", DeletedMediaID: &mediaID, Media: entity.MediaOutcomeDeleted}

	w := s.do(http.MethodDelete, "/posts/ext-1", nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.DeletePostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deleted", resp.MediaOutcome)
	require.NotNil(t, resp.DeletedMediaID)
	assert.Equal(t, mediaID, *resp.DeletedMediaID)

	s.posts.ShouldFailDelete = true
	assertError(t, s.do(http.MethodDelete, "/posts/ext-1", nil, mocks.MockValidToken), http.StatusNotFound, "POST_NOT_FOUND")
}

func TestLikeRoutes(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(http.MethodPost, "/posts/ext-1/like", nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"likeCount":1,"liked":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/posts/ext-1/like", nil, mocks.MockValidToken)
	assert.JSONEq(t, `{"likeCount":1,"liked":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/posts/ext-1/like", nil, mocks.MockValidToken)
	assert.JSONEq(t, `{"likeCount":0,"liked":false}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := newTestServer(healthStub{}).do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected"}`, w.Body.String())

	w = newTestServer(healthStub{down: true}).do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unreachable")
}

func TestRequestIDAndCORS(t *testing.T) {
	s := newTestServer(nil)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(s, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(s, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, serve(s, mustRequest(http.MethodGet, "/health")).Header().Get("X-Request-ID"))
}

func mustRequest(method, path string) *http.Request {
	req, _ := http.NewRequest(method, path, nil)
	return req
}
