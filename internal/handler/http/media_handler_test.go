package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	profileMediaID = "64b7f0c2a1b2c3d4e5f60010"
	postMediaID    = "64b7f0c2a1b2c3d4e5f60011"
)

type uploadForm struct {
	fileType string
	file     []byte
	fields   map[string]string
}

func multipartRequest(t *testing.T, form uploadForm) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if form.file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
		h.Set("Content-Type", form.fileType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(form.file)
		require.NoError(t, err)
	}
	for k, v := range form.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+mocks.MockValidToken)
	return req
}

func TestUpload(t *testing.T) {
	s := newTestServer(nil)
	req := multipartRequest(t, uploadForm{
		fileType: "image/png",
		file:     []byte("fake png bytes"),
		fields:   map[string]string{"type": "profile", "metadata": `{"description":"me"}`},
	})

	w := serve(s, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.MediaCategoryProfile, resp.Type)
	assert.Equal(t, "/media/"+resp.ID, resp.URL)
	assert.Equal(t, mocks.MockUserID, s.media.LastUpload.OwnerID)
	require.NotNil(t, s.media.LastUpload.Description)
	assert.Equal(t, "me", *s.media.LastUpload.Description)
}

func TestUpload_DefaultsToPostType(t *testing.T) {
	s := newTestServer(nil)
	w := serve(s, multipartRequest(t, uploadForm{fileType: "image/jpeg", file: []byte{0xff, 0xd8}}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, entity.MediaCategoryPost, s.media.LastUpload.Category)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		form   uploadForm
		status int
		code   string
	}{
		{"no file", uploadForm{fields: map[string]string{"type": "post"}}, http.StatusBadRequest, "UPLOAD_NO_FILE"},
		{"not an image", uploadForm{fileType: "application/pdf", file: []byte("%PDF")}, http.StatusBadRequest, "UPLOAD_UNSUPPORTED_PAYLOAD"},
		{"bad metadata", uploadForm{fileType: "image/png", file: []byte("x"), fields: map[string]string{"metadata": "{oops"}}, http.StatusBadRequest, "UPLOAD_INVALID_METADATA"},
		{"bad type", uploadForm{fileType: "image/png", file: []byte("x"), fields: map[string]string{"type": "banner"}}, http.StatusBadRequest, "UPLOAD_INVALID_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil)
			assertError(t, serve(s, multipartRequest(t, tt.form)), tt.status, tt.code)
		})
	}

	s := newTestServer(nil)
	s.media.ShouldFailUpload = true
	w := serve(s, multipartRequest(t, uploadForm{fileType: "image/png", file: []byte("x")}))
	assertError(t, w, http.StatusInternalServerError, "UPLOAD_SERVER_ERROR")
	assert.NotContains(t, w.Body.String(), "disk full")
}

func seedMedia(s *testServer) {
	s.media.Media[profileMediaID] = &entity.Media{ID: profileMediaID, OwnerID: mocks.MockUserID, Category: entity.MediaCategoryProfile, MimeType: "image/jpeg", Payload: []byte{0xff, 0xd8, 0x01}}
	s.media.Media[postMediaID] = &entity.Media{ID: postMediaID, OwnerID: otherUserID, Category: entity.MediaCategoryPost, MimeType: "image/jpeg", Payload: []byte{0xff, 0xd8, 0x02}}
}

func TestGetMedia_CacheHeaders(t *testing.T) {
	s := newTestServer(nil)
	seedMedia(s)

	w := s.do(http.MethodGet, "/media/"+postMediaID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
	assert.Equal(t, []byte{0xff, 0xd8, 0x02}, w.Body.Bytes())

	req, _ := http.NewRequest(http.MethodGet, "/media/"+postMediaID, nil)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	assert.Equal(t, http.StatusNotModified, serve(s, req).Code)

	w = s.do(http.MethodGet, "/media/"+profileMediaID, nil, "")
	assertError(t, w, http.StatusUnauthorized, "AUTH_REQUIRED")

	w = s.do(http.MethodGet, "/media/"+profileMediaID, nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	w = s.do(http.MethodGet, "/media/"+profileMediaID, nil, "expired")
	assertError(t, w, http.StatusUnauthorized, "AUTH_INVALID_TOKEN")
}

func TestGetMedia_Errors(t *testing.T) {
	s := newTestServer(nil)
	assertError(t, s.do(http.MethodGet, "/media/not-an-id", nil, ""), http.StatusBadRequest, "MEDIA_INVALID_ID")
	assertError(t, s.do(http.MethodGet, "/media/64b7f0c2a1b2c3d4e5f6ffff", nil, ""), http.StatusNotFound, "MEDIA_NOT_FOUND")
}

func TestListUserMedia(t *testing.T) {
	s := newTestServer(nil)
	seedMedia(s)

	w := s.do(http.MethodGet, "/media/user/"+mocks.MockUserID, nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	var list []dto.MediaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, profileMediaID, list[0].ID)

	w = s.do(http.MethodGet, "/media/user/"+mocks.MockUserID+"/post", nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(http.MethodGet, "/media/user/"+mocks.MockUserID, nil, "")
	assertError(t, w, http.StatusUnauthorized, "AUTH_NO_TOKEN")
}

func TestDeleteMedia(t *testing.T) {
	s := newTestServer(nil)
	seedMedia(s)

	// Someone else's media looks absent.
	w := s.do(http.MethodDelete, "/media/"+postMediaID, nil, mocks.MockValidToken)
	assertError(t, w, http.StatusNotFound, "MEDIA_NOT_FOUND")
	assert.Contains(t, s.media.Media, postMediaID)

	w = s.do(http.MethodDelete, "/media/"+profileMediaID, nil, mocks.MockValidToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, s.media.Media, profileMediaID)

	w = s.do(http.MethodDelete, "/media/"+profileMediaID, nil, mocks.MockValidToken)
	assertError(t, w, http.StatusNotFound, "MEDIA_NOT_FOUND")
}
