package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authStub struct{}

func (authStub) Authenticate(_ context.Context, token string) (*entity.User, error) {
	switch token {
	case "good":
		return &entity.User{ID: "u-1"}, nil
	case "broken":
		return nil, errors.New("store unavailable")
	default:
		return nil, apperror.Unauthorized(apperror.CodeAuthInvalidToken, "invalid or expired token")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer  ", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func serveWith(mw gin.HandlerFunc, header string) (*httptest.ResponseRecorder, string) {
	var seen string
	r := gin.New()
	r.GET("/x", mw, func(c *gin.Context) {
		seen = c.GetString(ContextUserID)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleWare(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, "AUTH_NO_TOKEN"},
		{"wrong scheme", "Token good", http.StatusUnauthorized, "AUTH_INVALID_FORMAT"},
		{"rejected token", "Bearer nope", http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{"store failure", "Bearer broken", http.StatusInternalServerError, "AUTH_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serveWith(AuthMiddleWare(authStub{}), tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.Empty(t, seen)
		})
	}

	w, seen := serveWith(AuthMiddleWare(authStub{}), "Bearer good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-1", seen)
}

func TestOptionalAuth(t *testing.T) {
	w, seen := serveWith(OptionalAuth(authStub{}), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, seen)

	w, seen = serveWith(OptionalAuth(authStub{}), "Bearer good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-1", seen)

	w, _ = serveWith(OptionalAuth(authStub{}), "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("disk full"))
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "req-42", first["request_id"])
	assert.Equal(t, float64(200), first["status"])

	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, generated, second["request_id"])
	assert.Contains(t, second["error"], "disk full")
}
