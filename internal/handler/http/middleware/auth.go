package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
)

// Context keys set by the auth middleware.
const (
	ContextUserID = "userID"
	ContextUser   = "user"
)

// Authenticator resolves a bearer credential to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (*entity.User, error)
}

func abort(c *gin.Context, status int, code apperror.Code, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message, Code: string(code)})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authenticate(c *gin.Context, auth Authenticator, token string) bool {
	user, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindUnauthorized {
			abort(c, http.StatusUnauthorized, appErr.Code, appErr.Message)
			return false
		}
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, apperror.CodeAuthServerError, "internal server error")
		return false
	}
	c.Set(ContextUserID, user.ID)
	c.Set(ContextUser, user)
	return true
}

// AuthMiddleWare rejects requests without a valid bearer token.
func AuthMiddleWare(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, apperror.CodeAuthNoToken, "authorization token required")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abort(c, http.StatusUnauthorized, apperror.CodeAuthInvalidFormat, "authorization header must be 'Bearer <token>'")
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a bearer token is present. A bad
// token is still rejected so clients notice expired credentials.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			abort(c, http.StatusUnauthorized, apperror.CodeAuthInvalidFormat, "authorization header must be 'Bearer <token>'")
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}
