package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/middleware"
)

// ErrorHandler centralizes error handling for HTTP responses
func ErrorHandler(c *gin.Context, statusCode int, code apperror.Code, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message, Code: string(code)})
}

// SuccessHandler centralizes success responses
func SuccessHandler(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageHandler centralizes message responses
func MessageHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// BindAndValidate binds JSON request and validates it. On failure it has
// already responded with a 400 carrying code.
func BindAndValidate(c *gin.Context, req interface{}, code apperror.Code) error {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorHandler(c, http.StatusBadRequest, code, err.Error())
		return err
	}
	return nil
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as a JSON error. Internal errors never expose their
// cause; fallback is the code used when err carries none.
func RespondError(c *gin.Context, err error, fallback apperror.Code) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		_ = c.Error(err)
		code := fallback
		if appErr != nil && appErr.Code != "" {
			code = appErr.Code
		}
		ErrorHandler(c, http.StatusInternalServerError, code, "internal server error")
		return
	}
	ErrorHandler(c, StatusFor(appErr.Kind), appErr.Code, appErr.Message)
}

// currentUserID returns the id set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ContextUserID)
	return id, id != ""
}
