package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

const (
	cacheControlPrivate   = "private, no-cache, no-store, must-revalidate"
	cacheControlImmutable = "public, max-age=31536000, immutable"
	// multipartOverhead leaves room for the form fields around the file.
	multipartOverhead = 1 << 20
)

// MediaHandlerInterface defines the media endpoints.
type MediaHandlerInterface interface {
	Upload(*gin.Context)
	GetMedia(*gin.Context)
	ListUserMedia(*gin.Context)
	DeleteMedia(*gin.Context)
}

var _ MediaHandlerInterface = (*MediaHandler)(nil)

type MediaHandler struct {
	mediaUsecase   usecasecontract.IMediaUseCase
	maxUploadBytes int64
}

func NewMediaHandler(mediaUsecase usecasecontract.IMediaUseCase, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{mediaUsecase: mediaUsecase, maxUploadBytes: maxUploadBytes}
}

// Upload stores one image from the multipart field "file"
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorHandler(c, http.StatusUnauthorized, apperror.CodeAuthRequired, "authentication required")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorHandler(c, http.StatusBadRequest, apperror.CodeUploadTooLarge, "file exceeds the upload size limit")
			return
		}
		ErrorHandler(c, http.StatusBadRequest, apperror.CodeUploadNoFile, "no file uploaded")
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		ErrorHandler(c, http.StatusBadRequest, apperror.CodeUploadUnsupportedPayload, "only images are accepted")
		return
	}

	var meta dto.UploadMetadata
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			ErrorHandler(c, http.StatusBadRequest, apperror.CodeUploadInvalidMetadata, "metadata must be a JSON object")
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		RespondError(c, err, apperror.CodeUploadServerError)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		RespondError(c, err, apperror.CodeUploadServerError)
		return
	}

	media, err := h.mediaUsecase.Upload(c.Request.Context(), usecasecontract.UploadInput{
		OwnerID:     userID,
		Category:    entity.MediaCategory(c.DefaultPostForm("type", string(entity.MediaCategoryPost))),
		Data:        data,
		Description: meta.Description,
	})
	if err != nil {
		RespondError(c, err, apperror.CodeUploadServerError)
		return
	}
	SuccessHandler(c, http.StatusCreated, dto.ToMediaResponse(*media))
}

// GetMedia serves the stored bytes. Profile images require a caller.
func (h *MediaHandler) GetMedia(c *gin.Context) {
	media, err := h.mediaUsecase.GetMedia(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, apperror.CodeMediaServerError)
		return
	}

	if media.Category == entity.MediaCategoryProfile {
		if _, ok := currentUserID(c); !ok {
			ErrorHandler(c, http.StatusUnauthorized, apperror.CodeAuthRequired, "authentication required")
			return
		}
		c.Header("Cache-Control", cacheControlPrivate)
	} else {
		etag := strconv.Quote(media.ID)
		c.Header("Cache-Control", cacheControlImmutable)
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, media.MimeType, media.Payload)
}

// ListUserMedia lists a user's media metadata, optionally of one type
func (h *MediaHandler) ListUserMedia(c *gin.Context) {
	var category *entity.MediaCategory
	if t := c.Param("type"); t != "" {
		mc := entity.MediaCategory(t)
		category = &mc
	}
	list, err := h.mediaUsecase.ListByOwner(c.Request.Context(), c.Param("userId"), category)
	if err != nil {
		RespondError(c, err, apperror.CodeMediaServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToMediaListResponse(list))
}

// DeleteMedia removes one of the caller's media. Media owned by someone else
// is reported as absent.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorHandler(c, http.StatusUnauthorized, apperror.CodeAuthRequired, "authentication required")
		return
	}
	mediaID := c.Param("id")
	if err := h.mediaUsecase.DeleteMedia(c.Request.Context(), mediaID, userID); err != nil {
		if apperror.KindOf(err) == apperror.KindForbidden {
			ErrorHandler(c, http.StatusNotFound, apperror.CodeMediaNotFound, "media not found")
			return
		}
		RespondError(c, err, apperror.CodeMediaServerError)
		return
	}
	MessageHandler(c, http.StatusOK, "media deleted")
}
