package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

const defaultFeedLimit = 10

// PostHandlerInterface defines the post endpoints.
type PostHandlerInterface interface {
	CreatePost(*gin.Context)
	GetFeed(*gin.Context)
	GetPost(*gin.Context)
	UpdatePost(*gin.Context)
	DeletePost(*gin.Context)
	ToggleLike(*gin.Context)
	CheckLike(*gin.Context)
}

var _ PostHandlerInterface = (*PostHandler)(nil)

type PostHandler struct {
	postUsecase usecasecontract.IPostUseCase
}

func NewPostHandler(postUsecase usecasecontract.IPostUseCase) *PostHandler {
	return &PostHandler{postUsecase: postUsecase}
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, _ := currentUserID(c)
	var req dto.CreatePostRequest
	if err := BindAndValidate(c, &req, apperror.CodePostMissingFields); err != nil {
		return
	}

	post, err := h.postUsecase.CreatePost(c.Request.Context(), userID, req.ExternalRef, req.ImageURL, req.Description)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusCreated, dto.ToPostResponse(*post, userID))
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// GetFeed handles GET /posts?page=&limit=
func (h *PostHandler) GetFeed(c *gin.Context) {
	userID, _ := currentUserID(c)
	page, okPage := queryInt(c, "page", 1)
	limit, okLimit := queryInt(c, "limit", defaultFeedLimit)
	if !okPage || !okLimit {
		ErrorHandler(c, http.StatusBadRequest, apperror.CodePostInvalidPagination, "page and limit must be integers")
		return
	}

	feed, err := h.postUsecase.ListFeed(c.Request.Context(), page, limit)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToFeedResponse(feed.Items, feed.Total, feed.Page, feed.Limit, userID))
}

// GetPost handles GET /posts/:externalRef
func (h *PostHandler) GetPost(c *gin.Context) {
	userID, _ := currentUserID(c)
	post, err := h.postUsecase.GetPost(c.Request.Context(), c.Param("externalRef"))
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToPostResponse(*post, userID))
}

// UpdatePost handles PUT /posts/:externalRef. Only the description changes.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, _ := currentUserID(c)
	var req dto.UpdatePostRequest
	if err := BindAndValidate(c, &req, apperror.CodePostMissingFields); err != nil {
		return
	}

	post, err := h.postUsecase.UpdateDescription(c.Request.Context(), c.Param("externalRef"), userID, req.Description)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToPostResponse(*post, userID))
}

// DeletePost handles DELETE /posts/:externalRef
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, _ := currentUserID(c)
	outcome, err := h.postUsecase.DeletePost(c.Request.Context(), c.Param("externalRef"), userID)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.DeletePostResponse{
		Message:        "post deleted",
		PostID:         outcome.PostID,
		DeletedMediaID: outcome.DeletedMediaID,
		MediaOutcome:   string(outcome.Media),
	})
}

// ToggleLike handles POST /posts/:externalRef/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, _ := currentUserID(c)
	state, err := h.postUsecase.ToggleLike(c.Request.Context(), c.Param("externalRef"), userID)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, state)
}

// CheckLike handles GET /posts/:externalRef/like
func (h *PostHandler) CheckLike(c *gin.Context) {
	userID, _ := currentUserID(c)
	state, err := h.postUsecase.CheckLike(c.Request.Context(), c.Param("externalRef"), userID)
	if err != nil {
		RespondError(c, err, apperror.CodePostServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, state)
}
