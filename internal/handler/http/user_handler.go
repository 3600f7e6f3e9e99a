package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// UserHandlerInterface defines the methods for user handler to allow interface-based dependency injection (for testing/mocking)
type UserHandlerInterface interface {
	GetUser(*gin.Context)
	SearchUsers(*gin.Context)
	GetCurrentUser(*gin.Context)
	UpdateCurrentUser(*gin.Context)
}

// Ensure UserHandler implements UserHandlerInterface
var _ UserHandlerInterface = (*UserHandler)(nil)

type UserHandler struct {
	userUsecase usecasecontract.IUserUseCase
}

func NewUserHandler(userUsecase usecasecontract.IUserUseCase) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
	}
}

func toProfileResponse(profile *usecasecontract.Profile, viewerID string, public bool) dto.ProfileResponse {
	user := dto.ToUserResponse(*profile.User)
	if public {
		user = dto.ToPublicUserResponse(*profile.User)
	}
	summary := profile.User.Summary()
	posts := make([]dto.PostResponse, 0, len(profile.Posts))
	for _, p := range profile.Posts {
		resp := dto.ToPostResponse(*p, viewerID)
		resp.User = &summary
		posts = append(posts, resp)
	}
	return dto.ProfileResponse{User: user, Posts: posts}
}

// GetUser returns a user's profile and posts
func (h *UserHandler) GetUser(c *gin.Context) {
	viewerID, _ := currentUserID(c)
	userID := c.Param("id")
	profile, err := h.userUsecase.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err, apperror.CodeUserServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, toProfileResponse(profile, viewerID, profile.User.ID != viewerID))
}

// SearchUsers matches users by name
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userUsecase.SearchUsers(c.Request.Context(), c.Query("query"))
	if err != nil {
		RespondError(c, err, apperror.CodeUserServerError)
		return
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToPublicUserResponse(*u))
	}
	SuccessHandler(c, http.StatusOK, gin.H{"users": out})
}

// GetCurrentUser handles retrieving the current authenticated user
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		ErrorHandler(c, http.StatusUnauthorized, apperror.CodeAuthRequired, "authentication required")
		return
	}

	profile, err := h.userUsecase.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err, apperror.CodeUserServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, toProfileResponse(profile, userID, false))
}

// UpdateCurrentUser handles updating the caller's profile
func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		ErrorHandler(c, http.StatusUnauthorized, apperror.CodeAuthRequired, "authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if err := BindAndValidate(c, &req, apperror.CodeUserInvalidInput); err != nil {
		return
	}

	user, err := h.userUsecase.UpdateProfile(c.Request.Context(), userID, usecasecontract.ProfileUpdate{
		Name:     req.Name,
		Bio:      req.Bio,
		PhotoRef: req.ProfilePicture,
	})
	if err != nil {
		RespondError(c, err, apperror.CodeUserServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}
