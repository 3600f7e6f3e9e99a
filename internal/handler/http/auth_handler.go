package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/handler/http/dto"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// AuthHandlerInterface defines the legacy local account endpoints.
type AuthHandlerInterface interface {
	Register(*gin.Context)
	Login(*gin.Context)
}

var _ AuthHandlerInterface = (*AuthHandler)(nil)

type AuthHandler struct {
	userUsecase usecasecontract.IUserUseCase
}

func NewAuthHandler(uc usecasecontract.IUserUseCase) *AuthHandler {
	return &AuthHandler{userUsecase: uc}
}

// Register handles local account creation
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := BindAndValidate(c, &req, apperror.CodeAuthInvalidInput); err != nil {
		return
	}

	user, token, err := h.userUsecase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		RespondError(c, err, apperror.CodeAuthServerError)
		return
	}
	SuccessHandler(c, http.StatusCreated, dto.AuthResponse{User: dto.ToUserResponse(*user), AccessToken: token})
}

// Login handles local password authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := BindAndValidate(c, &req, apperror.CodeAuthInvalidInput); err != nil {
		return
	}

	user, token, err := h.userUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err, apperror.CodeAuthServerError)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.AuthResponse{User: dto.ToUserResponse(*user), AccessToken: token})
}
