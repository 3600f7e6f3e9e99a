package usecase

import (
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// JWTService defines the interface for legacy locally issued tokens.
type JWTService interface {
	GenerateAccessToken(userID string) (string, error)
	ParseAccessToken(token string) (*entity.Claims, error)
}
