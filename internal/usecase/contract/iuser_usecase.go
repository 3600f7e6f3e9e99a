package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// Profile is a user together with their posts, newest first.
type Profile struct {
	User  *entity.User
	Posts []*entity.Post
}

// ProfileUpdate holds optional profile changes. PhotoRef is a media reference.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	PhotoRef *string
}

// IUserUseCase defines user related operations.
type IUserUseCase interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	Authenticate(ctx context.Context, bearerToken string) (*entity.User, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetUserByID(ctx context.Context, userID string) (*entity.User, error)
	SearchUsers(ctx context.Context, query string) ([]*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*entity.User, error)
}
