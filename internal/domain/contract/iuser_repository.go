package contract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	// GetLocalUserByEmail retrieves the password account registered with email.
	// Users provisioned by the identity provider are never returned.
	GetLocalUserByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindOrCreateBySubject upserts on the unique subject so concurrent first
	// logins yield one record.
	FindOrCreateBySubject(ctx context.Context, identity entity.Identity, newID string) (*entity.User, error)
	// SearchUsersByName does a case-insensitive substring match.
	SearchUsersByName(ctx context.Context, query string, limit int) ([]*entity.User, error)
	// UpdateProfile sets the given fields and returns the updated user.
	UpdateProfile(ctx context.Context, id string, name *string, bio *string, photos []string) (*entity.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
