package contract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// IImageNormalizer re-encodes raw upload bytes into the stored format.
type IImageNormalizer interface {
	// Normalize fails with ErrUnsupportedPayload or ErrPayloadTooLarge.
	Normalize(raw []byte) (*entity.NormalizedImage, error)
}

// IIdentityVerifier validates identity tokens issued by the external provider.
type IIdentityVerifier interface {
	VerifyIdentityToken(ctx context.Context, token string) (*entity.Identity, error)
}

type IHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordHash(password, hashedPassword string) error
}

type IUUIDGenerator interface {
	NewUUID() string
}

// IObjectIDGenerator yields 24 hex character identifiers for media and users.
type IObjectIDGenerator interface {
	NewObjectID() string
}
