package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(NewJWTManager("test-secret", time.Hour))

	token, err := svc.GenerateAccessToken("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_Rejects(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret", time.Hour)
		token, err := other.GenerateAccessToken("u1")
		require.NoError(t, err)

		_, err = mgr.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTManager("test-secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.GenerateAccessToken("u1")
		require.NoError(t, err)

		_, err = mgr.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, CustomClaims{
			RegisteredClaims: jwtv5.RegisteredClaims{Subject: "u1", Issuer: issuer},
		})
		raw, err := token.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = mgr.VerifyToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := mgr.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
