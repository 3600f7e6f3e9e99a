package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyID    = "test-key"
	testIssuer   = "https://idp.test/realms/snapfeed"
	testAudience = "snapfeed-api"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
	data, _ := json.Marshal(jwks)
	return data
}

func newTestVerifier(t *testing.T, key *rsa.PrivateKey) *Verifier {
	t.Helper()
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	require.NoError(t, err)
	return NewVerifierWithKeyfunc(kf, testIssuer, testAudience)
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "idp|42",
		"email": "ada@example.com",
		"name":  "Ada",
		"iss":   testIssuer,
		"aud":   testAudience,
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"iat":   jwt.NewNumericDate(time.Now()),
	}
}

func TestVerifyIdentityToken_Valid(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key)

	id, err := v.VerifyIdentityToken(context.Background(), signToken(t, key, baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "idp|42", id.Subject)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.Name)
}

func TestVerifyIdentityToken_FallsBackToPreferredUsername(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key)

	claims := baseClaims()
	delete(claims, "name")
	claims["preferred_username"] = "ada.l"

	id, err := v.VerifyIdentityToken(context.Background(), signToken(t, key, claims))
	require.NoError(t, err)
	assert.Equal(t, "ada.l", id.Name)
}

func TestVerifyIdentityToken_Rejects(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key)

	tests := []struct {
		name   string
		mutate func(c jwt.MapClaims)
		signer *rsa.PrivateKey
	}{
		{"expired", func(c jwt.MapClaims) { c["exp"] = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }, nil},
		{"missing expiry", func(c jwt.MapClaims) { delete(c, "exp") }, nil},
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://evil.test" }, nil},
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "someone-else" }, nil},
		{"missing subject", func(c jwt.MapClaims) { delete(c, "sub") }, nil},
		{"foreign key", func(c jwt.MapClaims) {}, generateTestKey(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := baseClaims()
			tt.mutate(claims)
			signer := key
			if tt.signer != nil {
				signer = tt.signer
			}
			_, err := v.VerifyIdentityToken(context.Background(), signToken(t, signer, claims))
			assert.ErrorIs(t, err, contract.ErrInvalidIdentity)
		})
	}
}

func TestVerifyIdentityToken_RejectsHMAC(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = v.VerifyIdentityToken(context.Background(), signed)
	assert.ErrorIs(t, err, contract.ErrInvalidIdentity)
}
