package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// providerClaims is the subset of the identity token the service reads.
type providerClaims struct {
	jwt.RegisteredClaims
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// Verifier checks RS256 identity tokens against the provider's JWKS.
type Verifier struct {
	jwks     keyfunc.Keyfunc
	issuer   string
	audience string
	leeway   time.Duration
}

var _ contract.IIdentityVerifier = (*Verifier)(nil)

// NewVerifier builds a verifier whose key set refreshes in the background.
// Startup does not fail when the provider is unreachable.
func NewVerifier(jwksURL, issuer, audience string, refresh time.Duration, logger usecasecontract.IAppLogger) (*Verifier, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: 10 * time.Second},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refresh,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Errorf("jwks refresh failed: url=%s err=%v", jwksURL, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create jwks storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("failed to create keyfunc: %w", err)
	}
	return NewVerifierWithKeyfunc(k, issuer, audience), nil
}

// NewVerifierWithKeyfunc wires a prepared keyfunc, typically a static JWKS in tests.
func NewVerifierWithKeyfunc(kf keyfunc.Keyfunc, issuer, audience string) *Verifier {
	return &Verifier{jwks: kf, issuer: issuer, audience: audience, leeway: 30 * time.Second}
}

// VerifyIdentityToken returns the identity carried by a valid token.
func (v *Verifier) VerifyIdentityToken(_ context.Context, tokenStr string) (*entity.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &providerClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrInvalidIdentity, err)
	}
	if !token.Valid {
		return nil, contract.ErrInvalidIdentity
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", contract.ErrInvalidIdentity, errors.New("token has no subject"))
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.TrimSpace(claims.PreferredUsername)
	}
	return &entity.Identity{
		Subject: claims.Subject,
		Email:   strings.TrimSpace(claims.Email),
		Name:    name,
	}, nil
}
