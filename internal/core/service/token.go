package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

// DefaultTokenTTL is the fixed lifetime of an access token.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "app-gestor"

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 access tokens. Logged-out tokens are
// tracked by jti in the revocation list until they expire.
type TokenIssuer struct {
	secret  []byte
	ttl     time.Duration
	revoker ports.TokenRevoker
	now     func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, revoker ports.TokenRevoker) *TokenIssuer {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests to move past expiry.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue signs a token for user that expires ttl after now.
func (t *TokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses raw and returns the identity it carries. Every failure
// (encoding, algorithm, signature, issuer, expiry, revocation) is reported as
// domain.ErrUnauthenticated.
func (t *TokenIssuer) Validate(ctx context.Context, raw string) (*domain.Identity, error) {
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	var claims tokenClaims
	tkn, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !tkn.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	revoked, err := t.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation check: %v", domain.ErrUnauthenticated, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthenticated)
	}

	return &domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke adds the identity's token to the revocation list for the rest of
// its lifetime. Already-expired tokens are ignored.
func (t *TokenIssuer) Revoke(ctx context.Context, identity *domain.Identity) error {
	remaining := identity.ExpiresAt.Sub(t.now())
	if remaining <= 0 {
		return nil
	}
	if err := t.revoker.Revoke(ctx, identity.TokenID, remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
