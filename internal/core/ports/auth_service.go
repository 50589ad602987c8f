package ports

import (
	"context"
	"time"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // defaults to technician
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// TokenValidator turns a presented bearer token into an identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

type AuthService interface {
	TokenValidator
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, identity *domain.Identity) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// TokenRevoker records logged-out tokens until they would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
