package ports

import (
	"context"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// UserRepository defines the credential store.
type UserRepository interface {
	// Create persists user and returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
