package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login, logout and token validation.
type AuthService struct {
	users  ports.UserRepository
	hasher *PasswordHasher
	tokens *TokenIssuer
	log    zerolog.Logger

	// dummyHash keeps the unknown-email path as slow as a wrong password.
	dummyHash string
}

func NewAuthService(users ports.UserRepository, hasher *PasswordHasher, tokens *TokenIssuer, log zerolog.Logger) *AuthService {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log, dummyHash: dummy}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = domain.RoleTechnician
	}

	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if email == "" {
		problems = append(problems, "email is required")
	}
	switch {
	case in.Password == "":
		problems = append(problems, "password is required")
	case len(in.Password) < minPasswordLength:
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	case len(in.Password) > maxPasswordBytes:
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	if !domain.ValidRole(role) {
		problems = append(problems, "role must be one of: admin technician")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.tokens.Revoke(ctx, identity); err != nil {
		return err
	}
	s.log.Info().Str("user_id", identity.UserID).Msg("user logged out")
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := s.tokens.Validate(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, err
	}
	return identity, nil
}
