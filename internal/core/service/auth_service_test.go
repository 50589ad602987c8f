package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
	"github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/memory"
)

func newTestAuthService() (*AuthService, *memory.UserRepository) {
	users := memory.NewUserRepository()
	tokens := NewTokenIssuer(testSecret, 0, memory.NewRevocationList())
	return NewAuthService(users, NewPasswordHasher(bcrypt.MinCost), tokens, zerolog.Nop()), users
}

func register(t *testing.T, svc *AuthService, email, password string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Test", Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := newTestAuthService()

	user := register(t, svc, "Alice@Example.com", "pass123")
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleTechnician {
		t.Fatalf("expected default role technician, got %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService()

	cases := map[string]ports.RegisterInput{
		"missing name":  {Email: "a@b.com", Password: "pass123"},
		"missing email": {Name: "A", Password: "pass123"},
		"short pass":    {Name: "A", Email: "a@b.com", Password: "123"},
		"bad role":      {Name: "A", Email: "a@b.com", Password: "pass123", Role: "root"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "bob@example.com", "pass123")

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "BOB@example.com", Password: "other123"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "C", Email: "race@example.com", Password: "pass123"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", successes)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newTestAuthService()
	user := register(t, svc, "carol@example.com", "pass123")

	result, err := svc.Login(context.Background(), "  Carol@Example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token")
	}
	if result.User.ID != user.ID {
		t.Fatalf("unexpected user: %+v", result.User)
	}

	id, err := svc.ValidateToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if id.UserID != user.ID || id.Email != "carol@example.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "dave@example.com", "pass123")

	if _, err := svc.Login(context.Background(), "dave@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Login(context.Background(), "nobody@example.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _ := newTestAuthService()
	register(t, svc, "erin@example.com", "pass123")

	result, err := svc.Login(context.Background(), "erin@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	id, err := svc.ValidateToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}

	if err := svc.Logout(context.Background(), id); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), result.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected token to be rejected after logout, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := newTestAuthService()
	user := register(t, svc, "frank@example.com", "pass123")

	got, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if got.Email != "frank@example.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
