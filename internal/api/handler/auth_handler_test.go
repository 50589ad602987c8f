package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jose-carlos2025/App-gestor/internal/api/middleware"
	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, identity *domain.Identity) error
	profileFn  func(ctx context.Context, userID string) (*domain.User, error)
	validateFn func(ctx context.Context, token string) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	return s.logoutFn(ctx, identity)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	return s.validateFn(ctx, token)
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ana" || in.Email != "ana@example.com" || in.Role != "technician" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: "secret-hash"}, nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, rec := jsonContext(http.MethodPost, "/api/register", `{"name":"Ana","email":"ana@example.com","password":"secret1","role":"technician"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	resp := decodeBody(t, rec)
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" || user["role"] != "technician" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestAuthHandler_Register_PassesConflictThrough(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, _ := jsonContext(http.MethodPost, "/api/register", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	cases := map[string]string{
		"not json":       "not-json",
		"missing name":   `{"email":"a@example.com","password":"secret1"}`,
		"bad email":      `{"name":"A","email":"nope","password":"secret1"}`,
		"short password": `{"name":"A","email":"a@example.com","password":"123"}`,
		"unknown role":   `{"name":"A","email":"a@example.com","password":"secret1","role":"root"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := jsonContext(http.MethodPost, "/api/register", body)
			if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "ana@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Token:     "token123",
				ExpiresAt: expires,
				User:      &domain.User{ID: "u1", Name: "Ana", Email: email, Role: domain.RoleAdmin},
			}, nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, rec := jsonContext(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"secret1"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["success"] != true || resp["token"] != "token123" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["expires_at"] != "2026-10-19T12:00:00Z" {
		t.Fatalf("unexpected expires_at: %v", resp["expires_at"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "ana@example.com" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, _ := jsonContext(http.MethodPost, "/api/login", `{"email":"ana@example.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, _ := jsonContext(http.MethodPost, "/api/login", `{"email":"ana@example.com"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked *domain.Identity
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, identity *domain.Identity) error {
			revoked = identity
			return nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, rec := jsonContext(http.MethodPost, "/api/logout", "")
	id := &domain.Identity{UserID: "u1", TokenID: "jti-1"}
	middleware.SetIdentity(c, id)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != id {
		t.Fatalf("expected logout with the caller identity")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout_WithoutIdentity(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, NewValidator())

	c, _ := jsonContext(http.MethodPost, "/api/logout", "")
	if err := handler.Logout(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_CheckAuth(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{}, NewValidator())

	c, rec := jsonContext(http.MethodGet, "/api/check-auth", "")
	if err := handler.CheckAuth(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["authenticated"] != false {
		t.Fatalf("expected unauthenticated, got %+v", resp)
	}
	if _, ok := resp["user"]; ok {
		t.Fatalf("user must be omitted when unauthenticated")
	}

	c, rec = jsonContext(http.MethodGet, "/api/check-auth", "")
	middleware.SetIdentity(c, &domain.Identity{UserID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleTechnician})
	if err := handler.CheckAuth(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp = decodeBody(t, rec)
	user, _ := resp["user"].(map[string]any)
	if resp["authenticated"] != true || user["id"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	stub := &stubAuthService{
		profileFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %q", userID)
			}
			return &domain.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleTechnician}, nil
		},
	}
	handler := NewAuthHandler(stub, NewValidator())

	c, rec := jsonContext(http.MethodGet, "/api/profile", "")
	middleware.SetIdentity(c, &domain.Identity{UserID: "u1"})
	if err := handler.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	user, _ := decodeBody(t, rec)["user"].(map[string]any)
	if user["name"] != "Ana" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}
