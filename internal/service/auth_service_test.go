package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"linkup/internal/domain"
	"linkup/internal/dto"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, dto.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID, err := uuid.Parse(reg.UserID)
	if err != nil {
		t.Fatalf("parse user id: %v", err)
	}

	tokens, err := env.auth.Login(ctx, dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", tokens)
	}
	if tokens.UserID != reg.UserID {
		t.Fatalf("token user id %s, want %s", tokens.UserID, reg.UserID)
	}

	uid, err := env.tokens.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if uid != userID {
		t.Fatalf("access token resolves to %s, want %s", uid, userID)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"short password", dto.RegisterRequest{Name: "A", Email: "a@example.com", Password: "12345"}, domain.ErrWeakPassword},
		{"bad email", dto.RegisterRequest{Name: "A", Email: "not-an-email", Password: "123456"}, domain.ErrInvalidEmail},
		{"empty name", dto.RegisterRequest{Name: "  ", Email: "a@example.com", Password: "123456"}, domain.ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.auth.Register(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "hunter22"}
	if _, err := env.auth.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	req.Name = "Other Alice"
	if _, err := env.auth.Register(ctx, req); !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, dto.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := env.auth.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "wrong"}, "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := env.auth.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}, "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	uid := uuid.MustParse(reg.UserID)
	if err := env.store.Users().SetDisabled(ctx, uid, true); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := env.auth.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "hunter22"}, "", ""); !errors.Is(err, domain.ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, dto.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	tokens, err := env.auth.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: "hunter22"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := env.tokens.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.UserID != tokens.UserID {
		t.Fatalf("unexpected refresh response: %+v", refreshed)
	}

	if err := env.auth.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := env.tokens.Refresh(ctx, tokens.RefreshToken); err == nil {
		t.Fatalf("expected refresh to fail after logout")
	}

	// Logging out twice is fine.
	if err := env.auth.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}
