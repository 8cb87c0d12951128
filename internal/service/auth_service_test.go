package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newAuthService(cfg config.AuthConfig) (*AuthService, *memory.UserRepository) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	users := memory.NewUserRepository()
	tokens := auth.NewTokenManager(cfg.JWTSecret, 60)
	return NewAuthService(users, tokens, cfg, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Dana", Email: "Dana@Example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.Email != "dana@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	result, err := svc.Login(ctx, "dana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" || result.User.ID != user.ID {
		t.Errorf("login result = %+v", result)
	}

	if _, err := svc.Login(ctx, "dana@example.com", "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); err == nil {
		t.Error("unknown email accepted")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@b.com", Password: "longenough"},
		{Name: "n", Email: "not-an-email", Password: "longenough"},
		{Name: "n", Email: "a@b.com", Password: "short"},
	}
	for i, input := range cases {
		if _, err := svc.Register(ctx, input); err == nil {
			t.Errorf("case %d accepted: %+v", i, input)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "a", Email: "dup@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Name: "b", Email: "dup@example.com", Password: "longenough"})
	if !util.IsConflict(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestCreateStaffRoles(t *testing.T) {
	svc, _ := newAuthService(config.AuthConfig{})
	ctx := context.Background()

	agent, err := svc.CreateStaff(ctx, RegisterInput{Name: "agent", Email: "agent@example.com", Password: "longenough"}, domain.RoleAgent)
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if agent.Role != domain.RoleAgent {
		t.Errorf("role = %q, want agent", agent.Role)
	}

	if _, err := svc.CreateStaff(ctx, RegisterInput{Name: "u", Email: "u@example.com", Password: "longenough"}, domain.RoleUser); err == nil {
		t.Error("user role accepted for staff creation")
	}
}

func TestEnsureAdmin(t *testing.T) {
	cfg := config.AuthConfig{AdminEmail: "Admin@Example.com", AdminPassword: "adminpassword"}
	svc, users := newAuthService(cfg)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	admin, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}

	// Second call is a no-op.
	if err := svc.EnsureAdmin(ctx); err != nil {
		t.Fatalf("EnsureAdmin rerun: %v", err)
	}

	if _, err := svc.Login(ctx, "admin@example.com", "adminpassword"); err != nil {
		t.Errorf("admin login: %v", err)
	}
}

func TestEnsureAdminSkippedWithoutCredentials(t *testing.T) {
	svc, users := newAuthService(config.AuthConfig{})
	if err := svc.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if _, err := users.GetByEmail(context.Background(), ""); err == nil {
		t.Error("account created without credentials")
	}
}
