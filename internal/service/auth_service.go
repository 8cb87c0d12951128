package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService handles registration, login and the admin bootstrap.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg, logger: logger}
}

// RegisterInput carries signup fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult bundles the issued token with its expiry.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an end-user account. New signups always get the user
// role; staff accounts are provisioned by an admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleUser)
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if util.IsNotFound(err) {
			return nil, util.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, util.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// CreateStaff provisions an agent or admin account. Admin only.
func (s *AuthService) CreateStaff(ctx context.Context, input RegisterInput, role domain.UserRole) (*domain.User, error) {
	if role != domain.RoleAgent && role != domain.RoleAdmin {
		return nil, util.NewValidationError("role must be agent or admin", nil)
	}
	return s.createUser(ctx, input, role)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role domain.UserRole) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return nil, util.NewValidationError("name is required", nil)
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, util.NewValidationError("a valid email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
	}

	hashed, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if util.IsConflict(err) {
			return nil, util.NewConflict("email already registered", nil)
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin bootstraps the admin account from environment configuration.
// It is a no-op when credentials are unset or the account already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !util.IsNotFound(err) {
		return err
	}

	hashed, err := auth.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return util.NewInternalError(err)
	}

	admin := &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if util.IsConflict(err) {
			return nil
		}
		return err
	}
	s.logger.Info("admin account bootstrapped", zap.String("email", email))
	return nil
}
