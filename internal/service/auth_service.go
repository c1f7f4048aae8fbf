package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dragonmail/dragonmail/internal/auth"
	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// Common service errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPasswordTooShort   = errors.New("password does not meet the minimum length")
	ErrLastAdmin          = errors.New("cannot remove the last admin account")
)

// AuthService handles operator accounts and console sessions.
type AuthService struct {
	users       repository.UserRepository
	tokenSvc    *auth.TokenService
	argonParams *auth.Argon2Params
	cfg         *config.Config
	log         *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, tokenSvc *auth.TokenService, cfg *config.Config, log *logger.Logger) *AuthService {
	params := auth.DefaultParams()
	if cfg.Security.Password.Argon2Memory > 0 {
		params = auth.NewParams(
			cfg.Security.Password.Argon2Memory,
			cfg.Security.Password.Argon2Iterations,
			cfg.Security.Password.Argon2Parallelism,
		)
	}
	return &AuthService{
		users:       users,
		tokenSvc:    tokenSvc,
		argonParams: params,
		cfg:         cfg,
		log:         log.WithComponent("auth_service"),
	}
}

// EnsureDefaultAdmin seeds the admin account on first start. Seeding
// happens only when the user store is empty and a bootstrap password is
// configured; an existing deployment is never touched.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	password := s.cfg.Security.BootstrapAdminPassword
	if password == "" {
		s.log.Warn().Msg("user store is empty and no bootstrap admin password is set")
		return nil
	}
	if err := s.CreateUser(ctx, "admin", password, model.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	s.log.Info().Msg("seeded default admin account")
	return nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.Session, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		// Hash anyway so a missing user costs the same as a wrong password.
		_, _ = auth.HashPassword(password, s.argonParams)
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.log.Warn().Str("user", user.Username).Msg("failed login attempt")
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue session: %w", err)
	}
	s.log.Info().Str("user", user.Username).Msg("login")
	return session, user, nil
}

// CreateUser adds an operator account.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role model.Role) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: empty username", repository.ErrInvalidInput)
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("%w: role %q", repository.ErrInvalidInput, role)
	}
	if minLen := s.cfg.Security.Password.MinLength; minLen > 0 && len(password) < minLen {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password, s.argonParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.users.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrUsernameTaken
	}
	if err != nil {
		return err
	}
	s.log.Info().Str("user", username).Str("role", string(role)).Msg("user created")
	return nil
}

// ListUsers returns all operator accounts without password hashes.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// ChangePassword replaces an account's password.
func (s *AuthService) ChangePassword(ctx context.Context, username, password string) error {
	if minLen := s.cfg.Security.Password.MinLength; minLen > 0 && len(password) < minLen {
		return ErrPasswordTooShort
	}
	hash, err := auth.HashPassword(password, s.argonParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, username, hash); err != nil {
		return err
	}
	s.log.Info().Str("user", username).Msg("password changed")
	return nil
}

// DeleteUser removes an account. The last remaining admin cannot be
// deleted, or the console would lock everyone out of user management.
func (s *AuthService) DeleteUser(ctx context.Context, username string) error {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		users, err := s.users.List(ctx)
		if err != nil {
			return err
		}
		admins := 0
		for _, u := range users {
			if u.IsAdmin() {
				admins++
			}
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("user", username).Msg("user deleted")
	return nil
}
