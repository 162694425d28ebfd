package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/domain"
	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/internal/repo"
)

// Development account created by EnsureDevUser.
const (
	DevUsername = "dev"
	DevPassword = "devpass"
)

const (
	msgUsernameTaken     = "A user with that username already exists."
	msgBadCredentials    = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgPasswordIncorrect = "Your old password was entered incorrectly. Please enter it again."
)

// AuthService manages accounts: sign-up, sign-in, passwords and capability
// grants.
type AuthService struct {
	users    repo.UserRepo
	validate *Validator
	log      *slog.Logger
}

// NewAuthService constructs an AuthService backed by the provided UserRepo.
func NewAuthService(users repo.UserRepo, v *Validator, log *slog.Logger) *AuthService {
	return &AuthService{users: users, validate: v, log: log}
}

// Register creates an ordinary account. The username is stored lower-cased
// and must be unique regardless of case.
func (s *AuthService) Register(ctx context.Context, in domain.Registration) (domain.User, error) {
	clean, err := s.validate.Registration(in)
	if err != nil {
		s.log.DebugContext(ctx, "registration rejected", "errors", domain.AsValidationErrors(err).ByField())
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	user, err := s.create(ctx, domain.User{Username: clean.Username, Email: clean.Email}, clean.Password1)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// CreateUser is the command-line path for adding accounts, including
// superusers. Superusers are also staff.
func (s *AuthService) CreateUser(ctx context.Context, username, email, password string, superuser bool) (domain.User, error) {
	clean, err := s.validate.Registration(domain.Registration{
		Username: username, Email: email, Password1: password, Password2: password,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	user, err := s.create(ctx, domain.User{
		Username:    clean.Username,
		Email:       clean.Email,
		IsSuperuser: superuser,
		IsStaff:     superuser,
	}, clean.Password1)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.CreateUser: %w", err)
	}
	return user, nil
}

func (s *AuthService) create(ctx context.Context, u domain.User, password string) (domain.User, error) {
	taken := domain.ValidationErrors{{Field: "username", Code: domain.CodeTaken, Message: msgUsernameTaken}}

	if _, err := s.users.GetByUsername(ctx, u.Username); err == nil {
		return domain.User{}, taken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.Create(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		return domain.User{}, taken
	}
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// Authenticate resolves login as a username (any case), falling back to an
// e-mail address, and checks password. Every failure is reported with the
// same form-wide message.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (domain.User, error) {
	login = strings.TrimSpace(login)
	bad := domain.ValidationErrors{{Code: domain.CodeBadCredentials, Message: msgBadCredentials}}
	if login == "" || password == "" {
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", bad)
	}

	user, err := s.lookup(ctx, login)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.DebugContext(ctx, "login failed", "login", login, "matched", false)
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", bad)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	if !checkPassword(password, user.PasswordHash) {
		s.log.DebugContext(ctx, "login failed", "login", login, "matched", true)
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", bad)
	}
	return user, nil
}

// Development hints shown under a failed login form.
const (
	hintUsernameExists = "Debug: username exists (case-insensitive); the password may be incorrect."
	hintEmailExists    = "Debug: username not found, but an account exists with that email. Try your password."
	hintNotFound       = "Debug: username/email not found."
)

// LoginHint explains a failed login while debugging: whether login matched
// a username, an e-mail address or nothing at all.
func (s *AuthService) LoginHint(ctx context.Context, login string) (string, error) {
	login = strings.TrimSpace(login)
	_, err := s.users.GetByUsername(ctx, login)
	if err == nil {
		return hintUsernameExists, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("service.AuthService.LoginHint: %w", err)
	}
	_, err = s.users.GetByEmail(ctx, login)
	switch {
	case err == nil:
		return hintEmailExists, nil
	case errors.Is(err, domain.ErrNotFound):
		return hintNotFound, nil
	}
	return "", fmt.Errorf("service.AuthService.LoginHint: %w", err)
}

func (s *AuthService) lookup(ctx context.Context, login string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, login)
	if errors.Is(err, domain.ErrNotFound) {
		return s.users.GetByEmail(ctx, login)
	}
	return user, err
}

// ChangePassword replaces the password of user after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, in domain.PasswordChange) error {
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.validate.PasswordChange(user.Username, in); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if !checkPassword(in.OldPassword, user.PasswordHash) {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", domain.ValidationErrors{{
			Field: "old_password", Code: domain.CodePasswordIncorrect, Message: msgPasswordIncorrect,
		}})
	}

	hash, err := hashPassword(in.NewPassword1)
	if err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("service.AuthService.ChangePassword: %w", err)
	}
	s.log.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}

// GetUser loads the account behind a session.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.GetUser: %w", err)
	}
	return u, nil
}

// ListUsers returns every account ordered by username.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AuthService.ListUsers: %w", err)
	}
	return users, nil
}

// ResetPassword sets a random temporary password for username (matched
// case-insensitively) and returns it. It backs a development-only endpoint.
func (s *AuthService) ResetPassword(ctx context.Context, username string) (domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	temp, err := tempPassword()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	hash, err := hashPassword(temp)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	s.log.WarnContext(ctx, "password reset through debug endpoint", "user_id", user.ID)
	return user, temp, nil
}

// EnsureDevUser returns the development superuser, creating it or resetting
// its password to DevPassword as needed.
func (s *AuthService) EnsureDevUser(ctx context.Context) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, DevUsername)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		hash, err := hashPassword(DevPassword)
		if err != nil {
			return domain.User{}, fmt.Errorf("service.AuthService.EnsureDevUser: %w", err)
		}
		user, err = s.users.Create(ctx, domain.User{
			Username: DevUsername, PasswordHash: hash, IsSuperuser: true, IsStaff: true,
		})
		if err != nil {
			return domain.User{}, fmt.Errorf("service.AuthService.EnsureDevUser: %w", err)
		}
		return user, nil
	case err != nil:
		return domain.User{}, fmt.Errorf("service.AuthService.EnsureDevUser: %w", err)
	}

	if !checkPassword(DevPassword, user.PasswordHash) {
		hash, err := hashPassword(DevPassword)
		if err != nil {
			return domain.User{}, fmt.Errorf("service.AuthService.EnsureDevUser: %w", err)
		}
		if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
			return domain.User{}, fmt.Errorf("service.AuthService.EnsureDevUser: %w", err)
		}
		user.PasswordHash = hash
	}
	return user, nil
}

// Grant gives capability c to username.
func (s *AuthService) Grant(ctx context.Context, username string, c domain.Capability) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service.AuthService.Grant: %w", err)
	}
	if err := s.users.GrantCapability(ctx, user.ID, c); err != nil {
		return fmt.Errorf("service.AuthService.Grant: %w", err)
	}
	s.log.InfoContext(ctx, "capability granted", "user_id", user.ID, "capability", c)
	return nil
}

// Revoke takes capability c away from username.
func (s *AuthService) Revoke(ctx context.Context, username string, c domain.Capability) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("service.AuthService.Revoke: %w", err)
	}
	if err := s.users.RevokeCapability(ctx, user.ID, c); err != nil {
		return fmt.Errorf("service.AuthService.Revoke: %w", err)
	}
	s.log.InfoContext(ctx, "capability revoked", "user_id", user.ID, "capability", c)
	return nil
}
