package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	pkg_hash "github.com/Skotchmaster/game_store/pkg/hash"
	"github.com/Skotchmaster/game_store/pkg/logging"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

const MinPasswordLen = 6

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	Events    events.Publisher
	Now       func() time.Time
}

// AuthResult is a user together with a freshly signed session token.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func SessionOf(u *models.User) tokens.Session {
	return tokens.Session{UserID: u.ID.String(), Email: u.Email, Name: u.Name, Role: u.Role}
}

// CreateUser validates and stores a new user with role user.
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user")

	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, ErrValidation)
	}
	if len(password) > pkg_hash.MaxPasswordBytes {
		return nil, fmt.Errorf("password must be at most %d bytes: %w", pkg_hash.MaxPasswordBytes, ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: pwHash, Name: name, Role: models.RoleUser}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("create_user_error", "status", 409, "reason", "user already exists")
			return nil, fmt.Errorf("user already exists: %w", ErrConflict)
		}
		l.Error("create_user_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:       events.UserRegistered,
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		OccurredAt: s.now().UTC(),
	})
	return user, nil
}

// Register creates the user and signs them in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	user, err := s.CreateUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := tokens.IssueSession(SessionOf(user), s.JWTSecret, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// EnsureAdmin makes sure a user with the given email exists and has role admin.
// An existing user keeps their password.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	email = NormalizeEmail(email)
	user, err := s.Repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := s.Repo.SetUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
				return nil, err
			}
			user.Role = models.RoleAdmin
			l.Info("admin_promoted", "user_id", user.ID.String())
		}
		return user, nil
	case !notFound(err):
		return nil, err
	}

	if name == "" {
		name = "Admin"
	}
	user, err = s.CreateUser(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	l.Info("admin_created", "user_id", user.ID.String())
	return user, nil
}
