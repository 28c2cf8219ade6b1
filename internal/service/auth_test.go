package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name                  string
		email, password, user string
	}{
		{name: "empty email", email: "", password: "secret1", user: "A"},
		{name: "empty password", email: "a@b.c", password: "", user: "A"},
		{name: "empty name", email: "a@b.c", password: "secret1", user: " "},
		{name: "short password", email: "a@b.c", password: "12345", user: "A"},
		{name: "password over bcrypt limit", email: "a@b.c", password: strings.Repeat("p", 80), user: "A"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Auth.Register(ctx, tt.email, tt.password, tt.user)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_IssuesSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	now := time.Now().UTC().Truncate(time.Second)
	e.Auth.Now = func() time.Time { return now }
	ctx := context.Background()

	res, err := e.Auth.Register(ctx, "  Player@Example.COM ", "secret1", "Player One")
	require.NoError(t, err)

	assert.Equal(t, "player@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.Equal(t, now.Add(tokens.SessionTTL), res.ExpiresAt)

	claims, err := tokens.SessionClaimsFromToken(res.Token, e.Auth.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.UserID())
	assert.Equal(t, "Player One", claims.Name)

	assert.Equal(t, []string{events.UserRegistered}, e.Events.Types(events.TopicUsers))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	_, err := e.Auth.Register(ctx, "dup@example.com", "secret1", "One")
	require.NoError(t, err)

	_, err = e.Auth.Register(ctx, "DUP@example.com", "secret2", "Two")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.Auth.CreateUser(ctx, "dup@example.com", "secret3", "Three")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	_, err := e.Auth.Register(ctx, "login@example.com", "correct-horse", "L")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "missing password", email: "login@example.com", password: "", wantErr: ErrValidation},
		{name: "missing email", email: "", password: "x", wantErr: ErrValidation},
		{name: "unknown email", email: "nobody@example.com", password: "correct-horse", wantErr: ErrInvalidCredentials},
		{name: "wrong password", email: "login@example.com", password: "battery-staple", wantErr: ErrInvalidCredentials},
		{name: "ok with different case", email: "LOGIN@example.com", password: "correct-horse"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Token)
			assert.Equal(t, "login@example.com", res.User.Email)
		})
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	admin, err := e.Auth.EnsureAdmin(ctx, "admin@example.com", "admin-pass", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "Admin", admin.Name)

	again, err := e.Auth.EnsureAdmin(ctx, "admin@example.com", "other-pass", "Root")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	stored, err := e.Repo.GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = e.Auth.Register(ctx, "promote@example.com", "secret1", "P")
	require.NoError(t, err)
	promoted, err := e.Auth.EnsureAdmin(ctx, "promote@example.com", "ignored", "P")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	res, err := e.Auth.Login(ctx, "promote@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}
