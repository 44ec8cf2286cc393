package service

import (
	"context"
	"testing"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/config"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiry:     24,
		RefreshExpiry: 7,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with usable tokens", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := NewAuthService(testConfig(), users)

		user, access, refresh, err := svc.Register(ctx, RegisterRequest{
			Email:    "lin@example.com",
			Password: "secret123",
			Name:     "Lin Chen",
			Skills:   []string{"Go"},
			IsPublic: true,
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		// Password must be stored hashed
		assert.NotEqual(t, "secret123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

		// The access token round-trips through validation
		token, err := svc.ValidateToken(access)
		require.NoError(t, err)
		userID, err := svc.GetUserIDFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("defaults work mode and location preference", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := NewAuthService(testConfig(), users)

		user, _, _, err := svc.Register(ctx, RegisterRequest{
			Email:    "maya@example.com",
			Password: "secret123",
			Name:     "Maya Lin",
		})
		require.NoError(t, err)
		assert.Equal(t, repository.WorkModeFulltime, user.WorkMode)
		assert.Equal(t, repository.LocationRemote, user.LocationPreference)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := newFakeUserRepo(&repository.User{ID: "user-1", Email: "lin@example.com"})
		svc := NewAuthService(testConfig(), users)

		_, _, _, err := svc.Register(ctx, RegisterRequest{Email: "lin@example.com", Password: "x", Name: "Lin"})
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	existing := &repository.User{ID: "user-1", Email: "lin@example.com", Password: string(hashed)}

	t.Run("valid credentials", func(t *testing.T) {
		svc := NewAuthService(testConfig(), newFakeUserRepo(existing))

		user, access, refresh, err := svc.Login(ctx, "lin@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(testConfig(), newFakeUserRepo(existing))

		_, _, _, err := svc.Login(ctx, "lin@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewAuthService(testConfig(), newFakeUserRepo())

		_, _, _, err := svc.Login(ctx, "ghost@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	existing := &repository.User{ID: "user-1", Email: "lin@example.com", Password: string(hashed)}

	t.Run("rotates the refresh token", func(t *testing.T) {
		users := newFakeUserRepo(existing)
		svc := NewAuthService(testConfig(), users)

		_, _, refresh, err := svc.Login(ctx, "lin@example.com", "secret123")
		require.NoError(t, err)

		access, newRefresh, err := svc.RefreshToken(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEqual(t, refresh, newRefresh)

		// The old token is single-use
		_, _, err = svc.RefreshToken(ctx, refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		users := newFakeUserRepo(existing)
		users.tokens["stale"] = &repository.RefreshToken{
			Token:     "stale",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		svc := NewAuthService(testConfig(), users)

		_, _, err := svc.RefreshToken(ctx, "stale")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		svc := NewAuthService(testConfig(), newFakeUserRepo())

		_, _, err := svc.RefreshToken(ctx, "nope")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		users := newFakeUserRepo()
		issuer := NewAuthService(testConfig(), users)

		_, access, _, err := issuer.Register(context.Background(), RegisterRequest{
			Email: "lin@example.com", Password: "secret123", Name: "Lin",
		})
		require.NoError(t, err)

		otherCfg := testConfig()
		otherCfg.JWTSecret = "different-secret"
		verifier := NewAuthService(otherCfg, users)

		_, err = verifier.ValidateToken(access)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := NewAuthService(testConfig(), newFakeUserRepo())
		_, err := svc.ValidateToken("not-a-jwt")
		assert.Error(t, err)
	})
}
