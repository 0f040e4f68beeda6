package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
)

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	alice := userRepo.add(&domain.UserProfile{Email: "alice@example.com", Name: "Alice"})
	svc := NewUserService(userRepo, testTimeout)

	t.Run("found", func(t *testing.T) {
		user, err := svc.GetProfile(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, "user-missing")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	alice := userRepo.add(&domain.UserProfile{Email: "alice@example.com", Name: "Alice"})
	svc := NewUserService(userRepo, testTimeout)

	prefs := []string{"sports", "music"}
	dist := 25.0
	user, err := svc.UpdateProfile(ctx, alice.ID, domain.UserProfileUpdate{
		Preferences:   &prefs,
		MaxDistanceKm: &dist,
	})
	require.NoError(t, err)
	assert.Equal(t, prefs, user.Preferences)
	require.NotNil(t, user.MaxDistanceKm)
	assert.Equal(t, 25.0, *user.MaxDistanceKm)

	_, err = svc.UpdateProfile(ctx, "user-missing", domain.UserProfileUpdate{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
