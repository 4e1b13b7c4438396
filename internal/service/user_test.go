package service

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a user with a generated id", func(t *testing.T) {
		svc := NewUserService(repository.NewMemoryUserRepository())

		user, message, err := svc.CreateUser(ctx, " alice ", "alice@example.com")

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice was successfully created!", message)

		stored, err := svc.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user, stored)
	})

	t.Run("Rejects a blank username", func(t *testing.T) {
		svc := NewUserService(repository.NewMemoryUserRepository())

		_, _, err := svc.CreateUser(ctx, "  ", "")

		require.ErrorIs(t, err, apperror.ErrBlankField)
	})

	t.Run("Rejects a taken username", func(t *testing.T) {
		svc := NewUserService(repository.NewMemoryUserRepository())

		_, _, err := svc.CreateUser(ctx, "alice", "")
		require.NoError(t, err)

		_, _, err = svc.CreateUser(ctx, "alice", "other@example.com")

		require.ErrorIs(t, err, apperror.ErrUserAlreadyExists)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})
}
