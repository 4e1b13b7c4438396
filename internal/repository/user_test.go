package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteUserRepo(t *testing.T) UserRepository {
	t.Helper()

	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	require.NoError(t, st.Init(context.Background()))

	return NewUserRepository(st.Connection)
}

func TestUserRepository_SQLite(t *testing.T) {
	runUserRepositoryTests(t, sqliteUserRepo)
}

func TestUserRepository_Memory(t *testing.T) {
	runUserRepositoryTests(t, func(*testing.T) UserRepository {
		return NewMemoryUserRepository()
	})
}

func runUserRepositoryTests(t *testing.T, newRepo func(t *testing.T) UserRepository) {
	ctx := context.Background()

	t.Run("Save_Get", func(t *testing.T) {
		repo := newRepo(t)

		// Given: a saved user
		user := &entity.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
		require.NoError(t, repo.Save(ctx, user))

		// When: looking it up by id and by username
		byID, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)

		// Then: both return the same user
		assert.Equal(t, user, byID)
		assert.Equal(t, user, byName)
	})

	t.Run("Save_DuplicateUsername", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Save(ctx, &entity.User{ID: "u1", Username: "alice"}))

		err := repo.Save(ctx, &entity.User{ID: "u2", Username: "alice"})

		require.ErrorIs(t, err, apperror.ErrUserAlreadyExists)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, apperror.ErrUserNotFound)

		_, err = repo.GetByUsername(ctx, "missing")
		require.ErrorIs(t, err, apperror.ErrUserNotFound)
	})

	t.Run("List_OrderedByUsername", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Save(ctx, &entity.User{ID: "u2", Username: "bob"}))
		require.NoError(t, repo.Save(ctx, &entity.User{ID: "u1", Username: "alice"}))

		users, err := repo.List(ctx)
		require.NoError(t, err)

		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})
}
