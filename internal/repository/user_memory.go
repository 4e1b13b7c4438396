package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type memoryUser struct {
	mu         sync.RWMutex
	byID       map[string]entity.User
	byUsername map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUser{
		byID:       make(map[string]entity.User),
		byUsername: make(map[string]string),
	}
}

func (that *memoryUser) Save(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.byUsername[user.Username]; ok {
		return apperror.ErrUserAlreadyExists
	}

	that.byID[user.ID] = *user
	that.byUsername[user.Username] = user.ID

	return nil
}

func (that *memoryUser) GetByID(_ context.Context, id string) (*entity.User, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	user, ok := that.byID[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}

	return &user, nil
}

func (that *memoryUser) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	that.mu.RLock()
	id, ok := that.byUsername[username]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrUserNotFound
	}

	return that.GetByID(ctx, id)
}

func (that *memoryUser) List(_ context.Context) ([]*entity.User, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	users := make([]*entity.User, 0, len(that.byID))
	for _, user := range that.byID {
		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	return users, nil
}
