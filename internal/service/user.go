package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type UserService interface {
	// CreateUser - registers a user with a unique username and returns the
	// confirmation message.
	CreateUser(ctx context.Context, username, email string) (*entity.User, string, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type userService struct {
	userRepo userRepo
}

func NewUserService(userRepo userRepo) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (that *userService) CreateUser(ctx context.Context, username, email string) (*entity.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", fmt.Errorf("%w: username", apperror.ErrBlankField)
	}

	user := &entity.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    strings.TrimSpace(email),
	}

	if err := that.userRepo.Save(ctx, user); err != nil {
		return nil, "", fmt.Errorf("could not save user %s: %w", username, err)
	}

	return user, username + " was successfully created!", nil
}

func (that *userService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user id", apperror.ErrBlankField)
	}

	user, err := that.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user %s: %w", id, err)
	}

	return user, nil
}

func (that *userService) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := that.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("could not get user by username: %w", err)
	}

	return user, nil
}
