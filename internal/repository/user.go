package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type UserRepository interface {
	// Save stores a new user. It fails with apperror.ErrUserAlreadyExists when the
	// username is taken.
	Save(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

type userRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (that *userRepository) Save(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, username, email) VALUES (?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query, user.ID, user.Username, user.Email)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperror.ErrUserAlreadyExists
		}
		return fmt.Errorf("can't save user: %w", err)
	}

	return nil
}

func (that *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, username, email FROM users WHERE id = ?`

	return that.findOne(ctx, query, id)
}

func (that *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT id, username, email FROM users WHERE username = ?`

	return that.findOne(ctx, query, username)
}

func (that *userRepository) findOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var user entity.User

	err := that.conn.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &user, nil
}

func (that *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT id, username, email FROM users ORDER BY username`

	rows, err := that.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("can't list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		var user entity.User
		if err = rows.Scan(&user.ID, &user.Username, &user.Email); err != nil {
			return nil, fmt.Errorf("can't scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't list users: %w", err)
	}

	return users, nil
}
