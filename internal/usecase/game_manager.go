package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

const MessageGameCreated = "Game was successfully created!"

// DefaultBoardRegenerations - how many times a board is generated again when a ship
// could not be placed.
const DefaultBoardRegenerations = 3

type userRepo interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game, boats []entity.BoatCell) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListInProgressByUser(ctx context.Context, userID string) ([]*entity.Game, error)
	Moves(ctx context.Context, gameID string) ([]*entity.Move, error)
	LastMove(ctx context.Context, gameID, userID string) (*entity.Move, error)
	Boats(ctx context.Context, gameID, userID string) ([]entity.BoatCell, error)
	RunInTx(ctx context.Context, gameID string, fn func(tx repository.GameTx) error) error
}

type GameManager struct {
	logger *slog.Logger

	userRepo userRepo
	gameRepo gameRepo

	rngMu         sync.Mutex
	rng           battleship.Rand
	regenerations int
}

func NewGameManager(logger *slog.Logger, userRepo userRepo, gameRepo gameRepo, rng battleship.Rand, regenerations int) *GameManager {
	if rng == nil {
		rng = battleship.DefaultRand
	}
	if regenerations < 0 {
		regenerations = 0
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		userRepo: userRepo,
		gameRepo: gameRepo,

		rng:           rng,
		regenerations: regenerations,
	}
}

// StartGame - creates a game between two distinct existing users together with both
// boards. At most one game per pair of users can be in progress.
func (that *GameManager) StartGame(ctx context.Context, user1ID, user2ID string) (*entity.Game, string, error) {
	log := that.logger.With("method", "StartGame")

	user1ID, user2ID = strings.TrimSpace(user1ID), strings.TrimSpace(user2ID)
	if user1ID == "" {
		return nil, "", fmt.Errorf("%w: user1", apperror.ErrBlankField)
	}
	if user2ID == "" {
		return nil, "", fmt.Errorf("%w: user2", apperror.ErrBlankField)
	}

	if _, err := that.getUser(ctx, user1ID); err != nil {
		return nil, "", err
	}
	if _, err := that.getUser(ctx, user2ID); err != nil {
		return nil, "", err
	}

	if user1ID == user2ID {
		return nil, "", apperror.ErrSameUsers
	}

	game := entity.NewGame(uuid.NewString(), user1ID, user2ID)

	boats := make([]entity.BoatCell, 0, 2*entity.TotalHits)
	for _, userID := range []string{user1ID, user2ID} {
		fleet, err := that.generateFleet(log, game.ID, userID)
		if err != nil {
			return nil, "", err
		}
		boats = append(boats, fleet.Cells...)
	}

	if err := that.gameRepo.Create(ctx, game, boats); err != nil {
		return nil, "", fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", game.ID, "user1_id", user1ID, "user2_id", user2ID)

	return game, MessageGameCreated, nil
}

func (that *GameManager) generateFleet(log *slog.Logger, gameID, userID string) (*battleship.Fleet, error) {
	that.rngMu.Lock()
	defer that.rngMu.Unlock()

	fleet := battleship.GenerateFleet(that.rng, gameID, userID)
	for attempt := 0; !fleet.Complete() && attempt < that.regenerations; attempt++ {
		log.Warn("fleet incomplete, generating the board again",
			"game_id", gameID, "user_id", userID, "missing", fmt.Sprint(fleet.Missing), "attempt", attempt+1)
		fleet = battleship.GenerateFleet(that.rng, gameID, userID)
	}

	if !fleet.Complete() {
		return nil, fmt.Errorf("%w: missing %v for user %s", apperror.ErrFleetIncomplete, fleet.Missing, userID)
	}

	return fleet, nil
}

// CancelGame - cancels a game in progress. Cancelling a finished or cancelled game
// is not an error; the message says why nothing changed.
func (that *GameManager) CancelGame(ctx context.Context, gameID string) (string, error) {
	log := that.logger.With("method", "CancelGame")

	if strings.TrimSpace(gameID) == "" {
		return "", fmt.Errorf("%w: game id", apperror.ErrBlankField)
	}

	var message string
	err := that.gameRepo.RunInTx(ctx, gameID, func(tx repository.GameTx) error {
		game := tx.Game()

		var changed bool
		message, changed = game.Cancel()
		if changed {
			tx.UpdateGame(game)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to cancel game %s: %w", gameID, err)
	}

	log.Info("cancel requested", "game_id", gameID, "result", message)

	return message, nil
}

// ListGamesInProgress - the user's games in progress ordered by participants.
func (that *GameManager) ListGamesInProgress(ctx context.Context, userID string) ([]*entity.Game, error) {
	if _, err := that.getUser(ctx, userID); err != nil {
		return nil, err
	}

	games, err := that.gameRepo.ListInProgressByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games of user %s: %w", userID, err)
	}

	return games, nil
}

// GameState - one summary line per participant, user1 first.
func (that *GameManager) GameState(ctx context.Context, gameID string) ([2]string, error) {
	var state [2]string

	game, err := that.getGame(ctx, gameID)
	if err != nil {
		return state, err
	}

	for i, userID := range []string{game.User1ID, game.User2ID} {
		user, err := that.getUser(ctx, userID)
		if err != nil {
			return state, err
		}

		last, err := that.gameRepo.LastMove(ctx, game.ID, userID)
		if err != nil {
			return state, fmt.Errorf("failed to get last move: %w", err)
		}

		state[i] = entity.StateSummary(user.Username, last)
	}

	return state, nil
}

// GameHistory - every move of the game in sequence order.
func (that *GameManager) GameHistory(ctx context.Context, gameID string) ([]*entity.Move, error) {
	if _, err := that.getGame(ctx, gameID); err != nil {
		return nil, err
	}

	moves, err := that.gameRepo.Moves(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	return moves, nil
}

// UserBoats - the user's own boat cells ordered by ship type, column and row.
func (that *GameManager) UserBoats(ctx context.Context, gameID, userID string) ([]entity.BoatCell, error) {
	game, err := that.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if _, err = that.getUser(ctx, userID); err != nil {
		return nil, err
	}

	if !game.HasPlayer(userID) {
		return nil, apperror.ErrUserNotInGame
	}

	cells, err := that.gameRepo.Boats(ctx, gameID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get boats: %w", err)
	}

	return cells, nil
}

func (that *GameManager) getGame(ctx context.Context, id string) (*entity.Game, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: game id", apperror.ErrBlankField)
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	return game, nil
}

func (that *GameManager) getUser(ctx context.Context, id string) (*entity.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user id", apperror.ErrBlankField)
	}

	user, err := that.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return user, nil
}
