package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
)

type MoveResult struct {
	Move    *entity.Move
	Message string
	// Game is the game after the move; finished when the move won it.
	Game *entity.Game
}

// MakeMove - validates and resolves one shot of userID at the opponent's board.
// Duplicate detection, hit marking, the win check and the move record are applied
// in a single unit of work on the game.
func (that *GameManager) MakeMove(ctx context.Context, gameID, userID, row string, col int) (*MoveResult, error) {
	log := that.logger.With("method", "MakeMove")

	target, err := entity.NewCell(row, col)
	if err != nil {
		return nil, err
	}

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

	var result *MoveResult
	err = that.gameRepo.RunInTx(ctx, gameID, func(tx repository.GameTx) error {
		current := tx.Game()
		if err := current.ConfirmInProgress(); err != nil {
			return err
		}

		shot := battleship.Shot{
			Target:    target,
			Duplicate: tx.HasMove(userID, target),
			Fleet:     tx.Boats(current.Opponent(userID)),
		}
		if last := tx.LastMove(userID); last != nil {
			shot.Previous = last.Tally
		}

		res := battleship.Resolve(shot)

		if res.HitCell != nil {
			tx.UpdateBoatCell(*res.HitCell)
		}

		if res.Won {
			if err := current.Finish(userID); err != nil {
				return err
			}
			tx.UpdateGame(current)
		}

		move := &entity.Move{
			GameID:    current.ID,
			UserID:    userID,
			Sequence:  tx.NextSequence(),
			Outcome:   res.Outcome,
			Cell:      target,
			Tally:     res.Tally,
			CreatedAt: time.Now().UTC(),
		}
		tx.AppendMove(move)

		result = &MoveResult{
			Move:    move,
			Message: res.Message,
			Game:    current,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move in game %s: %w", gameID, err)
	}

	log.Debug("move made", "game_id", gameID, "user_id", userID, "cell", target.Key(),
		"outcome", result.Move.Outcome.String(), "sequence", result.Move.Sequence)

	if result.Game.IsFinished() {
		log.Info("game finished", "game_id", gameID, "winner_id", userID)
	}

	return result, nil
}
