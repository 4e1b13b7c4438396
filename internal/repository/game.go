package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// maxTxRetries - how often a unit of work is replayed after a concurrent write.
const maxTxRetries = 20

var ErrTxConflict = errors.New("too many concurrent updates of the game")

type GameRepository interface {
	// Create stores a new game with both players' boats. It fails with
	// apperror.ErrGameInProgress when the pair already has a game in progress.
	Create(ctx context.Context, game *entity.Game, boats []entity.BoatCell) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)

	ListInProgressByUser(ctx context.Context, userID string) ([]*entity.Game, error)
	ListInProgress(ctx context.Context) ([]*entity.Game, error)
	ListFinished(ctx context.Context) ([]*entity.Game, error)

	Moves(ctx context.Context, gameID string) ([]*entity.Move, error)
	// LastMove returns nil without error when the user has not moved yet.
	LastMove(ctx context.Context, gameID, userID string) (*entity.Move, error)
	// LastGameMove returns nil without error when nobody has moved yet.
	LastGameMove(ctx context.Context, gameID string) (*entity.Move, error)
	Boats(ctx context.Context, gameID, userID string) ([]entity.BoatCell, error)

	RunInTx(ctx context.Context, gameID string, fn func(tx GameTx) error) error
}

// reader - the read commands shared by the client and a watched transaction.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

const (
	inProgressKey = "games:in_progress"
	finishedKey   = "games:finished"
)

func gameKey(id string) string { return "game:" + id }
func versionKey(id string) string { return "game:" + id + ":version" }
func sequenceKey(id string) string { return "game:" + id + ":seq" }
func movesKey(id string) string { return "game:" + id + ":moves" }
func boatsKey(id, userID string) string { return "game:" + id + ":boats:" + userID }
func moveCellsKey(id, userID string) string { return "game:" + id + ":cells:" + userID }
func lastMoveKey(id, userID string) string { return "game:" + id + ":last:" + userID }
func userGamesKey(userID string) string { return "user:" + userID + ":games" }
func pairKey(user1ID, user2ID string) string { return "pair:" + entity.PairKey(user1ID, user2ID) }

func (that *dbGame) Create(ctx context.Context, game *entity.Game, boats []entity.BoatCell) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	pair := pairKey(game.User1ID, game.User2ID)

	reserved, err := that.client.SetNX(ctx, pair, game.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve pair: %w", err)
	}
	if !reserved {
		return apperror.ErrGameInProgress
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
		for _, cell := range boats {
			cellJSON, err := json.Marshal(cell)
			if err != nil {
				return fmt.Errorf("could not marshal boat cell: %w", err)
			}
			pipe.HSet(ctx, boatsKey(game.ID, cell.UserID), cell.Key(), cellJSON)
		}
		pipe.SAdd(ctx, userGamesKey(game.User1ID), game.ID)
		pipe.SAdd(ctx, userGamesKey(game.User2ID), game.ID)
		pipe.SAdd(ctx, inProgressKey, game.ID)
		return nil
	})
	if err != nil {
		if delErr := that.client.Del(ctx, pair).Err(); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return getGame(ctx, that.client, id)
}

func getGame(ctx context.Context, cmd reader, id string) (*entity.Game, error) {
	response, err := cmd.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) ListInProgressByUser(ctx context.Context, userID string) ([]*entity.Game, error) {
	games, err := that.listFromSet(ctx, userGamesKey(userID))
	if err != nil {
		return nil, err
	}

	inProgress := games[:0]
	for _, game := range games {
		if game.IsInProgress() {
			inProgress = append(inProgress, game)
		}
	}
	entity.SortGames(inProgress)

	return inProgress, nil
}

func (that *dbGame) ListInProgress(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.listFromSet(ctx, inProgressKey)
	if err != nil {
		return nil, err
	}
	entity.SortGames(games)

	return games, nil
}

func (that *dbGame) ListFinished(ctx context.Context) ([]*entity.Game, error) {
	return that.listFromSet(ctx, finishedKey)
}

func (that *dbGame) listFromSet(ctx context.Context, setKey string) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}
	if len(ids) == 0 {
		return []*entity.Game{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	games := make([]*entity.Game, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}
		games = append(games, &game)
	}

	return games, nil
}

func (that *dbGame) Moves(ctx context.Context, gameID string) ([]*entity.Move, error) {
	values, err := that.client.LRange(ctx, movesKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	moves := make([]*entity.Move, 0, len(values))
	for _, value := range values {
		move, err := unmarshalMove(value)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	entity.SortMoves(moves)

	return moves, nil
}

func (that *dbGame) LastMove(ctx context.Context, gameID, userID string) (*entity.Move, error) {
	return getLastMove(ctx, that.client, gameID, userID)
}

func getLastMove(ctx context.Context, cmd reader, gameID, userID string) (*entity.Move, error) {
	value, err := cmd.Get(ctx, lastMoveKey(gameID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last move: %w", err)
	}

	return unmarshalMove(value)
}

func (that *dbGame) LastGameMove(ctx context.Context, gameID string) (*entity.Move, error) {
	value, err := that.client.LIndex(ctx, movesKey(gameID), -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last game move: %w", err)
	}

	return unmarshalMove(value)
}

func (that *dbGame) Boats(ctx context.Context, gameID, userID string) ([]entity.BoatCell, error) {
	cells, err := getBoats(ctx, that.client, gameID, userID)
	if err != nil {
		return nil, err
	}
	entity.SortBoatCells(cells)

	return cells, nil
}

func getBoats(ctx context.Context, cmd reader, gameID, userID string) ([]entity.BoatCell, error) {
	values, err := cmd.HGetAll(ctx, boatsKey(gameID, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get boats: %w", err)
	}

	cells := make([]entity.BoatCell, 0, len(values))
	for _, value := range values {
		var cell entity.BoatCell
		if err = json.Unmarshal([]byte(value), &cell); err != nil {
			return nil, fmt.Errorf("failed to unmarshal boat cell: %w", err)
		}
		cells = append(cells, cell)
	}

	return cells, nil
}

func unmarshalMove(value string) (*entity.Move, error) {
	var move entity.Move
	if err := json.Unmarshal([]byte(value), &move); err != nil {
		return nil, fmt.Errorf("failed to unmarshal move: %w", err)
	}
	return &move, nil
}

// RunInTx - optimistic transaction over the game's version key. Every committed
// unit of work bumps the version, so a concurrent commit makes EXEC fail and the
// callback is replayed against fresh data.
func (that *dbGame) RunInTx(ctx context.Context, gameID string, fn func(tx GameTx) error) error {
	txFn := func(tx *redis.Tx) error {
		snapshot, err := that.loadSnapshot(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if err = fn(snapshot); err != nil {
			return err
		}

		if !snapshot.hasWrites() {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return that.flush(ctx, pipe, snapshot)
		})
		return err
	}

	for range maxTxRetries {
		err := that.client.Watch(ctx, txFn, versionKey(gameID))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return ErrTxConflict
}

func (that *dbGame) loadSnapshot(ctx context.Context, tx *redis.Tx, gameID string) (*gameTx, error) {
	game, err := getGame(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}

	sequence, err := tx.Get(ctx, sequenceKey(gameID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get sequence: %w", err)
	}

	snapshot := newGameTx(game, sequence)

	for _, userID := range []string{game.User1ID, game.User2ID} {
		boats, err := getBoats(ctx, tx, gameID, userID)
		if err != nil {
			return nil, err
		}
		snapshot.boats[userID] = boats

		cellKeys, err := tx.SMembers(ctx, moveCellsKey(gameID, userID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get move cells: %w", err)
		}
		for _, key := range cellKeys {
			cell, err := parseCellKey(key)
			if err != nil {
				return nil, err
			}
			snapshot.addMoveCell(userID, cell)
		}

		last, err := getLastMove(ctx, tx, gameID, userID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			snapshot.lastMoves[userID] = last
		}
	}

	return snapshot, nil
}

func (that *dbGame) flush(ctx context.Context, pipe redis.Pipeliner, snapshot *gameTx) error {
	game := snapshot.game

	if snapshot.gameChanged {
		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)

		if !game.IsInProgress() {
			pipe.Del(ctx, pairKey(game.User1ID, game.User2ID))
			pipe.SRem(ctx, inProgressKey, game.ID)
		}
		if game.IsFinished() {
			pipe.SAdd(ctx, finishedKey, game.ID)
		}
	}

	for _, cell := range snapshot.changedCells {
		cellJSON, err := json.Marshal(cell)
		if err != nil {
			return fmt.Errorf("could not marshal boat cell: %w", err)
		}
		pipe.HSet(ctx, boatsKey(game.ID, cell.UserID), cell.Key(), cellJSON)
	}

	for _, move := range snapshot.newMoves {
		moveJSON, err := json.Marshal(move)
		if err != nil {
			return fmt.Errorf("could not marshal move: %w", err)
		}
		pipe.RPush(ctx, movesKey(game.ID), moveJSON)
		pipe.SAdd(ctx, moveCellsKey(game.ID, move.UserID), move.Key())
		pipe.Set(ctx, lastMoveKey(game.ID, move.UserID), moveJSON, 0)
	}
	if len(snapshot.newMoves) > 0 {
		pipe.Set(ctx, sequenceKey(game.ID), snapshot.sequence, 0)
	}

	pipe.Incr(ctx, versionKey(game.ID))

	return nil
}

func parseCellKey(key string) (entity.Cell, error) {
	if len(key) < 2 {
		return entity.Cell{}, fmt.Errorf("malformed cell key %q", key)
	}

	var col int
	if _, err := fmt.Sscanf(key[1:], "%d", &col); err != nil {
		return entity.Cell{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}

	return entity.NewCell(key[:1], col)
}
