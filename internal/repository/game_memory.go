package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type memoryGameRecord struct {
	mu sync.Mutex

	game      entity.Game
	boats     map[string][]entity.BoatCell
	moves     []*entity.Move
	moveCells map[string]map[entity.Cell]struct{}
	lastMoves map[string]*entity.Move
	sequence  int64
}

// memoryGame keeps games in process memory. mu guards the map only; a unit of
// work holds the record's own mutex, and the two are never held together.
type memoryGame struct {
	mu      sync.RWMutex
	records map[string]*memoryGameRecord

	pairsMu sync.Mutex
	pairs   map[string]string
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		records: make(map[string]*memoryGameRecord),
		pairs:   make(map[string]string),
	}
}

func (that *memoryGame) Create(_ context.Context, game *entity.Game, boats []entity.BoatCell) error {
	pair := entity.PairKey(game.User1ID, game.User2ID)

	that.pairsMu.Lock()
	if _, ok := that.pairs[pair]; ok {
		that.pairsMu.Unlock()
		return apperror.ErrGameInProgress
	}
	that.pairs[pair] = game.ID
	that.pairsMu.Unlock()

	record := &memoryGameRecord{
		game:      *game,
		boats:     make(map[string][]entity.BoatCell),
		moveCells: make(map[string]map[entity.Cell]struct{}),
		lastMoves: make(map[string]*entity.Move),
	}
	for _, cell := range boats {
		record.boats[cell.UserID] = append(record.boats[cell.UserID], cell)
	}

	that.mu.Lock()
	that.records[game.ID] = record
	that.mu.Unlock()

	return nil
}

func (that *memoryGame) record(id string) (*memoryGameRecord, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	record, ok := that.records[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return record, nil
}

func (that *memoryGame) snapshotRecords() []*memoryGameRecord {
	that.mu.RLock()
	defer that.mu.RUnlock()

	records := make([]*memoryGameRecord, 0, len(that.records))
	for _, record := range that.records {
		records = append(records, record)
	}

	return records
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	record, err := that.record(id)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	game := record.game
	return &game, nil
}

func (that *memoryGame) listGames(keep func(game *entity.Game) bool) []*entity.Game {
	games := make([]*entity.Game, 0)
	for _, record := range that.snapshotRecords() {
		record.mu.Lock()
		game := record.game
		record.mu.Unlock()

		if keep(&game) {
			games = append(games, &game)
		}
	}

	return games
}

func (that *memoryGame) ListInProgressByUser(_ context.Context, userID string) ([]*entity.Game, error) {
	games := that.listGames(func(game *entity.Game) bool {
		return game.IsInProgress() && game.HasPlayer(userID)
	})
	entity.SortGames(games)

	return games, nil
}

func (that *memoryGame) ListInProgress(_ context.Context) ([]*entity.Game, error) {
	games := that.listGames((*entity.Game).IsInProgress)
	entity.SortGames(games)

	return games, nil
}

func (that *memoryGame) ListFinished(_ context.Context) ([]*entity.Game, error) {
	return that.listGames((*entity.Game).IsFinished), nil
}

func (that *memoryGame) Moves(_ context.Context, gameID string) ([]*entity.Move, error) {
	record, err := that.record(gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	moves := make([]*entity.Move, 0, len(record.moves))
	for _, move := range record.moves {
		moves = append(moves, copyMove(move))
	}
	entity.SortMoves(moves)

	return moves, nil
}

func (that *memoryGame) LastMove(_ context.Context, gameID, userID string) (*entity.Move, error) {
	record, err := that.record(gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	return copyMove(record.lastMoves[userID]), nil
}

func (that *memoryGame) LastGameMove(_ context.Context, gameID string) (*entity.Move, error) {
	record, err := that.record(gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	if len(record.moves) == 0 {
		return nil, nil
	}

	return copyMove(record.moves[len(record.moves)-1]), nil
}

func (that *memoryGame) Boats(_ context.Context, gameID, userID string) ([]entity.BoatCell, error) {
	record, err := that.record(gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	cells := make([]entity.BoatCell, len(record.boats[userID]))
	copy(cells, record.boats[userID])
	entity.SortBoatCells(cells)

	return cells, nil
}

func (that *memoryGame) RunInTx(ctx context.Context, gameID string, fn func(tx GameTx) error) error {
	record, err := that.record(gameID)
	if err != nil {
		return err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	snapshot := newGameTx(&record.game, record.sequence)
	for userID, cells := range record.boats {
		snapshot.boats[userID] = append([]entity.BoatCell(nil), cells...)
	}
	for userID, cells := range record.moveCells {
		for cell := range cells {
			snapshot.addMoveCell(userID, cell)
		}
	}
	for userID, move := range record.lastMoves {
		snapshot.lastMoves[userID] = copyMove(move)
	}

	if err = fn(snapshot); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	that.apply(record, snapshot)

	return nil
}

// apply - commits the staged writes. The caller holds record.mu.
func (that *memoryGame) apply(record *memoryGameRecord, snapshot *gameTx) {
	if snapshot.gameChanged {
		record.game = *snapshot.game

		if !record.game.IsInProgress() {
			that.pairsMu.Lock()
			delete(that.pairs, entity.PairKey(record.game.User1ID, record.game.User2ID))
			that.pairsMu.Unlock()
		}
	}

	for _, cell := range snapshot.changedCells {
		cells := record.boats[cell.UserID]
		for i := range cells {
			if cells[i].Cell == cell.Cell {
				cells[i] = cell
			}
		}
	}

	for _, move := range snapshot.newMoves {
		stored := copyMove(move)
		record.moves = append(record.moves, stored)
		record.lastMoves[move.UserID] = stored

		if record.moveCells[move.UserID] == nil {
			record.moveCells[move.UserID] = make(map[entity.Cell]struct{})
		}
		record.moveCells[move.UserID][move.Cell] = struct{}{}
	}
	record.sequence = snapshot.sequence
}

func copyMove(move *entity.Move) *entity.Move {
	if move == nil {
		return nil
	}

	copied := *move
	return &copied
}
