package repository

import (
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// GameTx is a unit of work over one game. Reads come from a snapshot taken when the
// unit of work starts; writes are staged and applied together once the callback
// returns nil, or dropped when it returns an error.
type GameTx interface {
	Game() *entity.Game
	Boats(userID string) []entity.BoatCell
	HasMove(userID string, cell entity.Cell) bool
	LastMove(userID string) *entity.Move
	NextSequence() int64

	UpdateGame(game *entity.Game)
	UpdateBoatCell(cell entity.BoatCell)
	AppendMove(move *entity.Move)
}

type gameTx struct {
	game      *entity.Game
	boats     map[string][]entity.BoatCell
	moveCells map[string]map[entity.Cell]struct{}
	lastMoves map[string]*entity.Move
	sequence  int64

	gameChanged  bool
	changedCells []entity.BoatCell
	newMoves     []*entity.Move
}

func newGameTx(game *entity.Game, sequence int64) *gameTx {
	return &gameTx{
		game:      game,
		boats:     make(map[string][]entity.BoatCell),
		moveCells: make(map[string]map[entity.Cell]struct{}),
		lastMoves: make(map[string]*entity.Move),
		sequence:  sequence,
	}
}

func (that *gameTx) Game() *entity.Game {
	game := *that.game
	return &game
}

func (that *gameTx) Boats(userID string) []entity.BoatCell {
	cells := make([]entity.BoatCell, len(that.boats[userID]))
	copy(cells, that.boats[userID])
	return cells
}

func (that *gameTx) HasMove(userID string, cell entity.Cell) bool {
	_, ok := that.moveCells[userID][cell]
	return ok
}

func (that *gameTx) LastMove(userID string) *entity.Move {
	return that.lastMoves[userID]
}

func (that *gameTx) NextSequence() int64 {
	that.sequence++
	return that.sequence
}

func (that *gameTx) UpdateGame(game *entity.Game) {
	updated := *game
	that.game = &updated
	that.gameChanged = true
}

func (that *gameTx) UpdateBoatCell(cell entity.BoatCell) {
	cells := that.boats[cell.UserID]
	for i := range cells {
		if cells[i].Cell == cell.Cell {
			cells[i] = cell
			that.changedCells = append(that.changedCells, cell)
			return
		}
	}
}

func (that *gameTx) AppendMove(move *entity.Move) {
	that.newMoves = append(that.newMoves, move)
	that.lastMoves[move.UserID] = move
	that.addMoveCell(move.UserID, move.Cell)
}

func (that *gameTx) addMoveCell(userID string, cell entity.Cell) {
	if that.moveCells[userID] == nil {
		that.moveCells[userID] = make(map[entity.Cell]struct{})
	}
	that.moveCells[userID][cell] = struct{}{}
}

func (that *gameTx) hasWrites() bool {
	return that.gameChanged || len(that.changedCells) > 0 || len(that.newMoves) > 0
}
