package battleship

import (
	"math/rand"
	"sort"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// PlacementAttempts - how many random lines are tried for one ship before it is skipped.
const PlacementAttempts = 6

const (
	horizontal = 0
	vertical   = 1
)

// Rand is the source of randomness used for placement.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n) //nolint: gosec // board layout does not need a secure source
}

// DefaultRand - goroutine-safe source backed by math/rand's global generator.
var DefaultRand Rand = globalRand{}

// Fleet is the result of placing every ship type for one player.
type Fleet struct {
	Cells   []entity.BoatCell
	Missing []entity.ShipType
}

// Complete - reports whether all ship types were placed.
func (that *Fleet) Complete() bool {
	return len(that.Missing) == 0
}

// position is a 1-based (row, col) pair on the board.
type position [2]int

// GenerateFleet - places every ship type in order on an empty board.
// A ship that does not fit after PlacementAttempts is recorded in Fleet.Missing.
func GenerateFleet(rng Rand, gameID, userID string) *Fleet {
	pool := newPool()
	fleet := &Fleet{}

	for _, shipType := range entity.ShipTypes {
		cells, ok := placeShip(rng, &pool, shipType)
		if !ok {
			fleet.Missing = append(fleet.Missing, shipType)
			continue
		}

		for _, pos := range cells {
			fleet.Cells = append(fleet.Cells, entity.BoatCell{
				GameID:   gameID,
				UserID:   userID,
				ShipType: shipType,
				Cell:     entity.Cell{Row: entity.RowLetter(pos[0]), Col: pos[1]},
			})
		}
	}

	return fleet
}

func newPool() []position {
	pool := make([]position, 0, entity.BoardSize*entity.BoardSize)
	for row := 1; row <= entity.BoardSize; row++ {
		for col := 1; col <= entity.BoardSize; col++ {
			pool = append(pool, position{row, col})
		}
	}

	return pool
}

// placeShip - picks a random line, finds the first free run long enough for the ship
// and takes its leading cells. The chosen cells are removed from the pool.
func placeShip(rng Rand, pool *[]position, shipType entity.ShipType) ([]position, bool) {
	size := shipType.Hits()

	for range PlacementAttempts {
		direction := rng.Intn(2)
		// a horizontal ship stays on one row and extends along columns, and vice versa
		fixedAxis, freeAxis := 0, 1
		if direction == vertical {
			fixedAxis, freeAxis = 1, 0
		}
		line := rng.Intn(entity.BoardSize) + 1

		var available []int
		for _, pos := range *pool {
			if pos[fixedAxis] == line {
				available = append(available, pos[freeAxis])
			}
		}
		sort.Ints(available)

		run := firstRun(available, size)
		if run == nil {
			continue
		}

		placed := make([]position, 0, size)
		for _, offset := range run[:size] {
			var pos position
			pos[fixedAxis] = line
			pos[freeAxis] = offset
			placed = append(placed, pos)
		}
		removeFromPool(pool, placed)

		return placed, true
	}

	return nil, false
}

// firstRun - splits sorted values into runs of consecutive integers and returns the
// first run with at least size elements.
func firstRun(sorted []int, size int) []int {
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1]+1 {
			continue
		}

		if i-start >= size {
			return sorted[start:i]
		}
		start = i
	}

	return nil
}

func removeFromPool(pool *[]position, taken []position) {
	used := make(map[position]struct{}, len(taken))
	for _, pos := range taken {
		used[pos] = struct{}{}
	}

	kept := (*pool)[:0]
	for _, pos := range *pool {
		if _, ok := used[pos]; !ok {
			kept = append(kept, pos)
		}
	}
	*pool = kept
}
