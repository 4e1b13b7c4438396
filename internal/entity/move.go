package entity

import (
	"fmt"
	"sort"
	"time"
)

type Outcome int

const (
	OutcomeMiss Outcome = iota
	OutcomeHit
	OutcomeDuplicate
)

func (that Outcome) String() string {
	switch that {
	case OutcomeMiss:
		return "Miss"
	case OutcomeHit:
		return "Hit"
	case OutcomeDuplicate:
		return "Duplicate"
	default:
		return fmt.Sprintf("Outcome(%d)", int(that))
	}
}

// Tally holds the cumulative counters carried from move to move.
type Tally struct {
	Hits   int `json:"hits"`
	Misses int `json:"miss"`
	Sunk   int `json:"sunk"`
}

type Move struct {
	GameID   string  `json:"game_id"`
	UserID   string  `json:"user_id"`
	Sequence int64   `json:"sequence"`
	Outcome  Outcome `json:"status"`
	Cell
	Tally
	CreatedAt time.Time `json:"created_at"`
}

// SortMoves - orders moves by sequence number.
func SortMoves(moves []*Move) {
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].Sequence < moves[j].Sequence
	})
}

// StateSummary - renders a player's counters for the game state view.
func StateSummary(username string, last *Move) string {
	if last == nil {
		return username + " has not made any moves yet."
	}

	return fmt.Sprintf("User %s : Hits %d : Miss %d : Sunk %d", username, last.Hits, last.Misses, last.Sunk)
}
