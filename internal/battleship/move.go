package battleship

import (
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const (
	MessageDuplicate = "already made that move"
	MessageMiss      = "miss"
	MessageHit       = "hit"
	MessageWon       = "you won"
)

// Shot is everything needed to resolve one move against the opponent's fleet.
type Shot struct {
	Target entity.Cell
	// Previous - counters from the mover's last move in the game.
	Previous  entity.Tally
	Duplicate bool
	// Fleet - the opponent's boat cells. A hit is marked on it in place.
	Fleet []entity.BoatCell
}

type Resolution struct {
	Outcome entity.Outcome
	Tally   entity.Tally
	Message string
	// HitCell points into Shot.Fleet when the shot hit a boat.
	HitCell *entity.BoatCell
	Sunk    bool
	Won     bool
}

// SunkMessage - names the ship that just went down.
func SunkMessage(shipType entity.ShipType) string {
	return "hit - you sank the " + shipType.String()
}

// Resolve - decides the outcome of a shot and the mover's new counters.
// The last hit of the fleet wins the game and is not counted as a sunk ship.
func Resolve(shot Shot) Resolution {
	res := Resolution{Tally: shot.Previous}

	if shot.Duplicate {
		res.Outcome = entity.OutcomeDuplicate
		res.Message = MessageDuplicate
		return res
	}

	target := findCell(shot.Fleet, shot.Target)
	if target == nil {
		res.Outcome = entity.OutcomeMiss
		res.Tally.Misses++
		res.Message = MessageMiss
		return res
	}

	target.Hit = true
	res.HitCell = target
	res.Outcome = entity.OutcomeHit
	res.Tally.Hits++
	res.Message = MessageHit

	if !entity.ShipSunk(shot.Fleet, target.ShipType) {
		return res
	}

	if entity.FleetSunk(shot.Fleet) {
		res.Won = true
		res.Message = MessageWon
		return res
	}

	res.Sunk = true
	res.Tally.Sunk++
	res.Message = SunkMessage(target.ShipType)

	return res
}

func findCell(fleet []entity.BoatCell, target entity.Cell) *entity.BoatCell {
	for i := range fleet {
		if fleet[i].Cell == target {
			return &fleet[i]
		}
	}
	return nil
}
