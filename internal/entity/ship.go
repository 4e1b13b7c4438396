package entity

import "fmt"

type ShipType int

const (
	Carrier ShipType = iota
	Battleship
	Submarine
	Destroyer
	Patrol
)

// TotalHits - number of cells occupied by a complete fleet.
const TotalHits = 17

// ShipTypes - every ship type in placement order.
var ShipTypes = []ShipType{Carrier, Battleship, Submarine, Destroyer, Patrol}

var shipHits = map[ShipType]int{
	Carrier:    5,
	Battleship: 4,
	Submarine:  3,
	Destroyer:  3,
	Patrol:     2,
}

var shipNames = map[ShipType]string{
	Carrier:    "Carrier",
	Battleship: "Battleship",
	Submarine:  "Submarine",
	Destroyer:  "Destroyer",
	Patrol:     "Patrol",
}

// Hits - number of cells the ship occupies, which is also the number of hits that sink it.
func (that ShipType) Hits() int {
	return shipHits[that]
}

func (that ShipType) String() string {
	if name, ok := shipNames[that]; ok {
		return name
	}

	return fmt.Sprintf("ShipType(%d)", int(that))
}
