package entity

import "sort"

// BoatCell is one occupied cell of a placed ship.
type BoatCell struct {
	GameID   string   `json:"game_id"`
	UserID   string   `json:"user_id"`
	ShipType ShipType `json:"boat_type"`
	Cell
	Hit bool `json:"hit"`
}

// SortBoatCells - orders cells by ship type, then column, then row.
func SortBoatCells(cells []BoatCell) {
	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.ShipType != b.ShipType {
			return a.ShipType < b.ShipType
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.RowIndex() < b.RowIndex()
	})
}

// ShipSunk - reports whether every cell of the ship type is hit.
func ShipSunk(cells []BoatCell, shipType ShipType) bool {
	hits := 0
	for _, cell := range cells {
		if cell.ShipType == shipType && cell.Hit {
			hits++
		}
	}

	return hits == shipType.Hits()
}

// FleetSunk - reports whether the total number of hit cells reached TotalHits.
func FleetSunk(cells []BoatCell) bool {
	hits := 0
	for _, cell := range cells {
		if cell.Hit {
			hits++
		}
	}

	return hits == TotalHits
}
