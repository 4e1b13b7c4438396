package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const (
	BoardSize = 10

	boardRows = "ABCDEFGHIJ"
)

// Cell is a board coordinate. Row is an uppercase letter A-J, Col is 1-10.
type Cell struct {
	Row string `json:"row"`
	Col int    `json:"col"`
}

// NewCell - validates a raw row/col pair. The row is case-insensitive.
func NewCell(row string, col int) (Cell, error) {
	normalized, err := ParseRow(row)
	if err != nil {
		return Cell{}, err
	}

	if col < 1 || col > BoardSize {
		return Cell{}, fmt.Errorf("%w: got %d", apperror.ErrInvalidCol, col)
	}

	return Cell{Row: normalized, Col: col}, nil
}

// ParseRow - normalizes the row to uppercase and checks it is on the board.
func ParseRow(row string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(row))
	if len(normalized) != 1 || !strings.Contains(boardRows, normalized) {
		return "", fmt.Errorf("%w: got %q", apperror.ErrInvalidRow, row)
	}

	return normalized, nil
}

// RowLetter - maps a 1-based row index to its letter.
func RowLetter(index int) string {
	return boardRows[index-1 : index]
}

// RowIndex - 1-based index of the cell's row.
func (that Cell) RowIndex() int {
	return strings.Index(boardRows, that.Row) + 1
}

// Key - compact form used as a map or hash field key, e.g. "A10".
func (that Cell) Key() string {
	return fmt.Sprintf("%s%d", that.Row, that.Col)
}

func (that Cell) String() string {
	return that.Key()
}
