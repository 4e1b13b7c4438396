package entity

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
	StatusCancelled  = "cancelled"
)

const (
	MessageGameCancelled        = "Game was successfully cancelled."
	MessageGameAlreadyCancelled = "Game is already cancelled."
	MessageGameAlreadyFinished  = "Game is already finished, cannot cancel."
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	Status    string    `json:"status"`
	WinnerID  string    `json:"winner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGame(id, user1ID, user2ID string) *Game {
	return &Game{
		ID:        id,
		User1ID:   user1ID,
		User2ID:   user2ID,
		Status:    StatusInProgress,
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsCancelled() bool {
	return that.Status == StatusCancelled
}

func (that *Game) HasPlayer(userID string) bool {
	return userID != "" && (that.User1ID == userID || that.User2ID == userID)
}

// Opponent - returns the other participant. The caller must check HasPlayer first.
func (that *Game) Opponent(userID string) string {
	if that.User1ID == userID {
		return that.User2ID
	}
	return that.User1ID
}

// ConfirmInProgress - returns an error unless moves can still be made.
func (that *Game) ConfirmInProgress() error {
	switch that.Status {
	case StatusInProgress:
		return nil
	case StatusFinished, StatusCancelled:
		return fmt.Errorf("%w: game is %s", apperror.ErrGameNotInProgress, that.Status)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// Finish - moves an in-progress game to finished with the given winner.
func (that *Game) Finish(winnerID string) error {
	if err := that.ConfirmInProgress(); err != nil {
		return err
	}

	that.Status = StatusFinished
	that.WinnerID = winnerID

	return nil
}

// Cancel - moves an in-progress game to cancelled. Terminal games are left untouched
// and the returned message says why; that is not an error.
func (that *Game) Cancel() (string, bool) {
	switch {
	case that.IsCancelled():
		return MessageGameAlreadyCancelled, false
	case that.IsFinished():
		return MessageGameAlreadyFinished, false
	default:
		that.Status = StatusCancelled
		return MessageGameCancelled, true
	}
}

// PairKey - identifies the unordered pair of participants.
func PairKey(user1ID, user2ID string) string {
	if user2ID < user1ID {
		user1ID, user2ID = user2ID, user1ID
	}
	return user1ID + ":" + user2ID
}

// SortGames - orders games by their pair of participant ids.
func SortGames(games []*Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].User1ID != games[j].User1ID {
			return games[i].User1ID < games[j].User1ID
		}
		return games[i].User2ID < games[j].User2ID
	})
}
