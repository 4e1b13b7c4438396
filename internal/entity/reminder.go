package entity

import "fmt"

// Reminder asks a player to come back to a game waiting for their move.
type Reminder struct {
	GameID   string `json:"game_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// Sequence of the game's last move when the reminder was raised, 0 before any move.
	Sequence int64 `json:"sequence"`
}

// DedupeKey - a reminder is sent at most once per game position and user.
func (that Reminder) DedupeKey() string {
	return fmt.Sprintf("%s:%d:%s", that.GameID, that.Sequence, that.UserID)
}
