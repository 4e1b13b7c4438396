package entity

import (
	"fmt"
	"sort"
)

type Score struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// Tally - counts wins and losses over finished games the user took part in.
// A finished game without the user as winner counts as a loss, including one
// with no winner recorded at all.
func (that *Score) Tally(userID string, games []*Game) {
	for _, game := range games {
		if !game.IsFinished() || !game.HasPlayer(userID) {
			continue
		}

		if game.WinnerID == userID {
			that.Wins++
		} else {
			that.Losses++
		}
	}
}

func (that Score) Played() bool {
	return that.Wins > 0 || that.Losses > 0
}

func (that Score) Message() string {
	return fmt.Sprintf("%s : Wins %d : Losses %d", that.Username, that.Wins, that.Losses)
}

// RankScores - sorts ascending by losses, then stably descending by wins, so users
// with equal wins stay ordered by fewer losses.
func RankScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Losses < scores[j].Losses
	})
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Wins > scores[j].Wins
	})
}
