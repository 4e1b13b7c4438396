package rest

import (
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type newGameRequest struct {
	User1ID string `json:"user1_id"`
	User2ID string `json:"user2_id"`
}

type moveRequest struct {
	UserID string `json:"user_id"`
	Row    string `json:"row"`
	Col    int    `json:"col"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type createUserResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type gameResponse struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	Status    string    `json:"status"`
	WinnerID  string    `json:"winner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type newGameResponse struct {
	Message string       `json:"message"`
	Game    gameResponse `json:"game"`
}

type moveResponse struct {
	Sequence int64  `json:"sequence"`
	UserID   string `json:"user_id"`
	Row      string `json:"row"`
	Col      int    `json:"col"`
	Status   string `json:"status"`
	Hits     int    `json:"hits"`
	Miss     int    `json:"miss"`
	Sunk     int    `json:"sunk"`
}

type makeMoveResponse struct {
	Message    string       `json:"message"`
	Move       moveResponse `json:"move"`
	GameStatus string       `json:"game_status"`
}

type boatResponse struct {
	BoatType string `json:"boat_type"`
	Row      string `json:"row"`
	Col      int    `json:"col"`
	Hit      bool   `json:"hit"`
}

type gameStateResponse struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type messagesResponse struct {
	Messages []string `json:"messages"`
}

type remindersResponse struct {
	Queued int `json:"queued"`
}

func toUserResponse(user *entity.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func toGameResponse(game *entity.Game) gameResponse {
	return gameResponse{
		ID:        game.ID,
		User1ID:   game.User1ID,
		User2ID:   game.User2ID,
		Status:    game.Status,
		WinnerID:  game.WinnerID,
		CreatedAt: game.CreatedAt,
	}
}

func toGameResponses(games []*entity.Game) []gameResponse {
	out := make([]gameResponse, 0, len(games))
	for _, game := range games {
		out = append(out, toGameResponse(game))
	}
	return out
}

func toMoveResponse(move *entity.Move) moveResponse {
	return moveResponse{
		Sequence: move.Sequence,
		UserID:   move.UserID,
		Row:      move.Row,
		Col:      move.Col,
		Status:   move.Outcome.String(),
		Hits:     move.Hits,
		Miss:     move.Misses,
		Sunk:     move.Sunk,
	}
}

func toMoveResponses(moves []*entity.Move) []moveResponse {
	out := make([]moveResponse, 0, len(moves))
	for _, move := range moves {
		out = append(out, toMoveResponse(move))
	}
	return out
}

func toMakeMoveResponse(result *usecase.MoveResult) makeMoveResponse {
	return makeMoveResponse{
		Message:    result.Message,
		Move:       toMoveResponse(result.Move),
		GameStatus: result.Game.Status,
	}
}

func toBoatResponses(cells []entity.BoatCell) []boatResponse {
	out := make([]boatResponse, 0, len(cells))
	for _, cell := range cells {
		out = append(out, boatResponse{
			BoatType: cell.ShipType.String(),
			Row:      cell.Row,
			Col:      cell.Col,
			Hit:      cell.Hit,
		})
	}
	return out
}
