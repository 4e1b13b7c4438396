package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
)

var errBadJSON = errors.New("request body is not valid JSON")

type userService interface {
	CreateUser(ctx context.Context, username, email string) (*entity.User, string, error)
}

type scoreService interface {
	UserScore(ctx context.Context, userID string) (string, error)
	RankingMessages(ctx context.Context) ([]string, error)
}

type gameManager interface {
	StartGame(ctx context.Context, user1ID, user2ID string) (*entity.Game, string, error)
	CancelGame(ctx context.Context, gameID string) (string, error)
	ListGamesInProgress(ctx context.Context, userID string) ([]*entity.Game, error)
	MakeMove(ctx context.Context, gameID, userID, row string, col int) (*usecase.MoveResult, error)
	GameHistory(ctx context.Context, gameID string) ([]*entity.Move, error)
	GameState(ctx context.Context, gameID string) ([2]string, error)
	UserBoats(ctx context.Context, gameID, userID string) ([]entity.BoatCell, error)
}

type reminderService interface {
	ScanAndNotify(ctx context.Context) (int, error)
}

type Handlers struct {
	logger *slog.Logger

	users     userService
	scores    scoreService
	games     gameManager
	reminders reminderService
}

func NewHandlers(logger *slog.Logger, users userService, scores scoreService, games gameManager, reminders reminderService) *Handlers {
	return &Handlers{
		logger:    logger.With("component", "rest"),
		users:     users,
		scores:    scores,
		games:     games,
		reminders: reminders,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, messageResponse{Message: "pong"})
}

func (that *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !that.decode(w, r, &req) {
		return
	}

	user, message, err := that.users.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		that.writeError(w, r, "CreateUser", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, createUserResponse{Message: message, User: toUserResponse(user)})
}

func (that *Handlers) UserGames(w http.ResponseWriter, r *http.Request) {
	games, err := that.games.ListGamesInProgress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		that.writeError(w, r, "UserGames", err)
		return
	}

	that.writeJSON(w, http.StatusOK, toGameResponses(games))
}

func (that *Handlers) UserScore(w http.ResponseWriter, r *http.Request) {
	message, err := that.scores.UserScore(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		that.writeError(w, r, "UserScore", err)
		return
	}

	that.writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (that *Handlers) Rankings(w http.ResponseWriter, r *http.Request) {
	messages, err := that.scores.RankingMessages(r.Context())
	if err != nil {
		that.writeError(w, r, "Rankings", err)
		return
	}

	that.writeJSON(w, http.StatusOK, messagesResponse{Messages: messages})
}

func (that *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if !that.decode(w, r, &req) {
		return
	}

	game, message, err := that.games.StartGame(r.Context(), req.User1ID, req.User2ID)
	if err != nil {
		that.writeError(w, r, "NewGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newGameResponse{Message: message, Game: toGameResponse(game)})
}

func (that *Handlers) CancelGame(w http.ResponseWriter, r *http.Request) {
	message, err := that.games.CancelGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, r, "CancelGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !that.decode(w, r, &req) {
		return
	}

	result, err := that.games.MakeMove(r.Context(), chi.URLParam(r, "gameID"), req.UserID, req.Row, req.Col)
	if err != nil {
		that.writeError(w, r, "MakeMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, toMakeMoveResponse(result))
}

func (that *Handlers) GameHistory(w http.ResponseWriter, r *http.Request) {
	moves, err := that.games.GameHistory(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, r, "GameHistory", err)
		return
	}

	that.writeJSON(w, http.StatusOK, toMoveResponses(moves))
}

func (that *Handlers) GameState(w http.ResponseWriter, r *http.Request) {
	state, err := that.games.GameState(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, r, "GameState", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameStateResponse{User1: state[0], User2: state[1]})
}

func (that *Handlers) UserBoats(w http.ResponseWriter, r *http.Request) {
	cells, err := that.games.UserBoats(r.Context(), chi.URLParam(r, "gameID"), chi.URLParam(r, "userID"))
	if err != nil {
		that.writeError(w, r, "UserBoats", err)
		return
	}

	that.writeJSON(w, http.StatusOK, toBoatResponses(cells))
}

func (that *Handlers) SendReminders(w http.ResponseWriter, r *http.Request) {
	queued, err := that.reminders.ScanAndNotify(r.Context())
	if err != nil {
		that.writeError(w, r, "SendReminders", err)
		return
	}

	that.writeJSON(w, http.StatusOK, remindersResponse{Queued: queued})
}

func (that *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%s: %s", errBadJSON, err)})
		return false
	}
	return true
}

// writeError - maps the error kind to a status code. Internal errors are logged
// and their details are not sent to the client.
func (that *Handlers) writeError(w http.ResponseWriter, r *http.Request, method string, err error) {
	log := that.logger.With("method", method, "path", r.URL.Path)

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		log.Debug("request rejected", "error", err)
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case apperror.KindConflict:
		log.Debug("request conflicts", "error", err)
		that.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.Error("request failed", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
