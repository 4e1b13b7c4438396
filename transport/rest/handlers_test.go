package rest

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocketscienceinc/battleship-backend/internal/repository"
	"github.com/rocketscienceinc/battleship-backend/internal/service"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
	"github.com/rocketscienceinc/battleship-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := suite.NewLogger()
	users := repository.NewMemoryUserRepository()
	games := repository.NewMemoryGameRepository()

	handlers := NewHandlers(
		logger,
		service.NewUserService(users),
		service.NewScoreService(users, games),
		usecase.NewGameManager(logger, users, games, rand.New(rand.NewSource(3)), usecase.DefaultBoardRegenerations), //nolint: gosec // test
		service.NewReminderService(logger, games, users, service.NewMemoryReminderQueue()),
	)

	srv := httptest.NewServer(NewRouter(handlers))
	t.Cleanup(srv.Close)

	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func createUser(t *testing.T, srv *httptest.Server, username, email string) userResponse {
	t.Helper()

	var created createUserResponse
	status := doJSON(t, srv, http.MethodPost, "/users", createUserRequest{Username: username, Email: email}, &created)
	require.Equal(t, http.StatusCreated, status)

	return created.User
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	var body messageResponse
	status := doJSON(t, srv, http.MethodGet, "/ping", nil, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body.Message)
}

func TestUsers(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Create", func(t *testing.T) {
		var created createUserResponse
		status := doJSON(t, srv, http.MethodPost, "/users", createUserRequest{Username: "alice"}, &created)

		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "alice was successfully created!", created.Message)
		assert.NotEmpty(t, created.User.ID)
	})

	t.Run("Duplicate username is a conflict", func(t *testing.T) {
		var body errorResponse
		status := doJSON(t, srv, http.MethodPost, "/users", createUserRequest{Username: "alice"}, &body)

		assert.Equal(t, http.StatusConflict, status)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("Blank username is rejected", func(t *testing.T) {
		status := doJSON(t, srv, http.MethodPost, "/users", createUserRequest{}, &errorResponse{})

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Malformed body is rejected", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/users", bytes.NewBufferString("{"))
		require.NoError(t, err)

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGameFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := createUser(t, srv, "alice", "alice@example.com")
	bob := createUser(t, srv, "bob", "bob@example.com")

	// Given: a new game between alice and bob
	var created newGameResponse
	status := doJSON(t, srv, http.MethodPost, "/games", newGameRequest{User1ID: alice.ID, User2ID: bob.ID}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, usecase.MessageGameCreated, created.Message)
	gameID := created.Game.ID

	t.Run("Second game for the pair conflicts", func(t *testing.T) {
		status := doJSON(t, srv, http.MethodPost, "/games", newGameRequest{User1ID: bob.ID, User2ID: alice.ID}, &errorResponse{})

		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("Each player has 17 boat cells", func(t *testing.T) {
		var boats []boatResponse
		status := doJSON(t, srv, http.MethodGet, "/games/"+gameID+"/users/"+bob.ID+"/boats", nil, &boats)

		require.Equal(t, http.StatusOK, status)
		assert.Len(t, boats, 17)
		assert.Equal(t, "Carrier", boats[0].BoatType)
	})

	t.Run("Invalid row is rejected", func(t *testing.T) {
		var body errorResponse
		status := doJSON(t, srv, http.MethodPost, "/games/"+gameID+"/moves", moveRequest{UserID: alice.ID, Row: "K", Col: 1}, &body)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, body.Error, "row")
	})

	t.Run("Move is recorded with sequence 1", func(t *testing.T) {
		var result makeMoveResponse
		status := doJSON(t, srv, http.MethodPost, "/games/"+gameID+"/moves", moveRequest{UserID: alice.ID, Row: "a", Col: 1}, &result)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(1), result.Move.Sequence)
		assert.Equal(t, "A", result.Move.Row)
		assert.Contains(t, []string{"Hit", "Miss"}, result.Move.Status)
		assert.Equal(t, "in_progress", result.GameStatus)

		var history []moveResponse
		status = doJSON(t, srv, http.MethodGet, "/games/"+gameID+"/history", nil, &history)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, history, 1)
	})

	t.Run("State lists both players", func(t *testing.T) {
		var state gameStateResponse
		status := doJSON(t, srv, http.MethodGet, "/games/"+gameID+"/state", nil, &state)

		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, state.User1, "User alice")
		assert.Equal(t, "bob has not made any moves yet.", state.User2)
	})

	t.Run("Games in progress", func(t *testing.T) {
		var games []gameResponse
		status := doJSON(t, srv, http.MethodGet, "/users/"+bob.ID+"/games", nil, &games)

		require.Equal(t, http.StatusOK, status)
		require.Len(t, games, 1)
		assert.Equal(t, gameID, games[0].ID)
	})

	t.Run("Reminders go to the waiting player once", func(t *testing.T) {
		var first, second remindersResponse
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/tasks/reminders", nil, &first))
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/tasks/reminders", nil, &second))

		assert.Equal(t, 1, first.Queued)
		assert.Zero(t, second.Queued)
	})

	t.Run("Cancel then cancel again", func(t *testing.T) {
		var first, second messageResponse
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/games/"+gameID+"/cancel", nil, &first))
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, "/games/"+gameID+"/cancel", nil, &second))

		assert.Equal(t, "Game was successfully cancelled.", first.Message)
		assert.Equal(t, "Game is already cancelled.", second.Message)

		status := doJSON(t, srv, http.MethodPost, "/games/"+gameID+"/moves", moveRequest{UserID: alice.ID, Row: "B", Col: 2}, &errorResponse{})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Scores and rankings", func(t *testing.T) {
		var score messageResponse
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/users/"+alice.ID+"/score", nil, &score))
		assert.Equal(t, "alice : Wins 0 : Losses 0", score.Message)

		var rankings messagesResponse
		require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/rankings", nil, &rankings))
		assert.Empty(t, rankings.Messages)

		status := doJSON(t, srv, http.MethodGet, "/users/nobody/score", nil, &errorResponse{})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
