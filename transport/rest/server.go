package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	readTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
	idleTimeout    = 30 * time.Second
	handlerTimeout = 5 * time.Second
)

type Server struct {
	srv *http.Server
}

// NewRouter - registers every route on a chi router.
func NewRouter(handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(handlerTimeout))

	r.Get("/ping", handlers.Ping)

	r.Post("/users", handlers.CreateUser)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/games", handlers.UserGames)
		r.Get("/score", handlers.UserScore)
	})
	r.Get("/rankings", handlers.Rankings)

	r.Post("/games", handlers.NewGame)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Post("/cancel", handlers.CancelGame)
		r.Post("/moves", handlers.MakeMove)
		r.Get("/history", handlers.GameHistory)
		r.Get("/state", handlers.GameState)
		r.Get("/users/{userID}/boats", handlers.UserBoats)
	})

	r.Post("/tasks/reminders", handlers.SendReminders)

	return r
}

func NewServer(port string, handlers *Handlers) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(handlers),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
}

func (that *Server) Start() error {
	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
