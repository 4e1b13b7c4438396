package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/battleship-backend/internal/battleship"
	"github.com/rocketscienceinc/battleship-backend/internal/config"
	"github.com/rocketscienceinc/battleship-backend/internal/repository"
	"github.com/rocketscienceinc/battleship-backend/internal/repository/storage"
	"github.com/rocketscienceinc/battleship-backend/internal/service"
	redisqueue "github.com/rocketscienceinc/battleship-backend/internal/transport/redis"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
	"github.com/rocketscienceinc/battleship-backend/transport/rest"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}
	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	userRepo := repository.NewUserRepository(sqliteStorage.Connection)

	var (
		gameRepo repository.GameRepository
		queue    service.ReminderQueue
	)

	switch conf.StorageDriver {
	case config.StorageMemory:
		log.Warn("games are kept in memory and lost on restart")
		gameRepo = repository.NewMemoryGameRepository()
		queue = service.NewMemoryReminderQueue()
	default:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}
		defer func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		gameRepo = repository.NewGameRepository(redisStorage)
		queue = redisqueue.New(redisStorage, conf.Reminders.DedupeTTL)
	}

	userService := service.NewUserService(userRepo)
	scoreService := service.NewScoreService(userRepo, gameRepo)
	reminderService := service.NewReminderService(logger, gameRepo, userRepo, queue)
	gameManager := usecase.NewGameManager(logger, userRepo, gameRepo, battleship.DefaultRand, conf.BoardRegenerations)

	handlers := rest.NewHandlers(logger, userService, scoreService, gameManager, reminderService)
	httpServer := rest.NewServer(conf.HTTPPort, handlers)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := httpServer.Start(); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	if conf.Reminders.Interval > 0 {
		go runReminders(ctx, log, reminderService, conf.Reminders.Interval)
	}

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// runReminders - periodic ScanAndNotify until ctx is done.
func runReminders(ctx context.Context, log *slog.Logger, reminders service.ReminderService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := reminders.ScanAndNotify(ctx); err != nil {
				log.Error("reminder scan failed", "error", err)
			}
		}
	}
}
