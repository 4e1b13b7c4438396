package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type ReminderService interface {
	// ScanAndNotify - enqueues a reminder for every player an in-progress game is
	// waiting on and returns how many new reminders were queued.
	ScanAndNotify(ctx context.Context) (int, error)
}

// ReminderQueue hands reminders to mail delivery. Enqueue reports false when the
// same reminder was already queued.
type ReminderQueue interface {
	Enqueue(ctx context.Context, reminder entity.Reminder) (bool, error)
}

type reminderGameRepo interface {
	ListInProgress(ctx context.Context) ([]*entity.Game, error)
	LastGameMove(ctx context.Context, gameID string) (*entity.Move, error)
}

type reminderUserRepo interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type reminderService struct {
	logger *slog.Logger

	gameRepo reminderGameRepo
	userRepo reminderUserRepo
	queue    ReminderQueue
}

func NewReminderService(logger *slog.Logger, gameRepo reminderGameRepo, userRepo reminderUserRepo, queue ReminderQueue) ReminderService {
	return &reminderService{
		logger:   logger.With("component", "reminder"),
		gameRepo: gameRepo,
		userRepo: userRepo,
		queue:    queue,
	}
}

func (that *reminderService) ScanAndNotify(ctx context.Context) (int, error) {
	log := that.logger.With("method", "ScanAndNotify")

	games, err := that.gameRepo.ListInProgress(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not list games in progress: %w", err)
	}

	queued := 0
	for _, game := range games {
		last, err := that.gameRepo.LastGameMove(ctx, game.ID)
		if err != nil {
			return queued, fmt.Errorf("could not get last move of game %s: %w", game.ID, err)
		}

		var sequence int64
		waitingOn := []string{game.User1ID, game.User2ID}
		if last != nil {
			sequence = last.Sequence
			waitingOn = []string{game.Opponent(last.UserID)}
		}

		for _, userID := range waitingOn {
			user, err := that.userRepo.GetByID(ctx, userID)
			if err != nil {
				return queued, fmt.Errorf("could not get user %s: %w", userID, err)
			}

			if user.Email == "" {
				log.Debug("user has no email, skipping reminder", "game_id", game.ID, "user_id", userID)
				continue
			}

			ok, err := that.queue.Enqueue(ctx, entity.Reminder{
				GameID:   game.ID,
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				Sequence: sequence,
			})
			if err != nil {
				return queued, fmt.Errorf("could not enqueue reminder: %w", err)
			}
			if ok {
				queued++
			}
		}
	}

	log.Info("reminders enqueued", "games", len(games), "queued", queued)

	return queued, nil
}

type memoryQueue struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	reminders []entity.Reminder
}

// NewMemoryReminderQueue - a process-local queue for running without Redis.
func NewMemoryReminderQueue() ReminderQueue {
	return &memoryQueue{
		seen: make(map[string]struct{}),
	}
}

func (that *memoryQueue) Enqueue(_ context.Context, reminder entity.Reminder) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	key := reminder.DedupeKey()
	if _, ok := that.seen[key]; ok {
		return false, nil
	}

	that.seen[key] = struct{}{}
	that.reminders = append(that.reminders, reminder)

	return true, nil
}
