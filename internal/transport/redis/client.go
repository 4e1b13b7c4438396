package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

// QueueKey - list consumed by the mail delivery worker.
const QueueKey = "reminders"

// Client publishes reminders to a Redis list, sending each one at most once.
type Client struct {
	client    *redis.Client
	dedupeTTL time.Duration
}

func New(client *redis.Client, dedupeTTL time.Duration) *Client {
	return &Client{
		client:    client,
		dedupeTTL: dedupeTTL,
	}
}

// Enqueue - pushes the reminder unless the same one was already pushed within the
// dedupe window.
func (that *Client) Enqueue(ctx context.Context, reminder entity.Reminder) (bool, error) {
	reminderJSON, err := json.Marshal(reminder)
	if err != nil {
		return false, fmt.Errorf("failed to marshal reminder: %w", err)
	}

	dedupeKey := "reminder:" + reminder.DedupeKey()

	fresh, err := that.client.SetNX(ctx, dedupeKey, 1, that.dedupeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set reminder dedupe key: %w", err)
	}
	if !fresh {
		return false, nil
	}

	if err = that.client.RPush(ctx, QueueKey, reminderJSON).Err(); err != nil {
		if delErr := that.client.Del(ctx, dedupeKey).Err(); delErr != nil {
			return false, fmt.Errorf("failed to push reminder: %w (and to release dedupe key: %w)", err, delErr)
		}
		return false, fmt.Errorf("failed to push reminder: %w", err)
	}

	return true, nil
}

// Pending - reminders waiting in the queue, oldest first.
func (that *Client) Pending(ctx context.Context) ([]entity.Reminder, error) {
	values, err := that.client.LRange(ctx, QueueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reminder queue: %w", err)
	}

	reminders := make([]entity.Reminder, 0, len(values))
	for _, value := range values {
		var reminder entity.Reminder
		if err = json.Unmarshal([]byte(value), &reminder); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, nil
}
