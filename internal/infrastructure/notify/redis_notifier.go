package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appprod "github.com/mrp/backend/internal/application/production"
	appstock "github.com/mrp/backend/internal/application/stock"
)

// RedisNotifier pushes batch status notifications and stock alerts over Redis
// pub/sub. Floor displays and back-office dashboards subscribe to the
// channels; delivery is fire and forget.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// Config holds Redis notifier configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

const defaultChannel = "mrp:batch-status"

// alertChannelSuffix separates stock alerts from batch notifications
const alertChannelSuffix = ":alerts"

// NewRedisNotifier creates a notifier with its own Redis client
func NewRedisNotifier(cfg Config) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisNotifierWithClient(client, cfg.Channel), nil
}

// NewRedisNotifierWithClient creates a notifier with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisNotifierWithClient(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = defaultChannel
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
	}
}

// NotifyStatusChanged publishes a batch status notification
func (n *RedisNotifier) NotifyStatusChanged(ctx context.Context, notification appprod.BatchStatusNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal batch notification: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish batch notification: %w", err)
	}
	return nil
}

// SendAlert publishes a stock alert on the alert channel
func (n *RedisNotifier) SendAlert(ctx context.Context, alert appstock.StockAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal stock alert: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel+alertChannelSuffix, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish stock alert: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (n *RedisNotifier) GetClient() *redis.Client {
	return n.client
}

// Ensure RedisNotifier implements both notifier interfaces
var (
	_ appprod.BatchNotifier       = (*RedisNotifier)(nil)
	_ appstock.StockAlertNotifier = (*RedisNotifier)(nil)
)
