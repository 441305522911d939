package app

import (
	"database/sql"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	// Optional: inject connections instead of creating them from config
	db    *sql.DB
	redis *redis.Client

	httpClient client.Doer
	notifier   notify.Notifier
	logger     *zap.Logger
}

// WithDB injects a custom database connection. Useful for testing.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithRedis injects a custom Redis client. Useful for testing.
func WithRedis(redis *redis.Client) ContainerOption {
	return func(c *containerConfig) {
		c.redis = redis
	}
}

// WithHTTPClient replaces the client used to reach the server.
func WithHTTPClient(doer client.Doer) ContainerOption {
	return func(c *containerConfig) {
		c.httpClient = doer
	}
}

// WithNotifier adds a toast sink next to the log and the board.
func WithNotifier(n notify.Notifier) ContainerOption {
	return func(c *containerConfig) {
		c.notifier = n
	}
}

func WithLogger(logger *zap.Logger) ContainerOption {
	return func(c *containerConfig) {
		c.logger = logger
	}
}
