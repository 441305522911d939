package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/RezaEskandarii/lrrctl/client"
	"github.com/RezaEskandarii/lrrctl/internal/db"
	"github.com/RezaEskandarii/lrrctl/internal/lock"
	"github.com/RezaEskandarii/lrrctl/internal/message_broaker"
	"github.com/RezaEskandarii/lrrctl/internal/notify"
	"github.com/RezaEskandarii/lrrctl/internal/scheduler"
	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/RezaEskandarii/lrrctl/internal/store/memory"
	"github.com/RezaEskandarii/lrrctl/internal/store/postgres"
	"github.com/RezaEskandarii/lrrctl/internal/store/redisstore"
	"github.com/RezaEskandarii/lrrctl/types/config"
	"github.com/RezaEskandarii/lrrctl/web"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config *config.ConsoleConfig
	Logger *zap.Logger

	// Storage connections, nil unless the storage driver needs them
	DB    *sql.DB
	Redis *redis.Client

	// Infrastructure
	Guard         lock.RunGuard
	LocalStore    store.LocalStore
	MessageBroker message_broaker.MessageBroker

	// Toast sinks
	Board    *notify.Board
	Notifier notify.Notifier

	// Console and its background runners
	API           *client.APIClient
	Poller        *client.JobPoller
	Console       *client.Console
	ActionHandler *config.ActionHandler
	Scheduler     *scheduler.Scheduler
	Dashboard     *web.HttpRouteHandler
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// Call this once per application lifecycle.
// Pass optional WithDB, WithRedis to inject connections for testing.
func NewContainer(ctx context.Context, cfg *config.ConsoleConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}
	logger := opt.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{Config: cfg, Logger: logger, DB: opt.db, Redis: opt.redis}
	if err := c.initStorage(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if cfg.PublishToasts {
		broker, err := message_broaker.NewRabbitMQ(
			cfg.RabbitMQConfig.URL,
			cfg.RabbitMQConfig.Exchange,
			cfg.RabbitMQConfig.Queue,
			cfg.RabbitMQConfig.RoutingKey,
			cfg.RabbitMQConfig.ContentType,
		)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		c.MessageBroker = broker
	}

	c.Board = notify.NewBoard(notify.DefaultDismissDelay)
	c.Notifier = c.buildNotifier(opt.notifier)

	var httpClient client.Doer = &http.Client{Timeout: cfg.RequestTimeout}
	if opt.httpClient != nil {
		httpClient = opt.httpClient
	}
	api, err := client.NewAPIClient(cfg.ServerURL, c.Notifier,
		client.WithAPIKey(cfg.APIKey),
		client.WithHTTPClient(httpClient),
		client.WithLogger(logger.Named("api")),
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	c.API = api
	c.Poller = client.NewJobPoller(api, client.WithPollInterval(cfg.PollInterval))
	c.Console = client.NewConsole(api, c.Poller,
		client.WithGuard(c.Guard),
		client.WithLocalStore(c.LocalStore),
		client.WithReleaseURL(cfg.ReleaseURL),
		client.WithMigrationConcurrency(cfg.MigrationConcurrency),
	)

	c.ActionHandler = config.NewActionHandler()
	if err := registerActions(c.ActionHandler, c.Console); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Scheduler = scheduler.New(c.ActionHandler, c.Guard, logger.Named("scheduler"))

	dashboard, err := web.NewRouteHandler(c.Board, c.Scheduler, cfg.Dashboard, logger.Named("web"))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init dashboard: %w", err)
	}
	c.Dashboard = dashboard

	return c, nil
}

// initStorage opens the connections the storage driver needs and builds the
// matching guard and local store.
func (c *Container) initStorage(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StorageDriver {
	case config.Memory:
		c.Guard = lock.NewMemoryRunGuard()
		c.LocalStore = memory.NewMemoryLocalStore()
	case config.Postgres:
		if c.DB == nil {
			conn, err := db.Open(ctx, cfg.PostgresConfig.ConnectionUrl)
			if err != nil {
				return err
			}
			c.DB = conn
		}
		guard := lock.NewPostgresRunGuard(c.DB)
		if err := db.Init(ctx, c.DB, guard, c.Logger.Named("db")); err != nil {
			return err
		}
		c.Guard = guard
		c.LocalStore = postgres.NewPostgresLocalStore(c.DB)
	case config.Redis:
		if err := c.connectRedis(ctx); err != nil {
			return err
		}
		c.Guard = lock.NewRedisRunGuard(c.Redis, lock.NewOwnerID(cfg.Instance), lock.DefaultGuardTTL)
		c.LocalStore = redisstore.NewRedisLocalStore(c.Redis, redisstore.DefaultHashKey)
	default:
		return fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}

	// the redis notifier may need a connection even when storage lives elsewhere
	if cfg.RedisChannel != "" {
		return c.connectRedis(ctx)
	}
	return nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	if c.Redis != nil {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     c.Config.RedisConfig.Address,
		Password: c.Config.RedisConfig.Password,
		DB:       c.Config.RedisConfig.DB,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return fmt.Errorf("ping redis: %w", err)
	}
	c.Redis = rc
	return nil
}

func (c *Container) buildNotifier(extra notify.Notifier) notify.Notifier {
	sinks := []notify.Notifier{notify.NewLogNotifier(c.Logger.Named("toast")), c.Board}
	if c.MessageBroker != nil {
		sinks = append(sinks, notify.NewBrokerNotifier(c.MessageBroker, c.Config.RabbitMQConfig.Queue, c.Logger))
	}
	if c.Config.RedisChannel != "" && c.Redis != nil {
		sinks = append(sinks, notify.NewRedisNotifier(c.Redis, c.Config.RedisChannel, c.Logger))
	}
	if extra != nil {
		sinks = append(sinks, extra)
	}
	return notify.Multi(sinks...)
}

// Close releases every connection the container owns. Postgres and Redis stores
// close the connection they were built on.
func (c *Container) Close() error {
	var errs []error
	if c.MessageBroker != nil {
		errs = append(errs, c.MessageBroker.Close())
	}
	if c.LocalStore != nil {
		errs = append(errs, c.LocalStore.Close())
	}
	if c.Redis != nil && (c.LocalStore == nil || c.Config.StorageDriver != config.Redis) {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil && (c.LocalStore == nil || c.Config.StorageDriver != config.Postgres) {
		errs = append(errs, c.DB.Close())
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
