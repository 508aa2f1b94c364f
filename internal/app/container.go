// Package app wires the behavior tracker from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	behaviorApp "github.com/felixgeelhaar/behaviortracker/internal/behavior/application"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/consumers"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/infrastructure/cache"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// CacheInvalidationQueue is the durable queue feeding cache invalidation.
const CacheInvalidationQueue = "behavior.cache-invalidation"

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Repositories (use interfaces for driver-agnostic access)
	Repositories *persistence.Repositories
	UnitOfWork   sharedApplication.UnitOfWork

	// Cache
	RedisClient redis.UniversalClient
	Cache       domain.AggregateCache

	// Events. Exactly one of InProcessEventBus and EventConsumer is set.
	Publisher         eventbus.Publisher
	EventPublisher    *eventbus.EventPublisher
	InProcessEventBus *eventbus.InProcessEventBus
	EventConsumer     *eventbus.RabbitMQConsumer
	Breaker           *eventbus.BreakerPublisher

	Service *behaviorApp.Service
}

// Options adjust a container beyond what the configuration holds.
type Options struct {
	// Metrics defaults to an in-memory sink.
	Metrics observability.Metrics

	// SkipBrokerConsumer leaves the RabbitMQ cache-invalidation consumer
	// unconnected. Processes without a cache use it.
	SkipBrokerConsumer bool
}

// NewContainer connects storage, cache and events and builds the service.
// On error everything opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (c *Container, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewInMemoryMetrics()
	}

	c = &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Health:  observability.NewHealthRegistry(),
	}
	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	if err = c.initDatabase(ctx); err != nil {
		return c, err
	}
	if err = c.initCache(ctx); err != nil {
		return c, err
	}
	if err = c.initEvents(opts); err != nil {
		return c, err
	}

	c.Service = behaviorApp.NewService(behaviorApp.Dependencies{
		Baselines:         c.Repositories.Baselines,
		Sessions:          c.Repositories.Sessions,
		Digests:           c.Repositories.Digests,
		UnitOfWork:        c.UnitOfWork,
		Cache:             c.Cache,
		Events:            c.EventPublisher,
		Metrics:           c.Metrics,
		Logger:            logger,
		DigestConcurrency: cfg.DigestConcurrency,
	})

	logger.Info("container ready",
		"driver", c.DBDriver.String(),
		"cache", cacheKind(c.RedisClient),
		"events", eventsKind(c.EventConsumer),
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbCfg := DatabaseConfig(c.Config)
	if dbCfg.Driver == database.DriverSQLite {
		if err := database.EnsureDirectory(dbCfg.SQLitePath); err != nil {
			return fmt.Errorf("prepare sqlite directory: %w", err)
		}
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repos, err := persistence.NewRepositories(conn)
	if err != nil {
		return err
	}
	c.Repositories = repos
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))
	return nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		c.Cache = cache.NewInMemoryCache(c.Config.CacheTTL)
		return nil
	}

	opts, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	c.RedisClient = client

	redisCache := cache.NewRedisCache(client, c.Config.CacheTTL)
	if err := redisCache.Ping(ctx); err != nil {
		// Reads fall back to storage, so a missing cache is not fatal.
		c.Logger.Warn("redis unreachable, continuing", "error", err)
	}
	c.Cache = redisCache
	c.Health.Register("cache", observability.PingChecker("redis", observability.HealthStatusDegraded, redisCache.Ping))
	return nil
}

func (c *Container) initEvents(opts Options) error {
	invalidation := consumers.NewCacheInvalidationConsumer(c.Cache, c.Logger)

	if c.Config.RabbitMQURL == "" {
		bus := eventbus.NewInProcessEventBus(c.Logger)
		bus.RegisterConsumer(invalidation)
		c.InProcessEventBus = bus
		c.Publisher = bus
		c.EventPublisher = eventbus.NewEventPublisher(bus, c.Metrics, c.Logger)
		return nil
	}

	rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	c.Breaker = eventbus.NewBreakerPublisher(rabbit, eventbus.BreakerConfig{
		Name:             "rabbitmq",
		FailureThreshold: uint32(c.Config.BreakerFailureThreshold),
		Timeout:          c.Config.BreakerTimeout,
	}, c.Logger)
	c.Publisher = c.Breaker
	c.EventPublisher = eventbus.NewEventPublisher(c.Breaker, c.Metrics, c.Logger)
	c.Health.Register("events", observability.PingChecker("rabbitmq", observability.HealthStatusDegraded, func(context.Context) error {
		if c.Breaker.State() == "open" {
			return eventbus.ErrBrokerUnavailable
		}
		return nil
	}))

	if opts.SkipBrokerConsumer {
		return nil
	}
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       c.Config.RabbitMQURL,
		QueueName: CacheInvalidationQueue,
		Logger:    c.Logger,
	}, eventbus.NewConsumerRegistry(c.Logger))
	if err != nil {
		return fmt.Errorf("failed to start event consumer: %w", err)
	}
	consumer.RegisterConsumer(invalidation)
	c.EventConsumer = consumer
	return nil
}

// StartConsumers runs the broker consumer until ctx is done. It returns
// immediately for in-process events, which are dispatched on publish.
func (c *Container) StartConsumers(ctx context.Context) error {
	if c.EventConsumer == nil {
		return nil
	}
	err := c.EventConsumer.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	var errs []error
	if c.EventConsumer != nil {
		errs = append(errs, c.EventConsumer.Close())
	}
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DBConn != nil {
		errs = append(errs, c.DBConn.Close())
	}
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("error while closing container", "error", err)
	}
}

// DatabaseConfig maps the application configuration onto a connection config.
func DatabaseConfig(cfg *config.Config) database.Config {
	if cfg.LocalMode || cfg.DatabaseURL == "" {
		path := cfg.SQLitePath
		if path == "" {
			path = database.DefaultSQLitePath()
		}
		return database.Config{Driver: database.DriverSQLite, SQLitePath: path}
	}
	return database.Config{
		Driver: database.Driver(cfg.DatabaseDriver),
		URL:    cfg.DatabaseURL,
	}
}

func cacheKind(client redis.UniversalClient) string {
	if client == nil {
		return "memory"
	}
	return "redis"
}

func eventsKind(consumer *eventbus.RabbitMQConsumer) string {
	if consumer == nil {
		return "in-process"
	}
	return "rabbitmq"
}
