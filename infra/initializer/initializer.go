package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/infra"
	infra_cache "github.com/amirasaad/fintechflow/infra/cache"
	infra_eventbus "github.com/amirasaad/fintechflow/infra/eventbus"
	"github.com/amirasaad/fintechflow/infra/qrcode"
	infra_repository "github.com/amirasaad/fintechflow/infra/repository"
	"github.com/amirasaad/fintechflow/pkg/app"
	"github.com/amirasaad/fintechflow/pkg/cache"
	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies initializes all the application dependencies.
// The returned cleanup releases network resources and is safe to call once.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	deps = &app.Deps{}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	var closers []io.Closer
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i].Close(); cerr != nil {
				logger.Warn("Failed to close resource", "error", cerr)
			}
		}
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = infra_repository.Migrate(ctx, db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	deps.Uow = infra_repository.NewUoW(db)

	store, closer := initCache(cfg.Redis, logger)
	deps.Cache = store
	closers = append(closers, closer)

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if c, ok := bus.(io.Closer); ok {
		closers = append(closers, c)
	}
	deps.EventBus = bus

	deps.QRCode = qrcode.New(qrcode.DefaultSize)
	return deps, cleanup, nil
}

// initCache uses Redis when REDIS_URL is set and reachable, the in-memory
// store otherwise.
func initCache(cfg *config.Redis, logger *slog.Logger) (cache.Store, io.Closer) {
	if cfg == nil || cfg.URL == "" {
		logger.Info("Using in-memory cache")
		mem := infra_cache.NewMemoryCache()
		return mem, mem
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err == nil {
		opt.PoolSize = cfg.PoolSize
		opt.DialTimeout = cfg.DialTimeout
		opt.ReadTimeout = cfg.ReadTimeout
		opt.WriteTimeout = cfg.WriteTimeout
		client := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
		defer cancel()
		if err = client.Ping(ctx).Err(); err == nil {
			logger.Info("Using Redis cache", "prefix", cfg.KeyPrefix)
			return infra_cache.NewRedisCache(client, cfg.KeyPrefix, logger), client
		}
		_ = client.Close()
	}

	logger.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
	mem := infra_cache.NewMemoryCache()
	return mem, mem
}

// initEventBus builds the bus named by EVENT_BUS_DRIVER. A driver that is
// configured but unreachable degrades to the in-memory bus.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = strings.ToLower(strings.TrimSpace(cfg.EventBus.Driver))
	}

	switch driver {
	case "", "memory":
		logger.Info("Using in-memory event bus")
		return infra_eventbus.NewWithMemory(logger), nil

	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("event bus driver redis requires REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(
			cfg.Redis.URL,
			cfg.EventBus.Stream,
			cfg.EventBus.Group,
			logger,
		)
		if err != nil {
			logger.Warn("Failed to connect Redis event bus, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		logger.Info("Using Redis event bus", "stream", cfg.EventBus.Stream, "group", cfg.EventBus.Group)
		return bus, nil

	case "kafka":
		if strings.TrimSpace(cfg.EventBus.KafkaBrokers) == "" {
			return nil, fmt.Errorf("event bus driver kafka requires EVENT_BUS_KAFKA_BROKERS")
		}
		bus, err := infra_eventbus.NewWithKafka(
			cfg.EventBus.KafkaBrokers,
			logger,
			&infra_eventbus.KafkaEventBusConfig{
				GroupID: cfg.EventBus.Group,
				Topic:   cfg.EventBus.KafkaTopic,
			},
		)
		if err != nil {
			logger.Warn("Failed to connect Kafka event bus, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil

	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", driver)
	}
}
