package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moothz/ravena-go/internal/adapter"
	"github.com/moothz/ravena-go/internal/bot"
	"github.com/moothz/ravena-go/internal/command"
	"github.com/moothz/ravena-go/internal/config"
	"github.com/moothz/ravena-go/internal/constants"
	"github.com/moothz/ravena-go/internal/evolution"
	"github.com/moothz/ravena-go/internal/service/ai"
	"github.com/moothz/ravena-go/internal/service/cache"
	"github.com/moothz/ravena-go/internal/service/database"
	"github.com/moothz/ravena-go/internal/service/downloads"
	"github.com/moothz/ravena-go/internal/service/groups"
	"github.com/moothz/ravena-go/internal/service/media"
	"github.com/moothz/ravena-go/internal/service/weather"
)

// Container bundles assembled services for constructing runtime components.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	botDeps *bot.Dependencies
	closers []func()
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if c == nil || c.botDeps == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close releases container-owned services in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and returns a container capable
// of creating fully-wired bots. Optional services (redis, postgres, openai)
// degrade to nil instead of failing the build: the command set shrinks to
// what the environment provides.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Messaging primitives
	client := evolution.NewClient(cfg.Evolution.BaseURL, cfg.Evolution.APIKey, cfg.Evolution.Instance, logger)
	ws := evolution.NewWebSocket(
		cfg.Evolution.WSURL,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		logger,
	)
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Prefix)

	// Group registry
	groupStore := groups.NewStore(cfg.Bot.GroupsFile, logger)

	// Download pipeline
	downloadCache := downloads.NewCache(cfg.Downloads.CacheFile, logger)
	downloader := media.NewDownloader(downloadCache, cfg.Downloads.Dir, logger)

	// Redis-backed services are optional: without a reachable instance the
	// weather command is simply not registered.
	var weatherSvc *weather.Service
	cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if cacheErr != nil {
		logger.Warn("Cache service unavailable, weather command disabled", zap.Error(cacheErr))
	} else {
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		weatherSvc = weather.NewService(cacheSvc, logger)
	}

	aiSvc := ai.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	if aiSvc == nil {
		logger.Info("OpenAI key not configured, ai command disabled")
	}

	var reports *database.UsageReportRepository
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			logger.Warn("Postgres unavailable, usage reports disabled", zap.Error(pgErr))
		} else {
			closers = append(closers, func() {
				_ = postgresSvc.Close()
			})
			reports = database.NewUsageReportRepository(postgresSvc, logger)
			schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if schemaErr := reports.EnsureSchema(schemaCtx); schemaErr != nil {
				logger.Warn("Failed to ensure report schema, usage reports disabled", zap.Error(schemaErr))
				reports = nil
			}
			cancel()
		}
	}

	// Command pipeline
	registry := command.NewRegistry()
	if err = command.RegisterAll(registry, &command.Dependencies{
		Downloader: downloader,
		Weather:    weatherSvc,
		AI:         aiSvc,
		Transport:  client,
		Reports:    reports,
		Logger:     logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	logger.Info("Commands registered", zap.Int("count", registry.Count()))

	reactor := &bot.ClientReactor{Client: client}
	var reporter command.UsageReporter
	if reports != nil {
		reporter = reports
	}
	dispatcher := command.NewDispatcher(reactor, reporter, logger)

	deps := &bot.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Client:        client,
		WebSocket:     ws,
		Adapter:       messageAdapter,
		Groups:        groupStore,
		Registry:      registry,
		Dispatcher:    dispatcher,
		DownloadCache: downloadCache,
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		botDeps: deps,
		closers: closers,
	}, nil
}
