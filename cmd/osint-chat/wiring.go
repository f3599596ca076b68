package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/analyzer"
	"github.com/xaenox/osint-chat/internal/conversation"
	"github.com/xaenox/osint-chat/internal/metrics"
	"github.com/xaenox/osint-chat/internal/search"
	"github.com/xaenox/osint-chat/internal/storage"
	"github.com/xaenox/osint-chat/pkg/config"
)

// app holds the wired components shared by every command.
type app struct {
	store    storage.Storage
	analyzer *analyzer.RiskAnalyzer
	router   *conversation.Router
	registry *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewChatMetrics(registry)

	var gen analyzer.Generator
	g, err := analyzer.NewOpenAIGenerator(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	switch {
	case errors.Is(err, analyzer.ErrNotConfigured):
		logger.Warn("No LLM API key configured; AI-backed answers are disabled")
	case err != nil:
		store.Close()
		return nil, fmt.Errorf("failed to create generator: %w", err)
	default:
		gen = g
		logger.Info("LLM generator ready",
			zap.String("provider", g.Provider()),
			zap.String("model", g.Model()))
	}

	ra := analyzer.NewRiskAnalyzer(gen, logger.Named("analyzer"),
		analyzer.WithTimeout(cfg.LLM.Timeout),
		analyzer.WithMetrics(m))

	searcher := search.NewClient(cfg.Search.BaseURL,
		time.Duration(cfg.Search.Timeout)*time.Second,
		logger.Named("search"),
		search.WithSites(cfg.Search.Sites...),
		search.WithNSFW(cfg.Search.NSFW))

	router := conversation.NewRouter(searcher, ra, logger.Named("conversation"),
		conversation.WithMetrics(m))

	return &app{
		store:    store,
		analyzer: ra,
		router:   router,
		registry: registry,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStorage(ctx context.Context, sc config.StorageConfig, logger *zap.Logger) (storage.Storage, error) {
	switch sc.Driver {
	case config.DriverPostgres:
		logger.Info("Using PostgreSQL storage")
		store, err := storage.NewPostgresStorage(ctx, storage.DatabaseConfig{
			Host:     sc.Database.Host,
			Port:     sc.Database.Port,
			User:     sc.Database.User,
			Password: sc.Database.Password,
			DBName:   sc.Database.DBName,
			SSLMode:  sc.Database.SSLMode,
		}, sc.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, nil

	case config.DriverRedis:
		logger.Info("Using Redis storage")
		opts, err := redisOptions(sc.Redis)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return storage.NewRedisStorage(client, sc.TTL), nil

	default:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(sc.TTL), nil
	}
}

func redisOptions(rc config.RedisConfig) (*redis.Options, error) {
	if rc.URL != "" {
		opts, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}, nil
}
