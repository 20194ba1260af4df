package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kajiplatform/matching-service/internal/config"
	"github.com/kajiplatform/matching-service/internal/dispatch"
	"github.com/kajiplatform/matching-service/internal/logger"
	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/notify"
	"github.com/kajiplatform/matching-service/internal/proximity"
	"github.com/kajiplatform/matching-service/internal/selection"
	"github.com/kajiplatform/matching-service/internal/store"
)

// app bundles the wired service components shared by the serve and dispatch
// commands.
type app struct {
	cfg        config.Config
	log        *zap.Logger
	repo       *store.Postgres
	selector   *selection.Selector
	dispatcher *dispatch.Dispatcher
	notifier   *proximity.Notifier
	flusher    *notify.Flusher
	queue      notify.Queue
}

// loadConfig resolves the effective configuration: file, then environment,
// then defaults for anything still unset.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp connects the backends and wires the matching components.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := logger.New(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	repo, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var queue notify.Queue = notify.NewMemoryQueue()
	if cfg.RedisURL != "" {
		client, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		queue = notify.NewRedisQueue(client)
		log.Info("digest queue backed by redis")
	} else {
		log.Warn("REDIS_URL not set, digest queue is in-memory only")
	}

	scorer, err := matching.NewScorer(cfg.Weights)
	if err != nil {
		repo.Close()
		return nil, err
	}
	selector := selection.NewSelector(scorer, repo)

	// TODO: wire real FCM and SMTP transports once the provider credentials
	// land; until then deliveries are no-ops that still exercise the flow.
	fanout := notify.NewFanout(nil, nil, log, notify.FanoutOptions{
		Workers:     cfg.Workers,
		SendTimeout: time.Duration(cfg.SendTimeoutSeconds) * time.Second,
	})

	dispatcher := dispatch.NewDispatcher(repo, selector, fanout, queue, log, dispatch.Options{
		MinMatchScore:   cfg.MinMatchScore,
		SimilarMinScore: cfg.SimilarMinScore,
		CandidateCap:    cfg.CandidateCap,
		PostingCap:      cfg.PostingCap,
		SimilarLimit:    cfg.SimilarLimit,
	})
	notifier := proximity.NewNotifier(repo, fanout, log, proximity.Options{
		MaxRadiusKm:  cfg.MaxAlertRadiusKm,
		RecipientCap: cfg.RecipientCap,
	})

	return &app{
		cfg:        cfg,
		log:        log,
		repo:       repo,
		selector:   selector,
		dispatcher: dispatcher,
		notifier:   notifier,
		flusher:    notify.NewFlusher(queue, fanout, log),
		queue:      queue,
	}, nil
}

// Close releases the backends.
func (a *app) Close() {
	a.repo.Close()
	_ = a.log.Sync()
}
