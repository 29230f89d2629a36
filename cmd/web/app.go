package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"event-planner-web/internal/api"
	"event-planner-web/internal/attendance"
	"event-planner-web/internal/config"
	"event-planner-web/internal/httpapi"
	"event-planner-web/internal/notify"
	"event-planner-web/internal/realtime"
	"event-planner-web/internal/session"
	"event-planner-web/internal/token"
	"event-planner-web/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// app holds the process-wide dependencies. Build it with newApp and release
// it with close.
type app struct {
	cfg config.Config
	log *slog.Logger

	storage   *token.Storage
	validator *token.Validator
	registry  *session.Registry
	sweeper   *session.Sweeper
	hub       *realtime.Hub
	handlers  httpapi.Handlers

	// closers run in reverse order on shutdown.
	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if err := a.init(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		var err error
		rdb, err = utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
	}

	backend, err := a.openTokenBackend(ctx, rdb)
	if err != nil {
		return err
	}

	var signal token.Signal = token.NewLocalSignal()
	if rdb != nil {
		rs, err := token.NewRedisSignal(ctx, rdb, "", log)
		if err != nil {
			return fmt.Errorf("storage signal: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		signal = rs
	}

	a.storage = token.NewStorage(backend, signal, log)
	a.validator = token.NewValidator(time.Now)

	a.hub = realtime.NewHub(a.storage, realtime.Options{
		URL:        cfg.Backend.WSURL,
		MaxRetries: cfg.Realtime.MaxRetries,
		Backoff:    cfg.Realtime.RetryBackoff,
	}, log)

	inbox := notify.NewService(notify.NewMemoryRepo())

	// A signed-out browser keeps no socket and no notifications; the next
	// person to sign in on it starts with an empty bell.
	a.registry = session.NewRegistry(a.storage, a.validator, signal, log)
	a.registry.OnTransition(func(clientID string, _, to session.State) {
		if to != session.StateUnauthenticated {
			return
		}
		a.hub.Drop(clientID)
		if err := inbox.Clear(context.Background(), clientID); err != nil {
			log.Warn("clear notifications failed", "client_id", clientID, "err", err)
		}
	})

	a.sweeper, err = session.NewSweeper(a.registry, cfg.Session.SweepSchedule, log)
	if err != nil {
		return fmt.Errorf("session sweeper: %w", err)
	}

	client := api.New(cfg.Backend.APIBaseURL, cfg.Backend.Timeout, a.storage, log)
	a.handlers = httpapi.Handlers{
		Backend:    client,
		Attendance: attendance.NewService(client),
		Notify:     inbox,
		Feed:       notify.NewFeed(inbox, log),
		Hub:        a.hub,
	}
	return nil
}

func (a *app) openTokenBackend(ctx context.Context, rdb *redis.Client) (token.Backend, error) {
	switch a.cfg.Storage.Driver {
	case config.StorageRedis:
		b, err := token.NewRedisBackend(rdb, "")
		if err != nil {
			return nil, fmt.Errorf("redis token store: %w", err)
		}
		return b, nil

	case config.StoragePostgres:
		db, err := utils.OpenPostgres(ctx, "pgx", a.cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, fmt.Errorf("postgres init: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return openPostgresBackend(ctx, db)

	default:
		return token.NewMemoryBackend(), nil
	}
}

func openPostgresBackend(ctx context.Context, db *sql.DB) (token.Backend, error) {
	b, err := token.NewPostgresBackend(db)
	if err != nil {
		return nil, err
	}
	if err := b.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres token store migrate: %w", err)
	}
	return b, nil
}

func (a *app) start() {
	if a.sweeper != nil {
		a.sweeper.Start()
	}
}

// close tears down in dependency order: stop expiring sessions, drop the
// realtime connections, then release the stores.
func (a *app) close(ctx context.Context) {
	if a.sweeper != nil {
		a.sweeper.Stop(ctx)
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("shutdown close failed", "err", err)
		}
	}
	a.closers = nil
}
