package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/sharenet/backend/internal/auth"
	"github.com/sharenet/backend/internal/chat"
	"github.com/sharenet/backend/internal/config"
	"github.com/sharenet/backend/internal/items"
	"github.com/sharenet/backend/internal/ledger"
	"github.com/sharenet/backend/internal/migrations"
	"github.com/sharenet/backend/internal/notifications"
	"github.com/sharenet/backend/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Invalid DATABASE_URL", "error", err)
		os.Exit(1)
	}
	// NUMERIC columns scan into decimal.Decimal.
	poolCfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. make dev-up or docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	// Schema migrations
	db := stdlib.OpenDBFromPool(pool)
	if err := migrations.Up(ctx, db); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}
	_ = db.Close()
	slog.Info("Schema migrations applied")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first (e.g. make dev-up)", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Notification jobs: insert func is set after the River client is
	// created (breaks the init cycle between repos and the client).
	var insertMu sync.Mutex
	var insertFn func(ctx context.Context, tx pgx.Tx, args notifications.NotificationJobArgs) error
	insertNotification := func(ctx context.Context, tx pgx.Tx, args notifications.NotificationJobArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	notifRepo := notifications.NewRepository(pool)

	workers := river.NewWorkers()
	river.AddWorker(workers, notifications.NewWorker(notifRepo))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args notifications.NotificationJobArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	// Ledger
	ledgerRepo := ledger.NewRepository(pool, insertNotification)
	ledgerSvc := ledger.NewService(ledgerRepo, ledger.Options{
		AllowNegative:  cfg.LedgerAllowNegative,
		StorageTimeout: cfg.StorageTimeout,
	})
	ledgerHandler := ledger.NewHandler(ledgerSvc, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, auth.Options{
		Secret:         []byte(cfg.JWTSecret),
		InitialCredits: cfg.InitialCredits,
		StorageTimeout: cfg.StorageTimeout,
	})
	authHandler := auth.NewHandler(authSvc, logger)

	// Chat
	chatRepo := chat.NewRepository(pool, insertNotification)
	chatSvc := chat.NewService(chatRepo, chat.Options{
		AllowSelfMessages:   cfg.ChatAllowSelf,
		RequireParticipants: cfg.ChatRequireParticipants,
		StorageTimeout:      cfg.StorageTimeout,
	})
	chatHandler := chat.NewHandler(chatSvc, logger)

	// Items
	itemsRepo := items.NewRepository(pool)
	itemsSvc := items.NewService(itemsRepo, cfg.StorageTimeout)
	itemsHandler := items.NewHandler(itemsSvc, logger)

	notifHandler := notifications.NewHandler(notifRepo, logger)

	apiRouter := router.New(authHandler, ledgerHandler, chatHandler, itemsHandler, notifHandler, authSvc)
	handler := newHTTPHandler(cfg, apiRouter)

	// Start River client (persists notifications)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	slog.Info("Starting HTTP server", "addr", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), handler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
