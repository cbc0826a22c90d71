package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	budgetmemory "github.com/vncsmyrnk/featurevote/internal/adapters/budgetstore/memory"
	budgetredis "github.com/vncsmyrnk/featurevote/internal/adapters/budgetstore/redis"
	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/featurevote/internal/adapters/tracker/azuredevops"
	"github.com/vncsmyrnk/featurevote/internal/app"
	"github.com/vncsmyrnk/featurevote/internal/config"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"github.com/vncsmyrnk/featurevote/internal/core/services"
	"github.com/vncsmyrnk/featurevote/internal/logger"
	"go.uber.org/zap"
)

func main() {
	migrate := flag.Bool("migrate", false, "Apply pending migrations before serving")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     "featurevote",
		Environment: cfg.Environment,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	budgets, closeBudgets := budgetStore(cfg, log)
	defer closeBudgets()

	var (
		stores app.Stores
		db     *sql.DB
	)
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		stores = app.MemoryStores()
		stores.Budgets = budgets
	default:
		db, err = postgres.Open(ctx, cfg.DB.DSN())
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if *migrate {
			if err := postgres.RunMigrations(db); err != nil {
				log.Fatal("failed to apply migrations", zap.Error(err))
			}
		}
		stores = app.PostgresStores(db, budgets)
	}

	var tracker ports.Tracker
	if cfg.TrackerEnabled() {
		client, err := azuredevops.NewClient(azuredevops.Config{
			BaseURL: cfg.TrackerBaseURL,
			Project: cfg.TrackerProject,
			Token:   cfg.TrackerToken,
		}, log)
		if err != nil {
			log.Fatal("invalid tracker configuration", zap.Error(err))
		}
		tracker = client
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := app.New(stores, app.Options{
		JWTSecret:       cfg.JWTSecret,
		AccessTTL:       cfg.AccessTTL,
		AllowEmailAuth:  cfg.EmailAuth,
		CORSOrigins:     cfg.CORSOrigins,
		ProtectedEmails: cfg.ProtectedEmails,
		Tracker:         tracker,
		Logger:          log,
		Registry:        registry,
		Ready: func(r *stdhttp.Request) error {
			if db == nil {
				return nil
			}
			return db.PingContext(r.Context())
		},
	})

	go services.RunReconciler(ctx, a.Sessions, cfg.ReconcileInterval, log)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

func budgetStore(cfg config.Config, log *zap.Logger) (ports.BudgetStore, func()) {
	if cfg.RedisURL == "" {
		return budgetmemory.NewStore(), func() {}
	}
	store, err := budgetredis.NewStore(cfg.RedisURL, cfg.BudgetTTL)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	return store, func() { _ = store.Close() }
}
