package main

import (
	"context"
	"flag"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vncsmyrnk/featurevote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/featurevote/internal/clock"
	"github.com/vncsmyrnk/featurevote/internal/config"
	"github.com/vncsmyrnk/featurevote/internal/core/services"
	"github.com/vncsmyrnk/featurevote/internal/logger"
	"github.com/vncsmyrnk/featurevote/internal/metrics"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg := config.Load()

	flag.StringVar(&cfg.DB.Host, "db-host", cfg.DB.Host, "Database host")
	flag.StringVar(&cfg.DB.Port, "db-port", cfg.DB.Port, "Database port")
	flag.StringVar(&cfg.DB.User, "db-user", cfg.DB.User, "Database user")
	flag.StringVar(&cfg.DB.Password, "db-pass", cfg.DB.Password, "Database password")
	flag.StringVar(&cfg.DB.Name, "db-name", cfg.DB.Name, "Database name")
	timeout := flag.Duration("timeout", 5*time.Minute, "Maximum job duration")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     "sessionreconcile",
		Environment: cfg.Environment,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sessionService := services.NewSessionService(
		postgres.NewSessionRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewRoleRepository(db),
		clock.New(),
		metrics.New(prometheus.NewRegistry()),
		log,
	)

	log.Info("starting session reconciliation")
	corrected, err := sessionService.ReconcileAll(ctx)
	if err != nil {
		log.Fatal("session reconciliation failed", zap.Int("corrected", corrected), zap.Error(err))
	}
	log.Info("session reconciliation completed", zap.Int("corrected", corrected))
}
