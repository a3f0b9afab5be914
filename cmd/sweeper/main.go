// Command sweeper runs the delinquency sweep on a fixed interval. Several
// replicas may run at once; the redis lock lets one of them through per tick.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-engine/internal/adapter/publisher"
	"loan-engine/internal/adapter/repository/mysql"
	"loan-engine/internal/config"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/infrastructure/cache"
	"loan-engine/internal/infrastructure/db"
	"loan-engine/internal/infrastructure/messaging"
	"loan-engine/internal/observability"
	"loan-engine/internal/usecase/delinquency"
	"loan-engine/internal/usecase/shared"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("sweeper stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), db.LogLevel(cfg.DBLogLevel))
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var pub audit.Publisher = audit.NopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		defer producer.Close()
		pub = publisher.NewActivityPublisher(producer, logger)
	}

	uc := delinquency.NewUsecase(shared.Env{
		UoW:       mysql.NewGormUoW(gdb),
		Policy:    policy,
		Logger:    logger,
		Publisher: pub,
	}, delinquency.WithLocker(cache.NewLocker(rdb)))

	tick := time.NewTicker(cfg.SweepInterval)
	defer tick.Stop()
	logger.Info("sweeper started", "interval", cfg.SweepInterval)

	for {
		sweepOnce(ctx, uc, logger)
		select {
		case <-ctx.Done():
			logger.Info("sweeper shutting down")
			return nil
		case <-tick.C:
		}
	}
}

func sweepOnce(ctx context.Context, uc *delinquency.Usecase, logger *slog.Logger) {
	_, err := uc.Sweep(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, delinquency.ErrSweepInProgress):
		logger.Info("sweep skipped, lock held by another replica")
	default:
		logger.Error("sweep failed", "error", err)
	}
}
