package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	httpadp "loan-engine/internal/adapter/http"
	"loan-engine/internal/adapter/middleware"
	"loan-engine/internal/adapter/publisher"
	"loan-engine/internal/adapter/repository/mysql"
	"loan-engine/internal/config"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/infrastructure/cache"
	"loan-engine/internal/infrastructure/db"
	"loan-engine/internal/infrastructure/messaging"
	"loan-engine/internal/observability"
	"loan-engine/internal/usecase/approval"
	"loan-engine/internal/usecase/delinquency"
	"loan-engine/internal/usecase/disbursement"
	"loan-engine/internal/usecase/investment"
	"loan-engine/internal/usecase/loan"
	"loan-engine/internal/usecase/repayment"
	"loan-engine/internal/usecase/shared"
)

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(observability.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
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
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()
	pubs := []audit.Publisher{metrics}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		defer producer.Close()
		pubs = append(pubs, publisher.NewActivityPublisher(producer, logger))
		logger.Info("streaming activities", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAuditTopic)
	}

	env := shared.Env{
		UoW:       mysql.NewGormUoW(gdb),
		Policy:    policy,
		Logger:    logger,
		Publisher: audit.Fanout(pubs...),
	}

	handlers := httpadp.Handlers{
		Health: httpadp.NewHandler().
			WithDependency("mysql", sqlDB).
			WithDependency("redis", redisPinger{rdb}),
		Loans:        httpadp.NewLoanHandler(loan.NewUsecase(env)),
		Approvals:    httpadp.NewApprovalHandler(approval.NewUsecase(env)),
		Disbursement: httpadp.NewDisbursementHandler(disbursement.NewUsecase(env)),
		Repayments:   httpadp.NewRepaymentHandler(repayment.NewUsecase(env)),
		Investments:  httpadp.NewInvestmentHandler(investment.NewUsecase(env)),
		Delinquency: httpadp.NewDelinquencyHandler(delinquency.NewUsecase(env,
			delinquency.WithLocker(cache.NewLocker(rdb)),
			delinquency.WithObserver(metrics.SweepDone),
		)),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLog(logger), middleware.Metrics(metrics))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	httpadp.Register(e, handlers, middleware.Idempotency(rdb, cfg.IdempotencyTTL()))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
