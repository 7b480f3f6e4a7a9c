package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vela/api/feed"
	"vela/api/intake"
	"vela/domain/book"
	"vela/infra/config"
	"vela/infra/outbox"
	"vela/infra/sequence"
	"vela/infra/wal"
	"vela/jobs/broadcaster"
	"vela/metrics"
	"vela/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.App.LogLevel)
	defer logger.Sync()

	// ---------------- Journal ----------------

	journal, err := wal.Open(wal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
	})
	if err != nil {
		logger.Fatal("wal open failed", zap.Error(err))
	}
	defer journal.Close()

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		logger.Fatal("outbox open failed", zap.Error(err))
	}
	defer ob.Close()

	// ---------------- Domain ----------------

	b := book.NewBook()
	seq := sequence.New(0)

	obs := metrics.NewObserver(cfg.App.Name)
	b.SetObserver(obs.Hook())

	if err := service.ReplayFromWAL(cfg.WAL.Dir, b, seq, logger); err != nil {
		logger.Fatal("wal replay failed", zap.Error(err))
	}
	if maxSeq, err := ob.MaxSeq(); err != nil {
		logger.Fatal("outbox scan failed", zap.Error(err))
	} else if maxSeq > seq.Current() {
		seq.Reset(maxSeq)
	}

	// ---------------- Service ----------------

	svc := service.NewOrderService(b, seq, journal, ob, logger)

	// ---------------- Background jobs ----------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bc, err := broadcaster.New(
		ob,
		cfg.Broadcast.Brokers,
		cfg.Broadcast.Topic,
		time.Duration(cfg.Broadcast.Interval)*time.Millisecond,
		logger.Named("broadcaster"),
	)
	if err != nil {
		logger.Fatal("broadcaster init failed", zap.Error(err))
	}
	defer bc.Close()
	go bc.Run(ctx)

	consumer := intake.NewConsumer(
		cfg.Intake.Brokers,
		cfg.Intake.Topic,
		cfg.Intake.GroupID,
		svc,
		logger.Named("intake"),
	)
	defer consumer.Close()
	go consumer.Run(ctx)

	// ---------------- Feed + metrics ----------------

	depthFeed := feed.NewServer(
		svc,
		time.Duration(cfg.Feed.Interval)*time.Millisecond,
		cfg.Feed.Depth,
		logger.Named("feed"),
	)
	go depthFeed.Run(ctx)

	feedMux := http.NewServeMux()
	feedMux.Handle("/ws/depth", depthFeed)
	feedSrv := &http.Server{Addr: cfg.Feed.Addr, Handler: feedMux}
	go func() {
		if err := feedSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("feed server exited", zap.Error(err))
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", obs.Handler())
	metricsSrv := &http.Server{Addr: cfg.App.MetricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server exited", zap.Error(err))
		}
	}()

	logger.Info("engine running",
		zap.String("feed_addr", cfg.Feed.Addr),
		zap.String("metrics_addr", cfg.App.MetricsAddr),
		zap.Strings("intake_brokers", cfg.Intake.Brokers),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = feedSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	_ = journal.Sync()
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
