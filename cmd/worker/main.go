package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coin_backend/internal/app/bootstrap"
	"coin_backend/internal/app/di"
)

func main() {
	env, err := bootstrap.Load("worker")
	if err != nil {
		log.Fatal(err)
	}
	defer env.Cleanup()
	logger := env.Logger
	cfg := env.Cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := di.Build(ctx, cfg, logger, env.Sink)
	if err != nil {
		logger.Fatal("Failed to initialize worker", zap.Error(err))
	}
	defer c.Close()

	worker, err := c.Worker()
	if err != nil {
		logger.Fatal("Failed to initialize task worker", zap.Error(err))
	}
	runner := c.Runner()
	cleaner, err := c.Cleaner()
	if err != nil {
		logger.Warn("Log cleanup disabled", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = worker.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		tick(ctx, cfg.Worker.ScrapeInterval, func(ctx context.Context) {
			if _, err := runner.RunDue(ctx); err != nil && ctx.Err() == nil {
				logger.Error("scheduled scrape tick failed", zap.Error(err))
			}
		})
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		tick(ctx, cfg.Retention.Interval, func(ctx context.Context) {
			c.RunRetention(ctx, cleaner)
		})
	}()

	logger.Info("Worker started",
		zap.Duration("scrape_interval", cfg.Worker.ScrapeInterval),
		zap.Duration("retention_interval", cfg.Retention.Interval),
		zap.Int("concurrency", cfg.Worker.Concurrency))
	<-ctx.Done()
	logger.Info("Shutting down worker...")
	wg.Wait()
	logger.Info("Worker exited properly")
}

// tick runs fn immediately and then every interval. A slow run delays the
// next one instead of overlapping it.
func tick(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		fn(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
