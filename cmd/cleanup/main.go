// Command cleanup runs the log retention sweep once and prints the summary.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"coin_backend/internal/app/bootstrap"
	"coin_backend/internal/app/di"
)

func main() {
	env, err := bootstrap.Load("cleanup")
	if err != nil {
		log.Fatal(err)
	}
	defer env.Cleanup()
	logger := env.Logger

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	c, err := di.Build(ctx, env.Cfg, logger, env.Sink)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer c.Close()

	cleaner, err := c.Cleaner()
	if err != nil {
		logger.Fatal("Failed to initialize log cleanup", zap.Error(err))
	}
	sum, err := cleaner.Run(ctx)
	if err != nil {
		logger.Fatal("Log cleanup failed", zap.Error(err))
	}
	fmt.Println(sum.String())
}
