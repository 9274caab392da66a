package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coin_backend/internal/app/bootstrap"
	"coin_backend/internal/app/di"
)

func main() {
	env, err := bootstrap.Load("server")
	if err != nil {
		log.Fatal(err)
	}
	defer env.Cleanup()
	logger := env.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	c, err := di.Build(ctx, env.Cfg, logger, env.Sink)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer c.Close()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	waitWorker, err := c.StartLocalWorker(workerCtx)
	if err != nil {
		logger.Fatal("Failed to initialize task worker", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + env.Cfg.Server.Port,
		Handler:      c.Router(),
		ReadTimeout:  env.Cfg.Server.ReadTimeout,
		WriteTimeout: env.Cfg.Server.WriteTimeout,
		IdleTimeout:  env.Cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", env.Cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	// 処理中のタスクを終えてから終了する
	stopWorker()
	waitWorker()
	logger.Info("Server exited properly")
}
