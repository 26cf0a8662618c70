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

	"staged/internal/api"
	"staged/internal/config"
	"staged/internal/logging"
	"staged/internal/workspace"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal("failed to get working directory:", err)
	}

	// Load configuration
	cfg, err := config.Load(wd)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize workspace
	ws, err := workspace.Open(ctx, "", cfg, logger.Logger)
	if err != nil {
		logger.Fatal("failed to open workspace", zap.Error(err))
	}
	defer ws.Close()

	reviews, err := ws.Reviews()
	if err != nil {
		logger.Fatal("failed to open review store", zap.Error(err))
	}

	// Initialize handlers
	diffHandler := api.NewDiffHandler(ws.Diffs, ws.Repo, logger)
	reviewHandler := api.NewReviewHandler(reviews, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(diffHandler, reviewHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", server.Addr),
			zap.String("repo", ws.Repo.Root()),
			zap.String("algorithm", cfg.Diff.Algorithm),
		)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}
