package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"forecastcache.app/internal/app"
	"forecastcache.app/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found or error loading it")
	}

	logger.SetDefault(os.Getenv("LOG_LEVEL"))

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	cfg := application.Config()
	slog.Info("Configuration loaded successfully",
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type.String(),
		"provider", cfg.Provider.BaseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := setupGracefulShutdown(cancel, application)

	slog.Info("Starting forecast cache service...")
	if err := application.Start(ctx); err != nil {
		slog.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Start returns once the server stops accepting; wait for cleanup to finish
	<-done
}

func setupGracefulShutdown(cancel context.CancelFunc, application *app.Application) <-chan struct{} {
	done := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(done)
		<-c
		slog.Info("Received shutdown signal...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), application.Config().Server.ShutdownTimeout())
		defer shutdownCancel()

		if err := application.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error during graceful shutdown", "error", err)
		}
	}()

	return done
}
