package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gestion-notas/internal/config"
	"gestion-notas/internal/logger"
	"gestion-notas/internal/service"
	"gestion-notas/internal/storage"
	"gestion-notas/internal/store"
	"gestion-notas/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init("backup-worker", cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Str("backend", cfg.DataSource.Backend).Msg("Starting backup worker")

	// Initialize store for the configured backend
	st, cleanup, err := store.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer cleanup()

	svc := service.New(st)

	// Initialize S3 storage
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
	}

	// Create backup worker
	backupWorker := worker.NewBackupWorker(cfg, svc, s3Storage)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker
	go func() {
		if err := backupWorker.Start(ctx); err != nil && err != context.Canceled {
			log.Fatal().Err(err).Msg("Backup worker failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down backup worker...")
	cancel()

	log.Info().Msg("Backup worker exited")
}
