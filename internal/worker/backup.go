package worker

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gestion-notas/internal/config"
	"gestion-notas/internal/logger"
	"gestion-notas/internal/service"
	"gestion-notas/internal/storage"

	"github.com/rs/zerolog"
)

// BackupWorker periodically snapshots the whole store to S3 as the same
// JSON array shape the bulk importer accepts, so a backup can be
// replayed through the import pipeline.
type BackupWorker struct {
	cfg     *config.Config
	svc     *service.Service
	storage storage.Storage
	log     zerolog.Logger
}

func NewBackupWorker(cfg *config.Config, svc *service.Service, stg storage.Storage) *BackupWorker {
	return &BackupWorker{
		cfg:     cfg,
		svc:     svc,
		storage: stg,
		log:     logger.Get(),
	}
}

func (w *BackupWorker) Start(ctx context.Context) error {
	interval := w.cfg.Workers.Backup.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	w.log.Info().Dur("interval", interval).Msg("Starting backup worker")

	if w.cfg.Workers.Backup.RunOnStart {
		if err := w.runOnce(ctx); err != nil {
			w.log.Error().Err(err).Msg("Initial backup failed")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("Backup failed")
			}
		}
	}
}

func (w *BackupWorker) runOnce(ctx context.Context) error {
	data, err := w.svc.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export store: %w", err)
	}

	prefix := w.cfg.Workers.Backup.Prefix
	if prefix == "" {
		prefix = "backups"
	}
	key := fmt.Sprintf("%s/estudiantes-%s.json", prefix, time.Now().UTC().Format("20060102T150405Z"))

	if err := w.storage.Upload(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	w.log.Info().Str("key", key).Int("bytes", len(data)).Msg("Backup uploaded")
	return nil
}
