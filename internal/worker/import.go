package worker

import (
	"context"
	"encoding/json"
	"io"

	"gestion-notas/internal/config"
	"gestion-notas/internal/ingest"
	"gestion-notas/internal/logger"
	"gestion-notas/internal/model"
	"gestion-notas/internal/queue"
	"gestion-notas/internal/storage"
	"gestion-notas/internal/store"

	"github.com/rs/zerolog"
)

// ImportWorker drains the import queue: download the uploaded file,
// parse and validate it, bulk-insert the records and record the outcome
// on the import row. A failed import carries the full validation message
// so the UI can show every bad row at once.
type ImportWorker struct {
	cfg      *config.Config
	store    store.Store
	storage  storage.Storage
	consumer *queue.Consumer
	pool     *Pool
	log      zerolog.Logger
}

func NewImportWorker(
	cfg *config.Config,
	st store.Store,
	stg storage.Storage,
	redisClient *queue.RedisClient,
) *ImportWorker {
	return &ImportWorker{
		cfg:      cfg,
		store:    st,
		storage:  stg,
		consumer: queue.NewConsumer(redisClient, cfg),
		pool:     NewPool(cfg.Workers.Import.Count),
		log:      logger.Get(),
	}
}

func (w *ImportWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting import worker")

	w.pool.Start(ctx)

	return w.consumer.ConsumeImportQueue(ctx, w.handleMessage)
}

func (w *ImportWorker) Stop() {
	w.log.Info().Msg("Stopping import worker")
	w.pool.Stop()
}

func (w *ImportWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal import job")
		return err
	}

	w.log.Info().Int64("import_id", job.ImportID).Str("s3_path", job.S3Path).Msg("Processing import job")

	return w.pool.Submit(ctx, func(ctx context.Context) error {
		return w.processImport(ctx, job)
	})
}

func (w *ImportWorker) processImport(ctx context.Context, job model.ImportJob) error {
	log := w.log.With().Int64("import_id", job.ImportID).Logger()

	parser, err := ingest.ForPath(job.S3Path)
	if err != nil {
		return w.fail(ctx, log, job, err)
	}

	log.Debug().Msg("Downloading import file")
	reader, err := w.storage.Download(ctx, job.S3Path)
	if err != nil {
		return w.fail(ctx, log, job, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return w.fail(ctx, log, job, err)
	}

	log.Debug().Msg("Parsing and validating import file")
	students, err := parser.Parse(ctx, data)
	if err != nil {
		return w.fail(ctx, log, job, err)
	}

	if err := w.store.BulkInsert(ctx, students); err != nil {
		return w.fail(ctx, log, job, err)
	}

	if err := w.store.UpdateImportStatus(ctx, job.ImportID, model.ImportStatusLoaded, len(students), nil); err != nil {
		log.Error().Err(err).Msg("Failed to update import status")
		return err
	}

	log.Info().Int("count", len(students)).Msg("Import loaded")
	return nil
}

func (w *ImportWorker) fail(ctx context.Context, log zerolog.Logger, job model.ImportJob, cause error) error {
	log.Error().Err(cause).Msg("Import failed")

	errorMsg := cause.Error()
	if err := w.store.UpdateImportStatus(ctx, job.ImportID, model.ImportStatusFailed, 0, &errorMsg); err != nil {
		log.Error().Err(err).Msg("Failed to record import failure")
	}
	return cause
}
