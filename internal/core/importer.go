package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// rollbackTimeout bounds a rollback issued after the import context expired.
const rollbackTimeout = 5 * time.Second

// ImportPhase names the coordinator states logged at debug level.
type ImportPhase string

const (
	PhaseIdle        ImportPhase = "idle"
	PhaseStreaming   ImportPhase = "streaming"
	PhaseBatchReady  ImportPhase = "batch_ready"
	PhaseInserting   ImportPhase = "inserting"
	PhaseCommitted   ImportPhase = "committed"
	PhaseRolledBack  ImportPhase = "rolled_back"
	PhaseDone        ImportPhase = "done"
	PhaseStreamError ImportPhase = "stream_error"
)

// Observer receives pipeline events, typically for metrics.
type Observer interface {
	BatchDone(res BatchResult)
	ImportDone(report *ImportReport, err error)
}

type noopObserver struct{}

func (noopObserver) BatchDone(BatchResult)           {}
func (noopObserver) ImportDone(*ImportReport, error) {}

// ImporterConfig configures an Importer. Zero values fall back to defaults.
type ImporterConfig struct {
	BatchSize int
	Observer  Observer
	Logger    *slog.Logger
}

// Importer drives decoder, mapper and batcher, and writes every batch in its
// own transaction. A failed batch is rolled back and recorded; later batches
// still run.
type Importer struct {
	writer    BatchWriter
	batchSize int
	observer  Observer
	logger    *slog.Logger
}

// NewImporter returns an importer writing through w.
func NewImporter(w BatchWriter, cfg ImporterConfig) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultChunkSize
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Importer{
		writer:    w,
		batchSize: cfg.BatchSize,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
	}
}

// Import streams r to storage. It returns an error only when the input
// stream fails or ctx expires; batch failures are reported in the
// ImportReport. The report is never nil.
func (in *Importer) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	start := time.Now()
	report := &ImportReport{ImportID: uuid.New()}
	log := LoggerFromContext(ctx, in.logger).With("import_id", report.ImportID)
	if client, ok := ClientFromContext(ctx); ok {
		log.Info("import started", "client_ip", client.IP, "user_agent", client.UserAgent)
	}

	dec := NewRowDecoder(r)
	batcher := NewBatcher(in.batchSize)
	var nextID int64

	err := func() error {
		log.Debug("import state", "state", PhaseIdle)
		log.Debug("import state", "state", PhaseStreaming)
		for {
			row, err := dec.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Debug("import state", "state", PhaseStreamError)
				return err
			}

			nextID++
			report.Rows++
			if batch, ok := batcher.Add(MapRow(row, nextID, report.ImportID)); ok {
				if err := in.runBatch(ctx, log, batch, report); err != nil {
					return err
				}
			}
		}

		if batch, ok := batcher.Flush(); ok {
			return in.runBatch(ctx, log, batch, report)
		}
		return nil
	}()

	report.SkippedRows = dec.Skipped()
	report.BytesRead = dec.BytesRead()
	report.Duration = time.Since(start)
	report.DurationMs = report.Duration.Milliseconds()

	in.observer.ImportDone(report, err)
	if err != nil {
		log.Error("import aborted",
			"error", err,
			"rows", report.Rows,
			"batches_committed", report.BatchesCommitted,
			"batches_failed", report.BatchesFailed,
		)
		return report, err
	}

	log.Debug("import state", "state", PhaseDone)
	log.Info("import completed",
		"rows", report.Rows,
		"skipped_rows", report.SkippedRows,
		"batches_committed", report.BatchesCommitted,
		"batches_failed", report.BatchesFailed,
		"bytes_read", report.BytesRead,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

// runBatch writes one batch and folds the outcome into report.
// It only returns an error when ctx is done, since later batches would fail too.
func (in *Importer) runBatch(ctx context.Context, log *slog.Logger, batch Batch, report *ImportReport) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import stopped before batch %d: %w", batch.Seq, err)
	}

	first := batch.Pairs[0].Employee.ID
	last := batch.Pairs[len(batch.Pairs)-1].Employee.ID
	log.Debug("import state", "state", PhaseBatchReady, "batch", batch.Seq, "rows", batch.Len())

	start := time.Now()
	log.Debug("import state", "state", PhaseInserting, "batch", batch.Seq)
	err := in.writeBatch(ctx, batch)

	res := BatchResult{
		Seq:      batch.Seq,
		FirstID:  first,
		Rows:     batch.Len(),
		Status:   BatchCommitted,
		Err:      err,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Status = BatchRolledBack
		log.Debug("import state", "state", PhaseRolledBack, "batch", batch.Seq)
		log.Warn("batch rolled back",
			"batch", batch.Seq,
			"first_row", first,
			"last_row", last,
			"code", MapError(err).Code,
			"error", err,
		)
	} else {
		log.Debug("import state", "state", PhaseCommitted, "batch", batch.Seq, "duration_ms", res.Duration.Milliseconds())
	}

	report.record(res)
	in.observer.BatchDone(res)
	return nil
}

// writeBatch runs Begin, both inserts and Commit, rolling back on any failure.
func (in *Importer) writeBatch(ctx context.Context, batch Batch) error {
	tx, err := in.writer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch %d: %w", batch.Seq, err)
	}

	if err := tx.InsertEmployees(ctx, batch.Employees()); err != nil {
		return rollback(ctx, tx, fmt.Errorf("insert employees: %w", err))
	}
	if err := tx.InsertAddresses(ctx, batch.Addresses()); err != nil {
		return rollback(ctx, tx, fmt.Errorf("insert addresses: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return rollback(ctx, tx, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func rollback(ctx context.Context, tx BatchTx, cause error) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := tx.Rollback(rctx); err != nil {
		return errors.Join(cause, fmt.Errorf("rollback: %w", err))
	}
	return cause
}
