package indexer

import (
	"context"
	"fmt"

	"file_search_go/logger"
	"file_search_go/models"
)

// RecordWriter is the part of the record store the writer needs.
// UpsertFiles must be atomic: all records are stored or none.
type RecordWriter interface {
	UpsertFiles(ctx context.Context, files []models.FileRecord) error
}

// BatchWriter is the single consumer of scanned records. It groups records
// into batches of batchSize and commits each batch as one transaction.
type BatchWriter struct {
	store     RecordWriter
	batchSize int
	onCommit  func(n int)
}

// NewBatchWriter creates a writer. onCommit, if set, is called with the size
// of every successfully committed batch.
func NewBatchWriter(store RecordWriter, batchSize int, onCommit func(n int)) *BatchWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchWriter{store: store, batchSize: batchSize, onCommit: onCommit}
}

// Drain consumes records until the channel is closed, then flushes the
// remainder. The first failed commit is returned and ends the drain.
func (w *BatchWriter) Drain(ctx context.Context, records <-chan models.FileRecord) error {
	batch := make([]models.FileRecord, 0, w.batchSize)

	for record := range records {
		batch = append(batch, record)
		if len(batch) >= w.batchSize {
			if err := w.flush(ctx, batch); err != nil {
				return fmt.Errorf("error writing batch to database: %w", err)
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := w.flush(ctx, batch); err != nil {
			return fmt.Errorf("error writing final batch to database: %w", err)
		}
	}
	return nil
}

func (w *BatchWriter) flush(ctx context.Context, batch []models.FileRecord) error {
	if err := w.store.UpsertFiles(ctx, batch); err != nil {
		return err
	}
	logger.Debug("batch committed", "records", len(batch))
	if w.onCommit != nil {
		w.onCommit(len(batch))
	}
	return nil
}
