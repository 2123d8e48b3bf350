package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"wahlnetz-service/internal/domain"
)

// DatasetWriter upserts datasets, used by the seed command.
type DatasetWriter struct {
	db *bun.DB
}

func NewDatasetWriter(db *bun.DB) *DatasetWriter {
	return &DatasetWriter{db: db}
}

// Save validates ds and stores it under its id, replacing any previous version.
func (w *DatasetWriter) Save(ctx context.Context, ds domain.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	_, err = w.db.ExecContext(ctx,
		`INSERT INTO datasets (id, data, updated_at) VALUES (?, ?::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		ds.ID, string(data))
	if err != nil {
		return fmt.Errorf("save dataset %s: %w", ds.ID, err)
	}
	return nil
}
