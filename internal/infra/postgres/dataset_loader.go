package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wahlnetz-service/internal/domain"
)

// DatasetLoader loads dataset JSONB from Postgres.
type DatasetLoader struct {
	pool *pgxpool.Pool
}

func NewDatasetLoader(pool *pgxpool.Pool) *DatasetLoader {
	return &DatasetLoader{pool: pool}
}

func (l *DatasetLoader) LoadDataset(ctx context.Context, datasetID string) (domain.Dataset, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM datasets WHERE id=$1`, datasetID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Dataset{}, domain.ErrDatasetNotFound
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("unmarshal dataset: %w", err)
	}
	return ds.Prepare()
}
