// Package store is the persistence gateway for the pipeline: bulk inserts
// of raw readings and per-file aggregates into PostgreSQL.
//
// Both operations are idempotent at the schema level (raw readings carry a
// unique dedupe key, aggregates a unique (file_name, reading_type) pair), so
// the intake orchestrator can safely resubmit a file after a crash or an
// exhausted retry. Transient connectivity failures are retried with bounded
// exponential backoff; everything else propagates immediately.
package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/sensorpipe/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertRawReadingSQL = `
	INSERT INTO raw_readings
		(sensor_id, ts, source, location, reading_type, reading_value, unit, file_name, dedupe_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (dedupe_key) DO NOTHING`

const upsertFileAggregateSQL = `
	INSERT INTO file_aggregates
		(file_name, source, reading_type, count, min_value, max_value, avg_value, stddev_value, window_start, window_end)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (file_name, reading_type) DO UPDATE SET
		source       = EXCLUDED.source,
		count        = EXCLUDED.count,
		min_value    = EXCLUDED.min_value,
		max_value    = EXCLUDED.max_value,
		avg_value    = EXCLUDED.avg_value,
		stddev_value = EXCLUDED.stddev_value,
		window_start = EXCLUDED.window_start,
		window_end   = EXCLUDED.window_end,
		updated_at   = now()`

// Store executes the pipeline's two bulk write operations against a pgx
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an existing pool. The Store does not own the
// pool; closing it is the caller's job.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertRawReadings bulk-inserts raw readings in one transaction, retrying
// transient failures. Rows whose dedupe key already exists are skipped by
// the store, so resubmitting a file is harmless. Returns the number of rows
// actually inserted. Empty input is a no-op.
func (s *Store) InsertRawReadings(ctx context.Context, rows []core.RawReading) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := retry(ctx, func() (int64, error) {
		return s.insertRawReadings(ctx, rows)
	})
	if err != nil {
		return 0, fmt.Errorf("inserting raw readings: %w", err)
	}
	return n, nil
}

func (s *Store) insertRawReadings(ctx context.Context, rows []core.RawReading) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // No-op if already committed

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertRawReadingSQL,
			r.SensorID, r.Ts, r.Source, r.Location, r.ReadingType,
			r.ReadingValue, r.Unit, r.FileName, r.DedupeKey)
	}

	inserted, err := execBatch(ctx, tx, batch)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpsertFileAggregates bulk-upserts per-file aggregates in one transaction,
// retrying transient failures. Aggregates have no natural dedupe key, so
// resubmission overwrites the existing (file_name, reading_type) row with
// identical values instead of duplicating it. Empty input is a no-op.
func (s *Store) UpsertFileAggregates(ctx context.Context, rows []core.FileAggregate) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := retry(ctx, func() (int64, error) {
		return s.upsertFileAggregates(ctx, rows)
	})
	if err != nil {
		return 0, fmt.Errorf("upserting file aggregates: %w", err)
	}
	return n, nil
}

func (s *Store) upsertFileAggregates(ctx context.Context, rows []core.FileAggregate) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, a := range rows {
		batch.Queue(upsertFileAggregateSQL,
			a.FileName, a.Source, a.ReadingType, a.Count,
			a.MinValue, a.MaxValue, a.AvgValue, a.StddevValue,
			a.WindowStart, a.WindowEnd)
	}

	affected, err := execBatch(ctx, tx, batch)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return affected, nil
}

// execBatch sends a batch over tx and sums the affected row counts.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) (int64, error) {
	results := tx.SendBatch(ctx, batch)

	var affected int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, err
		}
		affected += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	return affected, nil
}
