package clickhouse

import (
	"context"
	"fmt"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// SampleArchiveStore implements storage.SampleArchiveStore using ClickHouse.
// Archived projections are append-only analytics data; MergeTree ordering by
// (product_id, timestamp_ms) serves both query shapes.
type SampleArchiveStore struct {
	conn *Conn
}

// NewSampleArchiveStore creates a new SampleArchiveStore.
func NewSampleArchiveStore(conn *Conn) *SampleArchiveStore {
	return &SampleArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleArchiveStore = (*SampleArchiveStore)(nil)

// InsertBulk adds multiple samples in one batch.
func (s *SampleArchiveStore) InsertBulk(ctx context.Context, samples []*domain.ArchivedSample) error {
	if len(samples) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO projection_archive (
			product_id, timestamp_ms, concentration, computed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(
			p.ProductID, uint64(p.TimestampMs), p.Concentration, uint64(p.ComputedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByProductID retrieves archived samples for a product, ordered by timestamp ASC.
func (s *SampleArchiveStore) GetByProductID(ctx context.Context, productID string) ([]*domain.ArchivedSample, error) {
	query := `
		SELECT product_id, timestamp_ms, concentration, computed_at
		FROM projection_archive
		WHERE product_id = ?
		ORDER BY timestamp_ms ASC, computed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query archive by product: %w", err)
	}
	defer rows.Close()

	return scanArchivedSamples(rows)
}

// GetByTimeRange retrieves archived samples within [start, end] (inclusive, ms).
func (s *SampleArchiveStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ArchivedSample, error) {
	query := `
		SELECT product_id, timestamp_ms, concentration, computed_at
		FROM projection_archive
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, product_id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query archive by time range: %w", err)
	}
	defer rows.Close()

	return scanArchivedSamples(rows)
}

type archiveRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanArchivedSamples(rows archiveRows) ([]*domain.ArchivedSample, error) {
	var samples []*domain.ArchivedSample

	for rows.Next() {
		var (
			s           domain.ArchivedSample
			timestampMs uint64
			computedAt  uint64
		)
		if err := rows.Scan(&s.ProductID, &timestampMs, &s.Concentration, &computedAt); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		s.TimestampMs = int64(timestampMs)
		s.ComputedAt = int64(computedAt)
		samples = append(samples, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}

	return samples, nil
}
