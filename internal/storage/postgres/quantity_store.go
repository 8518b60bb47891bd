package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// QuantityStore implements storage.QuantityStore using PostgreSQL.
type QuantityStore struct {
	pool *Pool
}

// NewQuantityStore creates a new QuantityStore.
func NewQuantityStore(pool *Pool) *QuantityStore {
	return &QuantityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.QuantityStore = (*QuantityStore)(nil)

const quantityColumns = `event_id, product_id, amount_mg, timestamp_ms, created_at`

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *QuantityStore) Insert(ctx context.Context, e *domain.QuantityEvent) error {
	query := `
		INSERT INTO quantity_events (
			event_id, product_id, amount_mg, timestamp_ms, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		e.EventID,
		e.ProductID,
		e.AmountMg,
		e.TimestampMs,
		e.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert quantity event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
func (s *QuantityStore) GetByID(ctx context.Context, eventID string) (*domain.QuantityEvent, error) {
	query := `
		SELECT ` + quantityColumns + `
		FROM quantity_events
		WHERE event_id = $1
	`

	row := s.pool.QueryRow(ctx, query, eventID)
	e, err := scanQuantityEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get quantity event by id: %w", err)
	}
	return e, nil
}

// GetAll retrieves all events, ordered by timestamp ASC, event_id ASC.
func (s *QuantityStore) GetAll(ctx context.Context) ([]*domain.QuantityEvent, error) {
	query := `
		SELECT ` + quantityColumns + `
		FROM quantity_events
		ORDER BY timestamp_ms ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all quantity events: %w", err)
	}
	defer rows.Close()

	return scanQuantityEvents(rows)
}

// GetByProductID retrieves all events for a product, ordered by timestamp ASC.
func (s *QuantityStore) GetByProductID(ctx context.Context, productID string) ([]*domain.QuantityEvent, error) {
	query := `
		SELECT ` + quantityColumns + `
		FROM quantity_events
		WHERE product_id = $1
		ORDER BY timestamp_ms ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get quantity events by product: %w", err)
	}
	defer rows.Close()

	return scanQuantityEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] (inclusive, ms).
func (s *QuantityStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.QuantityEvent, error) {
	query := `
		SELECT ` + quantityColumns + `
		FROM quantity_events
		WHERE timestamp_ms >= $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get quantity events by time range: %w", err)
	}
	defer rows.Close()

	return scanQuantityEvents(rows)
}

// Delete removes an event. Returns ErrNotFound if event_id does not exist.
func (s *QuantityStore) Delete(ctx context.Context, eventID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quantity_events WHERE event_id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("delete quantity event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteByProductID removes all events for a product.
func (s *QuantityStore) DeleteByProductID(ctx context.Context, productID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quantity_events WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete quantity events by product: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanQuantityEvent scans a single row into a QuantityEvent.
func scanQuantityEvent(row pgx.Row) (*domain.QuantityEvent, error) {
	var e domain.QuantityEvent
	err := row.Scan(
		&e.EventID,
		&e.ProductID,
		&e.AmountMg,
		&e.TimestampMs,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// scanQuantityEvents scans multiple rows into a slice of QuantityEvent.
func scanQuantityEvents(rows pgx.Rows) ([]*domain.QuantityEvent, error) {
	var events []*domain.QuantityEvent

	for rows.Next() {
		var e domain.QuantityEvent
		err := rows.Scan(
			&e.EventID,
			&e.ProductID,
			&e.AmountMg,
			&e.TimestampMs,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quantity event row: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quantity event rows: %w", err)
	}

	return events, nil
}
