package storage

import (
	"context"

	"github.com/LotusZaheer/antidepressant/internal/domain"
)

// ProductStore provides access to products storage.
type ProductStore interface {
	// Insert adds a new product. Returns ErrDuplicateKey if product_id exists.
	Insert(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, productID string) (*domain.Product, error)

	// GetAll retrieves all products, ordered by created_at ASC, product_id ASC.
	GetAll(ctx context.Context) ([]*domain.Product, error)

	// Update replaces the mutable fields (name, half-life, color) of an
	// existing product. Returns ErrNotFound if product_id does not exist.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes a product. Returns ErrNotFound if product_id does not exist.
	Delete(ctx context.Context, productID string) error
}

// QuantityStore provides access to quantity_events storage.
type QuantityStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.QuantityEvent) error

	// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, eventID string) (*domain.QuantityEvent, error)

	// GetAll retrieves all events, ordered by timestamp ASC, event_id ASC.
	GetAll(ctx context.Context) ([]*domain.QuantityEvent, error)

	// GetByProductID retrieves all events for a product, ordered by timestamp ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.QuantityEvent, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive, ms),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.QuantityEvent, error)

	// Delete removes an event. Returns ErrNotFound if event_id does not exist.
	Delete(ctx context.Context, eventID string) error

	// DeleteByProductID removes all events for a product. Deleting a product
	// with no events is not an error; returns the number of events removed.
	DeleteByProductID(ctx context.Context, productID string) (int64, error)
}

// SampleArchiveStore provides access to archived projection samples.
type SampleArchiveStore interface {
	// InsertBulk adds multiple samples in one batch.
	InsertBulk(ctx context.Context, samples []*domain.ArchivedSample) error

	// GetByProductID retrieves archived samples for a product, ordered by
	// timestamp ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.ArchivedSample, error)

	// GetByTimeRange retrieves archived samples within [start, end]
	// (inclusive, ms) across all products, ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ArchivedSample, error)
}
