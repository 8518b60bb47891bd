package domain

// QuantityEvent represents a single dose of a product taken at a point in time.
// Corresponds to quantity_events table in PostgreSQL.
type QuantityEvent struct {
	EventID     string  // opaque unique identifier
	ProductID   string  // FK to products; dangling references are skipped by projection
	AmountMg    float64 // dose introduced at TimestampMs, mg
	TimestampMs int64   // Unix timestamp in milliseconds
	CreatedAt   int64   // record creation timestamp (ms)
}

// Validate checks invariants enforced at the data-entry layer.
func (e *QuantityEvent) Validate() error {
	if e.EventID == "" {
		return ErrEmptyID
	}
	if e.ProductID == "" {
		return ErrEmptyProductRef
	}
	if e.AmountMg <= 0 {
		return ErrInvalidAmount
	}
	if e.TimestampMs <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}
