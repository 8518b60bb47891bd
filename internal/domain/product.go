package domain

import "errors"

// Validation errors returned by Validate methods.
var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidHalfLife  = errors.New("half-life must be positive")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrEmptyProductRef  = errors.New("empty product reference")
	ErrInvalidTimestamp = errors.New("timestamp must be positive")
)

// Product represents a tracked substance with its elimination half-life.
// Corresponds to products table in PostgreSQL.
type Product struct {
	ProductID     string  // opaque unique identifier
	Name          string  // display label
	HalfLifeHours float64 // time for concentration to drop to half, hours
	Color         string  // display color, opaque to the projection core
	CreatedAt     int64   // record creation timestamp (ms)
}

// Validate checks invariants that must hold before a product reaches
// storage or the projection core. A non-positive half-life would make the
// decay constant infinite or negative and is rejected here.
func (p *Product) Validate() error {
	if p.ProductID == "" {
		return ErrEmptyID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.HalfLifeHours <= 0 {
		return ErrInvalidHalfLife
	}
	return nil
}
