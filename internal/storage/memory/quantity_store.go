package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// QuantityStore is an in-memory implementation of storage.QuantityStore.
type QuantityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.QuantityEvent // keyed by event_id
}

// NewQuantityStore creates a new in-memory quantity event store.
func NewQuantityStore() *QuantityStore {
	return &QuantityStore{
		data: make(map[string]*domain.QuantityEvent),
	}
}

// Compile-time interface check.
var _ storage.QuantityStore = (*QuantityStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *QuantityStore) Insert(_ context.Context, e *domain.QuantityEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.data[e.EventID] = &eventCopy
	return nil
}

// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
func (s *QuantityStore) GetByID(_ context.Context, eventID string) (*domain.QuantityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	eventCopy := *e
	return &eventCopy, nil
}

// GetAll retrieves all events, ordered by timestamp ASC, event_id ASC.
func (s *QuantityStore) GetAll(_ context.Context) ([]*domain.QuantityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(*domain.QuantityEvent) bool { return true }), nil
}

// GetByProductID retrieves all events for a product, ordered by timestamp ASC.
func (s *QuantityStore) GetByProductID(_ context.Context, productID string) ([]*domain.QuantityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(e *domain.QuantityEvent) bool {
		return e.ProductID == productID
	}), nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive, ms).
func (s *QuantityStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.QuantityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(e *domain.QuantityEvent) bool {
		return e.TimestampMs >= start && e.TimestampMs <= end
	}), nil
}

// Delete removes an event. Returns ErrNotFound if event_id does not exist.
func (s *QuantityStore) Delete(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[eventID]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, eventID)
	return nil
}

// DeleteByProductID removes all events for a product.
func (s *QuantityStore) DeleteByProductID(_ context.Context, productID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, e := range s.data {
		if e.ProductID == productID {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

// collect returns copies of all events matching the filter, sorted by
// (timestamp, event_id). Callers must hold at least the read lock.
func (s *QuantityStore) collect(match func(*domain.QuantityEvent) bool) []*domain.QuantityEvent {
	var events []*domain.QuantityEvent
	for _, e := range s.data {
		if match(e) {
			eventCopy := *e
			events = append(events, &eventCopy)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].TimestampMs != events[j].TimestampMs {
			return events[i].TimestampMs < events[j].TimestampMs
		}
		return events[i].EventID < events[j].EventID
	})

	return events
}
