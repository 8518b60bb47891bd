package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// SampleArchiveStore is an in-memory implementation of storage.SampleArchiveStore.
type SampleArchiveStore struct {
	mu   sync.RWMutex
	data []*domain.ArchivedSample
}

// NewSampleArchiveStore creates a new in-memory sample archive store.
func NewSampleArchiveStore() *SampleArchiveStore {
	return &SampleArchiveStore{}
}

// Compile-time interface check.
var _ storage.SampleArchiveStore = (*SampleArchiveStore)(nil)

// InsertBulk adds multiple samples.
func (s *SampleArchiveStore) InsertBulk(_ context.Context, samples []*domain.ArchivedSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sample := range samples {
		if sample == nil || sample.ProductID == "" {
			return storage.ErrInvalidInput
		}
		sampleCopy := *sample
		s.data = append(s.data, &sampleCopy)
	}
	return nil
}

// GetByProductID retrieves archived samples for a product, ordered by timestamp ASC.
func (s *SampleArchiveStore) GetByProductID(_ context.Context, productID string) ([]*domain.ArchivedSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(a *domain.ArchivedSample) bool {
		return a.ProductID == productID
	}), nil
}

// GetByTimeRange retrieves archived samples within [start, end] (inclusive, ms).
func (s *SampleArchiveStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ArchivedSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(a *domain.ArchivedSample) bool {
		return a.TimestampMs >= start && a.TimestampMs <= end
	}), nil
}

func (s *SampleArchiveStore) collect(match func(*domain.ArchivedSample) bool) []*domain.ArchivedSample {
	var samples []*domain.ArchivedSample
	for _, a := range s.data {
		if match(a) {
			sampleCopy := *a
			samples = append(samples, &sampleCopy)
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].TimestampMs != samples[j].TimestampMs {
			return samples[i].TimestampMs < samples[j].TimestampMs
		}
		return samples[i].ProductID < samples[j].ProductID
	})

	return samples
}
