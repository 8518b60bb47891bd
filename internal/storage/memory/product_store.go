package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// ProductStore is an in-memory implementation of storage.ProductStore.
type ProductStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Product // keyed by product_id
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		data: make(map[string]*domain.Product),
	}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

// Insert adds a new product. Returns ErrDuplicateKey if product_id exists.
func (s *ProductStore) Insert(_ context.Context, p *domain.Product) error {
	if p == nil || p.ProductID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ProductID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	productCopy := *p
	s.data[p.ProductID] = &productCopy
	return nil
}

// GetByID retrieves a product by its ID. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[productID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	productCopy := *p
	return &productCopy, nil
}

// GetAll retrieves all products, ordered by created_at ASC, product_id ASC.
func (s *ProductStore) GetAll(_ context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]*domain.Product, 0, len(s.data))
	for _, p := range s.data {
		productCopy := *p
		products = append(products, &productCopy)
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt != products[j].CreatedAt {
			return products[i].CreatedAt < products[j].CreatedAt
		}
		return products[i].ProductID < products[j].ProductID
	})

	return products, nil
}

// Update replaces the mutable fields of an existing product.
func (s *ProductStore) Update(_ context.Context, p *domain.Product) error {
	if p == nil || p.ProductID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[p.ProductID]
	if !exists {
		return storage.ErrNotFound
	}

	existing.Name = p.Name
	existing.HalfLifeHours = p.HalfLifeHours
	existing.Color = p.Color
	return nil
}

// Delete removes a product. Returns ErrNotFound if product_id does not exist.
func (s *ProductStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[productID]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, productID)
	return nil
}
