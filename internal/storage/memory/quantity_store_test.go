package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

func TestQuantityStore_InsertAndGet(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	e := &domain.QuantityEvent{
		EventID:     "evt-1",
		ProductID:   "prod-1",
		AmountMg:    20,
		TimestampMs: 1704067200000,
		CreatedAt:   1704067200000,
	}

	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "evt-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AmountMg != 20 || got.ProductID != "prod-1" {
		t.Errorf("Unexpected event: %+v", got)
	}
}

func TestQuantityStore_DuplicateKey(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	e := &domain.QuantityEvent{EventID: "evt-1", ProductID: "prod-1", AmountMg: 1, TimestampMs: 1}

	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, e); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestQuantityStore_GetByTimeRange(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p", AmountMg: 1, TimestampMs: 100},
		{EventID: "e2", ProductID: "p", AmountMg: 1, TimestampMs: 200},
		{EventID: "e3", ProductID: "p", AmountMg: 1, TimestampMs: 300},
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	// Bounds are inclusive on both ends.
	got, err := store.GetByTimeRange(ctx, 100, 200)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].EventID != "e1" || got[1].EventID != "e2" {
		t.Errorf("Unexpected order: %s, %s", got[0].EventID, got[1].EventID)
	}
}

func TestQuantityStore_GetByProductID(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p1", AmountMg: 1, TimestampMs: 200},
		{EventID: "e2", ProductID: "p2", AmountMg: 1, TimestampMs: 100},
		{EventID: "e3", ProductID: "p1", AmountMg: 1, TimestampMs: 100},
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByProductID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByProductID failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 events for p1, got %d", len(got))
	}
	if got[0].EventID != "e3" || got[1].EventID != "e1" {
		t.Errorf("Expected timestamp order e3,e1; got %s,%s", got[0].EventID, got[1].EventID)
	}
}

func TestQuantityStore_DeleteByProductID(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p1", AmountMg: 1, TimestampMs: 1},
		{EventID: "e2", ProductID: "p2", AmountMg: 1, TimestampMs: 2},
		{EventID: "e3", ProductID: "p1", AmountMg: 1, TimestampMs: 3},
	} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	removed, err := store.DeleteByProductID(ctx, "p1")
	if err != nil {
		t.Fatalf("DeleteByProductID failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	remaining, _ := store.GetAll(ctx)
	if len(remaining) != 1 || remaining[0].EventID != "e2" {
		t.Errorf("Unexpected remaining events: %+v", remaining)
	}

	// No events for product is not an error.
	removed, err = store.DeleteByProductID(ctx, "p1")
	if err != nil {
		t.Fatalf("Second DeleteByProductID failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed, got %d", removed)
	}
}

func TestQuantityStore_DeleteNotFound(t *testing.T) {
	store := NewQuantityStore()
	ctx := context.Background()

	if err := store.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
