package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LotusZaheer/antidepressant/internal/domain"
	"github.com/LotusZaheer/antidepressant/internal/storage"
)

// seedProduct inserts a product so quantity event FKs resolve.
func seedProduct(t *testing.T, pool *Pool, productID string) {
	t.Helper()
	store := NewProductStore(pool)
	require.NoError(t, store.Insert(context.Background(), &domain.Product{
		ProductID: productID, Name: productID, HalfLifeHours: 24, CreatedAt: 1,
	}))
}

func TestQuantityStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, pool, "p1")
	store := NewQuantityStore(pool)
	ctx := context.Background()

	e := &domain.QuantityEvent{
		EventID:     "evt-1",
		ProductID:   "p1",
		AmountMg:    20,
		TimestampMs: 1704067200000,
		CreatedAt:   1704067200000,
	}
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.GetByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, e.ProductID, got.ProductID)
	assert.Equal(t, e.AmountMg, got.AmountMg)
	assert.Equal(t, e.TimestampMs, got.TimestampMs)
}

func TestQuantityStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, pool, "p1")
	store := NewQuantityStore(pool)
	ctx := context.Background()

	e := &domain.QuantityEvent{EventID: "evt-1", ProductID: "p1", AmountMg: 1, TimestampMs: 1, CreatedAt: 1}
	require.NoError(t, store.Insert(ctx, e))

	err := store.Insert(ctx, e)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestQuantityStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, pool, "p1")
	store := NewQuantityStore(pool)
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p1", AmountMg: 1, TimestampMs: 100, CreatedAt: 1},
		{EventID: "e2", ProductID: "p1", AmountMg: 1, TimestampMs: 200, CreatedAt: 1},
		{EventID: "e3", ProductID: "p1", AmountMg: 1, TimestampMs: 300, CreatedAt: 1},
	} {
		require.NoError(t, store.Insert(ctx, e))
	}

	got, err := store.GetByTimeRange(ctx, 100, 200)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].EventID)
	assert.Equal(t, "e2", got[1].EventID)
}

func TestQuantityStore_GetByProductIDOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, pool, "p1")
	seedProduct(t, pool, "p2")
	store := NewQuantityStore(pool)
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p1", AmountMg: 1, TimestampMs: 300, CreatedAt: 1},
		{EventID: "e2", ProductID: "p2", AmountMg: 1, TimestampMs: 100, CreatedAt: 1},
		{EventID: "e3", ProductID: "p1", AmountMg: 1, TimestampMs: 100, CreatedAt: 1},
	} {
		require.NoError(t, store.Insert(ctx, e))
	}

	got, err := store.GetByProductID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e3", got[0].EventID)
	assert.Equal(t, "e1", got[1].EventID)
}

func TestQuantityStore_DeleteAndDeleteByProduct(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, pool, "p1")
	seedProduct(t, pool, "p2")
	store := NewQuantityStore(pool)
	ctx := context.Background()

	for _, e := range []*domain.QuantityEvent{
		{EventID: "e1", ProductID: "p1", AmountMg: 1, TimestampMs: 1, CreatedAt: 1},
		{EventID: "e2", ProductID: "p1", AmountMg: 1, TimestampMs: 2, CreatedAt: 1},
		{EventID: "e3", ProductID: "p2", AmountMg: 1, TimestampMs: 3, CreatedAt: 1},
	} {
		require.NoError(t, store.Insert(ctx, e))
	}

	require.NoError(t, store.Delete(ctx, "e1"))
	assert.ErrorIs(t, store.Delete(ctx, "e1"), storage.ErrNotFound)

	removed, err := store.DeleteByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "e3", remaining[0].EventID)
}
