package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSlot is an in-memory Slot double recording every write.
type mapSlot struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMapSlot() *mapSlot {
	return &mapSlot{data: map[string][]byte{}}
}

func (m *mapSlot) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return v, nil
}

func (m *mapSlot) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func TestStore_PersistsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	slot := newMapSlot()
	s := NewStore(slot, "", nil)

	s.AddItem(ctx, mug(1200))
	s.UpdateQuantity(ctx, 1, 4)
	s.RemoveItem(ctx, 1)
	s.Clear(ctx)

	assert.Equal(t, 4, slot.sets)

	// The slot always holds the latest snapshot.
	items, err := Decode(slot.data[DefaultKey])
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := newMapSlot()

	s := NewStore(slot, "cart", nil)
	s.AddItem(ctx, mug(1200))
	s.UpdateQuantity(ctx, 1, 12)
	s.AddItem(ctx, pen())
	want := s.Snapshot()

	// A fresh store over the same slot rehydrates to the same state.
	restored := NewStore(slot, "cart", nil)
	restored.Load(ctx)
	got := restored.Snapshot()

	require.Len(t, got.Items, len(want.Items))
	for i, it := range want.Items {
		assert.Equal(t, it.ProductID, got.Items[i].ProductID)
		assert.Equal(t, it.Quantity, got.Items[i].Quantity)
		assert.Equal(t, it.Price, got.Items[i].Price)
	}
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, want.ItemCount, got.ItemCount)
}

func TestStore_LoadMissingKeyStartsEmpty(t *testing.T) {
	s := NewStore(newMapSlot(), "cart", nil)
	s.Load(context.Background())

	c := s.Snapshot()
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Total)
	assert.Zero(t, c.ItemCount)
}

func TestStore_LoadCorruptRecordStartsEmpty(t *testing.T) {
	slot := newMapSlot()
	slot.data["cart"] = []byte(`{"items": [{"productId": broken`)

	s := NewStore(slot, "cart", nil)
	s.Load(context.Background())

	assert.Empty(t, s.Snapshot().Items)
}

func TestStore_LoadRecomputesTotals(t *testing.T) {
	// Stored totals are garbage; rehydration must derive them from the items.
	slot := newMapSlot()
	slot.data["cart"] = []byte(`{
		"items": [
			{"productId": 3, "quantity": 5, "price": 200, "name": "Cap", "sku": "CAP-03", "category": "apparel"}
		],
		"total": -1,
		"itemCount": 1000
	}`)

	s := NewStore(slot, "cart", nil)
	s.Load(context.Background())

	c := s.Snapshot()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(1000), c.Total)
	assert.Equal(t, 5, c.ItemCount)
}

func TestStore_PersistFailureDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	slot := newMapSlot()
	slot.setErr = errors.New("storage down")

	s := NewStore(slot, "cart", nil)
	c := s.AddItem(ctx, mug(1200))

	// The in-memory cart advanced even though the write failed.
	assert.Equal(t, int64(1200), c.Total)
	assert.True(t, s.IsInCart(1))
}

func TestStore_LoadGetFailureStartsEmpty(t *testing.T) {
	slot := newMapSlot()
	slot.getErr = errors.New("storage down")

	s := NewStore(slot, "cart", nil)
	s.Load(context.Background())

	assert.Empty(t, s.Snapshot().Items)
}

func TestStore_IsInCart(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMapSlot(), "cart", nil)

	assert.False(t, s.IsInCart(1))
	s.AddItem(ctx, mug(1200))
	assert.True(t, s.IsInCart(1))
	s.RemoveItem(ctx, 1)
	assert.False(t, s.IsInCart(1))
}
