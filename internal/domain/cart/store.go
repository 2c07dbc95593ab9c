package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Slot is the persistence collaborator: a durable key-value slot holding one
// serialized cart record. Implementations live in internal/storage/kv.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DefaultKey is the slot key used when NewStore is given an empty key.
const DefaultKey = "cart"

// Store owns the single authoritative cart and keeps the persisted copy in
// sync. Every mutator applies a pure transition under the store's lock and
// then writes the new snapshot to the slot; operations are serialized in
// invocation order.
//
// Persistence failures are logged and never surface to callers: the cart is
// a best-effort convenience, losing a write must not break the purchase
// flow. Concurrent writers to the same slot key across processes are not
// supported (last write wins).
type Store struct {
	slot Slot
	key  string
	lg   *zap.Logger

	mu   sync.Mutex
	cart Cart
}

// NewStore creates an empty Store persisting to the given slot key. Call
// Load to rehydrate a previously persisted cart.
func NewStore(slot Slot, key string, lg *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Store{slot: slot, key: key, lg: lg}
}

// Load rehydrates the cart from the slot. A missing or unreadable record
// starts an empty cart; a malformed record is logged and likewise starts
// empty. Rehydration replays each persisted line through Add semantics and
// then restores its quantity, so the derived totals are recomputed rather
// than trusted from storage. Never returns an error to the caller.
func (s *Store) Load(ctx context.Context) {
	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		s.lg.Info("No persisted cart, starting empty", zap.String("key", s.key), zap.Error(err))
		return
	}

	items, err := Decode(data)
	if err != nil {
		s.lg.Warn("Discarding malformed cart record", zap.String("key", s.key), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := Cart{}
	for _, it := range items {
		c = Apply(c, Add{Candidate: Candidate{
			ProductID: it.ProductID,
			Price:     it.Price,
			Name:      it.Name,
			SKU:       it.SKU,
			Image:     it.Image,
			Category:  it.Category,
		}})
		if it.Quantity > 1 {
			c = Apply(c, SetQuantity{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	s.cart = c
}

// AddItem adds cand to the cart and returns the new snapshot.
func (s *Store) AddItem(ctx context.Context, cand Candidate) Cart {
	return s.apply(ctx, Add{Candidate: cand})
}

// RemoveItem deletes the line for productID, if present, and returns the new
// snapshot. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int64) Cart {
	return s.apply(ctx, Remove{ProductID: productID})
}

// UpdateQuantity sets the quantity of the line for productID, floored at 1,
// and returns the new snapshot. Updating an absent product is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) Cart {
	return s.apply(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

// Clear empties the cart and returns the new (empty) snapshot.
func (s *Store) Clear(ctx context.Context) Cart {
	return s.apply(ctx, Clear{})
}

// IsInCart reports whether the cart has a line for productID.
func (s *Store) IsInCart(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Contains(productID)
}

// Snapshot returns the current cart state.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// apply runs one transition under the lock and persists the result. The
// snapshot handed out is safe to retain: transitions copy on write, so no
// later operation mutates it.
func (s *Store) apply(ctx context.Context, op Operation) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = Apply(s.cart, op)
	s.persist(ctx, s.cart)
	return s.cart
}

func (s *Store) persist(ctx context.Context, c Cart) {
	if err := s.slot.Set(ctx, s.key, Encode(c)); err != nil {
		s.lg.Warn("Persisting cart failed", zap.String("key", s.key), zap.Error(err))
	}
}
