package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go-storefront/internal/cart"
	"go-storefront/internal/localstore"
	"go-storefront/internal/product"
)

// Phase is the store's position in its lifecycle. Transitions are driven by
// discrete events (identity change, mutation outcome), never re-derived from
// cart contents.
type Phase int

const (
	// Anonymous: no identity; the local slot is the sole authority.
	Anonymous Phase = iota
	// SyncingOnLogin: the one-shot sync after the identity became non-empty.
	SyncingOnLogin
	// Authenticated: the server record is authoritative; mutations proxy to it.
	Authenticated
	// Degraded: the last remote call failed; mutations applied locally,
	// mirrored to the local slot. The next remote success returns the store
	// to Authenticated.
	Degraded
)

func (p Phase) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case SyncingOnLogin:
		return "syncing-on-login"
	case Authenticated:
		return "authenticated"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}

// Store holds the client-side cart. Before login it is the source of truth,
// mirrored to a persistent local slot on every mutation. After login it
// proxies mutations to the cart service and replaces its state wholesale from
// the server's response; a failed remote call falls back to a local write
// instead of surfacing, preferring availability over strict consistency.
type Store struct {
	mu     sync.Mutex
	phase  Phase
	userID string
	items  []cart.CartItem
	local  localstore.Store
	key    string
	remote Remote
}

// New loads any previously persisted items from the local slot.
func New(local localstore.Store, remote Remote, key string) (*Store, error) {
	s := &Store{
		phase:  Anonymous,
		items:  []cart.CartItem{},
		local:  local,
		key:    key,
		remote: remote,
	}

	raw, ok, err := local.Load(key)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := json.Unmarshal(raw, &s.items); err != nil {
			// a corrupt slot falls back to an empty cart
			s.items = []cart.CartItem{}
		}
	}
	return s, nil
}

// SetIdentity reacts to the auth collaborator's identity value. The sync call
// fires exactly once, on the transition from empty to non-empty; repeated
// calls with the same identity are no-ops. An empty identity returns the
// store to Anonymous with its current items intact.
func (s *Store) SetIdentity(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == s.userID {
		return nil
	}
	if userID == "" {
		s.userID = ""
		s.phase = Anonymous
		return nil
	}

	s.userID = userID
	s.phase = SyncingOnLogin

	summary, err := s.remote.Sync(ctx, s.items)
	if err != nil {
		s.phase = Degraded
		if errors.Is(err, ErrUpstreamUnavailable) {
			return nil
		}
		return err
	}

	s.items = summary.Items
	s.phase = Authenticated
	return s.persist()
}

// AddItem adds a snapshot of the given product. Anonymous carts apply the
// reducer directly; authenticated carts proxy to the service and re-fetch.
func (s *Store) AddItem(ctx context.Context, p product.Product, qty int) error {
	if qty <= 0 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := cart.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  qty,
		Stock:     p.Stock,
	}

	if s.phase == Anonymous {
		s.items = applyAdd(s.items, item)
		return s.persist()
	}

	return s.mutateRemote(ctx,
		func(ctx context.Context) error { return s.remote.Add(ctx, p.ID, qty) },
		func() { s.items = applyAdd(s.items, item) },
	)
}

// SetQuantity sets an item's quantity exactly; zero removes it.
func (s *Store) SetQuantity(ctx context.Context, productID, qty int) error {
	if qty < 0 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Anonymous {
		s.items = applySetQuantity(s.items, productID, qty)
		return s.persist()
	}

	return s.mutateRemote(ctx,
		func(ctx context.Context) error { return s.remote.SetQuantity(ctx, productID, qty) },
		func() { s.items = applySetQuantity(s.items, productID, qty) },
	)
}

// RemoveItem drops a product from the cart.
func (s *Store) RemoveItem(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Anonymous {
		s.items = applyRemove(s.items, productID)
		return s.persist()
	}

	return s.mutateRemote(ctx,
		func(ctx context.Context) error { return s.remote.Remove(ctx, productID) },
		func() { s.items = applyRemove(s.items, productID) },
	)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Anonymous {
		s.items = []cart.CartItem{}
		return s.persist()
	}

	return s.mutateRemote(ctx,
		func(ctx context.Context) error { return s.remote.Clear(ctx) },
		func() { s.items = []cart.CartItem{} },
	)
}

// Refresh re-fetches the authoritative cart and replaces local state.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Anonymous {
		return nil
	}

	summary, err := s.remote.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			s.phase = Degraded
			return nil
		}
		return err
	}
	s.items = summary.Items
	s.phase = Authenticated
	return s.persist()
}

func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Store) Items() []cart.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cart.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.Summarize(s.items).ItemCount
}

func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.Summarize(s.items).TotalPrice
}

func (s *Store) IsInCart(productID int) bool {
	return s.ItemQuantity(productID) > 0
}

func (s *Store) ItemQuantity(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// mutateRemote runs the remote call and, on success, replaces local state
// wholesale from a re-fetch (never patches incrementally, to avoid
// divergence). A transport failure applies the fallback reducer locally and
// enters Degraded; validation errors are returned untouched and mutate
// nothing. There is no automatic retry.
func (s *Store) mutateRemote(ctx context.Context, call func(context.Context) error, fallback func()) error {
	if err := call(ctx); err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			fallback()
			s.phase = Degraded
			return s.persist()
		}
		return err
	}

	summary, err := s.remote.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			fallback()
			s.phase = Degraded
			return s.persist()
		}
		return err
	}

	s.items = summary.Items
	s.phase = Authenticated
	return s.persist()
}

func (s *Store) persist() error {
	raw, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	return s.local.Save(s.key, raw)
}
