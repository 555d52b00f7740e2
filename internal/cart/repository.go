package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides access to the per-user cart record. Save enforces
// optimistic concurrency: it only commits when the stored version matches the
// version the cart was read at, and returns ErrVersionConflict otherwise.
type Repository interface {
	Get(userID int) (Cart, error)
	Create(userID int) (Cart, error)
	Save(c Cart) (Cart, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]Cart)}
}

func (r *InMemoryRepository) Get(userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *InMemoryRepository) Create(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.carts[userID]; ok {
		return cloneCart(existing), nil
	}

	now := time.Now().UTC()
	c := Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []CartItem{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.carts[userID] = c
	return cloneCart(c), nil
}

func (r *InMemoryRepository) Save(c Cart) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[c.UserID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	if stored.Version != c.Version {
		return Cart{}, ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = time.Now().UTC()
	r.carts[c.UserID] = cloneCart(c)
	return cloneCart(c), nil
}

func cloneCart(c Cart) Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
