package cart

import (
	"errors"
	"strconv"

	"golang.org/x/sync/singleflight"

	"go-storefront/internal/product"
)

// Service owns the authoritative cart and re-validates every mutation against
// the live product stock, because stock can change between the time a client
// last saw a product and the time it mutates the cart.
type Service struct {
	repo     Repository
	products *product.Service
	sfg      singleflight.Group
}

func NewService(repo Repository, products *product.Service) *Service {
	return &Service{repo: repo, products: products}
}

// Lookup returns the product resolver used for merges.
func (s *Service) Lookup() ProductLookup {
	return func(productID int) (product.Product, error) {
		return s.products.GetByID(productID)
	}
}

// GetCart returns the user's cart, creating an empty one on first read.
// Reads opportunistically reconcile stale entries: stock snapshots are
// refreshed, quantities above the live stock are clamped down, and items
// whose product vanished or ran out of stock are dropped. When reconciliation
// changes anything the corrected cart is persisted before being returned, so
// subsequent reads are stable. Concurrent reads for the same user are
// collapsed via singleflight.
func (s *Service) GetCart(userID int) (Summary, error) {
	v, err, _ := s.sfg.Do(strconv.Itoa(userID), func() (interface{}, error) {
		for attempt := 0; attempt < 2; attempt++ {
			c, err := s.getOrCreate(userID)
			if err != nil {
				return nil, err
			}

			items, changed, err := s.reconcile(c.Items)
			if err != nil {
				return nil, err
			}
			if changed {
				c.Items = items
				if _, err := s.repo.Save(c); err != nil {
					if errors.Is(err, ErrVersionConflict) {
						continue
					}
					return nil, err
				}
			}
			return Summarize(items), nil
		}
		return nil, ErrVersionConflict
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// AddItem puts qty more units of a product into the cart. A repeated add
// increments the existing entry instead of duplicating it. Exceeding the live
// stock is a hard error carrying the number of units still available; the
// cart is left untouched in that case.
func (s *Service) AddItem(userID, productID, qty int) (Summary, error) {
	if qty <= 0 {
		return Summary{}, ErrInvalidQuantity
	}

	return s.withCart(userID, true, func(c *Cart) error {
		p, err := s.products.GetByID(productID)
		if err != nil {
			return ErrProductNotFound
		}
		if p.Stock == 0 {
			return ErrOutOfStock
		}

		if i := findItem(c.Items, productID); i >= 0 {
			newTotal := c.Items[i].Quantity + qty
			if newTotal > p.Stock {
				return &InsufficientStockError{ProductID: productID, Available: p.Stock - c.Items[i].Quantity}
			}
			c.Items[i].Quantity = newTotal
			return nil
		}

		if qty > p.Stock {
			return &InsufficientStockError{ProductID: productID, Available: p.Stock}
		}
		c.Items = append(c.Items, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Category:  p.Category,
			Quantity:  qty,
			Stock:     p.Stock,
		})
		return nil
	})
}

// SetQuantity sets an item's quantity exactly. Zero removes the item; a
// negative value is invalid. The cart must already exist.
func (s *Service) SetQuantity(userID, productID, qty int) (Summary, error) {
	if qty < 0 {
		return Summary{}, ErrInvalidQuantity
	}

	return s.withCart(userID, false, func(c *Cart) error {
		i := findItem(c.Items, productID)
		if i < 0 {
			return ErrItemNotFound
		}

		if qty == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}

		p, err := s.products.GetByID(productID)
		if err != nil {
			return ErrProductNotFound
		}
		if qty > p.Stock {
			return &InsufficientStockError{ProductID: productID, Available: p.Stock}
		}
		c.Items[i].Quantity = qty
		return nil
	})
}

// RemoveItem deletes a product from the cart. Removing an absent item is an
// idempotent success. The cart must already exist.
func (s *Service) RemoveItem(userID, productID int) (Summary, error) {
	return s.withCart(userID, false, func(c *Cart) error {
		if i := findItem(c.Items, productID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
}

// ClearCart empties the cart. Clearing an already-empty cart is a success.
func (s *Service) ClearCart(userID int) (Summary, error) {
	return s.withCart(userID, true, func(c *Cart) error {
		c.Items = []CartItem{}
		return nil
	})
}

// Sync merges a locally accumulated anonymous cart into the authoritative
// record and returns the full reconciled state. The merged item collection is
// saved in a single write, so a failure leaves the prior record intact.
func (s *Service) Sync(userID int, local []CartItem) (Summary, error) {
	return s.withCart(userID, true, func(c *Cart) error {
		c.Items = MergeItems(c.Items, local, s.Lookup())
		return nil
	})
}

// withCart runs mutate against the user's cart and saves the result. On a
// version conflict the whole read-mutate-save cycle is retried once against
// the fresh record.
func (s *Service) withCart(userID int, createIfMissing bool, mutate func(c *Cart) error) (Summary, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var c Cart
		var err error
		if createIfMissing {
			c, err = s.getOrCreate(userID)
		} else {
			c, err = s.repo.Get(userID)
		}
		if err != nil {
			return Summary{}, err
		}

		if err := mutate(&c); err != nil {
			return Summary{}, err
		}

		saved, err := s.repo.Save(c)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Summary{}, err
		}
		return Summarize(saved.Items), nil
	}
	return Summary{}, ErrVersionConflict
}

func (s *Service) getOrCreate(userID int) (Cart, error) {
	c, err := s.repo.Get(userID)
	if errors.Is(err, ErrCartNotFound) {
		return s.repo.Create(userID)
	}
	return c, err
}

// reconcile refreshes stock snapshots against the live catalog. Price, name,
// image and category deliberately stay last-known-good; only stock and the
// quantity ceiling are re-validated on read.
func (s *Service) reconcile(items []CartItem) ([]CartItem, bool, error) {
	if len(items) == 0 {
		return items, false, nil
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	live, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, false, err
	}
	byID := make(map[int]product.Product, len(live))
	for _, p := range live {
		byID[p.ID] = p
	}

	out := make([]CartItem, 0, len(items))
	changed := false
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok || p.Stock == 0 {
			changed = true
			continue
		}
		if item.Stock != p.Stock {
			item.Stock = p.Stock
			changed = true
		}
		if item.Quantity > p.Stock {
			item.Quantity = p.Stock
			changed = true
		}
		out = append(out, item)
	}
	return out, changed, nil
}
