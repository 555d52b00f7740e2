package cart

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a product entry inside a cart. Name, price, image and category
// are a denormalized snapshot taken when the item was added; stock is
// refreshed on every read (see Service.GetCart). Quantity stays within
// [1, stock] after any successful mutation.
type CartItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

// Cart is the authoritative per-user record. One row per user; an empty item
// list is a valid persisted state, not a deleted record. Version backs
// optimistic concurrency on saves.
type Cart struct {
	ID        uuid.UUID  `json:"cartId"`
	UserID    int        `json:"userId"`
	Items     []CartItem `json:"items"`
	Version   int        `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Summary is the response shape shared by every cart operation.
type Summary struct {
	Items       []CartItem `json:"items"`
	UniqueItems int        `json:"uniqueItems"`
	ItemCount   int        `json:"itemCount"`
	TotalPrice  float64    `json:"totalPrice"`
}

// Summarize computes the totals for a set of items.
func Summarize(items []CartItem) Summary {
	if items == nil {
		items = []CartItem{}
	}
	s := Summary{Items: items, UniqueItems: len(items)}
	for _, item := range items {
		s.ItemCount += item.Quantity
		s.TotalPrice += item.Price * float64(item.Quantity)
	}
	return s
}

func findItem(items []CartItem, productID int) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
