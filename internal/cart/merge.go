package cart

import "go-storefront/internal/product"

// ProductLookup resolves a product's live state by id. Implementations return
// product.ErrNotFound when the product does not exist.
type ProductLookup func(productID int) (product.Product, error)

// MergeItems reconciles a locally accumulated anonymous cart into the server
// cart at login. The function is pure: it never mutates its inputs and the
// same inputs always produce the same output. Merging the result again with
// an empty local set returns it unchanged.
//
// Rules:
//   - local entries whose product cannot be resolved or has zero stock are
//     dropped, as are malformed entries (no product id, non-positive quantity)
//   - a collision takes max(server quantity, local quantity) clamped to the
//     live stock, and the item keeps the server item's position
//   - local-only items are appended in local order, clamped to live stock
//   - server items untouched by the local set pass through unchanged
func MergeItems(server, local []CartItem, lookup ProductLookup) []CartItem {
	merged := make([]CartItem, len(server))
	copy(merged, server)

	for _, l := range local {
		if l.ProductID <= 0 || l.Quantity <= 0 {
			continue
		}

		p, err := lookup(l.ProductID)
		if err != nil || p.Stock == 0 {
			continue
		}

		if i := findItem(merged, l.ProductID); i >= 0 {
			qty := merged[i].Quantity
			if l.Quantity > qty {
				qty = l.Quantity
			}
			if qty > p.Stock {
				qty = p.Stock
			}
			merged[i].Quantity = qty
			merged[i].Stock = p.Stock
			continue
		}

		qty := l.Quantity
		if qty > p.Stock {
			qty = p.Stock
		}
		merged = append(merged, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Category:  p.Category,
			Quantity:  qty,
			Stock:     p.Stock,
		})
	}

	return merged
}
