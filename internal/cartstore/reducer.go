package cartstore

import "go-storefront/internal/cart"

// Pure item-collection transitions. These mirror the server's rules for the
// anonymous path: one entry per product, repeated adds increment, quantity
// zero removes.

func applyAdd(items []cart.CartItem, item cart.CartItem) []cart.CartItem {
	out := make([]cart.CartItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].ProductID == item.ProductID {
			out[i].Quantity += item.Quantity
			return out
		}
	}
	return append(out, item)
}

func applySetQuantity(items []cart.CartItem, productID, qty int) []cart.CartItem {
	out := make([]cart.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == productID {
			if qty <= 0 {
				continue
			}
			item.Quantity = qty
		}
		out = append(out, item)
	}
	return out
}

func applyRemove(items []cart.CartItem, productID int) []cart.CartItem {
	out := make([]cart.CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
