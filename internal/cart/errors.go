package cart

import (
	"errors"
	"fmt"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrVersionConflict = errors.New("cart was modified concurrently")
)

// InsufficientStockError is returned when an explicit add or update asks for
// more units than the live stock allows. Available is the number of units the
// caller could still take; the operation never partially commits and never
// silently clamps.
type InsufficientStockError struct {
	ProductID int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d available for product %d", e.Available, e.ProductID)
}
