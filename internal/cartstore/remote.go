package cartstore

import (
	"context"
	"errors"

	"go-storefront/internal/cart"
)

// ErrUpstreamUnavailable marks a remote call that failed at the transport
// level (network error, 5xx, open circuit breaker). It is the only error that
// triggers the local fallback path; validation errors from the service are
// surfaced to the caller untouched.
var ErrUpstreamUnavailable = errors.New("cart service unavailable")

// Remote is the client's view of the cart service. Mutations return no state:
// after a successful mutation the store re-fetches the authoritative cart and
// replaces its in-memory state wholesale.
type Remote interface {
	Get(ctx context.Context) (cart.Summary, error)
	Add(ctx context.Context, productID, qty int) error
	SetQuantity(ctx context.Context, productID, qty int) error
	Remove(ctx context.Context, productID int) error
	Clear(ctx context.Context) error
	Sync(ctx context.Context, items []cart.CartItem) (cart.Summary, error)
}
