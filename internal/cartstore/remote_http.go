package cartstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"go-storefront/internal/cart"
)

// HTTPRemote talks to the cart REST API. Every call goes through a circuit
// breaker so a flapping upstream trips fast into the fallback path instead of
// burning a timeout per mutation.
type HTTPRemote struct {
	baseURL string
	token   string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[cart.Summary]
}

func NewHTTPRemote(baseURL, token string) *HTTPRemote {
	cb := gobreaker.NewCircuitBreaker[cart.Summary](gobreaker.Settings{
		Name:    "cart-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// only transport-level failures count against the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUpstreamUnavailable)
		},
	})

	return &HTTPRemote{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		cb:      cb,
	}
}

func (r *HTTPRemote) Get(ctx context.Context) (cart.Summary, error) {
	return r.execute(ctx, http.MethodGet, "/api/v1/cart", nil)
}

func (r *HTTPRemote) Add(ctx context.Context, productID, qty int) error {
	_, err := r.execute(ctx, http.MethodPost, "/api/v1/cart/add", map[string]int{
		"productId": productID,
		"quantity":  qty,
	})
	return err
}

func (r *HTTPRemote) SetQuantity(ctx context.Context, productID, qty int) error {
	_, err := r.execute(ctx, http.MethodPut, "/api/v1/cart/update", map[string]int{
		"productId": productID,
		"quantity":  qty,
	})
	return err
}

func (r *HTTPRemote) Remove(ctx context.Context, productID int) error {
	_, err := r.execute(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/cart/remove/%d", productID), nil)
	return err
}

func (r *HTTPRemote) Clear(ctx context.Context) error {
	_, err := r.execute(ctx, http.MethodDelete, "/api/v1/cart/clear", nil)
	return err
}

func (r *HTTPRemote) Sync(ctx context.Context, items []cart.CartItem) (cart.Summary, error) {
	return r.execute(ctx, http.MethodPost, "/api/v1/cart/sync", map[string]interface{}{
		"localCartItems": items,
	})
}

func (r *HTTPRemote) execute(ctx context.Context, method, path string, payload interface{}) (cart.Summary, error) {
	summary, err := r.cb.Execute(func() (cart.Summary, error) {
		return r.do(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return cart.Summary{}, fmt.Errorf("%w: circuit open", ErrUpstreamUnavailable)
	}
	return summary, err
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, payload interface{}) (cart.Summary, error) {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return cart.Summary{}, err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return cart.Summary{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	res, err := r.client.Do(req)
	if err != nil {
		return cart.Summary{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return cart.Summary{}, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, res.StatusCode)
	}
	if res.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		if e.Message == "" {
			e.Message = res.Status
		}
		return cart.Summary{}, errors.New(e.Message)
	}

	var summary cart.Summary
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		return cart.Summary{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return summary, nil
}
