package cart

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"go-storefront/internal/product"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func newTestHandler(seed []product.Product) *Handler {
	svc, _, _ := newTestService(seed)
	return NewHandler(svc)
}

func TestCartRoutes_Registered(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler(nil))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	for _, path := range []string{"/api/v1/cart", "/api/v1/cart/add", "/api/v1/cart/update", "/api/v1/cart/clear", "/api/v1/cart/sync"} {
		if !routes[path] {
			t.Fatalf("expected route %q to be registered", path)
		}
	}
}

func TestCartRoutes_Unauthorized(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler(nil))

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated POST, got %d", res.StatusCode)
	}
}

func TestCartRoutes_AddGetRemoveClear(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler([]product.Product{
		{ID: 3, Name: "Keyboard", Price: 50, Stock: 10},
	}))

	// quantity omitted defaults to 1
	req := httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"itemCount":1`) {
		t.Fatalf("expected itemCount 1, got %s", string(body))
	}

	// a repeated add increments instead of duplicating
	req = httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":3,"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	body, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"uniqueItems":1`) || !strings.Contains(string(body), `"itemCount":3`) {
		t.Fatalf("expected single entry with quantity 3, got %s", string(body))
	}

	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for get, got %d", res.StatusCode)
	}
	body, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"totalPrice":150`) {
		t.Fatalf("expected total price 150, got %s", string(body))
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cart/remove/3", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for remove, got %d", res.StatusCode)
	}
	body, _ = io.ReadAll(res.Body)
	if strings.Contains(string(body), `"productId":3`) {
		t.Fatalf("expected product removed, got %s", string(body))
	}

	// removing again is an idempotent success
	req = httptest.NewRequest("DELETE", "/api/v1/cart/remove/3", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for repeated remove, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/cart/clear", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for clear, got %d", res.StatusCode)
	}
	body, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(body), `"itemCount":0`) || !strings.Contains(string(body), `"totalPrice":0`) {
		t.Fatalf("expected zeroed counts after clear, got %s", string(body))
	}
}

func TestCartRoutes_InsufficientStockMessage(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler([]product.Product{
		{ID: 5, Name: "Webcam", Price: 80, Stock: 5},
	}))

	req := httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":5,"quantity":4}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for first add, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":5,"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for over-stock add, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "only 1 available") {
		t.Fatalf("expected message stating 1 unit available, got %s", string(body))
	}
}

func TestCartRoutes_NotFoundStatuses(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler([]product.Product{{ID: 1, Stock: 5}}))

	req := httptest.NewRequest("POST", "/api/v1/cart/add", strings.NewReader(`{"productId":99}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}

	// update against a user with no cart record
	req = httptest.NewRequest("PUT", "/api/v1/cart/update", strings.NewReader(`{"productId":1,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "77")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing cart record, got %d", res.StatusCode)
	}
}

func TestCartRoutes_Sync(t *testing.T) {
	app := makeAppWithCartHandler(newTestHandler([]product.Product{
		{ID: 1, Name: "Laptop", Price: 100, Stock: 2},
	}))

	payload := `{"localCartItems":[{"productId":1,"quantity":3},{"productId":99,"quantity":1}]}`
	req := httptest.NewRequest("POST", "/api/v1/cart/sync", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for sync, got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	// quantity clamped to stock, unknown product dropped
	if !strings.Contains(string(body), `"quantity":2`) || !strings.Contains(string(body), `"uniqueItems":1`) {
		t.Fatalf("unexpected sync result: %s", string(body))
	}
}
