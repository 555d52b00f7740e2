package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-storefront/internal/product"
)

func lookupFrom(products map[int]product.Product) ProductLookup {
	return func(id int) (product.Product, error) {
		p, ok := products[id]
		if !ok {
			return product.Product{}, product.ErrNotFound
		}
		return p, nil
	}
}

func TestMergeItems_TakeMaxThenClamp(t *testing.T) {
	server := []CartItem{{ProductID: 1, Name: "Laptop", Price: 999, Quantity: 1, Stock: 10}}
	local := []CartItem{{ProductID: 1, Quantity: 3}}

	merged := MergeItems(server, local, lookupFrom(map[int]product.Product{
		1: {ID: 1, Name: "Laptop", Price: 999, Stock: 10},
	}))
	require.Len(t, merged, 1)
	require.Equal(t, 3, merged[0].Quantity)

	// with stock 2 the max is clamped down
	merged = MergeItems(server, local, lookupFrom(map[int]product.Product{
		1: {ID: 1, Name: "Laptop", Price: 999, Stock: 2},
	}))
	require.Len(t, merged, 1)
	require.Equal(t, 2, merged[0].Quantity)
	require.Equal(t, 2, merged[0].Stock)
}

func TestMergeItems_ServerQuantityWinsWhenLarger(t *testing.T) {
	server := []CartItem{{ProductID: 1, Quantity: 5, Stock: 10}}
	local := []CartItem{{ProductID: 1, Quantity: 2}}

	merged := MergeItems(server, local, lookupFrom(map[int]product.Product{
		1: {ID: 1, Stock: 10},
	}))
	require.Equal(t, 5, merged[0].Quantity)
}

func TestMergeItems_Idempotent(t *testing.T) {
	lookup := lookupFrom(map[int]product.Product{
		1: {ID: 1, Name: "Laptop", Price: 999, Stock: 4},
		2: {ID: 2, Name: "Mouse", Price: 25, Stock: 9},
	})
	server := []CartItem{{ProductID: 1, Quantity: 2, Stock: 4}}
	local := []CartItem{
		{ProductID: 1, Quantity: 6},
		{ProductID: 2, Quantity: 1},
	}

	once := MergeItems(server, local, lookup)
	again := MergeItems(once, nil, lookup)
	require.Equal(t, once, again)
}

func TestMergeItems_DropsUnknownAndZeroStock(t *testing.T) {
	local := []CartItem{
		{ProductID: 1, Quantity: 2}, // unknown product
		{ProductID: 2, Quantity: 1}, // stock zero
	}

	merged := MergeItems(nil, local, lookupFrom(map[int]product.Product{
		2: {ID: 2, Stock: 0},
	}))
	require.Empty(t, merged)
}

func TestMergeItems_ExcludesMalformedLocalEntries(t *testing.T) {
	lookup := lookupFrom(map[int]product.Product{1: {ID: 1, Stock: 5}})
	local := []CartItem{
		{ProductID: 0, Quantity: 2},
		{ProductID: 1, Quantity: 0},
		{ProductID: 1, Quantity: -3},
	}

	merged := MergeItems(nil, local, lookup)
	require.Empty(t, merged)
}

func TestMergeItems_Ordering(t *testing.T) {
	lookup := lookupFrom(map[int]product.Product{
		1: {ID: 1, Stock: 10},
		2: {ID: 2, Stock: 10},
		3: {ID: 3, Stock: 10},
		4: {ID: 4, Stock: 10},
	})
	server := []CartItem{
		{ProductID: 1, Quantity: 1, Stock: 10},
		{ProductID: 2, Quantity: 1, Stock: 10},
	}
	// one collision, two new items in local order
	local := []CartItem{
		{ProductID: 4, Quantity: 1},
		{ProductID: 2, Quantity: 5},
		{ProductID: 3, Quantity: 1},
	}

	merged := MergeItems(server, local, lookup)
	ids := make([]int, len(merged))
	for i, item := range merged {
		ids[i] = item.ProductID
	}
	require.Equal(t, []int{1, 2, 4, 3}, ids)
	require.Equal(t, 5, merged[1].Quantity)
}

func TestMergeItems_NewItemSnapshotsProduct(t *testing.T) {
	lookup := lookupFrom(map[int]product.Product{
		7: {ID: 7, Name: "Keyboard", Price: 49.5, Image: "/img/kb.jpg", Category: "electronics", Stock: 3},
	})
	local := []CartItem{{ProductID: 7, Quantity: 8, Name: "stale name", Price: 1}}

	merged := MergeItems(nil, local, lookup)
	require.Len(t, merged, 1)
	got := merged[0]
	require.Equal(t, "Keyboard", got.Name)
	require.Equal(t, 49.5, got.Price)
	require.Equal(t, "/img/kb.jpg", got.Image)
	require.Equal(t, "electronics", got.Category)
	require.Equal(t, 3, got.Quantity) // clamped to stock
	require.Equal(t, 3, got.Stock)
}

func TestMergeItems_DoesNotMutateInputs(t *testing.T) {
	lookup := lookupFrom(map[int]product.Product{1: {ID: 1, Stock: 10}})
	server := []CartItem{{ProductID: 1, Quantity: 1, Stock: 10}}
	local := []CartItem{{ProductID: 1, Quantity: 4}}

	MergeItems(server, local, lookup)
	require.Equal(t, 1, server[0].Quantity)
	require.Equal(t, 4, local[0].Quantity)
}
