package shopping_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/shopping"
)

func TestComparePrice(t *testing.T) {
	previous := &shopping.Purchase{
		ID:   "previous",
		Date: 1000,
		Items: []shopping.Item{
			{Name: "Rice", Price: 5.00, Quantity: 1, Type: shopping.Unit},
		},
	}

	t.Run("Increased", func(t *testing.T) {
		result := shopping.ComparePrice(shopping.Item{Name: "Rice", Price: 6.00, Quantity: 1}, previous)
		assert.Equal(t, shopping.Increased, result.Trend)
		assert.Equal(t, 1.0, result.Diff)
		assert.Equal(t, 20.0, result.Percentage)
		require.NotNil(t, result.PreviousPrice)
		assert.Equal(t, 5.0, *result.PreviousPrice)
	})

	t.Run("Decreased", func(t *testing.T) {
		result := shopping.ComparePrice(shopping.Item{Name: "Rice", Price: 4.00, Quantity: 1}, previous)
		assert.Equal(t, shopping.Decreased, result.Trend)
		assert.Equal(t, -1.0, result.Diff)
		assert.Equal(t, 20.0, result.Percentage)
	})

	t.Run("Unchanged", func(t *testing.T) {
		result := shopping.ComparePrice(shopping.Item{Name: "Rice", Price: 5.00, Quantity: 3}, previous)
		assert.Equal(t, shopping.Unchanged, result.Trend)
		assert.Equal(t, 0.0, result.Diff)
		assert.Equal(t, 0.0, result.Percentage)
	})

	t.Run("FirstTime", func(t *testing.T) {
		assert.Equal(t, shopping.FirstTime, shopping.ComparePrice(shopping.Item{Name: "Beans", Price: 2}, previous).Trend)
		assert.Equal(t, shopping.FirstTime, shopping.ComparePrice(shopping.Item{Name: "Rice", Price: 2}, nil).Trend)
	})

	t.Run("NameIsCaseSensitive", func(t *testing.T) {
		result := shopping.ComparePrice(shopping.Item{Name: "rice", Price: 6}, previous)
		assert.Equal(t, shopping.FirstTime, result.Trend)
		assert.Nil(t, result.PreviousPrice)
	})
}

func TestPreviousPurchase(t *testing.T) {
	history := []shopping.Purchase{
		{ID: "a", Date: 1000},
		{ID: "c", Date: 3000},
		{ID: "b", Date: 2000},
	}
	shopping.SortNewestFirst(history)
	require.Equal(t, "c", history[0].ID)

	previous, ok := shopping.PreviousPurchase(history, history[0].ID)
	assert.True(t, ok)
	assert.Equal(t, history[1].ID, previous.ID)

	previous, ok = shopping.PreviousPurchase(history, history[1].ID)
	assert.True(t, ok)
	assert.Equal(t, history[2].ID, previous.ID)

	_, ok = shopping.PreviousPurchase(history, history[2].ID)
	assert.False(t, ok)

	_, ok = shopping.PreviousPurchase(history, "missing")
	assert.False(t, ok)
}

func TestComparePurchase(t *testing.T) {
	history := []shopping.Purchase{
		{ID: "new", Date: 2000, Items: []shopping.Item{
			{Name: "Rice", Price: 6},
			{Name: "Coffee", Price: 12},
		}},
		{ID: "old", Date: 1000, Items: []shopping.Item{
			{Name: "Rice", Price: 5},
		}},
	}

	comparisons, ok := shopping.ComparePurchase(history, "new")
	require.True(t, ok)
	require.Len(t, comparisons, 2)
	assert.Equal(t, shopping.Increased, comparisons[0].Trend)
	assert.Equal(t, shopping.FirstTime, comparisons[1].Trend)

	comparisons, ok = shopping.ComparePurchase(history, "old")
	require.True(t, ok)
	assert.Equal(t, shopping.FirstTime, comparisons[0].Trend)

	_, ok = shopping.ComparePurchase(history, "missing")
	assert.False(t, ok)
}

func TestValidateItem(t *testing.T) {
	valid := shopping.Item{Name: "Milk", Price: 4.5, Quantity: 2, Type: shopping.Unit}
	require.NoError(t, shopping.ValidateItem(valid))
	require.NoError(t, shopping.ValidateItem(shopping.Item{Name: "Apples", Price: 3.2, Quantity: 0.75, Type: shopping.Weight}))

	cases := map[string]shopping.Item{
		"BlankName":      {Name: "  ", Price: 1, Quantity: 1, Type: shopping.Unit},
		"ZeroPrice":      {Name: "Milk", Price: 0, Quantity: 1, Type: shopping.Unit},
		"NegativeQty":    {Name: "Milk", Price: 1, Quantity: -1, Type: shopping.Unit},
		"UnknownType":    {Name: "Milk", Price: 1, Quantity: 1, Type: "box"},
		"FractionalUnit": {Name: "Milk", Price: 1, Quantity: 1.5, Type: shopping.Unit},
		"InfinitePrice":  {Name: "Milk", Price: math.Inf(1), Quantity: 1, Type: shopping.Unit},
		"InfiniteQty":    {Name: "Apples", Price: 1, Quantity: math.Inf(1), Type: shopping.Weight},
		"NaNPrice":       {Name: "Milk", Price: math.NaN(), Quantity: 1, Type: shopping.Unit},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			err := shopping.ValidateItem(item)
			var invalid *exceptions.InvalidInputError
			assert.True(t, errors.As(err, &invalid), "expected invalid input, got %v", err)
		})
	}

	t.Run("Budget", func(t *testing.T) {
		assert.NoError(t, shopping.ValidateBudget(100))
		assert.Error(t, shopping.ValidateBudget(0))
		assert.Error(t, shopping.ValidateBudget(-5))
		assert.Error(t, shopping.ValidateBudget(math.Inf(1)))
	})
}
