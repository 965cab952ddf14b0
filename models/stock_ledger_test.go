package models

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chairRecipe() []RecipeLine {
	return []RecipeLine{
		{ProductID: 1, RawMaterialID: 1, RawMaterial: RawMaterial{ID: 1, Name: "Wood"}, RequiredQuantity: 5},
		{ProductID: 1, RawMaterialID: 2, RawMaterial: RawMaterial{ID: 2, Name: "Metal"}, RequiredQuantity: 2},
	}
}

type failingReader struct{ err error }

func (f failingReader) GetStock(context.Context, uint) (int64, error) { return 0, f.err }

func TestMaxProducible(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		stock    StockSnapshot
		recipe   []RecipeLine
		expected int64
	}{
		{
			name:     "Minimum over lines",
			stock:    StockSnapshot{1: 30, 2: 10},
			recipe:   chairRecipe(),
			expected: 5,
		},
		{
			name:     "Floor division",
			stock:    StockSnapshot{1: 29, 2: 100},
			recipe:   chairRecipe(),
			expected: 5,
		},
		{
			name:     "Empty recipe",
			stock:    StockSnapshot{1: 30},
			recipe:   nil,
			expected: 0,
		},
		{
			name:     "Material with zero stock",
			stock:    StockSnapshot{1: 30, 2: 0},
			recipe:   chairRecipe(),
			expected: 0,
		},
		{
			name:     "Missing material",
			stock:    StockSnapshot{1: 30},
			recipe:   chairRecipe(),
			expected: 0,
		},
		{
			name:     "Stock below one unit",
			stock:    StockSnapshot{1: 4, 2: 10},
			recipe:   chairRecipe(),
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			got, err := MaxProducible(ctx, tc.stock, tc.recipe)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMaxProducible_MalformedRecipe(t *testing.T) {
	recipe := []RecipeLine{{ProductID: 7, RawMaterialID: 1, RequiredQuantity: 0}}

	_, err := MaxProducible(context.Background(), StockSnapshot{1: 10}, recipe)

	assert.ErrorIs(t, err, ErrMalformedRecipe)
}

func TestMaxProducible_ReaderError(t *testing.T) {
	boom := errors.New("connection reset")

	_, err := MaxProducible(context.Background(), failingReader{err: boom}, chairRecipe())

	assert.ErrorIs(t, err, boom)
}

func TestBindingConstraint(t *testing.T) {
	ctx := context.Background()
	stock := StockSnapshot{1: 30, 2: 10}

	t.Run("Names the limiting material", func(t *testing.T) {
		err := BindingConstraint(ctx, stock, chairRecipe(), 6)

		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, uint(2), insufficient.MaterialID)
		assert.Equal(t, "Metal", insufficient.MaterialName)
		assert.Equal(t, int64(12), insufficient.Required)
		assert.Equal(t, int64(10), insufficient.Available)
		assert.Equal(t, "insufficient stock of Metal: required 12, available 10", err.Error())
	})

	t.Run("Nil when every line is covered", func(t *testing.T) {
		assert.NoError(t, BindingConstraint(ctx, stock, chairRecipe(), 5))
	})

	t.Run("Missing material counts as empty", func(t *testing.T) {
		err := BindingConstraint(ctx, StockSnapshot{2: 10}, chairRecipe(), 1)

		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, uint(1), insufficient.MaterialID)
		assert.Equal(t, int64(0), insufficient.Available)
	})
}

func TestRequiredFor(t *testing.T) {
	line := RecipeLine{RawMaterialID: 1, RequiredQuantity: 4}

	assert.Equal(t, int64(12), RequiredFor(line, 3))
	assert.Equal(t, int64(0), RequiredFor(line, 0))
	assert.Equal(t, int64(math.MaxInt64), RequiredFor(line, math.MaxInt64/2))
}

func TestStockSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("Deduct changes only the copy", func(t *testing.T) {
		original := StockSnapshot{1: 10}
		copied := original.Clone()

		require.NoError(t, copied.Deduct(ctx, 1, 4))

		assert.Equal(t, int64(10), original[1])
		assert.Equal(t, int64(6), copied[1])
	})

	t.Run("Deduct never goes negative", func(t *testing.T) {
		s := StockSnapshot{1: 3}

		err := s.Deduct(ctx, 1, 4)

		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, int64(3), s[1])
	})

	t.Run("Deduct rejects non-positive amounts", func(t *testing.T) {
		s := StockSnapshot{1: 3}

		assert.ErrorIs(t, s.Deduct(ctx, 1, 0), ErrInvalidInput)
		assert.ErrorIs(t, s.Deduct(ctx, 1, -1), ErrInvalidInput)
	})

	t.Run("Unknown material", func(t *testing.T) {
		s := StockSnapshot{}

		_, err := s.GetStock(ctx, 9)
		assert.ErrorIs(t, err, ErrMaterialNotFound)
		assert.ErrorIs(t, s.Deduct(ctx, 9, 1), ErrNotFound)
	})
}
