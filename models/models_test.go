package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewRawMaterial(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		stock        int64
		expectedName string
		expectedErr  error
	}{
		{name: "Valid", input: "  Wood ", stock: 30, expectedName: "Wood"},
		{name: "Zero stock", input: "Glue", stock: 0, expectedName: "Glue"},
		{name: "Blank name", input: "   ", stock: 1, expectedErr: ErrInvalidInput},
		{name: "Negative stock", input: "Wood", stock: -1, expectedErr: ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewRawMaterial(tc.input, tc.stock)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedName, m.Name)
			assert.Equal(t, tc.stock, m.StockQuantity)
		})
	}
}

func TestProductValidate(t *testing.T) {
	testCases := []struct {
		name        string
		product     Product
		expectedErr error
	}{
		{
			name:    "Valid with recipe",
			product: Product{Name: "Chair", Price: decimal.NewFromInt(100), Materials: chairRecipe()},
		},
		{
			name:    "Valid without recipe",
			product: Product{Name: "Chair", Price: decimal.Zero},
		},
		{
			name:        "Negative price",
			product:     Product{Name: "Chair", Price: decimal.NewFromInt(-1)},
			expectedErr: ErrInvalidInput,
		},
		{
			name:        "Empty name",
			product:     Product{Name: "", Price: decimal.NewFromInt(1)},
			expectedErr: ErrInvalidInput,
		},
		{
			name: "Duplicate material",
			product: Product{Name: "Chair", Price: decimal.NewFromInt(1), Materials: []RecipeLine{
				{RawMaterialID: 1, RequiredQuantity: 1},
				{RawMaterialID: 1, RequiredQuantity: 2},
			}},
			expectedErr: ErrInvalidInput,
		},
		{
			name: "Zero required quantity",
			product: Product{Name: "Chair", Price: decimal.NewFromInt(1), Materials: []RecipeLine{
				{RawMaterialID: 1, RequiredQuantity: 0},
			}},
			expectedErr: ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.product.Validate()
			if tc.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}
}

func TestNewRecipeLine(t *testing.T) {
	line, err := NewRecipeLine(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(2), line.RawMaterialID)

	_, err = NewRecipeLine(1, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewRecipeLine(1, 2, -3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrMaterialNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrProductNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrRecipeNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrMaterialInUse, ErrReferentialConflict)
	assert.False(t, errors.Is(ErrMalformedRecipe, ErrInvalidInput))

	wrapped := fmt.Errorf("produce: %w", &InsufficientStockError{MaterialID: 3, Required: 2, Available: 1})
	assert.ErrorIs(t, wrapped, ErrInsufficientStock)
	assert.Contains(t, wrapped.Error(), "material #3")
}

func TestTranslateError(t *testing.T) {
	other := errors.New("boom")

	testCases := []struct {
		name        string
		input       error
		expectedErr error
	}{
		{name: "Nil", input: nil, expectedErr: nil},
		{name: "Duplicate key", input: gorm.ErrDuplicatedKey, expectedErr: ErrInvalidInput},
		{name: "Foreign key", input: gorm.ErrForeignKeyViolated, expectedErr: ErrReferentialConflict},
		{name: "Lock timeout", input: &pgconn.PgError{Code: "55P03"}, expectedErr: ErrConflict},
		{name: "Deadlock", input: fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"}), expectedErr: ErrConflict},
		{name: "Serialization failure", input: &pgconn.PgError{Code: "40001"}, expectedErr: ErrConflict},
		{name: "Unrelated pg error", input: &pgconn.PgError{Code: "23514"}, expectedErr: nil},
		{name: "Domain error passes through", input: ErrMaterialInUse, expectedErr: ErrMaterialInUse},
		{name: "Unknown error passes through", input: other, expectedErr: other},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.input)
			if tc.input == nil {
				assert.NoError(t, got)
				return
			}
			if tc.expectedErr == nil {
				assert.Equal(t, tc.input, got)
				return
			}
			assert.ErrorIs(t, got, tc.expectedErr)
		})
	}
}
