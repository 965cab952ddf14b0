package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"maps"
)

// StockReader reads current material quantities.
type StockReader interface {
	GetStock(ctx context.Context, materialID uint) (int64, error)
}

// StockLedger reads and deducts material quantities. Implementations must
// never leave a quantity negative.
type StockLedger interface {
	StockReader
	Deduct(ctx context.Context, materialID uint, amount int64) error
}

// StockTx is a ledger bound to a storage transaction. Nothing done through it
// is visible to others until the transaction commits.
type StockTx interface {
	StockLedger
	RecordRun(ctx context.Context, run *ProductionRun) error
}

// MaxProducible returns how many units the recipe allows with the stock seen
// by r: the minimum over all lines of floor(stock / required). An empty recipe
// or a missing material yields 0.
func MaxProducible(ctx context.Context, r StockReader, recipe []RecipeLine) (int64, error) {
	if len(recipe) == 0 {
		return 0, nil
	}
	if err := validateRecipe(recipe); err != nil {
		return 0, err
	}

	limit := int64(math.MaxInt64)
	for _, line := range recipe {
		available, err := r.GetStock(ctx, line.RawMaterialID)
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read stock of material %d: %w", line.RawMaterialID, err)
		}
		if available <= 0 {
			return 0, nil
		}
		if n := available / line.RequiredQuantity; n < limit {
			limit = n
		}
	}
	return limit, nil
}

// BindingConstraint returns an *InsufficientStockError for the first line that
// cannot cover quantity units, or nil when every line can.
func BindingConstraint(ctx context.Context, r StockReader, recipe []RecipeLine, quantity int64) error {
	if err := validateRecipe(recipe); err != nil {
		return err
	}
	for _, line := range recipe {
		available, err := r.GetStock(ctx, line.RawMaterialID)
		if errors.Is(err, ErrNotFound) {
			available = 0
		} else if err != nil {
			return fmt.Errorf("read stock of material %d: %w", line.RawMaterialID, err)
		}
		if available/line.RequiredQuantity < quantity {
			return &InsufficientStockError{
				MaterialID:   line.RawMaterialID,
				MaterialName: line.RawMaterial.Name,
				Required:     RequiredFor(line, quantity),
				Available:    available,
			}
		}
	}
	return nil
}

// RequiredFor returns the stock consumed by quantity units of a line,
// saturating at math.MaxInt64.
func RequiredFor(line RecipeLine, quantity int64) int64 {
	if quantity <= 0 || line.RequiredQuantity <= 0 {
		return 0
	}
	if quantity > math.MaxInt64/line.RequiredQuantity {
		return math.MaxInt64
	}
	return quantity * line.RequiredQuantity
}

func validateRecipe(recipe []RecipeLine) error {
	for _, line := range recipe {
		if line.RequiredQuantity <= 0 {
			return fmt.Errorf("%w: product %d requires %d of material %d",
				ErrMalformedRecipe, line.ProductID, line.RequiredQuantity, line.RawMaterialID)
		}
	}
	return nil
}

// StockSnapshot is a point-in-time copy of material quantities keyed by
// material id. Deducting from it only changes the copy.
type StockSnapshot map[uint]int64

func (s StockSnapshot) GetStock(_ context.Context, materialID uint) (int64, error) {
	qty, ok := s[materialID]
	if !ok {
		return 0, ErrMaterialNotFound
	}
	return qty, nil
}

func (s StockSnapshot) Deduct(_ context.Context, materialID uint, amount int64) error {
	if amount <= 0 {
		return invalidf("deduct amount must be positive, got %d", amount)
	}
	qty, ok := s[materialID]
	if !ok {
		return ErrMaterialNotFound
	}
	if amount > qty {
		return &InsufficientStockError{MaterialID: materialID, Required: amount, Available: qty}
	}
	s[materialID] = qty - amount
	return nil
}

// Clone returns an independent copy.
func (s StockSnapshot) Clone() StockSnapshot {
	return maps.Clone(s)
}
