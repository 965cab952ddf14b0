package production

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/factoryops/inventory/app/metrics"
	"github.com/factoryops/inventory/models"
	"github.com/shopspring/decimal"
)

// Strategy selects how the planner ranks and sizes suggestions.
type Strategy string

const (
	// StrategyHighestValue sizes every product independently against current
	// stock and ranks by projected revenue.
	StrategyHighestValue Strategy = "highest-value"
	// StrategyGreedy visits products from the most expensive down, each one
	// consuming the stock left by the previous ones.
	StrategyGreedy Strategy = "greedy"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyHighestValue:
		return StrategyHighestValue, nil
	case StrategyGreedy:
		return StrategyGreedy, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidInput, s)
	}
}

type CatalogReader interface {
	GetAll(ctx context.Context) ([]models.Product, error)
}

type StockSnapshotter interface {
	Snapshot(ctx context.Context) (models.StockSnapshot, error)
}

// Entry is one suggested production line.
type Entry struct {
	ProductID   uint
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// Value is the projected revenue of the entry.
func (e Entry) Value() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(e.Quantity))
}

// Report is a ranked production suggestion. It is a preview computed from a
// stock snapshot and is never cached.
type Report struct {
	Strategy   Strategy
	Entries    []Entry
	TotalValue decimal.Decimal
}

type Planner struct {
	catalog CatalogReader
	stock   StockSnapshotter
	metrics *metrics.Metrics
}

func NewPlanner(catalog CatalogReader, stock StockSnapshotter, m *metrics.Metrics) *Planner {
	return &Planner{
		catalog: catalog,
		stock:   stock,
		metrics: m,
	}
}

// Suggest computes a report from the current catalog and stock. It takes no
// locks and changes nothing, so repeated calls without stock changes in
// between return the same report.
func (p *Planner) Suggest(ctx context.Context, strategy Strategy) (*Report, error) {
	defer p.metrics.ObserveSuggestion(string(strategy), time.Now())

	products, err := p.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	snapshot, err := p.stock.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}

	// Ties below are broken by id, so start from id order.
	products = slices.Clone(products)
	slices.SortStableFunc(products, func(a, b models.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})

	var entries []Entry
	switch strategy {
	case StrategyHighestValue:
		entries, err = highestValue(ctx, products, snapshot)
	case StrategyGreedy:
		entries, err = greedy(ctx, products, snapshot.Clone())
	default:
		err = fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidInput, strategy)
	}
	if err != nil {
		return nil, err
	}

	report := &Report{
		Strategy:   strategy,
		Entries:    entries,
		TotalValue: decimal.Zero,
	}
	for _, e := range entries {
		report.TotalValue = report.TotalValue.Add(e.Value())
	}
	return report, nil
}

func highestValue(ctx context.Context, products []models.Product, stock models.StockReader) ([]Entry, error) {
	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		if !p.HasRecipe() {
			continue
		}
		qty, err := models.MaxProducible(ctx, stock, p.Materials)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		if qty == 0 {
			continue
		}
		entries = append(entries, newEntry(p, qty))
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Value().Cmp(a.Value())
	})
	return entries, nil
}

func greedy(ctx context.Context, products []models.Product, virtual models.StockSnapshot) ([]Entry, error) {
	slices.SortStableFunc(products, func(a, b models.Product) int {
		return b.Price.Cmp(a.Price)
	})

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		if !p.HasRecipe() {
			continue
		}
		qty, err := models.MaxProducible(ctx, virtual, p.Materials)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		if qty == 0 {
			continue
		}
		for _, line := range p.Materials {
			if err := virtual.Deduct(ctx, line.RawMaterialID, models.RequiredFor(line, qty)); err != nil {
				return nil, fmt.Errorf("product %d: %w", p.ID, err)
			}
		}
		entries = append(entries, newEntry(p, qty))
	}
	return entries, nil
}

func newEntry(p models.Product, qty int64) Entry {
	return Entry{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.Price,
	}
}
