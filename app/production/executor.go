package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/factoryops/inventory/app/events"
	"github.com/factoryops/inventory/app/metrics"
	"github.com/factoryops/inventory/models"
	"github.com/google/uuid"
)

// State is the lifecycle of a single production request.
// Requested moves to Validated and then Committed, or straight to Rejected.
type State string

const (
	StateRequested State = "requested"
	StateValidated State = "validated"
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
)

type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

type StockLocker interface {
	WithLockedStock(ctx context.Context, materialIDs []uint, fn func(models.StockTx) error) error
}

type CommitNotifier interface {
	ProductionCommitted(ctx context.Context, e events.ProductionCommitted) error
}

// Deduction is the stock consumed from one material by a run.
type Deduction struct {
	MaterialID     uint
	MaterialName   string
	Quantity       int64
	RemainingStock int64
}

// Confirmation describes a committed production run.
type Confirmation struct {
	RunID       uuid.UUID
	ProductID   uint
	ProductName string
	Quantity    int64
	Deductions  []Deduction
	CommittedAt time.Time
}

const publishTimeout = 5 * time.Second

type Executor struct {
	products ProductReader
	stock    StockLocker
	notifier CommitNotifier
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewExecutor(products ProductReader, stock StockLocker, notifier CommitNotifier, m *metrics.Metrics, log *slog.Logger) *Executor {
	return &Executor{
		products: products,
		stock:    stock,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// Produce commits quantity units of a product: it re-checks capacity under row
// locks and deducts every recipe line in one transaction. Either all
// deductions apply or none do.
func (e *Executor) Produce(ctx context.Context, productID uint, quantity int64) (*Confirmation, error) {
	log := e.log.With("product_id", productID, "quantity", quantity)
	log.DebugContext(ctx, "production requested", "state", StateRequested)

	conf, err := e.produce(ctx, log, productID, quantity)
	if err != nil {
		outcome := outcomeOf(err)
		e.metrics.ObserveProduction(outcome, 0)
		if outcome == metrics.OutcomeError {
			log.ErrorContext(ctx, "production failed", "state", StateRejected, "err", err)
		} else {
			log.InfoContext(ctx, "production rejected", "state", StateRejected, "reason", outcome, "err", err)
		}
		return nil, err
	}

	e.metrics.ObserveProduction(metrics.OutcomeCommitted, quantity)
	log.InfoContext(ctx, "production committed", "state", StateCommitted, "run_id", conf.RunID)
	e.publish(ctx, conf)
	return conf, nil
}

func (e *Executor) produce(ctx context.Context, log *slog.Logger, productID uint, quantity int64) (*Confirmation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer, got %d", models.ErrInvalidInput, quantity)
	}

	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasRecipe() {
		return nil, fmt.Errorf("%w: product %q has no recipe lines", models.ErrRecipeNotFound, product.Name)
	}

	recipe := product.Materials
	ids := make([]uint, len(recipe))
	for i, line := range recipe {
		ids[i] = line.RawMaterialID
	}

	var conf *Confirmation
	err = e.stock.WithLockedStock(ctx, ids, func(tx models.StockTx) error {
		maxAllowed, err := models.MaxProducible(ctx, tx, recipe)
		if err != nil {
			return err
		}
		if quantity > maxAllowed {
			cause := models.BindingConstraint(ctx, tx, recipe, quantity)
			if cause == nil {
				cause = models.ErrInsufficientStock
			}
			return fmt.Errorf("cannot produce %d x %s (at most %d): %w", quantity, product.Name, maxAllowed, cause)
		}
		log.DebugContext(ctx, "production validated", "state", StateValidated, "max_allowed", maxAllowed)

		run := &models.ProductionRun{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.RecordRun(ctx, run); err != nil {
			return fmt.Errorf("record production run: %w", err)
		}

		deductions := make([]Deduction, 0, len(recipe))
		for _, line := range recipe {
			amount := models.RequiredFor(line, quantity)
			if err := tx.Deduct(ctx, line.RawMaterialID, amount); err != nil {
				return fmt.Errorf("deduct %d of material %d: %w", amount, line.RawMaterialID, err)
			}
			remaining, err := tx.GetStock(ctx, line.RawMaterialID)
			if err != nil {
				return err
			}
			deductions = append(deductions, Deduction{
				MaterialID:     line.RawMaterialID,
				MaterialName:   line.RawMaterial.Name,
				Quantity:       amount,
				RemainingStock: remaining,
			})
		}

		conf = &Confirmation{
			RunID:       run.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			Deductions:  deductions,
			CommittedAt: run.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// publish is best effort: the run is already committed, so a broker failure
// is logged and not returned.
func (e *Executor) publish(ctx context.Context, conf *Confirmation) {
	if e.notifier == nil {
		return
	}

	consumed := make([]events.MaterialConsumed, len(conf.Deductions))
	for i, d := range conf.Deductions {
		consumed[i] = events.MaterialConsumed{
			MaterialID:     d.MaterialID,
			Quantity:       d.Quantity,
			RemainingStock: d.RemainingStock,
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.notifier.ProductionCommitted(ctx, events.ProductionCommitted{
		RunID:       conf.RunID,
		ProductID:   conf.ProductID,
		ProductName: conf.ProductName,
		Quantity:    conf.Quantity,
		Consumed:    consumed,
		CommittedAt: conf.CommittedAt,
	}); err != nil {
		e.log.WarnContext(ctx, "failed to publish production event", "run_id", conf.RunID, "err", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, models.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, models.ErrInsufficientStock):
		return metrics.OutcomeInsufficient
	case errors.Is(err, models.ErrConflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
