package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockStore is the Postgres-backed stock ledger. Reads for planning go
// through Snapshot; every mutation goes through WithLockedStock.
type StockStore struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewStockStore(db *gorm.DB, lockTimeout time.Duration) *StockStore {
	return &StockStore{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// Snapshot reads every material's stock in one query, without locking.
func (s *StockStore) Snapshot(ctx context.Context) (StockSnapshot, error) {
	var rows []RawMaterial
	if err := s.db.WithContext(ctx).
		Select("id", "stock_quantity").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	snap := make(StockSnapshot, len(rows))
	for _, m := range rows {
		snap[m.ID] = m.StockQuantity
	}
	return snap, nil
}

// WithLockedStock runs fn in a transaction holding row locks on the given
// materials. Locks are taken in ascending id order so two transactions over
// overlapping sets cannot deadlock each other. If fn returns an error the
// transaction is rolled back and nothing fn did is kept.
func (s *StockStore) WithLockedStock(ctx context.Context, materialIDs []uint, fn func(StockTx) error) error {
	ids := slices.Clone(materialIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 {
			if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())).Error; err != nil {
				return err
			}
		}

		ledger := &txLedger{tx: tx, stock: make(map[uint]int64, len(ids))}
		if err := ledger.lock(ids); err != nil {
			return err
		}
		return fn(ledger)
	})
	return translateError(err)
}

// ListRuns returns committed production runs, newest first, with their
// stock movements.
func (s *StockStore) ListRuns(ctx context.Context, offset, limit int) ([]ProductionRun, int64, error) {
	var runs []ProductionRun
	var total int64

	db := s.db.WithContext(ctx)
	if err := db.Model(&ProductionRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.
		Preload("Movements", func(db *gorm.DB) *gorm.DB { return db.Order("stock_movements.raw_material_id") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

type txLedger struct {
	tx    *gorm.DB
	stock map[uint]int64
	runID *uuid.UUID
}

func (l *txLedger) lock(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var rows []RawMaterial
	if err := l.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock_quantity").
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error; err != nil {
		return err
	}
	for _, m := range rows {
		l.stock[m.ID] = m.StockQuantity
	}
	return nil
}

func (l *txLedger) GetStock(ctx context.Context, materialID uint) (int64, error) {
	if qty, ok := l.stock[materialID]; ok {
		return qty, nil
	}

	// Not part of the locked set: lock it now.
	var m RawMaterial
	err := l.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock_quantity").
		Where("id = ?", materialID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrMaterialNotFound
	}
	if err != nil {
		return 0, err
	}
	l.stock[m.ID] = m.StockQuantity
	return m.StockQuantity, nil
}

// Deduct subtracts amount with a conditional update, so the row can never go
// negative even if the caller skipped validation.
func (l *txLedger) Deduct(ctx context.Context, materialID uint, amount int64) error {
	if amount <= 0 {
		return invalidf("deduct amount must be positive, got %d", amount)
	}

	res := l.tx.WithContext(ctx).
		Model(&RawMaterial{}).
		Where("id = ? AND stock_quantity >= ?", materialID, amount).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", amount),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		available, err := l.GetStock(ctx, materialID)
		if err != nil {
			return err
		}
		return &InsufficientStockError{MaterialID: materialID, Required: amount, Available: available}
	}
	// Unread materials stay uncached; GetStock reads the updated row later.
	if qty, ok := l.stock[materialID]; ok {
		l.stock[materialID] = qty - amount
	}

	reason := MovementAdjustment
	if l.runID != nil {
		reason = MovementProduction
	}
	return l.tx.WithContext(ctx).Create(&StockMovement{
		RawMaterialID:   materialID,
		Delta:           -amount,
		Reason:          reason,
		ProductionRunID: l.runID,
	}).Error
}

// RecordRun stores the run; deductions made afterwards are linked to it.
func (l *txLedger) RecordRun(ctx context.Context, run *ProductionRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := l.tx.WithContext(ctx).Omit("Movements").Create(run).Error; err != nil {
		return err
	}
	id := run.ID
	l.runID = &id
	return nil
}
