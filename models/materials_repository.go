package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MaterialsRepository struct {
	db *gorm.DB
}

func NewMaterialsRepository(db *gorm.DB) *MaterialsRepository {
	return &MaterialsRepository{
		db: db,
	}
}

func (r *MaterialsRepository) GetAll(ctx context.Context) ([]RawMaterial, error) {
	var materials []RawMaterial
	if err := r.db.WithContext(ctx).Order("id").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *MaterialsRepository) GetByID(ctx context.Context, id uint) (*RawMaterial, error) {
	var material RawMaterial
	if err := r.db.WithContext(ctx).First(&material, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	return &material, nil
}

// Create inserts the material and books its opening stock as a movement.
func (r *MaterialsRepository) Create(ctx context.Context, m *RawMaterial) error {
	if err := m.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if m.StockQuantity == 0 {
			return nil
		}
		return tx.Create(&StockMovement{
			RawMaterialID: m.ID,
			Delta:         m.StockQuantity,
			Reason:        MovementInitial,
		}).Error
	})
	return translateError(err)
}

// Update renames the material and sets its stock. The row is locked for the
// duration so the edit serializes with production runs on the same material.
func (r *MaterialsRepository) Update(ctx context.Context, id uint, name string, stock int64) (*RawMaterial, error) {
	candidate, err := NewRawMaterial(name, stock)
	if err != nil {
		return nil, err
	}

	var material RawMaterial
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&material, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMaterialNotFound
			}
			return err
		}

		delta := stock - material.StockQuantity
		material.Name = candidate.Name
		material.StockQuantity = stock
		material.UpdatedAt = time.Now()
		if err := tx.Save(&material).Error; err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return tx.Create(&StockMovement{
			RawMaterialID: material.ID,
			Delta:         delta,
			Reason:        MovementAdjustment,
		}).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &material, nil
}

// Delete removes a material no recipe refers to.
func (r *MaterialsRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var material RawMaterial
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&material, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMaterialNotFound
			}
			return err
		}

		var refs int64
		if err := tx.Model(&RecipeLine{}).Where("raw_material_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrMaterialInUse
		}
		return tx.Delete(&material).Error
	})
	return translateError(err)
}

// Movements returns the latest stock movements of a material, newest first.
func (r *MaterialsRepository) Movements(ctx context.Context, id uint, limit int) ([]StockMovement, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var movements []StockMovement
	if err := r.db.WithContext(ctx).
		Where("raw_material_id = ?", id).
		Order("id DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
