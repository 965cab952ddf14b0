package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementReason tells why a material's stock changed.
type MovementReason string

const (
	MovementInitial    MovementReason = "initial"
	MovementAdjustment MovementReason = "adjustment"
	MovementProduction MovementReason = "production"
)

// StockMovement is one signed change to a material's stock.
type StockMovement struct {
	ID              uint           `gorm:"primaryKey"`
	RawMaterialID   uint           `gorm:"not null;index"`
	Delta           int64          `gorm:"not null"`
	Reason          MovementReason `gorm:"size:20;not null"`
	ProductionRunID *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (m *StockMovement) TableName() string {
	return "stock_movements"
}
