package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductionRun is a committed production of Quantity units of a product.
// The product name is copied so the history survives product deletion.
type ProductionRun struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID   uint            `gorm:"not null;index"`
	ProductName string          `gorm:"not null"`
	Quantity    int64           `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	Movements   []StockMovement `gorm:"foreignKey:ProductionRunID"`
}

func (r *ProductionRun) TableName() string {
	return "production_runs"
}
