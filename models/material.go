package models

import (
	"strings"
	"time"
)

// RawMaterial is a stocked input consumed by production.
// Its name is unique and its stock quantity never drops below zero.
type RawMaterial struct {
	ID            uint      `gorm:"primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null"`
	StockQuantity int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (m *RawMaterial) TableName() string {
	return "raw_materials"
}

// NewRawMaterial returns a validated material with a trimmed name.
func NewRawMaterial(name string, stock int64) (*RawMaterial, error) {
	m := &RawMaterial{
		Name:          strings.TrimSpace(name),
		StockQuantity: stock,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RawMaterial) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return invalidf("material name cannot be empty")
	}
	if m.StockQuantity < 0 {
		return invalidf("stock quantity cannot be negative, got %d", m.StockQuantity)
	}
	return nil
}
