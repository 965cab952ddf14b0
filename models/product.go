package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item and its recipe.
// Producing one unit consumes every line in Materials.
type Product struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Materials []RecipeLine    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) TableName() string {
	return "products"
}

// NewProduct returns a validated product without recipe lines.
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	p := &Product{
		Name:  strings.TrimSpace(name),
		Price: price,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidf("product name cannot be empty")
	}
	if p.Price.IsNegative() {
		return invalidf("price cannot be negative, got %s", p.Price.String())
	}

	seen := make(map[uint]struct{}, len(p.Materials))
	for _, line := range p.Materials {
		if err := line.Validate(); err != nil {
			return err
		}
		if _, dup := seen[line.RawMaterialID]; dup {
			return invalidf("material %d appears twice in the recipe", line.RawMaterialID)
		}
		seen[line.RawMaterialID] = struct{}{}
	}
	return nil
}

// HasRecipe reports whether the product can be produced at all.
func (p *Product) HasRecipe() bool {
	return len(p.Materials) > 0
}
