package models

// RecipeLine says that producing one unit of ProductID consumes
// RequiredQuantity units of RawMaterialID.
type RecipeLine struct {
	ID               uint        `gorm:"primaryKey"`
	ProductID        uint        `gorm:"not null;uniqueIndex:idx_recipe_product_material"`
	RawMaterialID    uint        `gorm:"not null;uniqueIndex:idx_recipe_product_material"`
	RawMaterial      RawMaterial `gorm:"foreignKey:RawMaterialID;constraint:OnDelete:RESTRICT"`
	RequiredQuantity int64       `gorm:"not null"`
}

func (l *RecipeLine) TableName() string {
	return "recipe_lines"
}

// NewRecipeLine returns a validated recipe line.
func NewRecipeLine(productID, materialID uint, required int64) (*RecipeLine, error) {
	l := &RecipeLine{
		ProductID:        productID,
		RawMaterialID:    materialID,
		RequiredQuantity: required,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *RecipeLine) Validate() error {
	if l.RawMaterialID == 0 {
		return invalidf("recipe line needs a raw material")
	}
	if l.RequiredQuantity <= 0 {
		return invalidf("required quantity must be positive, got %d", l.RequiredQuantity)
	}
	return nil
}
