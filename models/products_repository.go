package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// withRecipe preloads recipe lines, ordered by material, with their materials.
func withRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Materials", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_lines.raw_material_id")
		}).
		Preload("Materials.RawMaterial")
}

// GetAll returns every product with its recipe, ordered by id.
func (r *ProductsRepository) GetAll(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := withRecipe(r.db.WithContext(ctx)).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := withRecipe(r.db.WithContext(ctx)).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// Create inserts the product together with any recipe lines it carries.
// Referenced materials must exist; they are never created or updated here.
func (r *ProductsRepository) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireMaterials(tx, p.Materials); err != nil {
			return err
		}
		if err := tx.Omit("Materials.RawMaterial").Create(p).Error; err != nil {
			return err
		}
		return withRecipe(tx).First(p, p.ID).Error
	})
	return translateError(err)
}

// Update changes the product's name and price; the recipe is left alone.
func (r *ProductsRepository) Update(ctx context.Context, id uint, name string, price decimal.Decimal) (*Product, error) {
	candidate, err := NewProduct(name, price)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Model(&Product{ID: id}).
		Updates(map[string]any{"name": candidate.Name, "price": candidate.Price})
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the product; its recipe lines go with it.
func (r *ProductsRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&RecipeLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	return translateError(err)
}

// AddRecipeLine attaches a material requirement to an existing product.
func (r *ProductsRepository) AddRecipeLine(ctx context.Context, line *RecipeLine) error {
	if err := line.Validate(); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Product{}, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := requireMaterials(tx, []RecipeLine{*line}); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&RecipeLine{}).
			Where("product_id = ? AND raw_material_id = ?", line.ProductID, line.RawMaterialID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return invalidf("material %d is already part of the recipe", line.RawMaterialID)
		}

		if err := tx.Omit("RawMaterial").Create(line).Error; err != nil {
			return err
		}
		return tx.Preload("RawMaterial").First(line, line.ID).Error
	})
	return translateError(err)
}

// RemoveRecipeLine detaches a material from a product's recipe.
func (r *ProductsRepository) RemoveRecipeLine(ctx context.Context, productID, materialID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Product{}, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		res := tx.Where("product_id = ? AND raw_material_id = ?", productID, materialID).Delete(&RecipeLine{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
	return translateError(err)
}

func requireMaterials(tx *gorm.DB, lines []RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.RawMaterialID
	}

	var found int64
	if err := tx.Model(&RawMaterial{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(ids)) {
		return ErrMaterialNotFound
	}
	return nil
}
