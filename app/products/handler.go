package products

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/factoryops/inventory/app/api"
	"github.com/factoryops/inventory/models"
	"github.com/shopspring/decimal"
)

type Material struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	StockQuantity int64  `json:"stockQuantity"`
}

type RecipeLine struct {
	ID               uint     `json:"id"`
	RawMaterial      Material `json:"rawMaterial"`
	RequiredQuantity int64    `json:"requiredQuantity"`
}

type Product struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Price     float64      `json:"price"`
	Materials []RecipeLine `json:"materials"`
}

type ProductProvider interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id uint, name string, price decimal.Decimal) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
	AddRecipeLine(ctx context.Context, line *models.RecipeLine) error
	RemoveRecipeLine(ctx context.Context, productID, materialID uint) error
}

type ProductHandler struct {
	repo ProductProvider
}

func NewProductHandler(r ProductProvider) *ProductHandler {
	return &ProductHandler{
		repo: r,
	}
}

// lineInput accepts both {"rawMaterialId": 1} and the older
// {"rawMaterial": {"id": 1}} shape.
type lineInput struct {
	RawMaterialID uint `json:"rawMaterialId"`
	RawMaterial   *struct {
		ID uint `json:"id"`
	} `json:"rawMaterial"`
	RequiredQuantity int64 `json:"requiredQuantity"`
}

func (in lineInput) materialID() uint {
	if in.RawMaterialID != 0 {
		return in.RawMaterialID
	}
	if in.RawMaterial != nil {
		return in.RawMaterial.ID
	}
	return 0
}

type productInput struct {
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	Materials []lineInput      `json:"materials"`
}

func toLine(l models.RecipeLine) RecipeLine {
	return RecipeLine{
		ID: l.ID,
		RawMaterial: Material{
			ID:            l.RawMaterial.ID,
			Name:          l.RawMaterial.Name,
			StockQuantity: l.RawMaterial.StockQuantity,
		},
		RequiredQuantity: l.RequiredQuantity,
	}
}

func toProduct(p *models.Product) Product {
	lines := make([]RecipeLine, len(p.Materials))
	for i, l := range p.Materials {
		lines[i] = toLine(l)
	}
	return Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Materials: lines,
	}
}

func (h *ProductHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetAll(r.Context())
	if err != nil {
		api.Error(w, r, err, "Failed to fetch products")
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}
	api.OKResponse(w, products)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.Error(w, r, err, "Failed to retrieve product")
		return
	}
	api.OKResponse(w, toProduct(product))
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Invalid JSON body")
		return
	}
	if input.Price == nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Missing price")
		return
	}

	product, err := models.NewProduct(input.Name, *input.Price)
	if err != nil {
		api.Error(w, r, err, "Invalid product")
		return
	}
	for _, in := range input.Materials {
		product.Materials = append(product.Materials, models.RecipeLine{
			RawMaterialID:    in.materialID(),
			RequiredQuantity: in.RequiredQuantity,
		})
	}
	if err := product.Validate(); err != nil {
		api.Error(w, r, err, "Invalid product")
		return
	}

	if err := h.repo.Create(r.Context(), product); err != nil {
		api.Error(w, r, err, "Failed to create product")
		return
	}
	api.JSONResponse(w, http.StatusCreated, toProduct(product))
}

// HandleUpdate changes name and price. Recipe lines are managed through the
// materials sub-resource.
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}

	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Invalid JSON body")
		return
	}
	if input.Price == nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Missing price")
		return
	}

	product, err := h.repo.Update(r.Context(), id, input.Name, *input.Price)
	if err != nil {
		api.Error(w, r, err, "Failed to update product")
		return
	}
	api.OKResponse(w, toProduct(product))
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.Error(w, r, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) HandleAddMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}

	var input lineInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Invalid JSON body")
		return
	}

	line, err := models.NewRecipeLine(id, input.materialID(), input.RequiredQuantity)
	if err != nil {
		api.Error(w, r, err, "Invalid recipe line")
		return
	}

	if err := h.repo.AddRecipeLine(r.Context(), line); err != nil {
		api.Error(w, r, err, "Failed to add material")
		return
	}
	api.JSONResponse(w, http.StatusCreated, toLine(*line))
}

func (h *ProductHandler) HandleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}
	materialID, err := api.PathID(r, "materialId")
	if err != nil {
		api.Error(w, r, err, "Invalid material id")
		return
	}

	if err := h.repo.RemoveRecipeLine(r.Context(), id, materialID); err != nil {
		api.Error(w, r, err, "Failed to remove material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
