package materials

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/factoryops/inventory/app/api"
	"github.com/factoryops/inventory/models"
	"github.com/google/uuid"
)

var movementsPage = api.Page{Default: 50, Max: 500}

type MaterialResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	StockQuantity int64  `json:"stockQuantity"`
}

type MovementResponse struct {
	ID              uint       `json:"id"`
	Delta           int64      `json:"delta"`
	Reason          string     `json:"reason"`
	ProductionRunID *uuid.UUID `json:"productionRunId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type MaterialProvider interface {
	GetAll(ctx context.Context) ([]models.RawMaterial, error)
	GetByID(ctx context.Context, id uint) (*models.RawMaterial, error)
	Create(ctx context.Context, m *models.RawMaterial) error
	Update(ctx context.Context, id uint, name string, stock int64) (*models.RawMaterial, error)
	Delete(ctx context.Context, id uint) error
	Movements(ctx context.Context, id uint, limit int) ([]models.StockMovement, error)
}

type MaterialHandler struct {
	repo MaterialProvider
}

func NewMaterialHandler(r MaterialProvider) *MaterialHandler {
	return &MaterialHandler{repo: r}
}

type materialInput struct {
	Name          string `json:"name"`
	StockQuantity *int64 `json:"stockQuantity"`
}

func toResponse(m *models.RawMaterial) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		Name:          m.Name,
		StockQuantity: m.StockQuantity,
	}
}

func (h *MaterialHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	materials, err := h.repo.GetAll(r.Context())
	if err != nil {
		api.Error(w, r, err, "Failed to fetch materials")
		return
	}

	response := make([]MaterialResponse, len(materials))
	for i := range materials {
		response[i] = toResponse(&materials[i])
	}
	api.OKResponse(w, response)
}

func (h *MaterialHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid material id")
		return
	}

	material, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.Error(w, r, err, "Failed to retrieve material")
		return
	}
	api.OKResponse(w, toResponse(material))
}

func (h *MaterialHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input materialInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Invalid JSON body")
		return
	}

	var stock int64
	if input.StockQuantity != nil {
		stock = *input.StockQuantity
	}
	material, err := models.NewRawMaterial(input.Name, stock)
	if err != nil {
		api.Error(w, r, err, "Invalid material")
		return
	}

	if err := h.repo.Create(r.Context(), material); err != nil {
		api.Error(w, r, err, "Failed to create material")
		return
	}
	api.JSONResponse(w, http.StatusCreated, toResponse(material))
}

// HandleUpdate replaces the name and stock; both fields are required.
func (h *MaterialHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid material id")
		return
	}

	var input materialInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Invalid JSON body")
		return
	}
	if input.StockQuantity == nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput, "Missing stockQuantity")
		return
	}

	material, err := h.repo.Update(r.Context(), id, input.Name, *input.StockQuantity)
	if err != nil {
		api.Error(w, r, err, "Failed to update material")
		return
	}
	api.OKResponse(w, toResponse(material))
}

func (h *MaterialHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid material id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.Error(w, r, err, "Failed to delete material")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaterialHandler) HandleMovements(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.Error(w, r, err, "Invalid material id")
		return
	}

	_, limit, err := movementsPage.Parse(r)
	if err != nil {
		api.Error(w, r, err, "Invalid limit")
		return
	}

	movements, err := h.repo.Movements(r.Context(), id, limit)
	if err != nil {
		api.Error(w, r, err, "Failed to fetch movements")
		return
	}

	response := make([]MovementResponse, len(movements))
	for i, m := range movements {
		response[i] = MovementResponse{
			ID:              m.ID,
			Delta:           m.Delta,
			Reason:          string(m.Reason),
			ProductionRunID: m.ProductionRunID,
			CreatedAt:       m.CreatedAt,
		}
	}
	api.OKResponse(w, response)
}
