package production

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/factoryops/inventory/app/api"
	"github.com/factoryops/inventory/models"
	"github.com/google/uuid"
)

var runsPage = api.Page{Default: 10, Max: 100}

type SuggestedProduct struct {
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type SuggestionResponse struct {
	Strategy          string             `json:"strategy"`
	SuggestedProducts []SuggestedProduct `json:"suggestedProducts"`
	TotalValue        float64            `json:"totalValue"`
}

type DeductionResponse struct {
	MaterialID     uint   `json:"materialId"`
	MaterialName   string `json:"materialName"`
	Quantity       int64  `json:"quantity"`
	RemainingStock int64  `json:"remainingStock"`
}

type ConfirmationResponse struct {
	ProductionRunID uuid.UUID           `json:"productionRunId"`
	ProductID       uint                `json:"productId"`
	ProductName     string              `json:"productName"`
	Quantity        int64               `json:"quantity"`
	Deductions      []DeductionResponse `json:"deductions"`
	CommittedAt     time.Time           `json:"committedAt"`
}

type MovementResponse struct {
	MaterialID uint  `json:"materialId"`
	Delta      int64 `json:"delta"`
}

type RunResponse struct {
	ID          uuid.UUID          `json:"id"`
	ProductID   uint               `json:"productId"`
	ProductName string             `json:"productName"`
	Quantity    int64              `json:"quantity"`
	CreatedAt   time.Time          `json:"createdAt"`
	Movements   []MovementResponse `json:"movements"`
}

type RunsResponse struct {
	Total int           `json:"total"`
	Runs  []RunResponse `json:"runs"`
}

type Suggester interface {
	Suggest(ctx context.Context, strategy Strategy) (*Report, error)
}

type Producer interface {
	Produce(ctx context.Context, productID uint, quantity int64) (*Confirmation, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, offset, limit int) ([]models.ProductionRun, int64, error)
}

type ProductionHandler struct {
	planner  Suggester
	executor Producer
	runs     RunLister
}

func NewProductionHandler(planner Suggester, executor Producer, runs RunLister) *ProductionHandler {
	return &ProductionHandler{
		planner:  planner,
		executor: executor,
		runs:     runs,
	}
}

func (h *ProductionHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	report, ok := h.suggest(w, r)
	if !ok {
		return
	}

	products := make([]SuggestedProduct, len(report.Entries))
	for i, e := range report.Entries {
		products[i] = SuggestedProduct{
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
			Quantity:    e.Quantity,
			UnitPrice:   e.UnitPrice.InexactFloat64(),
		}
	}

	api.OKResponse(w, SuggestionResponse{
		Strategy:          string(report.Strategy),
		SuggestedProducts: products,
		TotalValue:        report.TotalValue.InexactFloat64(),
	})
}

func (h *ProductionHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.suggest(w, r)
	if !ok {
		return
	}

	body, err := WriteXLSX(report)
	if err != nil {
		api.Error(w, r, err, "Failed to export suggestion")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "production-suggestion.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *ProductionHandler) suggest(w http.ResponseWriter, r *http.Request) (*Report, bool) {
	strategy, err := ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		api.Error(w, r, err, "Invalid strategy")
		return nil, false
	}

	report, err := h.planner.Suggest(r.Context(), strategy)
	if err != nil {
		api.Error(w, r, err, "Failed to compute suggestion")
		return nil, false
	}
	return report, true
}

func (h *ProductionHandler) HandleProduce(w http.ResponseWriter, r *http.Request) {
	productID, err := api.PathID(r, "productId")
	if err != nil {
		api.Error(w, r, err, "Invalid product id")
		return
	}

	raw := r.URL.Query().Get("quantity")
	quantity, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, api.CodeInvalidInput,
			fmt.Sprintf("quantity must be a positive integer, got %q", raw))
		return
	}

	conf, err := h.executor.Produce(r.Context(), productID, quantity)
	if err != nil {
		api.Error(w, r, err, "Failed to produce")
		return
	}

	deductions := make([]DeductionResponse, len(conf.Deductions))
	for i, d := range conf.Deductions {
		deductions[i] = DeductionResponse{
			MaterialID:     d.MaterialID,
			MaterialName:   d.MaterialName,
			Quantity:       d.Quantity,
			RemainingStock: d.RemainingStock,
		}
	}

	api.OKResponse(w, ConfirmationResponse{
		ProductionRunID: conf.RunID,
		ProductID:       conf.ProductID,
		ProductName:     conf.ProductName,
		Quantity:        conf.Quantity,
		Deductions:      deductions,
		CommittedAt:     conf.CommittedAt,
	})
}

func (h *ProductionHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := runsPage.Parse(r)
	if err != nil {
		api.Error(w, r, err, "Invalid pagination")
		return
	}

	res, total, err := h.runs.ListRuns(r.Context(), offset, limit)
	if err != nil {
		api.Error(w, r, err, "Failed to list production runs")
		return
	}

	runs := make([]RunResponse, len(res))
	for i, run := range res {
		movements := make([]MovementResponse, len(run.Movements))
		for j, m := range run.Movements {
			movements[j] = MovementResponse{MaterialID: m.RawMaterialID, Delta: m.Delta}
		}
		runs[i] = RunResponse{
			ID:          run.ID,
			ProductID:   run.ProductID,
			ProductName: run.ProductName,
			Quantity:    run.Quantity,
			CreatedAt:   run.CreatedAt,
			Movements:   movements,
		}
	}

	api.OKResponse(w, RunsResponse{
		Total: int(total),
		Runs:  runs,
	})
}
