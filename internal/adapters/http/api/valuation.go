package api

import (
	"context"
	"net/http"

	"github.com/okian/valuator/internal/adapters/worker"
	"github.com/okian/valuator/internal/domain/types"
)

// ValuationDependencies defines the interface for valuation operations.
type ValuationDependencies interface {
	Estimate(ctx context.Context, req types.ValuationRequest) (Report, error)
	EstimateCatalog(ctx context.Context, catalogID string, req types.ValuationRequest) (Report, error)
	EstimateCatalogs(ctx context.Context, catalogIDs []string, req types.ValuationRequest) ([]worker.Result, error)
}

// ValuationHandler handles valuation requests.
type ValuationHandler struct {
	deps ValuationDependencies
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(deps ValuationDependencies) *ValuationHandler {
	return &ValuationHandler{deps: deps}
}

// HandleEstimate handles POST /valuations requests.
func (h *ValuationHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "api.estimate"
	var req types.ValuationRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	report, err := h.deps.Estimate(r.Context(), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleEstimateCatalog handles POST /catalogs/{id}/valuation requests.
// Tracks in the body are ignored; the stored catalog is valued.
func (h *ValuationHandler) HandleEstimateCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "api.estimate_catalog"
	id, err := catalogID(r, op)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req types.ValuationRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	report, err := h.deps.EstimateCatalog(r.Context(), id, req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// batchRequest is a valuation request applied to every listed catalog.
type batchRequest struct {
	CatalogIDs []string `json:"catalog_ids"`
	types.ValuationRequest
}

type batchItem struct {
	CatalogID string         `json:"catalog_id"`
	Report    *Report        `json:"report,omitempty"`
	Error     *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Failed  int         `json:"failed"`
}

// HandleEstimateCatalogs handles POST /catalogs/valuations requests.
// Catalogs that fail are reported inline; the response is 200 unless the
// batch itself is rejected.
func (h *ValuationHandler) HandleEstimateCatalogs(w http.ResponseWriter, r *http.Request) {
	const op = "api.estimate_catalogs"
	var req batchRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	results, err := h.deps.EstimateCatalogs(r.Context(), req.CatalogIDs, req.ValuationRequest)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(results))}
	for i, res := range results {
		item := batchItem{CatalogID: res.CatalogID}
		if res.Err != nil {
			_, code := failureOf(res.Err)
			item.Error = &errorResponse{Code: code, Message: res.Err.Error()}
			resp.Failed++
		} else {
			report := res.Report
			item.Report = &report
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}
