// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/valuator/internal/adapters/repository"
	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/internal/domain/types"
	"github.com/okian/valuator/internal/domain/valuation"
	"github.com/okian/valuator/pkg/logger"
)

// maxBodyBytes caps request bodies; a catalog import is the largest payload.
const maxBodyBytes = 16 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ValuationDependencies
	CatalogDependencies
	GenreDependencies
}

// Report mirrors the valuation report returned by the service.
type Report = types.Report

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	valuationHandler *ValuationHandler
	catalogHandler   *CatalogHandler
	genresHandler    *GenresHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		valuationHandler: NewValuationHandler(deps),
		catalogHandler:   NewCatalogHandler(deps),
		genresHandler:    NewGenresHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /genres", MetricsMiddleware(s.genresHandler.HandleGetGenres, "genres"))
	mux.HandleFunc("POST /valuations", MetricsMiddleware(s.valuationHandler.HandleEstimate, "valuations"))
	mux.HandleFunc("POST /catalogs/valuations", MetricsMiddleware(s.valuationHandler.HandleEstimateCatalogs, "catalog_valuations"))
	mux.HandleFunc("POST /catalogs/{id}/valuation", MetricsMiddleware(s.valuationHandler.HandleEstimateCatalog, "catalog_valuation"))
	mux.HandleFunc("PUT /catalogs/{id}/tracks", MetricsMiddleware(s.catalogHandler.HandlePutTracks, "catalog_tracks"))
	mux.HandleFunc("GET /catalogs/{id}/holders", MetricsMiddleware(s.catalogHandler.HandleGetHolders, "catalog_holders"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the status so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Get().Error(context.Background(), "failed to encode response", logger.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "response could not be encoded"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// failureOf maps an error onto a status code and error code.
func failureOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, types.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrCatalogNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeFailure writes err with the status failureOf picks for it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := failureOf(err)
	writeError(w, status, code, err)
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

func catalogID(r *http.Request, op string) (string, error) {
	id := r.PathValue("id")
	if id == "" {
		return "", NewKind(op, ErrBadRequest)
	}
	return id, nil
}

// holdersResponse is the body of GET /catalogs/{id}/holders.
type holdersResponse struct {
	CatalogID string         `json:"catalog_id"`
	Holders   []model.Holder `json:"holders"`
}

type importResponse struct {
	CatalogID string `json:"catalog_id"`
	Imported  int    `json:"imported"`
}

type genresResponse struct {
	MaxSelected int               `json:"max_selected"`
	Genres      []valuation.Genre `json:"genres"`
}
