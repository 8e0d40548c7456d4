package api

import (
	"context"
	"net/http"

	"github.com/okian/valuator/internal/domain/model"
)

// CatalogDependencies defines the interface for catalog store operations.
type CatalogDependencies interface {
	ImportTracks(ctx context.Context, catalogID string, tracks []model.Track) error
	Holders(ctx context.Context, catalogID string) ([]model.Holder, error)
}

// CatalogHandler handles catalog import and holder lookups.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type importRequest struct {
	Tracks []model.Track `json:"tracks"`
}

// HandlePutTracks handles PUT /catalogs/{id}/tracks requests.
func (h *CatalogHandler) HandlePutTracks(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_tracks"
	id, err := catalogID(r, op)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var req importRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if len(req.Tracks) == 0 {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.ImportTracks(r.Context(), id, req.Tracks); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, importResponse{CatalogID: id, Imported: len(req.Tracks)})
}

// HandleGetHolders handles GET /catalogs/{id}/holders requests.
func (h *CatalogHandler) HandleGetHolders(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_holders"
	id, err := catalogID(r, op)
	if err != nil {
		writeFailure(w, err)
		return
	}
	holders, err := h.deps.Holders(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, holdersResponse{CatalogID: id, Holders: holders})
}
