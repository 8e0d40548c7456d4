package api

import (
	"net/http"

	"github.com/okian/valuator/internal/domain/valuation"
)

// GenreDependencies defines the interface for the genre catalog.
type GenreDependencies interface {
	Genres() []valuation.Genre
}

// GenresHandler serves the genre catalog.
type GenresHandler struct {
	deps GenreDependencies
}

// NewGenresHandler creates a new genres handler.
func NewGenresHandler(deps GenreDependencies) *GenresHandler {
	return &GenresHandler{deps: deps}
}

// HandleGetGenres handles GET /genres requests.
func (h *GenresHandler) HandleGetGenres(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, genresResponse{
		MaxSelected: valuation.MaxGenres,
		Genres:      h.deps.Genres(),
	})
}
