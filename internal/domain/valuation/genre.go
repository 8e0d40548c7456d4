package valuation

import (
	"fmt"
	"strings"
)

// MaxGenres caps the number of genres a selection may carry.
const MaxGenres = 3

// Genre is one entry of the fixed genre catalog.
type Genre struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// genreCatalog is ordered for display.
var genreCatalog = []Genre{ //nolint:gochecknoglobals // fixed lookup table
	{Name: "Pop", Weight: 3},
	{Name: "Hip-Hop", Weight: 3},
	{Name: "R&B", Weight: 3},
	{Name: "Rock", Weight: 4},
	{Name: "Country", Weight: 4},
	{Name: "EDM", Weight: 4},
	{Name: "Latin", Weight: 2},
	{Name: "Jazz", Weight: 5},
	{Name: "Classical", Weight: 5},
}

var genreWeights = func() map[string]int { //nolint:gochecknoglobals // derived from genreCatalog
	m := make(map[string]int, len(genreCatalog))
	for _, g := range genreCatalog {
		m[normalizeGenre(g.Name)] = g.Weight
	}
	return m
}()

// Genres returns a copy of the genre catalog.
func Genres() []Genre {
	out := make([]Genre, len(genreCatalog))
	copy(out, genreCatalog)
	return out
}

// GenreWeight returns the appeal weight of a genre label and whether it is known.
func GenreWeight(name string) (int, bool) {
	w, ok := genreWeights[normalizeGenre(name)]
	return w, ok
}

// GenreResult is the outcome of scoring a genre selection.
type GenreResult struct {
	Score   float64
	Unknown []string
}

// GenreScore averages the weights of the selected genres. Unknown labels
// count as zero and are reported in Unknown; an empty selection scores 0.
func GenreScore(genres []string) GenreResult {
	var res GenreResult
	if len(genres) == 0 {
		return res
	}
	total := 0
	for _, g := range genres {
		w, ok := GenreWeight(g)
		if !ok {
			res.Unknown = append(res.Unknown, g)
			continue
		}
		total += w
	}
	res.Score = float64(total) / float64(len(genres))
	return res
}

// ValidateGenres checks a user supplied selection: at most MaxGenres
// entries and no duplicates. Unknown labels are allowed.
func ValidateGenres(genres []string) error {
	if len(genres) > MaxGenres {
		return fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyGenres, len(genres), MaxGenres)
	}
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		key := normalizeGenre(g)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateGenre, g)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func normalizeGenre(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
