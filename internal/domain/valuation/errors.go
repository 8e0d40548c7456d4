package valuation

import "errors"

// Sentinel kinds for input validation. The scoring functions themselves
// never fail; these are returned by the Validate helpers only.
var (
	ErrTooManyGenres  = errors.New("too many genres")
	ErrDuplicateGenre = errors.New("duplicate genre")
	ErrMalformedSplit = errors.New("malformed publisher splits")
)
