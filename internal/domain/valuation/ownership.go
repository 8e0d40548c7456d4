package valuation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/valuator/internal/domain/model"
)

// Split is one rights holder's share of a track.
type Split struct {
	HolderID   string  `json:"holder_id"`
	HolderName string  `json:"holder_name,omitempty"`
	Percentage Percent `json:"percentage"`
}

// Percent accepts both JSON numbers and numeric strings.
type Percent float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("percentage %q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("percentage %q is not a finite number", s)
		}
		*p = Percent(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// ParseSplits decodes a publisher split document. Blank input yields no
// splits and no error.
func ParseSplits(raw string) ([]Split, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var splits []Split
	if err := json.Unmarshal([]byte(raw), &splits); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSplit, err)
	}
	return splits, nil
}

// OwnershipResult carries the average owned percentage and the IDs of
// tracks whose split documents could not be parsed.
type OwnershipResult struct {
	Percentage float64
	Malformed  []string
}

// OwnershipPercentage sums, per track, the shares held by ownerIDs and
// averages that sum over all tracks. A malformed split document counts
// as zero ownership for its track.
func OwnershipPercentage(tracks []model.Track, ownerIDs []string) OwnershipResult {
	var res OwnershipResult
	if len(tracks) == 0 || len(ownerIDs) == 0 {
		return res
	}
	owners := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	total := 0.0
	for _, t := range tracks {
		if t.PublisherSplits == nil {
			continue
		}
		splits, err := ParseSplits(*t.PublisherSplits)
		if err != nil {
			res.Malformed = append(res.Malformed, t.ID)
			continue
		}
		for _, s := range splits {
			if _, ok := owners[s.HolderID]; ok {
				total += float64(s.Percentage)
			}
		}
	}
	res.Percentage = total / float64(len(tracks))
	return res
}

// OwnershipScore bands an ownership percentage into 1..5.
func OwnershipScore(percentage float64) int {
	switch {
	case percentage >= 90:
		return 5
	case percentage >= 70:
		return 4
	case percentage >= 50:
		return 3
	case percentage >= 30:
		return 2
	default:
		return 1
	}
}
