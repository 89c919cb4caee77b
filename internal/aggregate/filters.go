package aggregate

import (
	"strings"

	"github.com/orgpulse/pulse/internal/model"
)

// Filters restricts the records an aggregation sees.
type Filters struct {
	// Fields maps a column to its allowed values. Columns are AND-combined;
	// values within a column are OR-combined.
	Fields map[string][]string
	// Below maps a numeric column to an exclusive upper bound.
	Below map[string]float64
}

// IsEmpty reports whether the filters restrict nothing.
func (f Filters) IsEmpty() bool {
	for _, v := range f.Fields {
		if len(v) > 0 {
			return false
		}
	}
	return len(f.Below) == 0
}

// ApplyFilters returns the records matching every filter. A record missing a
// filtered column never matches. Empty filters return records unchanged.
func ApplyFilters(records []model.ResponseRecord, f Filters) []model.ResponseRecord {
	if f.IsEmpty() {
		return records
	}
	sets := make(map[string]map[string]bool, len(f.Fields))
	for col, allowed := range f.Fields {
		if len(allowed) == 0 {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[strings.TrimSpace(v)] = true
		}
		sets[col] = set
	}

	out := make([]model.ResponseRecord, 0, len(records))
	for _, rec := range records {
		if matches(rec, sets, f.Below) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec model.ResponseRecord, sets map[string]map[string]bool, below map[string]float64) bool {
	for col, set := range sets {
		a, ok := rec.Get(col)
		if !ok {
			return false
		}
		if !set[label(a)] && !set[a.String()] {
			return false
		}
	}
	for col, bound := range below {
		v, ok := rec.Score(col)
		if !ok || v >= bound {
			return false
		}
	}
	return true
}
