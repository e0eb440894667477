package service

import (
	"sort"
	"time"

	ptime "oppwatch/internal/platform/time"
	"oppwatch/internal/services/report/domain"
)

// Mode selects the qualification variant
type Mode string

const (
	// ModeAll passes every record through; staleness is still computed
	ModeAll Mode = "all"

	// ModeThreshold keeps only records with at least MinTouches touches
	ModeThreshold Mode = "threshold"
)

// QualifyConfig carries the filter thresholds
type QualifyConfig struct {
	Mode       Mode
	MinTouches int
	StaleDays  int
}

// FilterAndSort applies staleness and qualification and orders the result.
// now is captured once by the caller so every record sees the same cutoff.
//
// Stale means zero touches, or a last touch older than StaleDays. Order is
// stale rows first, then touch count descending within each group; ties
// keep the incoming order, which is the source's LastModifiedDate ordering
func FilterAndSort(
	opps []domain.Opportunity,
	stats map[string]domain.TouchStats,
	now time.Time,
	cfg QualifyConfig,
) []domain.Row {
	cutoff := now.AddDate(0, 0, -cfg.StaleDays)

	rows := make([]domain.Row, 0, len(opps))
	for _, opp := range opps {
		st := stats[opp.ID]
		st.Stale = isStale(st, cutoff)
		if cfg.Mode == ModeThreshold && st.Count < cfg.MinTouches {
			continue
		}
		rows = append(rows, domain.Row{Opp: opp, Stats: st})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Stats, rows[j].Stats
		if a.Stale != b.Stale {
			return a.Stale
		}
		return a.Count > b.Count
	})
	return rows
}

// isStale reports whether the stats fall behind the cutoff. A last-touch
// stamp that fails to parse counts as stale rather than failing the run
func isStale(st domain.TouchStats, cutoff time.Time) bool {
	if st.Count == 0 || st.LastTouch == "" {
		return true
	}
	last, err := ptime.ParseStamp(st.LastTouch)
	if err != nil {
		return true
	}
	return last.Before(cutoff)
}
