package service

import (
	ptime "oppwatch/internal/platform/time"
	"oppwatch/internal/services/report/domain"
)

// Aggregate correlates activities to their parent opportunities and counts
// human touches. One pass over the activity list, constant work per entry.
//
// Timestamps from the source arrive as ISO-8601 strings with either a "Z"
// or a "+HHMM" suffix; both normalize to one canonical offset form so the
// most-recent comparison can stay lexicographic. Every input opportunity
// gets an entry, zero-touch ones with Count 0 and an empty LastTouch
func Aggregate(
	opps []domain.Opportunity,
	activities []domain.Activity,
	humans map[string]struct{},
) map[string]domain.TouchStats {
	stats := make(map[string]domain.TouchStats, len(opps))
	for _, opp := range opps {
		stats[opp.ID] = domain.TouchStats{}
	}

	for _, act := range activities {
		if _, human := humans[act.ActorID]; !human {
			continue
		}
		st, known := stats[act.AboutID]
		if !known {
			// activity about a record outside this run's scope
			continue
		}
		st.Count++
		if created := ptime.NormalizeStamp(act.CreatedAt); created > st.LastTouch {
			st.LastTouch = created
		}
		stats[act.AboutID] = st
	}
	return stats
}
