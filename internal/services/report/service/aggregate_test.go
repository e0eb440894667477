package service

import (
	"testing"

	"oppwatch/internal/services/report/domain"
)

func opp(id string) domain.Opportunity { return domain.Opportunity{ID: id} }

func TestAggregateCountsHumanTouchesOnly(t *testing.T) {
	opps := []domain.Opportunity{opp("o1")}
	acts := []domain.Activity{
		{ID: "t1", AboutID: "o1", ActorID: "human", CreatedAt: "2026-08-01T10:00:00.000Z"},
		{ID: "t2", AboutID: "o1", ActorID: "human", CreatedAt: "2026-08-10T10:00:00.000Z"},
		{ID: "t3", AboutID: "o1", ActorID: "robot", CreatedAt: "2026-08-20T10:00:00.000Z"},
	}
	humans := map[string]struct{}{"human": {}}

	stats := Aggregate(opps, acts, humans)
	st := stats["o1"]
	if st.Count != 2 {
		t.Fatalf("count = %d, want 2 (robot touch excluded)", st.Count)
	}
	if st.LastTouch != "2026-08-10T10:00:00.000+00:00" {
		t.Fatalf("last touch = %q, want the later human stamp", st.LastTouch)
	}
}

func TestAggregateIncludesZeroTouchRecords(t *testing.T) {
	opps := []domain.Opportunity{opp("o1"), opp("o2")}
	acts := []domain.Activity{
		{ID: "t1", AboutID: "o1", ActorID: "human", CreatedAt: "2026-08-01T10:00:00.000Z"},
	}
	stats := Aggregate(opps, acts, map[string]struct{}{"human": {}})

	if len(stats) != 2 {
		t.Fatalf("got %d entries, want every input record present", len(stats))
	}
	st, ok := stats["o2"]
	if !ok {
		t.Fatal("zero-touch record missing from mapping")
	}
	if st.Count != 0 || st.LastTouch != "" {
		t.Fatalf("zero-touch stats = %+v", st)
	}
}

func TestAggregateNormalizesOffsetForms(t *testing.T) {
	// +0000 and Z spellings of the same instant family must compare
	// chronologically, not byte-wise ('Z' > '+')
	opps := []domain.Opportunity{opp("o1")}
	acts := []domain.Activity{
		{ID: "t1", AboutID: "o1", ActorID: "h", CreatedAt: "2026-08-20T10:00:00.000Z"},
		{ID: "t2", AboutID: "o1", ActorID: "h", CreatedAt: "2026-08-21T10:00:00.000+0000"},
	}
	stats := Aggregate(opps, acts, map[string]struct{}{"h": {}})

	if got := stats["o1"].LastTouch; got != "2026-08-21T10:00:00.000+00:00" {
		t.Fatalf("last touch = %q, want the +0000 stamp to win on chronology", got)
	}
}

func TestAggregateIgnoresOutOfScopeActivities(t *testing.T) {
	opps := []domain.Opportunity{opp("o1")}
	acts := []domain.Activity{
		{ID: "t1", AboutID: "other", ActorID: "h", CreatedAt: "2026-08-01T10:00:00.000Z"},
	}
	stats := Aggregate(opps, acts, map[string]struct{}{"h": {}})

	if len(stats) != 1 {
		t.Fatalf("got %d entries, want 1", len(stats))
	}
	if stats["o1"].Count != 0 {
		t.Fatalf("out-of-scope activity leaked into o1: %+v", stats["o1"])
	}
}
