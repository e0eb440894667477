// Package domain defines the report service's types and public ports
package domain

// OwnerRef identifies the actor responsible for an opportunity.
// Email routes the per-owner report
type OwnerRef struct {
	ID    string
	Name  string
	Email string
}

// AccountRef is the customer side of an opportunity. All fields may be
// empty when the relationship is absent
type AccountRef struct {
	Name     string
	Email    string
	Language string
}

// Opportunity is one open sales record under report. Read-only snapshot
// from the remote source; derived touch data rides in TouchStats
type Opportunity struct {
	ID     string
	Name   string
	Stage  string
	Amount *float64

	Owner        OwnerRef
	Account      AccountRef
	LastModified string
}

// Activity is one task logged against an opportunity
type Activity struct {
	ID        string
	AboutID   string
	ActorID   string
	CreatedAt string
}

// ActorProfile carries just enough identity to decide human vs automated
type ActorProfile struct {
	ID      string
	Name    string
	License string
}

// TouchStats is the per-opportunity engagement summary derived each run.
// Count == 0 implies LastTouch == "" and Stale == true
type TouchStats struct {
	Count     int
	LastTouch string
	Stale     bool
}

// Row pairs an opportunity with its derived touch stats; the ordered row
// sequence is what the renderer consumes
type Row struct {
	Opp   Opportunity
	Stats TouchStats
}

// RunSummary is what one report run did, for the final log line
type RunSummary struct {
	Opportunities int
	Activities    int
	HumanActors   int
	Rows          int
	Stale         int
	Sent          int
	DryRun        bool
}
