package domain

import "context"

// RunnerPort executes one full report run: fetch, classify, aggregate,
// qualify, render, send
type RunnerPort interface {
	Run(ctx context.Context) (RunSummary, error)
}

// ReaderPort is the query surface the pipeline reads through
type ReaderPort interface {
	// OpenOpportunities returns open records created within the window,
	// excluding names matching the configured pattern, most recently
	// modified first
	OpenOpportunities(ctx context.Context) ([]Opportunity, error)

	// ActivitiesFor returns every task linked to the given opportunity ids
	ActivitiesFor(ctx context.Context, oppIDs []string) ([]Activity, error)

	// ActorProfiles returns identity profiles for the given actor ids
	ActorProfiles(ctx context.Context, actorIDs []string) ([]ActorProfile, error)
}

// RendererPort turns an ordered row set into one personalized email
type RendererPort interface {
	Render(rows []Row, asOfDate, baseURL, ownerName string) (subject, html, text string, err error)
}
