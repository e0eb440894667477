// Package service implements the touch-qualification pipeline
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"oppwatch/internal/adapters/mail"
	perr "oppwatch/internal/platform/errors"
	"oppwatch/internal/platform/logger"
	pstr "oppwatch/internal/platform/strings"
	"oppwatch/internal/services/report/domain"
)

// Config carries the run-scoped knobs, resolved by the module layer
type Config struct {
	Subscribers []string
	CC          []string

	Mode       Mode
	MinTouches int
	StaleDays  int

	DryRun bool
}

// Service runs the report pipeline end to end. One logical thread per run;
// the only blocking points are the query client's network calls
type Service struct {
	reader     domain.ReaderPort
	classifier *Classifier
	renderer   domain.RendererPort
	sender     mail.Sender
	baseURL    func() string
	cfg        Config

	now func() time.Time
}

// New wires the pipeline. baseURL is read lazily since the instance is
// only known after the query client connects
func New(
	reader domain.ReaderPort,
	classifier *Classifier,
	renderer domain.RendererPort,
	sender mail.Sender,
	baseURL func() string,
	cfg Config,
) *Service {
	return &Service{
		reader:     reader,
		classifier: classifier,
		renderer:   renderer,
		sender:     sender,
		baseURL:    baseURL,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run implements domain.RunnerPort. The full row set is computed before any
// email goes out, so a failed run leaves no partial report behind
func (s *Service) Run(ctx context.Context) (domain.RunSummary, error) {
	ctx = logger.WithRun(ctx, uuid.NewString(), "")
	log := logger.C(ctx)

	summary := domain.RunSummary{DryRun: s.cfg.DryRun}

	subscribers := foldAll(s.cfg.Subscribers)
	if len(subscribers) == 0 {
		log.Warn().Msg("no subscribers configured, nothing to do")
		return summary, nil
	}

	opps, err := s.reader.OpenOpportunities(ctx)
	if err != nil {
		return summary, err
	}
	summary.Opportunities = len(opps)
	log.Info().Int("opportunities", len(opps)).Msg("opportunities fetched")

	rows, err := s.computeRows(ctx, opps, &summary)
	if err != nil {
		return summary, err
	}
	summary.Rows = len(rows)
	for _, r := range rows {
		if r.Stats.Stale {
			summary.Stale++
		}
	}

	byOwner := groupByOwner(rows)
	asOf := s.now().UTC().Format("January 2, 2006")

	// render everything first; one bad template execution aborts the run
	// before any recipient hears from us
	type outbound struct {
		to  string
		msg mail.Message
	}
	queue := make([]outbound, 0, len(subscribers))
	for _, sub := range subscribers {
		ownerRows := byOwner[sub]
		ownerName := "there"
		if len(ownerRows) > 0 {
			ownerName = pstr.OrDefault(ownerRows[0].Opp.Owner.Name, "there")
		}
		subject, html, text, rerr := s.renderer.Render(ownerRows, asOf, s.baseURL(), ownerName)
		if rerr != nil {
			return summary, perr.Wrapf(rerr, perr.ErrorCodeUnknown, "render for %s failed", sub)
		}
		queue = append(queue, outbound{to: sub, msg: mail.Message{
			To:       []string{sub},
			CC:       s.cfg.CC,
			Subject:  subject,
			TextBody: text,
			HTMLBody: html,
		}})
	}

	for _, out := range queue {
		sctx := logger.WithRun(ctx, "", out.to)
		logger.C(sctx).Info().
			Int("rows", len(byOwner[out.to])).
			Bool("dryrun", s.cfg.DryRun).
			Msg("sending report")
		if err := s.sender.Send(sctx, out.msg); err != nil {
			return summary, err
		}
		summary.Sent++
	}

	log.Info().
		Int("rows", summary.Rows).
		Int("stale", summary.Stale).
		Int("sent", summary.Sent).
		Msg("run complete")
	return summary, nil
}

// computeRows runs fetch, classify, aggregate, qualify
func (s *Service) computeRows(
	ctx context.Context,
	opps []domain.Opportunity,
	summary *domain.RunSummary,
) ([]domain.Row, error) {
	if len(opps) == 0 {
		return nil, nil
	}

	oppIDs := make([]string, len(opps))
	for i, o := range opps {
		oppIDs[i] = o.ID
	}
	activities, err := s.reader.ActivitiesFor(ctx, oppIDs)
	if err != nil {
		return nil, err
	}
	summary.Activities = len(activities)

	actorIDs := make([]string, 0, len(activities))
	for _, a := range activities {
		actorIDs = append(actorIDs, a.ActorID)
	}
	humans, err := s.classifier.HumanActorIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	summary.HumanActors = len(humans)

	stats := Aggregate(opps, activities, humans)
	rows := FilterAndSort(opps, stats, s.now(), QualifyConfig{
		Mode:       s.cfg.Mode,
		MinTouches: s.cfg.MinTouches,
		StaleDays:  s.cfg.StaleDays,
	})
	return rows, nil
}

// groupByOwner buckets rows by folded owner email. Rows with no owner
// email are unroutable and dropped from per-owner reports
func groupByOwner(rows []domain.Row) map[string][]domain.Row {
	byOwner := make(map[string][]domain.Row)
	for _, r := range rows {
		email := fold(r.Opp.Owner.Email)
		if email == "" {
			continue
		}
		byOwner[email] = append(byOwner[email], r)
	}
	return byOwner
}

// foldAll folds and dedupes a recipient list, preserving order
func foldAll(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		f := fold(v)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
