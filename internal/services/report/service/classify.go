package service

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"oppwatch/internal/services/report/domain"
)

// fold returns the canonical comparison form of s. Unicode case folding,
// not ASCII lowercasing; a Caser is stateful so each call builds its own
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// foldSet builds a membership set over folded values, dropping blanks
func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// Classifier decides human vs automated by two configured exclusion sets:
// display names of known robots and license labels granted only to
// integration users. Everything not excluded is human
type Classifier struct {
	reader        domain.ReaderPort
	automatedName map[string]struct{}
	automatedLic  map[string]struct{}
}

// NewClassifier builds a classifier over the given exclusion lists
func NewClassifier(reader domain.ReaderPort, names, licenses []string) *Classifier {
	return &Classifier{
		reader:        reader,
		automatedName: foldSet(names),
		automatedLic:  foldSet(licenses),
	}
}

// HumanActorIDs fetches profiles for the given actor ids and returns the
// subset classified as human. Empty input returns an empty set without
// touching the remote source. Output is a set, so input order is irrelevant
func (c *Classifier) HumanActorIDs(ctx context.Context, actorIDs []string) (map[string]struct{}, error) {
	humans := make(map[string]struct{}, len(actorIDs))
	if len(actorIDs) == 0 {
		return humans, nil
	}

	profiles, err := c.reader.ActorProfiles(ctx, dedupe(actorIDs))
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if _, robot := c.automatedName[fold(p.Name)]; robot {
			continue
		}
		if _, robot := c.automatedLic[fold(p.License)]; robot {
			continue
		}
		humans[p.ID] = struct{}{}
	}
	return humans, nil
}

// dedupe keeps first occurrences, preserving order for stable batch shapes
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
