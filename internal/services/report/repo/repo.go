// Package repo constructs the report's queries and decodes their rows
package repo

import (
	"context"
	"fmt"

	"oppwatch/internal/adapters/crm"
	"oppwatch/internal/services/report/domain"
)

// openOppsSOQL is parameterized by months back and a name-exclusion
// pattern. IsClosed=false keeps the scope to live pipeline only
const openOppsSOQL = "SELECT Id, Name, StageName, Amount, " +
	"OwnerId, Owner.Name, Owner.Email, " +
	"AccountId, Account.Name, Account.PersonEmail, Account.Primary_Language__pc, " +
	"LastModifiedDate " +
	"FROM Opportunity " +
	"WHERE IsClosed = false " +
	"AND CreatedDate = LAST_N_MONTHS:%d " +
	"AND (NOT Name LIKE '%s') " +
	"ORDER BY LastModifiedDate DESC"

const tasksSOQLTemplate = "SELECT Id, WhatId, CreatedById, CreatedDate " +
	"FROM Task WHERE WhatId IN ({ids})"

const usersSOQLTemplate = "SELECT Id, Name, Profile.UserLicense.Name " +
	"FROM User WHERE Id IN ({ids})"

// Config scopes the opportunity query
type Config struct {
	MonthsBack      int
	ExcludeNameLike string
}

// Repo reads report inputs through the query client
type Repo struct {
	q   crm.Querier
	cfg Config
}

// New builds the repo
func New(q crm.Querier, cfg Config) *Repo {
	return &Repo{q: q, cfg: cfg}
}

// OpenOpportunities implements domain.ReaderPort
func (r *Repo) OpenOpportunities(ctx context.Context) ([]domain.Opportunity, error) {
	soql := fmt.Sprintf(openOppsSOQL, r.cfg.MonthsBack, r.cfg.ExcludeNameLike)
	recs, err := r.q.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	opps := make([]domain.Opportunity, 0, len(recs))
	for _, rec := range recs {
		opps = append(opps, decodeOpportunity(rec))
	}
	return opps, nil
}

// ActivitiesFor implements domain.ReaderPort
func (r *Repo) ActivitiesFor(ctx context.Context, oppIDs []string) ([]domain.Activity, error) {
	recs, err := r.q.QueryIDBatches(ctx, tasksSOQLTemplate, oppIDs)
	if err != nil {
		return nil, err
	}
	acts := make([]domain.Activity, 0, len(recs))
	for _, rec := range recs {
		acts = append(acts, domain.Activity{
			ID:        rec.GetString("Id"),
			AboutID:   rec.GetString("WhatId"),
			ActorID:   rec.GetString("CreatedById"),
			CreatedAt: rec.GetString("CreatedDate"),
		})
	}
	return acts, nil
}

// ActorProfiles implements domain.ReaderPort
func (r *Repo) ActorProfiles(ctx context.Context, actorIDs []string) ([]domain.ActorProfile, error) {
	recs, err := r.q.QueryIDBatches(ctx, usersSOQLTemplate, actorIDs)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.ActorProfile, 0, len(recs))
	for _, rec := range recs {
		profiles = append(profiles, domain.ActorProfile{
			ID:      rec.GetString("Id"),
			Name:    rec.GetString("Name"),
			License: rec.GetString("Profile", "UserLicense", "Name"),
		})
	}
	return profiles, nil
}

// decodeOpportunity tolerates missing relationships; absent fields
// degrade to zero values rather than failing the run
func decodeOpportunity(rec crm.Record) domain.Opportunity {
	opp := domain.Opportunity{
		ID:           rec.GetString("Id"),
		Name:         rec.GetString("Name"),
		Stage:        rec.GetString("StageName"),
		LastModified: rec.GetString("LastModifiedDate"),
		Owner: domain.OwnerRef{
			ID:    rec.GetString("OwnerId"),
			Name:  rec.GetString("Owner", "Name"),
			Email: rec.GetString("Owner", "Email"),
		},
		Account: domain.AccountRef{
			Name:     rec.GetString("Account", "Name"),
			Email:    rec.GetString("Account", "PersonEmail"),
			Language: rec.GetString("Account", "Primary_Language__pc"),
		},
	}
	if v, ok := rec.GetFloat("Amount"); ok {
		opp.Amount = &v
	}
	return opp
}
