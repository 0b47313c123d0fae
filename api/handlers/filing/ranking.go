package filing

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mediate-labs/mediation-api/databases"
	"github.com/mediate-labs/mediation-api/models"
)

// Ranker selects the best available mediator using a priority-based ranking:
// success rate, then cases won, then years of experience, all descending.
// Verification is a prerequisite, not a ranking key.
type Ranker struct {
	DB databases.MediatorDatabase
}

// SelectBest returns the single top-ranked eligible mediator, or nil when no
// mediator is both verified and carries professional details. It is a pure
// read: repeated calls against an unchanged pool return the same mediator.
//
// Note: selection does not reserve the mediator, so two concurrent filings can
// pick the same one. Assignment is advisory capacity planning, not exclusive
// allocation.
func (r Ranker) SelectBest(ctx context.Context) (*models.Mediator, error) {
	mediators, err := r.DB.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var best *models.Mediator
	for i := range mediators {
		m := &mediators[i]
		// mediators without professional details are excluded rather than
		// treated as zero-ranked, so we never fabricate ranking data
		if m.Details.ProfessionalDetails == nil || !m.Details.IsVerified {
			continue
		}
		if best == nil || outranks(m.Details.ProfessionalDetails, best.Details.ProfessionalDetails) {
			best = m
		}
	}
	return best, nil
}

// outranks reports whether a strictly outranks b. Equal tuples keep the earlier
// candidate, so selection is deterministic for a given pool order.
func outranks(a, b *models.MediatorProfessionalDetails) bool {
	if a.SuccessRate != b.SuccessRate {
		return a.SuccessRate > b.SuccessRate
	}
	if a.CasesWon != b.CasesWon {
		return a.CasesWon > b.CasesWon
	}
	return a.YearsExperience > b.YearsExperience
}
