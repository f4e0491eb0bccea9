package pipeline

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// DefaultTopN is used when a query leaves TopN at zero.
const DefaultTopN = 10

// Query is everything one ranking run depends on. It is passed by value
// and never modified.
type Query struct {
	Household   model.Household
	Utilization model.UtilizationTier
	Filter      Filter
	// TopN limits the result count: 0 means DefaultTopN, negative means all.
	TopN   int
	AddOns AddOns
}

// Limit returns the effective result limit, or -1 for no limit.
func (q Query) Limit() int {
	switch {
	case q.TopN == 0:
		return DefaultTopN
	case q.TopN < 0:
		return -1
	}
	return q.TopN
}

// Ranking is the output of one ranking run.
type Ranking struct {
	// RunID correlates log lines for this run; it has no other meaning.
	RunID      string
	Results    []model.EstimationResult
	Considered int
	Ranked     int
	Excluded   int
	Exclusions []model.Exclusion
}

// Rank ranks plans under the default assumptions table.
func Rank(plans []model.PlanRecord, q Query) Ranking {
	return defaultEstimator.Rank(plans, q)
}

// Rank filters plans, estimates each one, and returns the cheapest
// first. Ties are broken by ascending plan ID. Plans without a premium
// for the household's tier are excluded and counted.
func (e *Estimator) Rank(plans []model.PlanRecord, q Query) Ranking {
	candidates := q.Filter.Apply(plans)
	r := Ranking{
		RunID:      uuid.NewString(),
		Considered: len(candidates),
		Results:    make([]model.EstimationResult, 0, len(candidates)),
	}

	for _, p := range candidates {
		res, err := e.EstimateWithAddOns(p, q.Household, q.Utilization, q.AddOns)
		if err != nil {
			if errors.Is(err, ErrMissingTierPricing) {
				r.Excluded++
				r.Exclusions = append(r.Exclusions, model.Exclusion{PlanID: p.ID, Reason: err.Error()})
			}
			continue
		}
		r.Results = append(r.Results, res)
	}

	SortResults(r.Results)
	r.Ranked = len(r.Results)
	if n := q.Limit(); n >= 0 && len(r.Results) > n {
		r.Results = r.Results[:n]
	}
	return r
}

// SortResults orders results by ascending total, then plan ID.
func SortResults(results []model.EstimationResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total < results[j].Total
		}
		return results[i].PlanID < results[j].PlanID
	})
}
