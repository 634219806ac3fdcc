package matching

import (
	"slices"

	"github.com/amirphl/collab-market/models"
)

// CriterionBreakdown explains how one criterion contributed to the score
type CriterionBreakdown struct {
	Criterion Criterion `json:"criterion"`
	Score     int       `json:"score"`
	Max       int       `json:"max"`
	Matched   bool      `json:"matched"`
}

// Breakdown holds one entry per criterion in fixed order.
// Being an array, two breakdowns compare with ==.
type Breakdown [5]CriterionBreakdown

// Get returns the entry for a criterion
func (b Breakdown) Get(c Criterion) (CriterionBreakdown, bool) {
	for _, e := range b {
		if e.Criterion == c {
			return e, true
		}
	}
	return CriterionBreakdown{}, false
}

// Earned sums the points of every matched criterion
func (b Breakdown) Earned() int {
	total := 0
	for _, e := range b {
		total += e.Score
	}
	return total
}

// MatchResult is one ranked candidate
type MatchResult struct {
	Creator       models.CreatorProfile `json:"creator"`
	MatchScore    int                   `json:"match_score"`
	TotalCriteria int                   `json:"total_criteria"`
	Breakdown     Breakdown             `json:"breakdown"`
}

// Eligible applies the hard filters. Category and location never exclude.
func Eligible(c models.CreatorProfile, req models.CampaignRequirements) bool {
	if req.MinSubscribers != nil && c.Subscribers < *req.MinSubscribers {
		return false
	}
	if req.MinAverageViews != nil && c.AvgViews < *req.MinAverageViews {
		return false
	}
	if len(req.Platforms) > 0 && !c.HasAllPlatforms(req.Platforms) {
		return false
	}
	return true
}

// CreatorBreakdown evaluates every criterion for a single creator.
// Unset criteria are reported as unmatched with zero points.
func CreatorBreakdown(c models.CreatorProfile, req models.CampaignRequirements) Breakdown {
	var b Breakdown
	for i, r := range rules {
		entry := CriterionBreakdown{Criterion: r.Criterion, Max: r.Max}
		if r.Active(req) && r.Match(c, req) {
			entry.Matched = true
			entry.Score = r.Max
		}
		b[i] = entry
	}
	return b
}

// Score returns round(earned / (active * NormalizationUnit) * 100), rounding
// halves up. The result can exceed 100 when category is among the matches.
func Score(c models.CreatorProfile, req models.CampaignRequirements) int {
	return scoreOf(CreatorBreakdown(c, req), ActiveCriteria(req))
}

func scoreOf(b Breakdown, active int) int {
	if active == 0 {
		return 0
	}
	denom := active * NormalizationUnit
	return (b.Earned()*200 + denom) / (2 * denom)
}

// Suggest filters, scores and ranks the candidate pool. The input slice is
// not modified. Equal scores keep their input order.
func Suggest(req models.CampaignRequirements, candidates []models.CreatorProfile) []MatchResult {
	active := ActiveCriteria(req)
	results := make([]MatchResult, 0, len(candidates))

	for _, c := range candidates {
		if !Eligible(c, req) {
			continue
		}
		b := CreatorBreakdown(c, req)
		results = append(results, MatchResult{
			Creator:       c,
			MatchScore:    scoreOf(b, active),
			TotalCriteria: active,
			Breakdown:     b,
		})
	}

	slices.SortStableFunc(results, func(a, b MatchResult) int {
		return b.MatchScore - a.MatchScore
	})
	return results
}
