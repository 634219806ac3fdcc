// Package matching ranks directory creators against campaign requirements.
// Everything here is pure: no I/O and no package-level mutable state.
package matching

import (
	"strings"

	"github.com/amirphl/collab-market/models"
)

// Criterion names one scored attribute
type Criterion string

const (
	CriterionCategory    Criterion = "category"
	CriterionSubscribers Criterion = "subscribers"
	CriterionViews       Criterion = "views"
	CriterionPlatforms   Criterion = "platforms"
	CriterionLocation    Criterion = "location"
)

// NormalizationUnit is the per-criterion denominator used by Score.
// It is applied to every active criterion regardless of its own max.
const NormalizationUnit = 20

// Rule binds a criterion to its weight and predicates
type Rule struct {
	Criterion Criterion
	Max       int
	// Active reports whether the requirement field is set
	Active func(req models.CampaignRequirements) bool
	// Match is only consulted for active criteria
	Match func(c models.CreatorProfile, req models.CampaignRequirements) bool
}

var rules = [...]Rule{
	{
		Criterion: CriterionCategory,
		Max:       25,
		Active:    func(req models.CampaignRequirements) bool { return req.HasCategory() },
		Match: func(c models.CreatorProfile, req models.CampaignRequirements) bool {
			return strings.EqualFold(c.Category, strings.TrimSpace(*req.Category))
		},
	},
	{
		Criterion: CriterionSubscribers,
		Max:       20,
		Active:    func(req models.CampaignRequirements) bool { return req.MinSubscribers != nil },
		Match: func(c models.CreatorProfile, req models.CampaignRequirements) bool {
			return c.Subscribers >= *req.MinSubscribers
		},
	},
	{
		Criterion: CriterionViews,
		Max:       20,
		Active:    func(req models.CampaignRequirements) bool { return req.MinAverageViews != nil },
		Match: func(c models.CreatorProfile, req models.CampaignRequirements) bool {
			return c.AvgViews >= *req.MinAverageViews
		},
	},
	{
		Criterion: CriterionPlatforms,
		Max:       20,
		Active:    func(req models.CampaignRequirements) bool { return len(req.Platforms) > 0 },
		Match: func(c models.CreatorProfile, req models.CampaignRequirements) bool {
			return c.HasAllPlatforms(req.Platforms)
		},
	},
	{
		Criterion: CriterionLocation,
		Max:       15,
		Active:    func(req models.CampaignRequirements) bool { return req.HasLocation() },
		Match: func(c models.CreatorProfile, req models.CampaignRequirements) bool {
			return c.Location == strings.TrimSpace(*req.Location)
		},
	},
}

// Rules returns the weight table in breakdown order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules[:])
	return out
}

// Criteria returns the criteria in breakdown order
func Criteria() []Criterion {
	out := make([]Criterion, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Criterion)
	}
	return out
}

// MaxPoints returns the weight of a criterion, or 0 if unknown
func MaxPoints(c Criterion) int {
	for _, r := range rules {
		if r.Criterion == c {
			return r.Max
		}
	}
	return 0
}

// ActiveCriteria counts the requirement fields that take part in scoring
func ActiveCriteria(req models.CampaignRequirements) int {
	n := 0
	for _, r := range rules {
		if r.Active(req) {
			n++
		}
	}
	return n
}
