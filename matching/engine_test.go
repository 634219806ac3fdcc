package matching

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creator(id string, category string, subs, views int64, location string, platforms ...string) models.CreatorProfile {
	return models.CreatorProfile{
		ID:          id,
		Name:        "creator " + id,
		Category:    category,
		Subscribers: subs,
		AvgViews:    views,
		Platforms:   platforms,
		Location:    location,
	}
}

func ids(results []MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Creator.ID)
	}
	return out
}

func TestSuggest_HardFilters(t *testing.T) {
	pool := []models.CreatorProfile{
		creator("small", "Tech", 5000, 100, "Berlin", "YouTube"),
		creator("big", "Tech", 50000, 100, "Berlin", "YouTube"),
		creator("low-views", "Tech", 50000, 10, "Berlin", "YouTube"),
		creator("yt-only", "Tech", 50000, 1000, "Berlin", "YouTube"),
		creator("all", "Tech", 50000, 1000, "Berlin", "YouTube", "Instagram", "TikTok"),
	}

	tests := []struct {
		name     string
		req      models.CampaignRequirements
		expected []string
	}{
		{
			name:     "scenario A excludes creator under subscriber minimum",
			req:      models.CampaignRequirements{MinSubscribers: utils.ToPtr(int64(10000)), Platforms: []string{"YouTube"}},
			expected: []string{"big", "low-views", "yt-only", "all"},
		},
		{
			name:     "average views minimum",
			req:      models.CampaignRequirements{MinAverageViews: utils.ToPtr(int64(500))},
			expected: []string{"yt-only", "all"},
		},
		{
			name:     "platforms use all-of semantics",
			req:      models.CampaignRequirements{Platforms: []string{"YouTube", "Instagram"}},
			expected: []string{"all"},
		},
		{
			name:     "category and location never exclude",
			req:      models.CampaignRequirements{Category: utils.ToPtr("Beauty"), Location: utils.ToPtr("Paris")},
			expected: []string{"small", "big", "low-views", "yt-only", "all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Suggest(tt.req, pool)))
		})
	}
}

func TestSuggest_ScenarioB(t *testing.T) {
	req := models.CampaignRequirements{Category: utils.ToPtr("Tech"), MinSubscribers: utils.ToPtr(int64(1000))}
	results := Suggest(req, []models.CreatorProfile{creator("c1", "tech", 2000, 0, "")})
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 2, r.TotalCriteria)
	assert.Equal(t, 113, r.MatchScore)

	category, ok := r.Breakdown.Get(CriterionCategory)
	require.True(t, ok)
	assert.Equal(t, CriterionBreakdown{Criterion: CriterionCategory, Score: 25, Max: 25, Matched: true}, category)

	subs, ok := r.Breakdown.Get(CriterionSubscribers)
	require.True(t, ok)
	assert.Equal(t, CriterionBreakdown{Criterion: CriterionSubscribers, Score: 20, Max: 20, Matched: true}, subs)

	for _, c := range []Criterion{CriterionViews, CriterionPlatforms, CriterionLocation} {
		entry, ok := r.Breakdown.Get(c)
		require.True(t, ok)
		assert.False(t, entry.Matched, c)
		assert.Zero(t, entry.Score, c)
		assert.Equal(t, MaxPoints(c), entry.Max, c)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		c        models.CreatorProfile
		req      models.CampaignRequirements
		expected int
	}{
		{"no criteria set", creator("a", "Tech", 1, 1, "X"), models.CampaignRequirements{}, 0},
		{"blank category counts as unset", creator("a", "Tech", 1, 1, "X"), models.CampaignRequirements{Category: utils.ToPtr("  ")}, 0},
		{"category alone", creator("a", "Tech", 1, 1, "X"), models.CampaignRequirements{Category: utils.ToPtr("TECH")}, 125},
		{"location alone", creator("a", "Tech", 1, 1, "X"), models.CampaignRequirements{Location: utils.ToPtr("X")}, 75},
		{"location is case sensitive", creator("a", "Tech", 1, 1, "X"), models.CampaignRequirements{Location: utils.ToPtr("x")}, 0},
		{
			name: "all five matched",
			c:    creator("a", "Tech", 100, 100, "X", "YouTube"),
			req: models.CampaignRequirements{
				Category:        utils.ToPtr("Tech"),
				MinSubscribers:  utils.ToPtr(int64(10)),
				MinAverageViews: utils.ToPtr(int64(10)),
				Platforms:       []string{"YouTube"},
				Location:        utils.ToPtr("X"),
			},
			expected: 100,
		},
		{
			name:     "one of three matched rounds down",
			c:        creator("a", "Beauty", 100, 100, "Y"),
			req:      models.CampaignRequirements{Category: utils.ToPtr("Tech"), MinSubscribers: utils.ToPtr(int64(10)), Location: utils.ToPtr("X")},
			expected: 33,
		},
		{
			name:     "missing creator fields do not match",
			c:        models.CreatorProfile{ID: "empty"},
			req:      models.CampaignRequirements{Category: utils.ToPtr("Tech"), Location: utils.ToPtr("X")},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.c, tt.req))
		})
	}
}

func TestSuggest_StableDescendingOrder(t *testing.T) {
	req := models.CampaignRequirements{Category: utils.ToPtr("Tech"), Location: utils.ToPtr("Berlin")}
	pool := []models.CreatorProfile{
		creator("none-1", "Food", 1, 1, "Rome"),
		creator("loc-1", "Food", 1, 1, "Berlin"),
		creator("both", "Tech", 1, 1, "Berlin"),
		creator("none-2", "Food", 1, 1, "Rome"),
		creator("cat", "tech", 1, 1, "Rome"),
		creator("loc-2", "Food", 1, 1, "Berlin"),
	}

	results := Suggest(req, pool)
	assert.Equal(t, []string{"both", "cat", "loc-1", "loc-2", "none-1", "none-2"}, ids(results))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}
}

func TestSuggest_DoesNotDeduplicateOrMutate(t *testing.T) {
	pool := []models.CreatorProfile{
		creator("dup", "Tech", 10, 10, "X", "YouTube"),
		creator("dup", "Tech", 10, 10, "X", "YouTube"),
	}
	before := fmt.Sprintf("%+v", pool)

	results := Suggest(models.CampaignRequirements{Platforms: []string{"YouTube"}}, pool)
	assert.Len(t, results, 2)
	assert.Equal(t, before, fmt.Sprintf("%+v", pool))
}

func TestSuggest_EmptyPool(t *testing.T) {
	results := Suggest(models.CampaignRequirements{Category: utils.ToPtr("Tech")}, nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSuggest_Deterministic(t *testing.T) {
	req := models.CampaignRequirements{Category: utils.ToPtr("Tech"), MinAverageViews: utils.ToPtr(int64(50))}
	pool := []models.CreatorProfile{
		creator("a", "Tech", 1, 60, "X"),
		creator("b", "Food", 1, 70, "X"),
		creator("c", "tech", 1, 40, "X"),
	}

	first, err := json.Marshal(Suggest(req, pool))
	require.NoError(t, err)
	second, err := json.Marshal(Suggest(req, pool))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCreatorBreakdown_ConsistentWithSuggest(t *testing.T) {
	req := models.CampaignRequirements{
		Category:        utils.ToPtr("Gaming"),
		MinSubscribers:  utils.ToPtr(int64(100)),
		MinAverageViews: utils.ToPtr(int64(10)),
		Platforms:       []string{"Twitch"},
		Location:        utils.ToPtr("Seoul"),
	}
	pool := []models.CreatorProfile{
		creator("a", "Gaming", 500, 50, "Seoul", "Twitch", "YouTube"),
		creator("b", "Music", 150, 20, "Busan", "Twitch"),
		creator("c", "gaming", 1000, 5, "Seoul", "Twitch"),
	}

	for _, r := range Suggest(req, pool) {
		assert.Equal(t, CreatorBreakdown(r.Creator, req), r.Breakdown, r.Creator.ID)
		assert.Equal(t, Score(r.Creator, req), r.MatchScore, r.Creator.ID)
		assert.True(t, Eligible(r.Creator, req), r.Creator.ID)
	}
}
