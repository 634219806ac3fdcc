package models

import (
	"testing"

	"github.com/amirphl/collab-market/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignRequirements_Normalized(t *testing.T) {
	req := CampaignRequirements{
		Category:       utils.ToPtr("  Tech "),
		MinSubscribers: utils.ToPtr(int64(10)),
		Platforms:      []string{" YouTube", "Instagram", "YouTube", ""},
		Location:       utils.ToPtr("   "),
	}

	out := req.Normalized()
	require.NotNil(t, out.Category)
	assert.Equal(t, "Tech", *out.Category)
	assert.Nil(t, out.Location)
	assert.Equal(t, []string{"YouTube", "Instagram"}, out.Platforms)
	assert.Equal(t, int64(10), *out.MinSubscribers)

	*out.MinSubscribers = 99
	assert.Equal(t, int64(10), *req.MinSubscribers)
}

func TestCampaignRequirements_Validate(t *testing.T) {
	assert.NoError(t, CampaignRequirements{}.Validate())
	assert.Error(t, CampaignRequirements{MinSubscribers: utils.ToPtr(int64(-1))}.Validate())
	assert.Error(t, CampaignRequirements{MinAverageViews: utils.ToPtr(int64(-5))}.Validate())
}

func TestCampaignRequirements_Merge(t *testing.T) {
	base := CampaignRequirements{Category: utils.ToPtr("Tech"), Platforms: []string{"YouTube"}}
	merged := base.Merge(CampaignRequirements{Location: utils.ToPtr("Berlin"), Platforms: []string{}})

	assert.Equal(t, "Tech", *merged.Category)
	assert.Equal(t, "Berlin", *merged.Location)
	assert.Empty(t, merged.Platforms)
}

func TestCampaignRequirements_ValueScan(t *testing.T) {
	req := CampaignRequirements{Category: utils.ToPtr("Tech"), MinAverageViews: utils.ToPtr(int64(3)), Platforms: []string{"TikTok"}}
	raw, err := req.Value()
	require.NoError(t, err)

	var scanned CampaignRequirements
	require.NoError(t, scanned.Scan(string(raw.([]byte))))
	assert.Equal(t, req, scanned)
	assert.Error(t, scanned.Scan(42))
}
