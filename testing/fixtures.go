package testing

import (
	"fmt"
	"sync/atomic"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/utils"
	"github.com/lib/pq"
)

var seq atomic.Int64

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestBrand creates an active brand
func (tf *TestFixtures) CreateTestBrand() (*models.Brand, error) {
	n := seq.Add(1)
	brand := &models.Brand{
		Name:  fmt.Sprintf("Brand %d", n),
		Email: fmt.Sprintf("brand.%d@example.com", n),
	}
	if err := tf.DB.DB.Create(brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return brand, nil
}

// CreatorOption customizes a test creator
type CreatorOption func(*models.Creator)

func WithCategory(category string) CreatorOption {
	return func(c *models.Creator) { c.Category = category }
}

func WithAudience(subscribers, avgViews int64) CreatorOption {
	return func(c *models.Creator) {
		c.Subscribers = subscribers
		c.AvgViews = avgViews
	}
}

func WithPlatforms(platforms ...string) CreatorOption {
	return func(c *models.Creator) { c.Platforms = pq.StringArray(platforms) }
}

func WithLocation(location string) CreatorOption {
	return func(c *models.Creator) { c.Location = location }
}

func Inactive() CreatorOption {
	return func(c *models.Creator) { c.IsActive = utils.ToPtr(false) }
}

// CreateTestCreator creates a directory creator
func (tf *TestFixtures) CreateTestCreator(opts ...CreatorOption) (*models.Creator, error) {
	n := seq.Add(1)
	creator := &models.Creator{
		Name:        fmt.Sprintf("Creator %d", n),
		Email:       fmt.Sprintf("creator.%d@example.com", n),
		Category:    "Tech",
		Subscribers: 10000,
		AvgViews:    1000,
		Platforms:   pq.StringArray{"YouTube"},
		Location:    "Berlin",
		IsActive:    utils.ToPtr(true),
	}
	for _, opt := range opts {
		opt(creator)
	}
	if err := tf.DB.DB.Create(creator).Error; err != nil {
		return nil, fmt.Errorf("failed to create creator: %w", err)
	}
	return creator, nil
}

// CreateTestCampaign creates a campaign owned by the brand with creation completed
func (tf *TestFixtures) CreateTestCampaign(brand *models.Brand, req models.CampaignRequirements) (*models.Campaign, error) {
	n := seq.Add(1)
	campaign := &models.Campaign{
		BrandID:      brand.ID,
		Title:        fmt.Sprintf("Campaign %d", n),
		Budget:       5000,
		Requirements: req.Normalized(),
		Progress:     models.StartedCampaignProgress(),
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestInvitation creates a pending invitation without touching campaign statistics
func (tf *TestFixtures) CreateTestInvitation(campaign *models.Campaign, creator *models.Creator) (*models.Invitation, error) {
	inv := &models.Invitation{
		CampaignID:   campaign.ID,
		CreatorID:    creator.ID,
		Message:      "Join us",
		Compensation: 100,
	}
	if err := tf.DB.DB.Create(inv).Error; err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}
