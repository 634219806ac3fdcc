package dto

// RequirementsDTO carries the creator requirements of a campaign.
// Omitted fields are wildcards.
type RequirementsDTO struct {
	Category        *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	MinSubscribers  *int64   `json:"min_subscribers,omitempty" validate:"omitempty,min=0"`
	MinAverageViews *int64   `json:"min_average_views,omitempty" validate:"omitempty,min=0"`
	Platforms       []string `json:"platforms,omitempty" validate:"omitempty,max=10,dive,platform"`
	Location        *string  `json:"location,omitempty" validate:"omitempty,max=255"`
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	BrandID      uint            `json:"-"`
	Title        string          `json:"title" validate:"required,min=3,max=255"`
	Description  *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	Budget       uint64          `json:"budget"`
	Requirements RequirementsDTO `json:"requirements"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message      string      `json:"message"`
	UUID         string      `json:"uuid"`
	CurrentStage string      `json:"current_stage"`
	Progress     ProgressDTO `json:"progress"`
	CreatedAt    string      `json:"created_at"`
}

// GetCampaignRequest represents the request to get an existing campaign
type GetCampaignRequest struct {
	UUID    string `json:"-"`
	BrandID uint   `json:"-"`
}

// StageDTO is one pipeline stage with its effective status
type StageDTO struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// StatisticsDTO mirrors the invitation counters
type StatisticsDTO struct {
	TotalInvitations    int `json:"total_invitations"`
	AcceptedInvitations int `json:"accepted_invitations"`
	PendingInvitations  int `json:"pending_invitations"`
	RejectedInvitations int `json:"rejected_invitations"`
}

// ProgressDTO is the campaign pipeline as shown to the brand
type ProgressDTO struct {
	CurrentStage string        `json:"current_stage"`
	Stages       []StageDTO    `json:"stages"`
	Statistics   StatisticsDTO `json:"statistics"`
}

// CampaignDTO represents a campaign in responses
type CampaignDTO struct {
	UUID         string          `json:"uuid"`
	Title        string          `json:"title"`
	Description  *string         `json:"description,omitempty"`
	Budget       uint64          `json:"budget"`
	Requirements RequirementsDTO `json:"requirements"`
	CurrentStage string          `json:"current_stage"`
	Progress     ProgressDTO     `json:"progress"`
	Version      uint            `json:"version"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    *string         `json:"updated_at,omitempty"`
}

// ListCampaignsRequest represents the request to list a brand's campaigns
type ListCampaignsRequest struct {
	BrandID uint    `json:"-"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
	Stage   *string `json:"stage,omitempty"`
}

// ListCampaignsResponse represents a paginated list of campaigns
type ListCampaignsResponse struct {
	Items      []CampaignDTO  `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// UpdateRequirementsRequest replaces the requirements of a campaign
type UpdateRequirementsRequest struct {
	UUID         string          `json:"-"`
	BrandID      uint            `json:"-"`
	Requirements RequirementsDTO `json:"requirements"`
}

// UpdateRequirementsResponse represents the response to a requirements update
type UpdateRequirementsResponse struct {
	Message  string      `json:"message"`
	Campaign CampaignDTO `json:"campaign"`
}

// AdvanceStageRequest completes the named stage
type AdvanceStageRequest struct {
	UUID    string `json:"-"`
	BrandID uint   `json:"-"`
	Stage   string `json:"-"`
}

// AdvanceStageResponse represents the response to a stage transition
type AdvanceStageResponse struct {
	Message  string      `json:"message"`
	Progress ProgressDTO `json:"progress"`
}

// DeleteCampaignRequest archives a campaign
type DeleteCampaignRequest struct {
	UUID    string `json:"-"`
	BrandID uint   `json:"-"`
}

// DeleteCampaignResponse represents the response to a campaign deletion
type DeleteCampaignResponse struct {
	Message string `json:"message"`
}
