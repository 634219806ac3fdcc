package dto

// SuggestCreatorsRequest ranks the creator directory for a campaign.
// Overrides are applied on top of the stored requirements for what-if queries.
type SuggestCreatorsRequest struct {
	CampaignUUID string           `json:"-"`
	BrandID      uint             `json:"-"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
	Overrides    *RequirementsDTO `json:"overrides,omitempty"`
}

// CriterionScoreDTO explains one criterion
type CriterionScoreDTO struct {
	Score   int  `json:"score"`
	Max     int  `json:"max"`
	Matched bool `json:"matched"`
}

// CreatorSuggestionDTO is one ranked creator
type CreatorSuggestionDTO struct {
	CreatorID      string                       `json:"creator_id"`
	Name           string                       `json:"name"`
	AvatarURL      string                       `json:"avatar_url,omitempty"`
	Description    string                       `json:"description,omitempty"`
	Category       string                       `json:"category"`
	Subscribers    int64                        `json:"subscribers"`
	AvgViews       int64                        `json:"avg_views"`
	Platforms      []string                     `json:"platforms"`
	Location       string                       `json:"location"`
	MatchScore     int                          `json:"match_score"`
	TotalCriteria  int                          `json:"total_criteria"`
	Breakdown      map[string]CriterionScoreDTO `json:"breakdown"`
	AlreadyInvited bool                         `json:"already_invited"`
}

// SuggestCreatorsResponse is a page of the ranked list
type SuggestCreatorsResponse struct {
	CampaignUUID string                 `json:"campaign_uuid"`
	Requirements RequirementsDTO        `json:"requirements"`
	Total        int                    `json:"total"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
	Items        []CreatorSuggestionDTO `json:"items"`
}

// CreatorBreakdownRequest asks for the detail panel of one creator
type CreatorBreakdownRequest struct {
	CampaignUUID string `json:"-"`
	BrandID      uint   `json:"-"`
	CreatorUUID  string `json:"-"`
}

// CreatorBreakdownResponse is the detail panel of one creator
type CreatorBreakdownResponse struct {
	Eligible   bool                 `json:"eligible"`
	Suggestion CreatorSuggestionDTO `json:"suggestion"`
}

// ExportSuggestionsRequest exports the full ranked list
type ExportSuggestionsRequest struct {
	CampaignUUID string `json:"-"`
	BrandID      uint   `json:"-"`
}

// ExportSuggestionsResponse carries the generated workbook
type ExportSuggestionsResponse struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Content  []byte `json:"-"`
}
