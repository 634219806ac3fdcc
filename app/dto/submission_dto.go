package dto

// SubmitContentRequest delivers content for a campaign
type SubmitContentRequest struct {
	CreatorID    uint    `json:"-"`
	CampaignUUID string  `json:"-"`
	ContentURL   string  `json:"content_url" validate:"required,url,max=2048"`
	Caption      *string `json:"caption,omitempty" validate:"omitempty,max=5000"`
}

// SubmissionDTO represents a content submission in responses
type SubmissionDTO struct {
	UUID          string  `json:"uuid"`
	CampaignUUID  string  `json:"campaign_uuid,omitempty"`
	CreatorID     string  `json:"creator_id,omitempty"`
	ContentURL    string  `json:"content_url"`
	Caption       *string `json:"caption,omitempty"`
	Status        string  `json:"status"`
	ReviewComment *string `json:"review_comment,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// SubmitContentResponse represents the response to a submission
type SubmitContentResponse struct {
	Message    string        `json:"message"`
	Submission SubmissionDTO `json:"submission"`
}

// ReviewContentRequest is a brand approving or rejecting a submission
type ReviewContentRequest struct {
	BrandID        uint    `json:"-"`
	SubmissionUUID string  `json:"-"`
	Decision       string  `json:"decision" validate:"required,oneof=approved rejected"`
	Comment        *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// ReviewContentResponse represents the response to a review
type ReviewContentResponse struct {
	Message    string        `json:"message"`
	Submission SubmissionDTO `json:"submission"`
}

// ListSubmissionsRequest lists the submissions of a campaign
type ListSubmissionsRequest struct {
	BrandID      uint    `json:"-"`
	CampaignUUID string  `json:"-"`
	Status       *string `json:"status,omitempty"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
}

// ListSubmissionsResponse is a page of submissions
type ListSubmissionsResponse struct {
	Items      []SubmissionDTO `json:"items"`
	Pagination PaginationInfo  `json:"pagination"`
}
