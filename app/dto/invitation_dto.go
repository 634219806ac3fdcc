package dto

// SendInvitationRequest invites a creator to a campaign
type SendInvitationRequest struct {
	BrandID      uint   `json:"-"`
	CampaignUUID string `json:"-"`
	CreatorID    string `json:"creator_id" validate:"required,uuid"`
	Message      string `json:"message" validate:"required,min=1,max=2000"`
	Compensation uint64 `json:"compensation"`
}

// InvitationDTO represents an invitation in responses
type InvitationDTO struct {
	UUID         string  `json:"uuid"`
	CampaignUUID string  `json:"campaign_uuid,omitempty"`
	CreatorID    string  `json:"creator_id,omitempty"`
	CreatorName  string  `json:"creator_name,omitempty"`
	Message      string  `json:"message"`
	Compensation uint64  `json:"compensation"`
	Status       string  `json:"status"`
	RespondedAt  *string `json:"responded_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// SendInvitationResponse represents the response to an invitation
type SendInvitationResponse struct {
	Message    string        `json:"message"`
	Invitation InvitationDTO `json:"invitation"`
	Statistics StatisticsDTO `json:"statistics"`
}

// RespondInvitationRequest is a creator accepting or rejecting an invitation
type RespondInvitationRequest struct {
	CreatorID      uint   `json:"-"`
	InvitationUUID string `json:"-"`
	Decision       string `json:"decision" validate:"required,oneof=accepted rejected"`
}

// RespondInvitationResponse represents the response to an invitation decision
type RespondInvitationResponse struct {
	Message    string        `json:"message"`
	Invitation InvitationDTO `json:"invitation"`
}

// ListCampaignInvitationsRequest lists invitations a brand sent for a campaign
type ListCampaignInvitationsRequest struct {
	BrandID      uint    `json:"-"`
	CampaignUUID string  `json:"-"`
	Status       *string `json:"status,omitempty"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
}

// ListCreatorInvitationsRequest lists invitations a creator received
type ListCreatorInvitationsRequest struct {
	CreatorID uint    `json:"-"`
	Status    *string `json:"status,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

// ListInvitationsResponse is a page of invitations
type ListInvitationsResponse struct {
	Items      []InvitationDTO `json:"items"`
	Pagination PaginationInfo  `json:"pagination"`
}
