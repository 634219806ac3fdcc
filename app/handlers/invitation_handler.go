package handlers

import (
	"github.com/amirphl/collab-market/app/dto"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// InvitationHandler handles invitation requests of brands and creators
type InvitationHandler struct {
	invitationFlow businessflow.InvitationFlow
	validator      *validator.Validate
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationFlow businessflow.InvitationFlow, v *validator.Validate) *InvitationHandler {
	return &InvitationHandler{
		invitationFlow: invitationFlow,
		validator:      v,
	}
}

// SendInvitation invites a creator to a campaign
// @Summary Send Invitation
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.SendInvitationRequest true "Invitation"
// @Success 201 {object} dto.APIResponse{data=dto.SendInvitationResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Creator already invited or invitations closed"
// @Failure 500 {object} dto.APIResponse "Internal consistency error"
// @Router /api/v1/campaigns/{uuid}/invitations [post]
func (h *InvitationHandler) SendInvitation(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	var req dto.SendInvitationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.BrandID = brandID
	req.CampaignUUID = campaignUUID

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/invitations")
	defer cancel()

	result, err := h.invitationFlow.SendInvitation(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Invitation")
	}

	return SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListCampaignInvitations lists the invitations a brand sent for a campaign
// @Summary List Campaign Invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param status query string false "Filter by status" Enums(pending, accepted, rejected)
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} dto.APIResponse{data=dto.ListInvitationsResponse}
// @Router /api/v1/campaigns/{uuid}/invitations [get]
func (h *InvitationHandler) ListCampaignInvitations(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	page, limit, err := pageQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/invitations")
	defer cancel()

	result, err := h.invitationFlow.ListCampaignInvitations(ctx, &dto.ListCampaignInvitationsRequest{
		BrandID:      brandID,
		CampaignUUID: campaignUUID,
		Status:       queryStringPtr(c, "status"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return handleFlowError(c, err, "Invitation listing")
	}

	return SuccessResponse(c, fiber.StatusOK, "Invitations retrieved successfully", result)
}

// ListCreatorInvitations lists the invitations the authenticated creator received
// @Summary List My Invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, accepted, rejected)
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} dto.APIResponse{data=dto.ListInvitationsResponse}
// @Router /api/v1/creator/invitations [get]
func (h *InvitationHandler) ListCreatorInvitations(c fiber.Ctx) error {
	creatorID, ok := requireActor(c, models.RecipientTypeCreator)
	if !ok {
		return missingActor(c)
	}

	page, limit, err := pageQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/creator/invitations")
	defer cancel()

	result, err := h.invitationFlow.ListCreatorInvitations(ctx, &dto.ListCreatorInvitationsRequest{
		CreatorID: creatorID,
		Status:    queryStringPtr(c, "status"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return handleFlowError(c, err, "Invitation listing")
	}

	return SuccessResponse(c, fiber.StatusOK, "Invitations retrieved successfully", result)
}

// RespondInvitation accepts or rejects a pending invitation
// @Summary Respond To Invitation
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Invitation UUID"
// @Param request body dto.RespondInvitationRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.RespondInvitationResponse}
// @Failure 400 {object} dto.APIResponse "Invalid decision"
// @Failure 409 {object} dto.APIResponse "Invitation already answered"
// @Failure 500 {object} dto.APIResponse "Internal consistency error"
// @Router /api/v1/creator/invitations/{uuid}/respond [post]
func (h *InvitationHandler) RespondInvitation(c fiber.Ctx) error {
	creatorID, ok := requireActor(c, models.RecipientTypeCreator)
	if !ok {
		return missingActor(c)
	}
	invitationUUID := c.Params("uuid")

	var req dto.RespondInvitationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.CreatorID = creatorID
	req.InvitationUUID = invitationUUID

	ctx, cancel := createRequestContext(c, "/api/v1/creator/invitations/"+invitationUUID+"/respond")
	defer cancel()

	result, err := h.invitationFlow.RespondInvitation(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Invitation response")
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
