package handlers

import (
	"github.com/amirphl/collab-market/app/dto"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateCampaign(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	GetProgress(c fiber.Ctx) error
	UpdateRequirements(c fiber.Ctx) error
	AdvanceStage(c fiber.Ctx) error
	DeleteCampaign(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow, v *validator.Validate) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    v,
	}
}

// CreateCampaign handles the campaign creation process
// @Summary Create Campaign
// @Description Create a new campaign. The creation stage is completed and invitations open immediately.
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignRequest true "Campaign creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCampaignResponse} "Campaign created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}

	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.BrandID = brandID

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns")
	defer cancel()

	result, err := h.campaignFlow.CreateCampaign(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Campaign creation")
	}

	return SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// ListCampaigns lists the campaigns of the authenticated brand
// @Summary List Campaigns
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 20, max 100)"
// @Param stage query string false "Filter by current stage" Enums(creation, invitations, content, completion)
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}

	page, limit, err := pageQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns")
	defer cancel()

	result, err := h.campaignFlow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
		BrandID: brandID,
		Page:    page,
		Limit:   limit,
		Stage:   queryStringPtr(c, "stage"),
	})
	if err != nil {
		return handleFlowError(c, err, "Campaign listing")
	}

	return SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign returns one campaign with its requirements and progress
// @Summary Get Campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDTO}
// @Failure 403 {object} dto.APIResponse "Campaign belongs to another brand"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID)
	defer cancel()

	result, err := h.campaignFlow.GetCampaign(ctx, &dto.GetCampaignRequest{UUID: campaignUUID, BrandID: brandID})
	if err != nil {
		return handleFlowError(c, err, "Campaign retrieval")
	}

	return SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// GetProgress returns the stage pipeline and invitation statistics
// @Summary Get Campaign Progress
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressDTO}
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid}/progress [get]
func (h *CampaignHandler) GetProgress(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/progress")
	defer cancel()

	result, err := h.campaignFlow.GetProgress(ctx, &dto.GetCampaignRequest{UUID: campaignUUID, BrandID: brandID})
	if err != nil {
		return handleFlowError(c, err, "Progress retrieval")
	}

	return SuccessResponse(c, fiber.StatusOK, "Progress retrieved successfully", result)
}

// UpdateRequirements replaces the creator requirements while invitations are open
// @Summary Update Campaign Requirements
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.UpdateRequirementsRequest true "New requirements"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateRequirementsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Requirements can no longer change"
// @Router /api/v1/campaigns/{uuid}/requirements [put]
func (h *CampaignHandler) UpdateRequirements(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	var req dto.UpdateRequirementsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.UUID = campaignUUID
	req.BrandID = brandID

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/requirements")
	defer cancel()

	result, err := h.campaignFlow.UpdateRequirements(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Requirements update")
	}

	return SuccessResponse(c, fiber.StatusOK, "Requirements updated successfully", result)
}

// AdvanceStage completes the named stage of the campaign
// @Summary Advance Campaign Stage
// @Description Completes the named stage. Out-of-order requests are rejected with an actionable reason.
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param stage path string true "Stage to complete" Enums(creation, invitations, content, completion)
// @Success 200 {object} dto.APIResponse{data=dto.AdvanceStageResponse}
// @Failure 400 {object} dto.APIResponse "Unknown stage"
// @Failure 409 {object} dto.APIResponse "Invalid transition"
// @Router /api/v1/campaigns/{uuid}/stages/{stage}/advance [post]
func (h *CampaignHandler) AdvanceStage(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")
	stage := c.Params("stage")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/stages/"+stage+"/advance")
	defer cancel()

	result, err := h.campaignFlow.AdvanceStage(ctx, &dto.AdvanceStageRequest{
		UUID:    campaignUUID,
		BrandID: brandID,
		Stage:   stage,
	}, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Stage transition")
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeleteCampaign archives a campaign
// @Summary Delete Campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteCampaignResponse}
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid} [delete]
func (h *CampaignHandler) DeleteCampaign(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID)
	defer cancel()

	result, err := h.campaignFlow.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{UUID: campaignUUID, BrandID: brandID}, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Campaign deletion")
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
