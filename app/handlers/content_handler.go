package handlers

import (
	"github.com/amirphl/collab-market/app/dto"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ContentHandler handles content submissions and their review
type ContentHandler struct {
	contentFlow businessflow.ContentFlow
	validator   *validator.Validate
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentFlow businessflow.ContentFlow, v *validator.Validate) *ContentHandler {
	return &ContentHandler{
		contentFlow: contentFlow,
		validator:   v,
	}
}

// SubmitContent delivers content for a campaign the creator accepted
// @Summary Submit Content
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.SubmitContentRequest true "Content"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitContentResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Campaign not in content stage or invitation not accepted"
// @Router /api/v1/creator/campaigns/{uuid}/submissions [post]
func (h *ContentHandler) SubmitContent(c fiber.Ctx) error {
	creatorID, ok := requireActor(c, models.RecipientTypeCreator)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	var req dto.SubmitContentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.CreatorID = creatorID
	req.CampaignUUID = campaignUUID

	ctx, cancel := createRequestContext(c, "/api/v1/creator/campaigns/"+campaignUUID+"/submissions")
	defer cancel()

	result, err := h.contentFlow.SubmitContent(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Content submission")
	}

	return SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ReviewContent approves or rejects a submission
// @Summary Review Content
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Submission UUID"
// @Param request body dto.ReviewContentRequest true "Review"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewContentResponse}
// @Failure 400 {object} dto.APIResponse "Invalid decision"
// @Failure 409 {object} dto.APIResponse "Submission already reviewed"
// @Router /api/v1/submissions/{uuid}/review [post]
func (h *ContentHandler) ReviewContent(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	submissionUUID := c.Params("uuid")

	var req dto.ReviewContentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}
	req.BrandID = brandID
	req.SubmissionUUID = submissionUUID

	ctx, cancel := createRequestContext(c, "/api/v1/submissions/"+submissionUUID+"/review")
	defer cancel()

	result, err := h.contentFlow.ReviewContent(ctx, &req, clientMetadata(c))
	if err != nil {
		return handleFlowError(c, err, "Content review")
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListSubmissions lists the submissions of a campaign
// @Summary List Submissions
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} dto.APIResponse{data=dto.ListSubmissionsResponse}
// @Router /api/v1/campaigns/{uuid}/submissions [get]
func (h *ContentHandler) ListSubmissions(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	page, limit, err := pageQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/submissions")
	defer cancel()

	result, err := h.contentFlow.ListSubmissions(ctx, &dto.ListSubmissionsRequest{
		BrandID:      brandID,
		CampaignUUID: campaignUUID,
		Status:       queryStringPtr(c, "status"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return handleFlowError(c, err, "Submission listing")
	}

	return SuccessResponse(c, fiber.StatusOK, "Submissions retrieved successfully", result)
}
