package handlers

import (
	"strings"

	"github.com/amirphl/collab-market/app/dto"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/amirphl/collab-market/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MatchHandler serves ranked creator suggestions
type MatchHandler struct {
	matchFlow businessflow.MatchFlow
	validator *validator.Validate
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchFlow businessflow.MatchFlow, v *validator.Validate) *MatchHandler {
	return &MatchHandler{
		matchFlow: matchFlow,
		validator: v,
	}
}

// overridesFromQuery builds a what-if requirements override from the query string.
// Returns nil when no override parameter is present.
func overridesFromQuery(c fiber.Ctx) (*dto.RequirementsDTO, error) {
	minSubs, err := queryInt64Ptr(c, "min_subscribers")
	if err != nil {
		return nil, err
	}
	minViews, err := queryInt64Ptr(c, "min_average_views")
	if err != nil {
		return nil, err
	}
	var platforms []string
	if raw := c.Query("platforms"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				platforms = append(platforms, p)
			}
		}
	}
	out := &dto.RequirementsDTO{
		Category:        queryStringPtr(c, "category"),
		MinSubscribers:  minSubs,
		MinAverageViews: minViews,
		Platforms:       platforms,
		Location:        queryStringPtr(c, "location"),
	}
	if out.Category == nil && out.MinSubscribers == nil && out.MinAverageViews == nil && out.Platforms == nil && out.Location == nil {
		return nil, nil
	}
	return out, nil
}

// SuggestCreators ranks eligible creators for a campaign
// @Summary Suggest Creators
// @Description Ranks active creators against the campaign requirements. Query overrides replace single criteria for what-if queries.
// @Tags Matching
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset into the ranked list"
// @Param category query string false "Override: category"
// @Param min_subscribers query int false "Override: minimum subscribers"
// @Param min_average_views query int false "Override: minimum average views"
// @Param platforms query string false "Override: comma separated platforms"
// @Param location query string false "Override: location"
// @Success 200 {object} dto.APIResponse{data=dto.SuggestCreatorsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid paging or override"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid}/suggestions [get]
func (h *MatchHandler) SuggestCreators(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	limit, err := queryInt(c, "limit")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}
	overrides, err := overridesFromQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	req := dto.SuggestCreatorsRequest{
		CampaignUUID: campaignUUID,
		BrandID:      brandID,
		Limit:        limit,
		Offset:       offset,
		Overrides:    overrides,
	}
	if ok, err := validateRequest(c, h.validator, &req); !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/suggestions")
	defer cancel()

	result, err := h.matchFlow.SuggestCreators(ctx, &req)
	if err != nil {
		return handleFlowError(c, err, "Creator suggestion")
	}

	return SuccessResponse(c, fiber.StatusOK, "Suggestions retrieved successfully", result)
}

// CreatorBreakdown explains how one creator scores against a campaign
// @Summary Creator Match Breakdown
// @Tags Matching
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param creator_uuid path string true "Creator UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CreatorBreakdownResponse}
// @Failure 404 {object} dto.APIResponse "Campaign or creator not found"
// @Router /api/v1/campaigns/{uuid}/suggestions/{creator_uuid} [get]
func (h *MatchHandler) CreatorBreakdown(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/suggestions/creator")
	defer cancel()

	result, err := h.matchFlow.CreatorBreakdown(ctx, &dto.CreatorBreakdownRequest{
		CampaignUUID: campaignUUID,
		BrandID:      brandID,
		CreatorUUID:  c.Params("creator_uuid"),
	})
	if err != nil {
		return handleFlowError(c, err, "Creator breakdown")
	}

	return SuccessResponse(c, fiber.StatusOK, "Breakdown retrieved successfully", result)
}

// ExportSuggestions downloads the full ranked list as a spreadsheet
// @Summary Export Suggestions
// @Tags Matching
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Success 200 {file} file "XLSX workbook"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid}/suggestions/export [get]
func (h *MatchHandler) ExportSuggestions(c fiber.Ctx) error {
	brandID, ok := requireActor(c, models.RecipientTypeBrand)
	if !ok {
		return missingActor(c)
	}
	campaignUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/suggestions/export")
	defer cancel()

	result, err := h.matchFlow.ExportSuggestions(ctx, &dto.ExportSuggestionsRequest{
		CampaignUUID: campaignUUID,
		BrandID:      brandID,
	})
	if err != nil {
		return handleFlowError(c, err, "Suggestion export")
	}

	c.Attachment(result.Filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Status(fiber.StatusOK).Send(result.Content)
}
