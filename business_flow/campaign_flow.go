package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"gorm.io/gorm"
)

// CampaignFlow handles the campaign lifecycle
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.CampaignDTO, error)
	GetProgress(ctx context.Context, req *dto.GetCampaignRequest) (*dto.ProgressDTO, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	UpdateRequirements(ctx context.Context, req *dto.UpdateRequirementsRequest, metadata *ClientMetadata) (*dto.UpdateRequirementsResponse, error)
	AdvanceStage(ctx context.Context, req *dto.AdvanceStageRequest, metadata *ClientMetadata) (*dto.AdvanceStageResponse, error)
	DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo     repository.CampaignRepository
	brandRepo        repository.BrandRepository
	invitationRepo   repository.InvitationRepository
	submissionRepo   repository.ContentSubmissionRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditLogRepository
	locker           CampaignLocker
	db               *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	brandRepo repository.BrandRepository,
	invitationRepo repository.InvitationRepository,
	submissionRepo repository.ContentSubmissionRepository,
	notificationRepo repository.NotificationRepository,
	auditRepo repository.AuditLogRepository,
	locker CampaignLocker,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:     campaignRepo,
		brandRepo:        brandRepo,
		invitationRepo:   invitationRepo,
		submissionRepo:   submissionRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		locker:           locker,
		db:               db,
	}
}

// CreateCampaign creates a campaign with creation completed and invitations open
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	requirements, err := s.validateCreateCampaignRequest(req)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}

	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", "Failed to lookup brand", err)
	}

	campaign := &models.Campaign{
		BrandID:      brand.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Budget:       req.Budget,
		Requirements: requirements,
		Progress:     models.StartedCampaignProgress(),
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.campaignRepo.Save(txCtx, campaign)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign creation failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, brandActor(brand.ID), models.AuditActionCampaignCreationFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	msg := fmt.Sprintf("Campaign created successfully: %s", campaign.UUID.String())
	_ = createAuditLog(ctx, s.auditRepo, brandActor(brand.ID), models.AuditActionCampaignCreated, msg, true, nil, metadata)

	return &dto.CreateCampaignResponse{
		Message:      "Campaign created successfully",
		UUID:         campaign.UUID.String(),
		CurrentStage: campaign.Progress.CurrentStage().String(),
		Progress:     ToProgressDTO(campaign.Progress),
		CreatedAt:    formatTime(campaign.CreatedAt),
	}, nil
}

// GetCampaign returns the owner's view of a campaign
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.CampaignDTO, error) {
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	out := ToCampaignDTO(campaign)
	return &out, nil
}

// GetProgress returns the stage pipeline of a campaign
func (s *CampaignFlowImpl) GetProgress(ctx context.Context, req *dto.GetCampaignRequest) (*dto.ProgressDTO, error) {
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	out := ToProgressDTO(campaign.Progress)
	return &out, nil
}

// ListCampaigns lists a brand's campaigns newest first
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	page, limit, offset, err := pageParams(req.Page, req.Limit)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}

	filter := models.CampaignFilter{BrandID: &req.BrandID}
	if req.Stage != nil && *req.Stage != "" {
		stage := models.StageName(*req.Stage)
		if !stage.Valid() && stage != models.StageCompleted {
			return nil, NewBusinessError("INVALID_STAGE_FILTER", "Invalid stage filter", ErrInvalidStage)
		}
		filter.CurrentStage = &stage
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_CAMPAIGNS_FAILED", "Failed to count campaigns", err)
	}
	rows, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_CAMPAIGNS_FAILED", "Failed to list campaigns", err)
	}

	items := make([]dto.CampaignDTO, 0, len(rows))
	for _, c := range rows {
		items = append(items, ToCampaignDTO(c))
	}
	return &dto.ListCampaignsResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

// UpdateRequirements replaces the requirements while invitations are still open
func (s *CampaignFlowImpl) UpdateRequirements(ctx context.Context, req *dto.UpdateRequirementsRequest, metadata *ClientMetadata) (*dto.UpdateRequirementsResponse, error) {
	requirements := FromRequirementsDTO(req.Requirements)
	if err := requirements.Validate(); err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", fmt.Errorf("%w: %v", ErrInvalidRequirements, err))
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := reloadCampaign(txCtx, s.campaignRepo, campaign.ID)
		if err != nil {
			return err
		}
		if !current.RequirementsEditable() {
			return ErrRequirementsLocked
		}
		current.Requirements = requirements
		if err := s.campaignRepo.UpdateRequirements(txCtx, current, current.Version); err != nil {
			if IsConcurrentModification(err) {
				return ErrConcurrentModification
			}
			return err
		}
		campaign = current
		return nil
	})
	if err != nil {
		if cerr := consistencyFailure(ctx, s.auditRepo, campaign, err); cerr != nil {
			return nil, cerr
		}
		return nil, NewBusinessError("REQUIREMENTS_UPDATE_FAILED", "Failed to update requirements", err)
	}

	msg := fmt.Sprintf("Requirements of campaign %s updated", campaign.UUID)
	_ = createAuditLog(ctx, s.auditRepo, brandActor(req.BrandID), models.AuditActionCampaignRequirementsUpdated, msg, true, nil, metadata)

	return &dto.UpdateRequirementsResponse{
		Message:  "Requirements updated successfully",
		Campaign: ToCampaignDTO(campaign),
	}, nil
}

// AdvanceStage completes the named stage and activates the next one
func (s *CampaignFlowImpl) AdvanceStage(ctx context.Context, req *dto.AdvanceStageRequest, metadata *ClientMetadata) (*dto.AdvanceStageResponse, error) {
	stage := models.StageName(strings.TrimSpace(req.Stage))

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := reloadCampaign(txCtx, s.campaignRepo, campaign.ID)
		if err != nil {
			return err
		}

		next, err := current.Progress.Advance(stage)
		if err != nil {
			return err
		}
		if err := s.checkStageGuards(txCtx, current, stage); err != nil {
			return err
		}
		if err := saveProgress(txCtx, s.campaignRepo, current, next); err != nil {
			return err
		}

		if next.IsComplete() {
			payload := map[string]any{
				"type":       models.NotificationTypeCampaignCompleted,
				"campaignId": current.UUID.String(),
				"stats":      next.Statistics,
			}
			if err := notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeCampaignCompleted, models.RecipientTypeBrand, current.BrandID, &current.ID, payload); err != nil {
				return err
			}
		}
		campaign = current
		return nil
	})
	if err != nil {
		stageTransitionsTotal.WithLabelValues(string(stage), "rejected").Inc()
		if cerr := consistencyFailure(ctx, s.auditRepo, campaign, err); cerr != nil {
			return nil, cerr
		}
		errMsg := fmt.Sprintf("Advancing stage %s of campaign %s failed: %s", stage, campaign.UUID, err.Error())
		_ = createAuditLog(ctx, s.auditRepo, brandActor(req.BrandID), models.AuditActionCampaignStageAdvanceFailed, errMsg, false, &errMsg, metadata)

		message := "Failed to advance stage"
		if reason := TransitionReason(err); reason != "" {
			message = reason
		}
		return nil, NewBusinessError("STAGE_ADVANCE_FAILED", message, err)
	}

	stageTransitionsTotal.WithLabelValues(string(stage), "completed").Inc()
	msg := fmt.Sprintf("Stage %s of campaign %s completed", stage, campaign.UUID)
	_ = createAuditLog(ctx, s.auditRepo, brandActor(req.BrandID), models.AuditActionCampaignStageAdvanced, msg, true, nil, metadata)

	return &dto.AdvanceStageResponse{
		Message:  fmt.Sprintf("Stage %s completed", stage),
		Progress: ToProgressDTO(campaign.Progress),
	}, nil
}

// checkStageGuards enforces marketplace preconditions on top of the stage order
func (s *CampaignFlowImpl) checkStageGuards(ctx context.Context, campaign *models.Campaign, stage models.StageName) error {
	switch stage {
	case models.StageInvitations:
		accepted := models.InvitationStatusAccepted
		count, err := s.invitationRepo.Count(ctx, models.InvitationFilter{CampaignID: &campaign.ID, Status: &accepted})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoAcceptedInvitations
		}
	case models.StageContent:
		submitted := models.SubmissionStatusSubmitted
		count, err := s.submissionRepo.Count(ctx, models.ContentSubmissionFilter{CampaignID: &campaign.ID, Status: &submitted})
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrContentReviewPending
		}
	}
	return nil
}

// DeleteCampaign archives a campaign
func (s *CampaignFlowImpl) DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.campaignRepo.SoftDelete(txCtx, campaign.ID)
	})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign", err)
	}

	msg := fmt.Sprintf("Campaign %s deleted", campaign.UUID)
	_ = createAuditLog(ctx, s.auditRepo, brandActor(req.BrandID), models.AuditActionCampaignDeleted, msg, true, nil, metadata)

	return &dto.DeleteCampaignResponse{Message: "Campaign deleted successfully"}, nil
}

func (s *CampaignFlowImpl) validateCreateCampaignRequest(req *dto.CreateCampaignRequest) (models.CampaignRequirements, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.CampaignRequirements{}, ErrCampaignTitleRequired
	}
	requirements := FromRequirementsDTO(req.Requirements)
	if err := requirements.Validate(); err != nil {
		return models.CampaignRequirements{}, fmt.Errorf("%w: %v", ErrInvalidRequirements, err)
	}
	return requirements, nil
}
