package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// InvitationFlow handles invitations between brands and creators
type InvitationFlow interface {
	SendInvitation(ctx context.Context, req *dto.SendInvitationRequest, metadata *ClientMetadata) (*dto.SendInvitationResponse, error)
	RespondInvitation(ctx context.Context, req *dto.RespondInvitationRequest, metadata *ClientMetadata) (*dto.RespondInvitationResponse, error)
	ListCampaignInvitations(ctx context.Context, req *dto.ListCampaignInvitationsRequest) (*dto.ListInvitationsResponse, error)
	ListCreatorInvitations(ctx context.Context, req *dto.ListCreatorInvitationsRequest) (*dto.ListInvitationsResponse, error)
}

// InvitationFlowImpl implements the invitation business flow
type InvitationFlowImpl struct {
	campaignRepo     repository.CampaignRepository
	brandRepo        repository.BrandRepository
	creatorRepo      repository.CreatorRepository
	invitationRepo   repository.InvitationRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditLogRepository
	locker           CampaignLocker
	db               *gorm.DB
}

// NewInvitationFlow creates a new invitation flow instance
func NewInvitationFlow(
	campaignRepo repository.CampaignRepository,
	brandRepo repository.BrandRepository,
	creatorRepo repository.CreatorRepository,
	invitationRepo repository.InvitationRepository,
	notificationRepo repository.NotificationRepository,
	auditRepo repository.AuditLogRepository,
	locker CampaignLocker,
	db *gorm.DB,
) InvitationFlow {
	return &InvitationFlowImpl{
		campaignRepo:     campaignRepo,
		brandRepo:        brandRepo,
		creatorRepo:      creatorRepo,
		invitationRepo:   invitationRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		locker:           locker,
		db:               db,
	}
}

// SendInvitation invites a creator and records the sent outcome
func (s *InvitationFlowImpl) SendInvitation(ctx context.Context, req *dto.SendInvitationRequest, metadata *ClientMetadata) (*dto.SendInvitationResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, NewBusinessError("INVITATION_VALIDATION_FAILED", "Invitation message is required", ErrInvitationMessageEmpty)
	}

	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", "Failed to lookup brand", err)
	}
	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, brand.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	creator, err := s.creatorRepo.ByUUID(ctx, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", err)
	}
	if creator == nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", ErrCreatorNotFound)
	}
	if !creator.Active() {
		return nil, NewBusinessError("CREATOR_INACTIVE", "Creator is not accepting invitations", ErrCreatorInactive)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	invitation := &models.Invitation{
		CampaignID:   campaign.ID,
		CreatorID:    creator.ID,
		Message:      strings.TrimSpace(req.Message),
		Compensation: req.Compensation,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := reloadCampaign(txCtx, s.campaignRepo, campaign.ID)
		if err != nil {
			return err
		}
		if current.Progress.CurrentStage() != models.StageInvitations {
			return ErrCampaignNotInvitationStage
		}

		existing, err := s.invitationRepo.ByCampaignAndCreator(txCtx, current.ID, creator.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyInvited
		}

		next, err := current.Progress.RecordInvitationOutcome(models.InvitationOutcomeSent)
		if err != nil {
			return err
		}
		if err := s.invitationRepo.Save(txCtx, invitation); err != nil {
			return err
		}
		if err := saveProgress(txCtx, s.campaignRepo, current, next); err != nil {
			return err
		}

		payload := map[string]any{
			"type":           models.NotificationTypeInvitationReceived,
			"campaignId":     current.UUID.String(),
			"invitationId":   invitation.UUID.String(),
			"campaignTitle":  current.Title,
			"compensation":   invitation.Compensation,
			"invitationText": invitation.Message,
		}
		if err := notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeInvitationReceived, models.RecipientTypeCreator, creator.ID, &current.ID, payload); err != nil {
			return err
		}
		campaign = current
		return nil
	})
	if err != nil {
		if cerr := consistencyFailure(ctx, s.auditRepo, campaign, err); cerr != nil {
			return nil, cerr
		}
		errMsg := fmt.Sprintf("Inviting creator %s to campaign %s failed: %s", creator.UUID, campaign.UUID, err.Error())
		_ = createAuditLog(ctx, s.auditRepo, brandActor(brand.ID), models.AuditActionInvitationSendFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("INVITATION_SEND_FAILED", "Failed to send invitation", err)
	}

	invitationOutcomesTotal.WithLabelValues(string(models.InvitationOutcomeSent)).Inc()
	msg := fmt.Sprintf("Creator %s invited to campaign %s", creator.UUID, campaign.UUID)
	_ = createAuditLog(ctx, s.auditRepo, brandActor(brand.ID), models.AuditActionInvitationSent, msg, true, nil, metadata)

	invitation.Campaign = campaign
	invitation.Creator = creator
	return &dto.SendInvitationResponse{
		Message:    "Invitation sent successfully",
		Invitation: ToInvitationDTO(invitation),
		Statistics: ToStatisticsDTO(campaign.Progress.Statistics),
	}, nil
}

// RespondInvitation records a creator's decision on a pending invitation.
// When the decision leaves every invitation rejected the brand is notified.
func (s *InvitationFlowImpl) RespondInvitation(ctx context.Context, req *dto.RespondInvitationRequest, metadata *ClientMetadata) (*dto.RespondInvitationResponse, error) {
	status := models.InvitationStatus(req.Decision)
	outcome, ok := status.Outcome()
	if !ok {
		return nil, NewBusinessError("INVITATION_VALIDATION_FAILED", "Decision must be accepted or rejected", ErrInvalidDecision)
	}

	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", err)
	}

	invitation, err := s.invitationRepo.ByUUID(ctx, req.InvitationUUID)
	if err != nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to lookup invitation", err)
	}
	if invitation == nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to lookup invitation", ErrInvitationNotFound)
	}
	if invitation.CreatorID != creator.ID {
		return nil, NewBusinessError("INVITATION_ACCESS_DENIED", "Invitation belongs to another creator", ErrInvitationAccessDenied)
	}

	campaign, err := findCampaign(ctx, s.campaignRepo, invitation.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	var allRejected bool
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := s.invitationRepo.ByID(txCtx, invitation.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrInvitationNotFound
		}
		if !current.CanTransitionTo(status) {
			return ErrInvitationNotPending
		}

		c, err := reloadCampaign(txCtx, s.campaignRepo, campaign.ID)
		if err != nil {
			return err
		}
		next, err := c.Progress.RecordInvitationOutcome(outcome)
		if err != nil {
			return err
		}

		now := utils.UTCNow()
		if err := s.invitationRepo.UpdateStatus(txCtx, current.ID, models.InvitationStatusPending, status, now); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrInvitationNotPending
			}
			return err
		}
		if err := saveProgress(txCtx, s.campaignRepo, c, next); err != nil {
			return err
		}

		switch {
		case status == models.InvitationStatusAccepted:
			payload := map[string]any{
				"type":         models.NotificationTypeInvitationAccepted,
				"campaignId":   c.UUID.String(),
				"invitationId": current.UUID.String(),
				"creatorId":    creator.UUID.String(),
				"stats":        next.Statistics,
			}
			if err := notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeInvitationAccepted, models.RecipientTypeBrand, c.BrandID, &c.ID, payload); err != nil {
				return err
			}
		case next.AllInvitationsRejected():
			allRejected = true
			payload := models.NewAllInvitationsRejectedPayload(c.UUID, next)
			if err := notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeAllInvitationsRejected, models.RecipientTypeBrand, c.BrandID, &c.ID, payload); err != nil {
				return err
			}
		}

		current.Status = status
		current.RespondedAt = &now
		invitation = current
		campaign = c
		return nil
	})
	if err != nil {
		if cerr := consistencyFailure(ctx, s.auditRepo, campaign, err); cerr != nil {
			return nil, cerr
		}
		errMsg := fmt.Sprintf("Responding to invitation %s failed: %s", invitation.UUID, err.Error())
		_ = createAuditLog(ctx, s.auditRepo, creatorActor(creator.ID), models.AuditActionInvitationResponseFailed, errMsg, false, &errMsg, metadata)

		message := "Failed to respond to invitation"
		if reason := TransitionReason(err); reason != "" {
			message = reason
		}
		return nil, NewBusinessError("INVITATION_RESPONSE_FAILED", message, err)
	}

	invitationOutcomesTotal.WithLabelValues(string(outcome)).Inc()
	msg := fmt.Sprintf("Invitation %s %s", invitation.UUID, status)
	if allRejected {
		msg += "; every invitation of the campaign is now rejected"
	}
	_ = createAuditLog(ctx, s.auditRepo, creatorActor(creator.ID), models.AuditActionInvitationResponded, msg, true, nil, metadata)

	invitation.Campaign = campaign
	invitation.Creator = creator
	return &dto.RespondInvitationResponse{
		Message:    fmt.Sprintf("Invitation %s", status),
		Invitation: ToInvitationDTO(invitation),
	}, nil
}

// ListCampaignInvitations lists the invitations a brand sent for a campaign
func (s *InvitationFlowImpl) ListCampaignInvitations(ctx context.Context, req *dto.ListCampaignInvitationsRequest) (*dto.ListInvitationsResponse, error) {
	page, limit, offset, err := pageParams(req.Page, req.Limit)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}
	status, err := parseInvitationStatus(req.Status)
	if err != nil {
		return nil, NewBusinessError("INVALID_STATUS_FILTER", "Invalid status filter", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	filter := models.InvitationFilter{CampaignID: &campaign.ID, Status: status}
	total, err := s.invitationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to count invitations", err)
	}
	rows, err := s.invitationRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to list invitations", err)
	}

	creatorIDs := make([]uint, 0, len(rows))
	for _, inv := range rows {
		creatorIDs = append(creatorIDs, inv.CreatorID)
	}
	creators, err := s.creatorRepo.ByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to load creators", err)
	}
	byID := make(map[uint]*models.Creator, len(creators))
	for _, c := range creators {
		byID[c.ID] = c
	}

	items := make([]dto.InvitationDTO, 0, len(rows))
	for _, inv := range rows {
		inv.Campaign = campaign
		inv.Creator = byID[inv.CreatorID]
		items = append(items, ToInvitationDTO(inv))
	}
	return &dto.ListInvitationsResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

// ListCreatorInvitations lists the invitations a creator received
func (s *InvitationFlowImpl) ListCreatorInvitations(ctx context.Context, req *dto.ListCreatorInvitationsRequest) (*dto.ListInvitationsResponse, error) {
	page, limit, offset, err := pageParams(req.Page, req.Limit)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}
	status, err := parseInvitationStatus(req.Status)
	if err != nil {
		return nil, NewBusinessError("INVALID_STATUS_FILTER", "Invalid status filter", err)
	}

	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", err)
	}

	filter := models.InvitationFilter{CreatorID: &creator.ID, Status: status}
	total, err := s.invitationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to count invitations", err)
	}
	rows, err := s.invitationRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to list invitations", err)
	}

	campaigns := make(map[uint]*models.Campaign)
	items := make([]dto.InvitationDTO, 0, len(rows))
	for _, inv := range rows {
		c, seen := campaigns[inv.CampaignID]
		if !seen {
			// archived campaigns come back nil and are listed without a uuid
			c, err = s.campaignRepo.ByID(ctx, inv.CampaignID)
			if err != nil {
				return nil, NewBusinessError("LIST_INVITATIONS_FAILED", "Failed to load campaigns", err)
			}
			campaigns[inv.CampaignID] = c
		}
		inv.Campaign = c
		inv.Creator = creator
		items = append(items, ToInvitationDTO(inv))
	}
	return &dto.ListInvitationsResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}

func parseInvitationStatus(raw *string) (*models.InvitationStatus, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	status := models.InvitationStatus(*raw)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &status, nil
}
