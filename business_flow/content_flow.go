package businessflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/amirphl/collab-market/utils"
	"gorm.io/gorm"
)

// ContentFlow handles content delivery and review during the content stage
type ContentFlow interface {
	SubmitContent(ctx context.Context, req *dto.SubmitContentRequest, metadata *ClientMetadata) (*dto.SubmitContentResponse, error)
	ReviewContent(ctx context.Context, req *dto.ReviewContentRequest, metadata *ClientMetadata) (*dto.ReviewContentResponse, error)
	ListSubmissions(ctx context.Context, req *dto.ListSubmissionsRequest) (*dto.ListSubmissionsResponse, error)
}

// ContentFlowImpl implements the content business flow
type ContentFlowImpl struct {
	campaignRepo     repository.CampaignRepository
	creatorRepo      repository.CreatorRepository
	invitationRepo   repository.InvitationRepository
	submissionRepo   repository.ContentSubmissionRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditLogRepository
	locker           CampaignLocker
	db               *gorm.DB
}

// NewContentFlow creates a new content flow instance
func NewContentFlow(
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	invitationRepo repository.InvitationRepository,
	submissionRepo repository.ContentSubmissionRepository,
	notificationRepo repository.NotificationRepository,
	auditRepo repository.AuditLogRepository,
	locker CampaignLocker,
	db *gorm.DB,
) ContentFlow {
	return &ContentFlowImpl{
		campaignRepo:     campaignRepo,
		creatorRepo:      creatorRepo,
		invitationRepo:   invitationRepo,
		submissionRepo:   submissionRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		locker:           locker,
		db:               db,
	}
}

// SubmitContent stores a creator's deliverable for brand review
func (s *ContentFlowImpl) SubmitContent(ctx context.Context, req *dto.SubmitContentRequest, metadata *ClientMetadata) (*dto.SubmitContentResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to lookup creator", err)
	}
	campaign, err := getCampaign(ctx, s.campaignRepo, req.CampaignUUID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	invitation, err := s.invitationRepo.ByCampaignAndCreator(ctx, campaign.ID, creator.ID)
	if err != nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Failed to lookup invitation", err)
	}
	if invitation == nil {
		return nil, NewBusinessError("INVITATION_LOOKUP_FAILED", "Creator was not invited to this campaign", ErrInvitationNotFound)
	}
	if invitation.Status != models.InvitationStatusAccepted {
		return nil, NewBusinessError("INVITATION_NOT_ACCEPTED", "Only accepted invitations can deliver content", ErrInvitationNotAccepted)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	submission := &models.ContentSubmission{
		CampaignID:   campaign.ID,
		CreatorID:    creator.ID,
		InvitationID: invitation.ID,
		ContentURL:   req.ContentURL,
		Caption:      req.Caption,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := reloadCampaign(txCtx, s.campaignRepo, campaign.ID)
		if err != nil {
			return err
		}
		if current.Progress.CurrentStage() != models.StageContent {
			return ErrCampaignNotContentStage
		}
		if err := s.submissionRepo.Save(txCtx, submission); err != nil {
			return err
		}

		payload := map[string]any{
			"type":         models.NotificationTypeContentSubmitted,
			"campaignId":   current.UUID.String(),
			"submissionId": submission.UUID.String(),
			"creatorId":    creator.UUID.String(),
		}
		return notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeContentSubmitted, models.RecipientTypeBrand, current.BrandID, &current.ID, payload)
	})
	if err != nil {
		if cerr := consistencyFailure(ctx, s.auditRepo, campaign, err); cerr != nil {
			return nil, cerr
		}
		return nil, NewBusinessError("CONTENT_SUBMIT_FAILED", "Failed to submit content", err)
	}

	msg := fmt.Sprintf("Content %s submitted for campaign %s", submission.UUID, campaign.UUID)
	_ = createAuditLog(ctx, s.auditRepo, creatorActor(creator.ID), models.AuditActionContentSubmitted, msg, true, nil, metadata)

	return &dto.SubmitContentResponse{
		Message:    "Content submitted successfully",
		Submission: ToSubmissionDTO(submission, campaign, creator),
	}, nil
}

// ReviewContent approves or rejects a submitted item
func (s *ContentFlowImpl) ReviewContent(ctx context.Context, req *dto.ReviewContentRequest, metadata *ClientMetadata) (*dto.ReviewContentResponse, error) {
	status := models.SubmissionStatus(req.Decision)
	if status != models.SubmissionStatusApproved && status != models.SubmissionStatusRejected {
		return nil, NewBusinessError("REVIEW_VALIDATION_FAILED", "Decision must be approved or rejected", ErrInvalidDecision)
	}

	submission, err := s.submissionRepo.ByUUID(ctx, req.SubmissionUUID)
	if err != nil {
		return nil, NewBusinessError("SUBMISSION_LOOKUP_FAILED", "Failed to lookup submission", err)
	}
	if submission == nil {
		return nil, NewBusinessError("SUBMISSION_LOOKUP_FAILED", "Failed to lookup submission", ErrSubmissionNotFound)
	}
	campaign, err := findCampaign(ctx, s.campaignRepo, submission.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if !campaign.IsOwnedBy(req.BrandID) {
		return nil, NewBusinessError("SUBMISSION_ACCESS_DENIED", "Submission belongs to another brand", ErrSubmissionAccessDenied)
	}

	unlock, err := s.locker.Lock(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOCK_FAILED", "Campaign is busy, retry shortly", err)
	}
	defer unlock()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := s.submissionRepo.ByID(txCtx, submission.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrSubmissionNotFound
		}
		if !current.CanTransitionTo(status) {
			return ErrSubmissionNotPending
		}

		now := utils.UTCNow()
		if err := s.submissionRepo.UpdateReview(txCtx, current.ID, status, req.Comment, now); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrSubmissionNotPending
			}
			return err
		}
		current.Status = status
		current.ReviewComment = req.Comment
		current.ReviewedAt = &now
		submission = current

		payload := map[string]any{
			"type":         models.NotificationTypeContentReviewed,
			"campaignId":   campaign.UUID.String(),
			"submissionId": current.UUID.String(),
			"status":       status,
		}
		return notifyInTx(txCtx, s.notificationRepo, models.NotificationTypeContentReviewed, models.RecipientTypeCreator, current.CreatorID, &campaign.ID, payload)
	})
	if err != nil {
		return nil, NewBusinessError("CONTENT_REVIEW_FAILED", "Failed to review content", err)
	}

	msg := fmt.Sprintf("Content %s %s", submission.UUID, status)
	_ = createAuditLog(ctx, s.auditRepo, brandActor(req.BrandID), models.AuditActionContentReviewed, msg, true, nil, metadata)

	return &dto.ReviewContentResponse{
		Message:    fmt.Sprintf("Content %s", status),
		Submission: ToSubmissionDTO(submission, campaign, nil),
	}, nil
}

// ListSubmissions lists the submissions of a campaign for its brand
func (s *ContentFlowImpl) ListSubmissions(ctx context.Context, req *dto.ListSubmissionsRequest) (*dto.ListSubmissionsResponse, error) {
	page, limit, offset, err := pageParams(req.Page, req.Limit)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}

	filter := models.ContentSubmissionFilter{}
	if req.Status != nil && *req.Status != "" {
		status := models.SubmissionStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("INVALID_STATUS_FILTER", "Invalid status filter", ErrInvalidStatus)
		}
		filter.Status = &status
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.CampaignUUID, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	filter.CampaignID = &campaign.ID

	total, err := s.submissionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_SUBMISSIONS_FAILED", "Failed to count submissions", err)
	}
	rows, err := s.submissionRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_SUBMISSIONS_FAILED", "Failed to list submissions", err)
	}

	creatorIDs := make([]uint, 0, len(rows))
	for _, sub := range rows {
		creatorIDs = append(creatorIDs, sub.CreatorID)
	}
	creators, err := s.creatorRepo.ByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, NewBusinessError("LIST_SUBMISSIONS_FAILED", "Failed to load creators", err)
	}
	byID := make(map[uint]*models.Creator, len(creators))
	for _, c := range creators {
		byID[c.ID] = c
	}

	items := make([]dto.SubmissionDTO, 0, len(rows))
	for _, sub := range rows {
		items = append(items, ToSubmissionDTO(sub, campaign, byID[sub.CreatorID]))
	}
	return &dto.ListSubmissionsResponse{
		Items:      items,
		Pagination: dto.NewPaginationInfo(total, page, limit),
	}, nil
}
