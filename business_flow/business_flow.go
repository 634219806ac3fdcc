package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/amirphl/collab-market/utils"
)

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// actor identifies who performed an audited action
type actor struct {
	Type models.RecipientType
	ID   uint
}

func brandActor(id uint) *actor   { return &actor{Type: models.RecipientTypeBrand, ID: id} }
func creatorActor(id uint) *actor { return &actor{Type: models.RecipientTypeCreator, ID: id} }

func getBrand(ctx context.Context, repo repository.BrandRepository, brandID uint) (*models.Brand, error) {
	brand, err := repo.ByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}
	if !brand.Active() {
		return nil, ErrBrandInactive
	}
	return brand, nil
}

func getCreator(ctx context.Context, repo repository.CreatorRepository, creatorID uint) (*models.Creator, error) {
	creator, err := repo.ByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	if !creator.Active() {
		return nil, ErrCreatorInactive
	}
	return creator, nil
}

// getCampaign loads a campaign by uuid without an ownership check
func getCampaign(ctx context.Context, repo repository.CampaignRepository, campaignUUID string) (*models.Campaign, error) {
	if campaignUUID == "" {
		return nil, ErrCampaignUUIDRequired
	}
	if _, err := utils.ParseUUID(campaignUUID); err != nil {
		return nil, ErrCampaignNotFound
	}
	campaign, err := repo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// getOwnedCampaign loads a campaign and checks that brandID owns it
func getOwnedCampaign(ctx context.Context, repo repository.CampaignRepository, campaignUUID string, brandID uint) (*models.Campaign, error) {
	campaign, err := getCampaign(ctx, repo, campaignUUID)
	if err != nil {
		return nil, err
	}
	if !campaign.IsOwnedBy(brandID) {
		return nil, ErrCampaignAccessDenied
	}
	return campaign, nil
}

// findCampaign loads a campaign by id without inspecting its progress
func findCampaign(ctx context.Context, repo repository.CampaignRepository, id uint) (*models.Campaign, error) {
	campaign, err := repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// reloadCampaign re-reads a campaign by id inside a transaction.
// A stored progress document that fails validation is returned as an error.
func reloadCampaign(ctx context.Context, repo repository.CampaignRepository, id uint) (*models.Campaign, error) {
	campaign, err := findCampaign(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if err := campaign.Progress.Validate(); err != nil {
		return nil, err
	}
	return campaign, nil
}

// saveProgress persists a new progress value under the optimistic version check
func saveProgress(ctx context.Context, repo repository.CampaignRepository, campaign *models.Campaign, progress models.CampaignProgress) error {
	expected := campaign.Version
	campaign.Progress = progress
	if err := repo.UpdateProgress(ctx, campaign, expected); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return ErrConcurrentModification
		}
		return err
	}
	return nil
}

func createAuditLog(ctx context.Context, repo repository.AuditLogRepository, who *actor, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}
	if metadata != nil && len(metadata.Additional) > 0 {
		if extra, err := json.Marshal(metadata.Additional); err == nil {
			audit.Metadata = extra
		}
	}
	if who != nil {
		audit.ActorType = utils.ToPtr(who.Type)
		audit.ActorID = utils.ToPtr(who.ID)
	}

	// Extract request ID from context if available
	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
		audit.RequestID = &requestID
	} else if metadata != nil && metadata.RequestID != "" {
		audit.RequestID = &metadata.RequestID
	}

	if err := repo.Save(ctx, audit); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
		return err
	}
	return nil
}

// reportStatisticsCorruption logs the raw counts and keeps an audit trail.
// The numbers never leave the server.
func reportStatisticsCorruption(ctx context.Context, repo repository.AuditLogRepository, campaign *models.Campaign, err error) {
	var sce *models.StatisticsCorruptionError
	if !errors.As(err, &sce) {
		return
	}
	statisticsCorruptionTotal.Inc()
	log.Printf("INTERNAL_CONSISTENCY campaign=%s outcome=%s before=%+v after=%+v", campaign.UUID, sce.Outcome, sce.Before, sce.After)

	meta, _ := json.Marshal(map[string]any{"outcome": sce.Outcome, "before": sce.Before, "after": sce.After})
	audit := &models.AuditLog{
		Action:      models.AuditActionStatisticsCorruption,
		Description: utils.ToPtr(fmt.Sprintf("Invitation statistics of campaign %s failed to reconcile", campaign.UUID)),
		Success:     utils.ToPtr(false),
		Metadata:    meta,
	}
	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
		audit.RequestID = &requestID
	}
	if saveErr := repo.Save(ctx, audit); saveErr != nil {
		log.Printf("audit: failed to record statistics corruption: %v", saveErr)
	}
}

// consistencyFailure reports a corrupt progress document and returns an opaque
// business error for it. Any other error yields nil.
func consistencyFailure(ctx context.Context, repo repository.AuditLogRepository, campaign *models.Campaign, err error) error {
	switch {
	case IsStatisticsCorruption(err):
		reportStatisticsCorruption(ctx, repo, campaign, err)
	case IsMalformedProgress(err):
		log.Printf("INTERNAL_CONSISTENCY campaign=%s progress: %v", campaign.UUID, err)
	default:
		return nil
	}
	return NewBusinessError("INTERNAL_CONSISTENCY_ERROR", "Internal consistency error", err)
}

// newNotification builds an unpublished outbox row
func newNotification(kind models.NotificationType, recipientType models.RecipientType, recipientID uint, campaignID *uint, payload any) (*models.Notification, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &models.Notification{
		Type:          kind,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		CampaignID:    campaignID,
		Payload:       body,
	}, nil
}

// notifyInTx writes the notification in the caller's transaction
func notifyInTx(ctx context.Context, repo repository.NotificationRepository, kind models.NotificationType, recipientType models.RecipientType, recipientID uint, campaignID *uint, payload any) error {
	n, err := newNotification(kind, recipientType, recipientID, campaignID, payload)
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, n); err != nil {
		return fmt.Errorf("failed to save %s notification: %w", kind, err)
	}
	return nil
}

// pageParams validates explicit paging input; zero values take defaults
func pageParams(page, limit int) (int, int, int, error) {
	if page < 0 {
		return 0, 0, 0, ErrInvalidPage
	}
	if limit < 0 || limit > utils.MaxPageSize {
		return 0, 0, 0, ErrInvalidPageSize
	}
	p, l, offset := utils.ClampPage(page, limit, utils.DefaultPageSize, utils.MaxPageSize)
	return p, l, offset, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ToRequirementsDTO converts stored requirements into their API shape
func ToRequirementsDTO(r models.CampaignRequirements) dto.RequirementsDTO {
	return dto.RequirementsDTO{
		Category:        r.Category,
		MinSubscribers:  r.MinSubscribers,
		MinAverageViews: r.MinAverageViews,
		Platforms:       r.Platforms,
		Location:        r.Location,
	}
}

// FromRequirementsDTO converts API input into normalized requirements
func FromRequirementsDTO(d dto.RequirementsDTO) models.CampaignRequirements {
	return models.CampaignRequirements{
		Category:        d.Category,
		MinSubscribers:  d.MinSubscribers,
		MinAverageViews: d.MinAverageViews,
		Platforms:       d.Platforms,
		Location:        d.Location,
	}.Normalized()
}

func ToStatisticsDTO(s models.InvitationStatistics) dto.StatisticsDTO {
	return dto.StatisticsDTO{
		TotalInvitations:    s.TotalInvitations,
		AcceptedInvitations: s.AcceptedInvitations,
		PendingInvitations:  s.PendingInvitations,
		RejectedInvitations: s.RejectedInvitations,
	}
}

// ToProgressDTO reports every stage with its effective status
func ToProgressDTO(p models.CampaignProgress) dto.ProgressDTO {
	stages := make([]dto.StageDTO, 0, len(models.StageOrder))
	for _, st := range p.EffectiveStages() {
		stages = append(stages, dto.StageDTO{Name: st.Name.String(), Status: string(st.Status)})
	}
	return dto.ProgressDTO{
		CurrentStage: p.CurrentStage().String(),
		Stages:       stages,
		Statistics:   ToStatisticsDTO(p.Statistics),
	}
}

func ToCampaignDTO(c *models.Campaign) dto.CampaignDTO {
	return dto.CampaignDTO{
		UUID:         c.UUID.String(),
		Title:        c.Title,
		Description:  c.Description,
		Budget:       c.Budget,
		Requirements: ToRequirementsDTO(c.Requirements),
		CurrentStage: c.Progress.CurrentStage().String(),
		Progress:     ToProgressDTO(c.Progress),
		Version:      c.Version,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    utils.FormatRFC3339Ptr(c.UpdatedAt),
	}
}

func ToInvitationDTO(inv *models.Invitation) dto.InvitationDTO {
	out := dto.InvitationDTO{
		UUID:         inv.UUID.String(),
		Message:      inv.Message,
		Compensation: inv.Compensation,
		Status:       inv.Status.String(),
		RespondedAt:  utils.FormatRFC3339Ptr(inv.RespondedAt),
		CreatedAt:    formatTime(inv.CreatedAt),
	}
	if inv.Campaign != nil {
		out.CampaignUUID = inv.Campaign.UUID.String()
	}
	if inv.Creator != nil {
		out.CreatorID = inv.Creator.UUID.String()
		out.CreatorName = inv.Creator.Name
	}
	return out
}

func ToSubmissionDTO(s *models.ContentSubmission, campaign *models.Campaign, creator *models.Creator) dto.SubmissionDTO {
	out := dto.SubmissionDTO{
		UUID:          s.UUID.String(),
		ContentURL:    s.ContentURL,
		Caption:       s.Caption,
		Status:        string(s.Status),
		ReviewComment: s.ReviewComment,
		ReviewedAt:    utils.FormatRFC3339Ptr(s.ReviewedAt),
		CreatedAt:     formatTime(s.CreatedAt),
	}
	if campaign != nil {
		out.CampaignUUID = campaign.UUID.String()
	}
	if creator != nil {
		out.CreatorID = creator.UUID.String()
	}
	return out
}

func ToNotificationDTO(n *models.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		UUID:      n.UUID.String(),
		Type:      string(n.Type),
		Payload:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
	}
}
