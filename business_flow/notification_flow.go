package businessflow

import (
	"context"

	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
)

// NotificationFlow exposes the notification inbox of brands and creators
type NotificationFlow interface {
	ListNotifications(ctx context.Context, req *dto.ListNotificationsRequest) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, req *dto.MarkNotificationReadRequest) (*dto.MarkNotificationReadResponse, error)
}

// NotificationFlowImpl implements the notification business flow
type NotificationFlowImpl struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationFlow creates a new notification flow instance
func NewNotificationFlow(notificationRepo repository.NotificationRepository) NotificationFlow {
	return &NotificationFlowImpl{notificationRepo: notificationRepo}
}

func parseRecipientType(raw string) (models.RecipientType, error) {
	switch rt := models.RecipientType(raw); rt {
	case models.RecipientTypeBrand, models.RecipientTypeCreator:
		return rt, nil
	default:
		return "", ErrInvalidActorRole
	}
}

// ListNotifications lists the caller's notifications newest first
func (s *NotificationFlowImpl) ListNotifications(ctx context.Context, req *dto.ListNotificationsRequest) (*dto.ListNotificationsResponse, error) {
	recipientType, err := parseRecipientType(req.RecipientType)
	if err != nil {
		return nil, NewBusinessError("INVALID_RECIPIENT", "Invalid recipient", err)
	}
	page, limit, offset, err := pageParams(req.Page, req.Limit)
	if err != nil {
		return nil, NewBusinessError("INVALID_PAGINATION", "Invalid pagination parameters", err)
	}

	filter := models.NotificationFilter{RecipientType: &recipientType, RecipientID: &req.RecipientID}
	unread := false
	unreadFilter := filter
	unreadFilter.IsRead = &unread
	if req.UnreadOnly {
		filter = unreadFilter
	}

	total, err := s.notificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTIFICATIONS_FAILED", "Failed to count notifications", err)
	}
	unreadCount, err := s.notificationRepo.Count(ctx, unreadFilter)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTIFICATIONS_FAILED", "Failed to count unread notifications", err)
	}
	rows, err := s.notificationRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_NOTIFICATIONS_FAILED", "Failed to list notifications", err)
	}

	items := make([]dto.NotificationDTO, 0, len(rows))
	for _, n := range rows {
		items = append(items, ToNotificationDTO(n))
	}
	return &dto.ListNotificationsResponse{
		Items:       items,
		UnreadCount: unreadCount,
		Pagination:  dto.NewPaginationInfo(total, page, limit),
	}, nil
}

// MarkRead flags one of the caller's notifications as read
func (s *NotificationFlowImpl) MarkRead(ctx context.Context, req *dto.MarkNotificationReadRequest) (*dto.MarkNotificationReadResponse, error) {
	recipientType, err := parseRecipientType(req.RecipientType)
	if err != nil {
		return nil, NewBusinessError("INVALID_RECIPIENT", "Invalid recipient", err)
	}

	n, err := s.notificationRepo.ByUUID(ctx, req.NotificationUUID)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_LOOKUP_FAILED", "Failed to lookup notification", err)
	}
	if n == nil {
		return nil, NewBusinessError("NOTIFICATION_LOOKUP_FAILED", "Failed to lookup notification", ErrNotificationNotFound)
	}
	// someone else's notification is reported as missing
	if n.RecipientType != recipientType || n.RecipientID != req.RecipientID {
		return nil, NewBusinessError("NOTIFICATION_LOOKUP_FAILED", "Failed to lookup notification", ErrNotificationNotFound)
	}

	if !n.IsRead {
		if err := s.notificationRepo.MarkRead(ctx, n.ID); err != nil {
			return nil, NewBusinessError("NOTIFICATION_UPDATE_FAILED", "Failed to mark notification read", err)
		}
	}
	return &dto.MarkNotificationReadResponse{Message: "Notification marked as read"}, nil
}
