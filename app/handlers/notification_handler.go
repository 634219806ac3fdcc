package handlers

import (
	"github.com/amirphl/collab-market/app/dto"
	"github.com/amirphl/collab-market/app/middleware"
	businessflow "github.com/amirphl/collab-market/business_flow"
	"github.com/gofiber/fiber/v3"
)

// NotificationHandler serves the inbox of brands and creators
type NotificationHandler struct {
	notificationFlow businessflow.NotificationFlow
}

func NewNotificationHandler(notificationFlow businessflow.NotificationFlow) *NotificationHandler {
	return &NotificationHandler{notificationFlow: notificationFlow}
}

// ListNotifications lists the caller's notifications newest first
// @Summary List Notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "Only unread notifications"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} dto.APIResponse{data=dto.ListNotificationsResponse}
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c fiber.Ctx) error {
	role, actorID, ok := middleware.ActorFromLocals(c)
	if !ok {
		return missingActor(c)
	}

	page, limit, err := pageQuery(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/notifications")
	defer cancel()

	result, err := h.notificationFlow.ListNotifications(ctx, &dto.ListNotificationsRequest{
		RecipientType: string(role),
		RecipientID:   actorID,
		UnreadOnly:    c.Query("unread_only") == "true",
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return handleFlowError(c, err, "Notification listing")
	}

	return SuccessResponse(c, fiber.StatusOK, "Notifications retrieved successfully", result)
}

// MarkRead flags one notification as read
// @Summary Mark Notification Read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Notification UUID"
// @Success 200 {object} dto.APIResponse{data=dto.MarkNotificationReadResponse}
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /api/v1/notifications/{uuid}/read [post]
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	role, actorID, ok := middleware.ActorFromLocals(c)
	if !ok {
		return missingActor(c)
	}
	notificationUUID := c.Params("uuid")

	ctx, cancel := createRequestContext(c, "/api/v1/notifications/"+notificationUUID+"/read")
	defer cancel()

	result, err := h.notificationFlow.MarkRead(ctx, &dto.MarkNotificationReadRequest{
		RecipientType:    string(role),
		RecipientID:      actorID,
		NotificationUUID: notificationUUID,
	})
	if err != nil {
		return handleFlowError(c, err, "Notification update")
	}

	return SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
