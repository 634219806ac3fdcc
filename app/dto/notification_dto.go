package dto

import "encoding/json"

// ListNotificationsRequest lists the caller's notifications
type ListNotificationsRequest struct {
	RecipientType string `json:"-"`
	RecipientID   uint   `json:"-"`
	UnreadOnly    bool   `json:"unread_only"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

// NotificationDTO represents a notification in responses
type NotificationDTO struct {
	UUID      string          `json:"uuid"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt string          `json:"created_at"`
}

// ListNotificationsResponse is a page of notifications
type ListNotificationsResponse struct {
	Items       []NotificationDTO `json:"items"`
	UnreadCount int64             `json:"unread_count"`
	Pagination  PaginationInfo    `json:"pagination"`
}

// MarkNotificationReadRequest flags one notification as read
type MarkNotificationReadRequest struct {
	RecipientType    string `json:"-"`
	RecipientID      uint   `json:"-"`
	NotificationUUID string `json:"-"`
}

// MarkNotificationReadResponse represents the response to a read receipt
type MarkNotificationReadResponse struct {
	Message string `json:"message"`
}
