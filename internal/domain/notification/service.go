package notification

import (
	"context"
)

// Notifier is the write side used by the leave and salary services.
type Notifier interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
}

type Service interface {
	Notifier

	GetNotifications(ctx context.Context, userID string, filter ListFilter) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// Prune drops read notifications older than the retention window.
	Prune(ctx context.Context) (int64, error)

	// Stop flushes queued notifications and stops the workers.
	Stop()
}
