package cron

import "context"

// NotificationPruner is implemented by the notification service.
type NotificationPruner interface {
	Prune(ctx context.Context) (int64, error)
}

type NotificationJobs struct {
	notifications NotificationPruner
}

func NewNotificationJobs(notifications NotificationPruner) *NotificationJobs {
	return &NotificationJobs{notifications: notifications}
}

// PruneReadNotifications drops read notifications past the retention window.
func (j *NotificationJobs) PruneReadNotifications(ctx context.Context) error {
	_, err := j.notifications.Prune(ctx)
	return err
}
