package notification

import (
	"time"
)

type NotificationType string

const (
	TypeLeaveRequest    NotificationType = "leave_request"
	TypeLeaveApproved   NotificationType = "leave_approved"
	TypeLeaveRejected   NotificationType = "leave_rejected"
	TypeSalaryGenerated NotificationType = "salary_generated"
	TypeSalaryPaid      NotificationType = "salary_paid"
	TypeSalaryOverdue   NotificationType = "salary_overdue"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeSalaryGenerated,
		TypeSalaryPaid,
		TypeSalaryOverdue,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference turns push delivery of one notification type on or off for a user.
type NotificationPreference struct {
	UserID           string
	NotificationType NotificationType
	PushEnabled      bool
	UpdatedAt        time.Time
}
