package leave

import (
	"time"
)

// LeavePolicy is the admin-configured rule for one leave type.
type LeavePolicy struct {
	ID               string
	LeaveType        string
	Name             string
	DaysPerYear      int
	CarryForwardCap  int
	RequiresApproval bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LeaveBalance is keyed by (UserID, LeaveType, Year).
// Remaining is always TotalAllowed + CarryForward - Used.
type LeaveBalance struct {
	ID           string
	UserID       string
	LeaveType    string
	Year         int
	TotalAllowed int
	Used         int
	Remaining    int
	CarryForward int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recompute restores the Remaining invariant after TotalAllowed, Used or CarryForward changed.
func (b *LeaveBalance) Recompute() {
	b.Remaining = b.TotalAllowed + b.CarryForward - b.Used
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID              string
	UserID          string
	LeaveType       string
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       int
	Status          LeaveRequestStatus
	Reason          string
	ApprovedBy      *string
	ApprovedDate    *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Period is a calendar month.
type Period struct {
	Month int
	Year  int
}
