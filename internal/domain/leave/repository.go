package leave

import (
	"context"
	"time"
)

// LeavePolicyRepository - interface for leave_policies table
type LeavePolicyRepository interface {
	Create(ctx context.Context, policy LeavePolicy) (LeavePolicy, error)
	Update(ctx context.Context, policy LeavePolicy) (LeavePolicy, error)
	GetByID(ctx context.Context, id string) (LeavePolicy, error)
	GetByLeaveType(ctx context.Context, leaveType string) (LeavePolicy, error)
	List(ctx context.Context, activeOnly bool) ([]LeavePolicy, error)
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn so that repository calls made with the ctx it receives
// commit or roll back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LeaveBalanceRepository - interface for leave_balances table
type LeaveBalanceRepository interface {
	// Get returns nil when the balance was never initialized.
	Get(ctx context.Context, userID, leaveType string, year int) (*LeaveBalance, error)

	ListByUserAndYear(ctx context.Context, userID string, year int) ([]LeaveBalance, error)
	ListByYear(ctx context.Context, year int) ([]LeaveBalance, error)

	// Replace writes every field of balance, creating the row when missing.
	Replace(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)

	// CreateIfAbsent inserts balance unless the (user, type, year) row exists.
	CreateIfAbsent(ctx context.Context, balance LeaveBalance) (bool, error)

	// IncrementUsed adds days to used in a single statement. A missing row is
	// created with totalAllowed and used = days.
	IncrementUsed(ctx context.Context, userID, leaveType string, year, days, totalAllowed int) (LeaveBalance, error)
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	CountByStatus(ctx context.Context, status LeaveRequestStatus) (int64, error)

	// Approve and Reject only touch pending requests and return
	// ErrLeaveRequestAlreadyProcessed otherwise.
	Approve(ctx context.Context, id, approverID string, totalDays int, at time.Time) (LeaveRequest, error)
	Reject(ctx context.Context, id, reason string, at time.Time) (LeaveRequest, error)
}
