package leave

import (
	"context"
)

// BalanceService tracks per user, per type, per year leave balances.
type BalanceService interface {
	// GetBalance returns nil when the balance was never initialized.
	GetBalance(ctx context.Context, userID, leaveType string, year int) (*LeaveBalanceResponse, error)
	ListBalances(ctx context.Context, userID string, year int) ([]LeaveBalanceResponse, error)
	SetBalance(ctx context.Context, req SetBalanceRequest) (LeaveBalanceResponse, error)
	InitializeForUser(ctx context.Context, userID string) (InitializeBalanceResponse, error)
	Rollover(ctx context.Context, fromYear int) (RolloverResponse, error)
}

type RequestService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, req ApproveLeaveRequest) (LeaveRequestResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
}

type PolicyService interface {
	CreatePolicy(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error)
	UpdatePolicy(ctx context.Context, req UpdateLeavePolicyRequest) (LeavePolicyResponse, error)
	GetPolicy(ctx context.Context, id string) (LeavePolicyResponse, error)
	ListPolicies(ctx context.Context, activeOnly bool) ([]LeavePolicyResponse, error)
	DeletePolicy(ctx context.Context, id string) error
}

// SalaryRecalculator refreshes the salary of a month touched by an approved
// leave. It reports false when the user has no salary configuration.
type SalaryRecalculator interface {
	RecalculateIfConfigured(ctx context.Context, userID string, month, year int) (bool, error)
}
