package leave

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

const (
	ActionApply   = "apply"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ========================================
// LEAVE REQUEST DTOs
// ========================================

// LeaveActionRequest is the body of POST /leaves.
type LeaveActionRequest struct {
	Action    string `json:"action"`
	UserID    string `json:"user_id"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
	LeaveID   string `json:"leave_id"`
	AdminID   string `json:"admin_id"` // set from the caller's token by the handler
}

func (r *LeaveActionRequest) Validate() error {
	var errs validator.ValidationErrors

	switch r.Action {
	case ActionApply:
		if validator.IsEmpty(r.UserID) {
			errs.Add("user_id", "user_id is required")
		}
		if validator.IsEmpty(r.LeaveType) {
			errs.Add("leave_type", "leave_type is required")
		}
		if validator.IsEmpty(r.Reason) {
			errs.Add("reason", "reason is required")
		}
		start, startOK := validator.IsValidDate(r.StartDate)
		if !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		end, endOK := validator.IsValidDate(r.EndDate)
		if !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		if startOK && endOK && end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		}
	case ActionApprove:
		if validator.IsEmpty(r.LeaveID) {
			errs.Add("leave_id", "leave_id is required")
		}
		if validator.IsEmpty(r.AdminID) {
			errs.Add("admin_id", "admin_id is required")
		}
	case ActionReject:
		if validator.IsEmpty(r.LeaveID) {
			errs.Add("leave_id", "leave_id is required")
		}
		if validator.IsEmpty(r.Reason) {
			errs.Add("reason", "reason is required")
		}
	default:
		errs.Add("action", "action must be one of: apply, approve, reject")
	}

	return errs.Err()
}

// ToApply converts a validated apply action.
func (r *LeaveActionRequest) ToApply() ApplyLeaveRequest {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return ApplyLeaveRequest{
		UserID:    r.UserID,
		LeaveType: r.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    r.Reason,
	}
}

type ApplyLeaveRequest struct {
	UserID    string
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

type ApproveLeaveRequest struct {
	LeaveID    string
	ApproverID string
}

type RejectLeaveRequest struct {
	LeaveID string
	Reason  string
}

type LeaveRequestFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	LeaveType *string `json:"leave_type,omitempty"`
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Status != nil && !LeaveRequestStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: pending, approved, rejected, cancelled")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovedDate    *string `json:"approved_date"`
	RejectionReason *string `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		LeaveType:       r.LeaveType,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		TotalDays:       r.TotalDays,
		Status:          string(r.Status),
		Reason:          r.Reason,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedDate != nil {
		s := r.ApprovedDate.Format(time.RFC3339)
		resp.ApprovedDate = &s
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

// ========================================
// LEAVE BALANCE DTOs
// ========================================

type SetBalanceRequest struct {
	UserID       string `json:"user_id"`
	LeaveType    string `json:"leave_type"`
	Year         int    `json:"year"`
	TotalAllowed int    `json:"total_allowed"`
	Used         int    `json:"used"`
	CarryForward int    `json:"carry_forward"`
}

func (r *SetBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	}
	if !validator.IsValidPeriod(1, r.Year) {
		errs.Add("year", "year is invalid")
	}
	if r.TotalAllowed < 0 {
		errs.Add("total_allowed", "total_allowed must not be negative")
	}
	if r.Used < 0 {
		errs.Add("used", "used must not be negative")
	}
	if r.CarryForward < 0 {
		errs.Add("carry_forward", "carry_forward must not be negative")
	}

	return errs.Err()
}

type LeaveBalanceResponse struct {
	UserID       string `json:"user_id"`
	LeaveType    string `json:"leave_type"`
	Year         int    `json:"year"`
	TotalAllowed int    `json:"total_allowed"`
	Used         int    `json:"used"`
	Remaining    int    `json:"remaining"`
	CarryForward int    `json:"carry_forward"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		UserID:       b.UserID,
		LeaveType:    b.LeaveType,
		Year:         b.Year,
		TotalAllowed: b.TotalAllowed,
		Used:         b.Used,
		Remaining:    b.Remaining,
		CarryForward: b.CarryForward,
	}
}

type InitializeBalanceResponse struct {
	UserID  string                 `json:"user_id"`
	Year    int                    `json:"year"`
	Skipped bool                   `json:"skipped"`
	Created []LeaveBalanceResponse `json:"created"`
}

type RolloverResponse struct {
	FromYear int `json:"from_year"`
	ToYear   int `json:"to_year"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
}

// ========================================
// LEAVE POLICY DTOs
// ========================================

type CreateLeavePolicyRequest struct {
	LeaveType        string `json:"leave_type"`
	Name             string `json:"name"`
	DaysPerYear      int    `json:"days_per_year"`
	CarryForwardCap  int    `json:"carry_forward_cap"`
	RequiresApproval *bool  `json:"requires_approval"`
	IsActive         *bool  `json:"is_active"`
}

func (r *CreateLeavePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if r.DaysPerYear < 0 {
		errs.Add("days_per_year", "days_per_year must not be negative")
	}
	if r.CarryForwardCap < 0 {
		errs.Add("carry_forward_cap", "carry_forward_cap must not be negative")
	}

	return errs.Err()
}

type UpdateLeavePolicyRequest struct {
	ID               string  `json:"-"`
	Name             *string `json:"name"`
	DaysPerYear      *int    `json:"days_per_year"`
	CarryForwardCap  *int    `json:"carry_forward_cap"`
	RequiresApproval *bool   `json:"requires_approval"`
	IsActive         *bool   `json:"is_active"`
}

func (r *UpdateLeavePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.DaysPerYear != nil && *r.DaysPerYear < 0 {
		errs.Add("days_per_year", "days_per_year must not be negative")
	}
	if r.CarryForwardCap != nil && *r.CarryForwardCap < 0 {
		errs.Add("carry_forward_cap", "carry_forward_cap must not be negative")
	}

	return errs.Err()
}

type LeavePolicyResponse struct {
	ID               string `json:"id"`
	LeaveType        string `json:"leave_type"`
	Name             string `json:"name"`
	DaysPerYear      int    `json:"days_per_year"`
	CarryForwardCap  int    `json:"carry_forward_cap"`
	RequiresApproval bool   `json:"requires_approval"`
	IsActive         bool   `json:"is_active"`
}

func NewLeavePolicyResponse(p LeavePolicy) LeavePolicyResponse {
	return LeavePolicyResponse{
		ID:               p.ID,
		LeaveType:        p.LeaveType,
		Name:             p.Name,
		DaysPerYear:      p.DaysPerYear,
		CarryForwardCap:  p.CarryForwardCap,
		RequiresApproval: p.RequiresApproval,
		IsActive:         p.IsActive,
	}
}
