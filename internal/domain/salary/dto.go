package salary

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// SalaryRunRequest drives Generate and Recalculate. Fields left nil fall back
// to the user's SalaryConfig.
type SalaryRunRequest struct {
	UserID              string           `json:"user_id"`
	Month               int              `json:"month"`
	Year                int              `json:"year"`
	BaseSalary          *decimal.Decimal `json:"base_salary,omitempty"`
	Allowances          []Allowance      `json:"allowances,omitempty"`
	Deductions          []Deduction      `json:"deductions,omitempty"`
	WorkingDaysPerMonth *int             `json:"working_days_per_month,omitempty"`
}

func (r *SalaryRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs.Add("period", "month must be 1-12 and year must be valid")
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must not be negative")
	}
	if r.WorkingDaysPerMonth != nil && *r.WorkingDaysPerMonth < 1 {
		errs.Add("working_days_per_month", "working_days_per_month must be at least 1")
	}
	validateAllowances(&errs, r.Allowances)
	for _, d := range r.Deductions {
		if d.Amount.IsNegative() {
			errs.Add("deductions", "deduction amounts must not be negative")
			break
		}
	}

	return errs.Err()
}

type UpdatePaymentStatusRequest struct {
	ID          string  `json:"-"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date,omitempty"` // YYYY-MM-DD
}

func (r *UpdatePaymentStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if !PaymentStatus(r.Status).IsValid() {
		errs.Add("status", "status must be one of: pending, paid, overdue")
	}
	if r.PaymentDate != nil && *r.PaymentDate != "" {
		if _, valid := validator.IsValidDate(*r.PaymentDate); !valid {
			errs.Add("payment_date", "payment_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type UpsertSalaryConfigRequest struct {
	UserID              string          `json:"-"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	Allowances          []Allowance     `json:"allowances"`
	TotalLeavesAllowed  int             `json:"total_leaves_allowed"`
	WorkingDaysPerMonth *int            `json:"working_days_per_month,omitempty"`
}

func (r *UpsertSalaryConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}
	if r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must not be negative")
	}
	if r.TotalLeavesAllowed < 0 {
		errs.Add("total_leaves_allowed", "total_leaves_allowed must not be negative")
	}
	if r.WorkingDaysPerMonth != nil && *r.WorkingDaysPerMonth < 1 {
		errs.Add("working_days_per_month", "working_days_per_month must be at least 1")
	}
	validateAllowances(&errs, r.Allowances)

	return errs.Err()
}

func validateAllowances(errs *validator.ValidationErrors, allowances []Allowance) {
	for _, a := range allowances {
		if validator.IsEmpty(a.Name) {
			errs.Add("allowances", "allowance name is required")
			return
		}
		if a.Type != "" && a.Type != AllowanceTypeFixed && a.Type != AllowanceTypePercentage {
			errs.Add("allowances", "allowance type must be fixed or percentage")
			return
		}
		if a.Amount.IsNegative() {
			errs.Add("allowances", "allowance amounts must not be negative")
			return
		}
	}
}

type SalaryFilter struct {
	UserID        *string `json:"user_id,omitempty"`
	Month         *int    `json:"month,omitempty"`
	Year          *int    `json:"year,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *SalaryFilter) Validate() error {
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
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.PaymentStatus != nil && !PaymentStatus(*f.PaymentStatus).IsValid() {
		errs.Add("payment_status", "payment_status must be one of: pending, paid, overdue")
	}

	return errs.Err()
}

type SalaryResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	Allowances      []Allowance     `json:"allowances"`
	Deductions      []Deduction     `json:"deductions"`
	PerDaySalary    decimal.Decimal `json:"per_day_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentDate     *string         `json:"payment_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewSalaryResponse(s Salary) SalaryResponse {
	resp := SalaryResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		Month:           s.Month,
		Year:            s.Year,
		BaseSalary:      s.BaseSalary,
		Allowances:      s.Allowances,
		Deductions:      s.Deductions,
		PerDaySalary:    s.PerDaySalary,
		TotalAllowances: s.TotalAllowances,
		TotalDeductions: s.TotalDeductions,
		NetSalary:       s.NetSalary,
		PaymentStatus:   s.PaymentStatus,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if resp.Allowances == nil {
		resp.Allowances = []Allowance{}
	}
	if resp.Deductions == nil {
		resp.Deductions = []Deduction{}
	}
	if s.PaymentDate != nil {
		date := s.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &date
	}
	return resp
}

type ListSalaryResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Salaries   []SalaryResponse `json:"salaries"`
}

type SalaryConfigResponse struct {
	UserID              string          `json:"user_id"`
	BaseSalary          decimal.Decimal `json:"base_salary"`
	Allowances          []Allowance     `json:"allowances"`
	TotalLeavesAllowed  int             `json:"total_leaves_allowed"`
	WorkingDaysPerMonth int             `json:"working_days_per_month"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func NewSalaryConfigResponse(c SalaryConfig) SalaryConfigResponse {
	resp := SalaryConfigResponse{
		UserID:              c.UserID,
		BaseSalary:          c.BaseSalary,
		Allowances:          c.Allowances,
		TotalLeavesAllowed:  c.TotalLeavesAllowed,
		WorkingDaysPerMonth: c.WorkingDaysPerMonth,
		UpdatedAt:           c.UpdatedAt,
	}
	if resp.Allowances == nil {
		resp.Allowances = []Allowance{}
	}
	return resp
}
