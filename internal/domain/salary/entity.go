package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

type AllowanceType string

const (
	AllowanceTypeFixed      AllowanceType = "fixed"
	AllowanceTypePercentage AllowanceType = "percentage"
)

// Allowance amounts are summed as-is whatever their Type.
type Allowance struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Type   AllowanceType   `json:"type"`
}

type Deduction struct {
	ID     string          `json:"id"`
	Reason string          `json:"reason"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// SalaryConfig is the per-user template salaries are generated from.
type SalaryConfig struct {
	UserID              string
	BaseSalary          decimal.Decimal
	Allowances          []Allowance
	TotalLeavesAllowed  int
	WorkingDaysPerMonth int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Salary is the monthly record keyed by (UserID, Month, Year).
type Salary struct {
	ID              string
	UserID          string
	Month           int
	Year            int
	BaseSalary      decimal.Decimal
	Allowances      []Allowance
	Deductions      []Deduction
	PerDaySalary    decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	PaymentStatus   PaymentStatus
	PaymentDate     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PayrollSummary aggregates the salaries of one period.
type PayrollSummary struct {
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Records         int             `json:"records"`
	Pending         int             `json:"pending"`
	Paid            int             `json:"paid"`
	Overdue         int             `json:"overdue"`
	TotalNetSalary  decimal.Decimal `json:"total_net_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
}
