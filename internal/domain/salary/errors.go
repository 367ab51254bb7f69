package salary

import "errors"

var (
	ErrSalaryNotFound        = errors.New("salary record not found")
	ErrSalaryAlreadyExists   = errors.New("salary already generated for this period")
	ErrSalaryConfigNotFound  = errors.New("salary configuration not found")
	ErrInvalidWorkingDays    = errors.New("working days per month must be at least 1")
	ErrInvalidPaymentStatus  = errors.New("invalid payment status")
	ErrInvalidPeriod         = errors.New("invalid salary period")
	ErrSalaryAccessForbidden = errors.New("salary belongs to another user")
)
