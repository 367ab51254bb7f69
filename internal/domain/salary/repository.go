package salary

import (
	"context"
	"time"
)

type SalaryConfigRepository interface {
	Get(ctx context.Context, userID string) (SalaryConfig, error)
	Upsert(ctx context.Context, config SalaryConfig) (SalaryConfig, error)
}

type SalaryRepository interface {
	// Create fails with ErrSalaryAlreadyExists when the period is taken.
	Create(ctx context.Context, salary Salary) (Salary, error)

	// Upsert overwrites the (user, month, year) row in place, keeping its ID,
	// payment status and payment date.
	Upsert(ctx context.Context, salary Salary) (Salary, error)

	GetByID(ctx context.Context, id string) (Salary, error)

	// GetByUserPeriod returns nil when no salary exists for the period.
	GetByUserPeriod(ctx context.Context, userID string, month, year int) (*Salary, error)

	List(ctx context.Context, filter SalaryFilter) ([]Salary, int64, error)
	ListByPeriod(ctx context.Context, month, year int) ([]Salary, error)

	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus, paymentDate *time.Time) (Salary, error)

	// MarkOverdue flips pending salaries whose period ended before cutoff and returns them.
	MarkOverdue(ctx context.Context, cutoff time.Time) ([]Salary, error)

	Summary(ctx context.Context, month, year int) (PayrollSummary, error)
}
