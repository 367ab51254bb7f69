package cron

import (
	"context"
	"log/slog"
)

// OverdueMarker is implemented by the salary service.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

type SalaryJobs struct {
	salaries OverdueMarker
}

func NewSalaryJobs(salaries OverdueMarker) *SalaryJobs {
	return &SalaryJobs{salaries: salaries}
}

// MarkOverdueSalaries flips pending salaries past their payment window to overdue.
func (j *SalaryJobs) MarkOverdueSalaries(ctx context.Context) error {
	count, err := j.salaries.MarkOverdue(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Salaries marked overdue", "count", count)
	}
	return nil
}
