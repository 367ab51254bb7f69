package salary

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
)

type SalaryService interface {
	// Generate creates the salary of a period once; a second call fails with ErrSalaryAlreadyExists.
	Generate(ctx context.Context, req SalaryRunRequest) (SalaryResponse, error)

	// Recalculate overwrites the salary of a period, creating it when missing.
	Recalculate(ctx context.Context, req SalaryRunRequest) (SalaryResponse, error)

	RecalculateIfConfigured(ctx context.Context, userID string, month, year int) (bool, error)

	UpdatePaymentStatus(ctx context.Context, req UpdatePaymentStatusRequest) (SalaryResponse, error)
	GetSalary(ctx context.Context, id string) (SalaryResponse, error)
	ListSalaries(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)

	GetConfig(ctx context.Context, userID string) (SalaryConfigResponse, error)
	UpsertConfig(ctx context.Context, req UpsertSalaryConfigRequest) (SalaryConfigResponse, error)

	// MarkOverdue is run by the scheduler.
	MarkOverdue(ctx context.Context) (int, error)

	// Payslip renders a salary as PDF.
	Payslip(ctx context.Context, id string) ([]byte, error)

	// Export renders every salary of a period as an XLSX workbook.
	Export(ctx context.Context, month, year int) ([]byte, error)
}

// AttendanceSummarizer provides present days for absence deductions.
type AttendanceSummarizer interface {
	MonthlySummary(ctx context.Context, userID string, month, year int) (attendance.MonthlySummary, error)
}
