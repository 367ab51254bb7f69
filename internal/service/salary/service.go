package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/payslip"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/postcommit"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type SalaryServiceImpl struct {
	salaries         salary.SalaryRepository
	configs          salary.SalaryConfigRepository
	attendance       salary.AttendanceSummarizer
	notifier         notification.Notifier
	publisher        realtime.Publisher
	overdueAfterDays int
	now              func() time.Time
}

func NewSalaryService(
	salaryRepo salary.SalaryRepository,
	configRepo salary.SalaryConfigRepository,
	attendance salary.AttendanceSummarizer,
	notifier notification.Notifier,
	publisher realtime.Publisher,
	overdueAfterDays int,
) salary.SalaryService {
	return &SalaryServiceImpl{
		salaries:         salaryRepo,
		configs:          configRepo,
		attendance:       attendance,
		notifier:         notifier,
		publisher:        publisher,
		overdueAfterDays: overdueAfterDays,
		now:              time.Now,
	}
}

// inputs are the resolved figures of one salary run.
type inputs struct {
	base        decimal.Decimal
	allowances  []salary.Allowance
	deductions  []salary.Deduction
	workingDays int
}

// resolve merges the request overrides over the stored config. A missing
// config is only an error when the request does not carry a base salary.
func (s *SalaryServiceImpl) resolve(ctx context.Context, req salary.SalaryRunRequest) (inputs, error) {
	in := inputs{workingDays: salary.DefaultWorkingDaysPerMonth}

	cfg, err := s.configs.Get(ctx, req.UserID)
	switch {
	case err == nil:
		in.base = cfg.BaseSalary
		in.allowances = cfg.Allowances
		if cfg.WorkingDaysPerMonth > 0 {
			in.workingDays = cfg.WorkingDaysPerMonth
		}
	case errors.Is(err, salary.ErrSalaryConfigNotFound):
		if req.BaseSalary == nil {
			return inputs{}, salary.ErrSalaryConfigNotFound
		}
	default:
		return inputs{}, fmt.Errorf("failed to get salary config: %w", err)
	}

	if req.BaseSalary != nil {
		in.base = *req.BaseSalary
	}
	if req.Allowances != nil {
		in.allowances = req.Allowances
	}
	if req.Deductions != nil {
		in.deductions = req.Deductions
	}
	if req.WorkingDaysPerMonth != nil {
		in.workingDays = *req.WorkingDaysPerMonth
	}
	return in, nil
}

// compute applies the absence deduction for the period and derives the totals.
func (s *SalaryServiceImpl) compute(ctx context.Context, userID string, month, year int, in inputs) (salary.Salary, error) {
	perDay, err := salary.Calculate(in.base, nil, nil, in.workingDays)
	if err != nil {
		return salary.Salary{}, err
	}

	summary, err := s.attendance.MonthlySummary(ctx, userID, month, year)
	if err != nil {
		return salary.Salary{}, fmt.Errorf("failed to summarize attendance: %w", err)
	}

	absence, absentDays := salary.AbsenceDeduction(perDay.PerDaySalary, summary.PresentDays, month, year)
	deductions := salary.ApplyAbsenceDeduction(in.deductions, absence)

	breakdown, err := salary.Calculate(in.base, in.allowances, deductions, in.workingDays)
	if err != nil {
		return salary.Salary{}, err
	}

	slog.Debug("salary computed",
		"user_id", userID, "month", month, "year", year,
		"present_days", summary.PresentDays, "absent_days", absentDays, "net", breakdown.NetSalary.String())

	return salary.Salary{
		UserID:          userID,
		Month:           month,
		Year:            year,
		BaseSalary:      in.base.Round(2),
		Allowances:      in.allowances,
		Deductions:      deductions,
		PerDaySalary:    breakdown.PerDaySalary,
		TotalAllowances: breakdown.TotalAllowances,
		TotalDeductions: breakdown.TotalDeductions,
		NetSalary:       breakdown.NetSalary,
		PaymentStatus:   salary.PaymentStatusPending,
	}, nil
}

// Generate implements salary.SalaryService.
func (s *SalaryServiceImpl) Generate(ctx context.Context, req salary.SalaryRunRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	existing, err := s.salaries.GetByUserPeriod(ctx, req.UserID, req.Month, req.Year)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to check existing salary: %w", err)
	}
	if existing != nil {
		return salary.SalaryResponse{}, salary.ErrSalaryAlreadyExists
	}

	in, err := s.resolve(ctx, req)
	if err != nil {
		return salary.SalaryResponse{}, err
	}
	record, err := s.compute(ctx, req.UserID, req.Month, req.Year, in)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	created, err := s.salaries.Create(ctx, record)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to create salary: %w", err)
	}

	slog.Info("salary generated", "salary_id", created.ID, "user_id", created.UserID, "month", created.Month, "year", created.Year)
	resp := salary.NewSalaryResponse(created)

	postcommit.Run(context.WithoutCancel(ctx),
		postcommit.Task{Name: "notify", Fn: func(ctx context.Context) error {
			return s.notify(ctx, created, notification.TypeSalaryGenerated,
				"Salary generated",
				fmt.Sprintf("Your salary for %s %d is ready: %s.", time.Month(created.Month), created.Year, created.NetSalary.StringFixed(2)))
		}},
		postcommit.Task{Name: "publish", Fn: func(ctx context.Context) error {
			s.publish("salary.generated", resp)
			return nil
		}},
	)

	return resp, nil
}

// Recalculate implements salary.SalaryService. Deductions added to the stored
// salary survive unless the request replaces them.
func (s *SalaryServiceImpl) Recalculate(ctx context.Context, req salary.SalaryRunRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	in, err := s.resolve(ctx, req)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	if req.Deductions == nil {
		existing, err := s.salaries.GetByUserPeriod(ctx, req.UserID, req.Month, req.Year)
		if err != nil {
			return salary.SalaryResponse{}, fmt.Errorf("failed to get existing salary: %w", err)
		}
		if existing != nil {
			in.deductions = existing.Deductions
		}
	}

	record, err := s.compute(ctx, req.UserID, req.Month, req.Year, in)
	if err != nil {
		return salary.SalaryResponse{}, err
	}

	saved, err := s.salaries.Upsert(ctx, record)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to save salary: %w", err)
	}

	slog.Info("salary recalculated", "salary_id", saved.ID, "user_id", saved.UserID, "month", saved.Month, "year", saved.Year)
	resp := salary.NewSalaryResponse(saved)
	s.publish("salary.recalculated", resp)
	return resp, nil
}

// RecalculateIfConfigured implements salary.SalaryService.
func (s *SalaryServiceImpl) RecalculateIfConfigured(ctx context.Context, userID string, month, year int) (bool, error) {
	if _, err := s.configs.Get(ctx, userID); err != nil {
		if errors.Is(err, salary.ErrSalaryConfigNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get salary config: %w", err)
	}

	if _, err := s.Recalculate(ctx, salary.SalaryRunRequest{UserID: userID, Month: month, Year: year}); err != nil {
		return false, err
	}
	return true, nil
}

// UpdatePaymentStatus implements salary.SalaryService.
func (s *SalaryServiceImpl) UpdatePaymentStatus(ctx context.Context, req salary.UpdatePaymentStatusRequest) (salary.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryResponse{}, err
	}

	status := salary.PaymentStatus(req.Status)
	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		d, _ := validator.IsValidDate(*req.PaymentDate)
		paymentDate = &d
	}
	if status == salary.PaymentStatusPaid && paymentDate == nil {
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		paymentDate = &today
	}

	updated, err := s.salaries.UpdatePaymentStatus(ctx, req.ID, status, paymentDate)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to update payment status: %w", err)
	}

	resp := salary.NewSalaryResponse(updated)
	tasks := []postcommit.Task{{Name: "publish", Fn: func(ctx context.Context) error {
		s.publish("salary.payment_status", resp)
		return nil
	}}}
	if status == salary.PaymentStatusPaid {
		tasks = append(tasks, postcommit.Task{Name: "notify", Fn: func(ctx context.Context) error {
			return s.notify(ctx, updated, notification.TypeSalaryPaid,
				"Salary paid",
				fmt.Sprintf("Your salary for %s %d was paid on %s.", time.Month(updated.Month), updated.Year, *resp.PaymentDate))
		}})
	}
	postcommit.Run(context.WithoutCancel(ctx), tasks...)

	return resp, nil
}

// GetSalary implements salary.SalaryService.
func (s *SalaryServiceImpl) GetSalary(ctx context.Context, id string) (salary.SalaryResponse, error) {
	record, err := s.salaries.GetByID(ctx, id)
	if err != nil {
		return salary.SalaryResponse{}, fmt.Errorf("failed to get salary: %w", err)
	}
	return salary.NewSalaryResponse(record), nil
}

// ListSalaries implements salary.SalaryService.
func (s *SalaryServiceImpl) ListSalaries(ctx context.Context, filter salary.SalaryFilter) (salary.ListSalaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return salary.ListSalaryResponse{}, err
	}

	records, total, err := s.salaries.List(ctx, filter)
	if err != nil {
		return salary.ListSalaryResponse{}, fmt.Errorf("failed to list salaries: %w", err)
	}

	responses := make([]salary.SalaryResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, salary.NewSalaryResponse(r))
	}

	return salary.ListSalaryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Salaries:   responses,
	}, nil
}

// GetConfig implements salary.SalaryService.
func (s *SalaryServiceImpl) GetConfig(ctx context.Context, userID string) (salary.SalaryConfigResponse, error) {
	cfg, err := s.configs.Get(ctx, userID)
	if err != nil {
		return salary.SalaryConfigResponse{}, fmt.Errorf("failed to get salary config: %w", err)
	}
	return salary.NewSalaryConfigResponse(cfg), nil
}

// UpsertConfig implements salary.SalaryService. The current month is
// recalculated afterwards on a best-effort basis.
func (s *SalaryServiceImpl) UpsertConfig(ctx context.Context, req salary.UpsertSalaryConfigRequest) (salary.SalaryConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryConfigResponse{}, err
	}

	allowances := make([]salary.Allowance, 0, len(req.Allowances))
	for _, a := range req.Allowances {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.Type == "" {
			a.Type = salary.AllowanceTypeFixed
		}
		allowances = append(allowances, a)
	}

	cfg := salary.SalaryConfig{
		UserID:              req.UserID,
		BaseSalary:          req.BaseSalary,
		Allowances:          allowances,
		TotalLeavesAllowed:  req.TotalLeavesAllowed,
		WorkingDaysPerMonth: salary.DefaultWorkingDaysPerMonth,
	}
	if req.WorkingDaysPerMonth != nil {
		cfg.WorkingDaysPerMonth = *req.WorkingDaysPerMonth
	}

	saved, err := s.configs.Upsert(ctx, cfg)
	if err != nil {
		return salary.SalaryConfigResponse{}, fmt.Errorf("failed to save salary config: %w", err)
	}

	now := s.now()
	postcommit.Run(context.WithoutCancel(ctx), postcommit.Task{Name: "salary", Fn: func(ctx context.Context) error {
		_, err := s.Recalculate(ctx, salary.SalaryRunRequest{UserID: saved.UserID, Month: int(now.Month()), Year: now.Year()})
		return err
	}})

	return salary.NewSalaryConfigResponse(saved), nil
}

// MarkOverdue implements salary.SalaryService.
func (s *SalaryServiceImpl) MarkOverdue(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -s.overdueAfterDays)

	overdue, err := s.salaries.MarkOverdue(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark salaries overdue: %w", err)
	}

	for _, rec := range overdue {
		resp := salary.NewSalaryResponse(rec)
		postcommit.Run(ctx,
			postcommit.Task{Name: "notify", Fn: func(ctx context.Context) error {
				return s.notify(ctx, rec, notification.TypeSalaryOverdue,
					"Salary overdue",
					fmt.Sprintf("Your salary for %s %d has not been paid yet.", time.Month(rec.Month), rec.Year))
			}},
			postcommit.Task{Name: "publish", Fn: func(ctx context.Context) error {
				s.publish("salary.overdue", resp)
				return nil
			}},
		)
	}
	return len(overdue), nil
}

// Payslip implements salary.SalaryService.
func (s *SalaryServiceImpl) Payslip(ctx context.Context, id string) ([]byte, error) {
	record, err := s.salaries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get salary: %w", err)
	}

	data := payslip.Data{
		SalaryID:        record.ID,
		UserID:          record.UserID,
		Month:           record.Month,
		Year:            record.Year,
		BaseSalary:      record.BaseSalary.StringFixed(2),
		PerDaySalary:    record.PerDaySalary.StringFixed(2),
		TotalAllowances: record.TotalAllowances.StringFixed(2),
		TotalDeductions: record.TotalDeductions.StringFixed(2),
		NetSalary:       record.NetSalary.StringFixed(2),
		PaymentStatus:   string(record.PaymentStatus),
		PaymentDate:     record.PaymentDate,
	}
	for _, a := range record.Allowances {
		data.Allowances = append(data.Allowances, payslip.Line{Label: a.Name, Amount: a.Amount.StringFixed(2)})
	}
	for _, d := range record.Deductions {
		data.Deductions = append(data.Deductions, payslip.Line{Label: d.Reason, Amount: d.Amount.StringFixed(2)})
	}

	pdf, err := payslip.Render(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return pdf, nil
}

// Export implements salary.SalaryService.
func (s *SalaryServiceImpl) Export(ctx context.Context, month, year int) ([]byte, error) {
	if !validator.IsValidPeriod(month, year) {
		return nil, salary.ErrInvalidPeriod
	}

	records, err := s.salaries.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salaries: %w", err)
	}

	rows := make([]export.PayrollRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, export.PayrollRow{
			UserID:          r.UserID,
			BaseSalary:      r.BaseSalary.InexactFloat64(),
			TotalAllowances: r.TotalAllowances.InexactFloat64(),
			TotalDeductions: r.TotalDeductions.InexactFloat64(),
			NetSalary:       r.NetSalary.InexactFloat64(),
			PaymentStatus:   string(r.PaymentStatus),
			PaymentDate:     r.PaymentDate,
		})
	}

	sheet, err := export.PayrollSheet(month, year, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build payroll sheet: %w", err)
	}
	return sheet, nil
}

func (s *SalaryServiceImpl) notify(ctx context.Context, rec salary.Salary, notifType notification.NotificationType, title, message string) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: rec.UserID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data: map[string]any{
			"salary_id": rec.ID,
			"month":     rec.Month,
			"year":      rec.Year,
		},
	})
}

func (s *SalaryServiceImpl) publish(event string, data salary.SalaryResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToMany(realtime.Topics(realtime.TopicSalaries, data.UserID), realtime.Event{Event: event, Data: data})
}
