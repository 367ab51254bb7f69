package salary

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
)

type fakeSalaryRepo struct {
	seq      int
	salaries map[string]salary.Salary
}

func newFakeSalaryRepo() *fakeSalaryRepo {
	return &fakeSalaryRepo{salaries: map[string]salary.Salary{}}
}

func (f *fakeSalaryRepo) find(userID string, month, year int) (salary.Salary, bool) {
	for _, s := range f.salaries {
		if s.UserID == userID && s.Month == month && s.Year == year {
			return s, true
		}
	}
	return salary.Salary{}, false
}

func (f *fakeSalaryRepo) Create(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	if _, ok := f.find(s.UserID, s.Month, s.Year); ok {
		return salary.Salary{}, salary.ErrSalaryAlreadyExists
	}
	f.seq++
	s.ID = fmt.Sprintf("sal-%d", f.seq)
	f.salaries[s.ID] = s
	return s, nil
}

func (f *fakeSalaryRepo) Upsert(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	if existing, ok := f.find(s.UserID, s.Month, s.Year); ok {
		s.ID = existing.ID
		s.PaymentStatus = existing.PaymentStatus
		s.PaymentDate = existing.PaymentDate
		f.salaries[s.ID] = s
		return s, nil
	}
	return f.Create(ctx, s)
}

func (f *fakeSalaryRepo) GetByID(ctx context.Context, id string) (salary.Salary, error) {
	s, ok := f.salaries[id]
	if !ok {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	return s, nil
}

func (f *fakeSalaryRepo) GetByUserPeriod(ctx context.Context, userID string, month, year int) (*salary.Salary, error) {
	if s, ok := f.find(userID, month, year); ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSalaryRepo) List(ctx context.Context, filter salary.SalaryFilter) ([]salary.Salary, int64, error) {
	var out []salary.Salary
	for _, s := range f.salaries {
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeSalaryRepo) ListByPeriod(ctx context.Context, month, year int) ([]salary.Salary, error) {
	var out []salary.Salary
	for _, s := range f.salaries {
		if s.Month == month && s.Year == year {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSalaryRepo) UpdatePaymentStatus(ctx context.Context, id string, status salary.PaymentStatus, paymentDate *time.Time) (salary.Salary, error) {
	s, ok := f.salaries[id]
	if !ok {
		return salary.Salary{}, salary.ErrSalaryNotFound
	}
	s.PaymentStatus = status
	s.PaymentDate = paymentDate
	f.salaries[id] = s
	return s, nil
}

func (f *fakeSalaryRepo) MarkOverdue(ctx context.Context, cutoff time.Time) ([]salary.Salary, error) {
	var out []salary.Salary
	for id, s := range f.salaries {
		periodEnd := time.Date(s.Year, time.Month(s.Month)+1, 1, 0, 0, 0, 0, time.UTC)
		if s.PaymentStatus == salary.PaymentStatusPending && !periodEnd.After(cutoff) {
			s.PaymentStatus = salary.PaymentStatusOverdue
			f.salaries[id] = s
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSalaryRepo) Summary(ctx context.Context, month, year int) (salary.PayrollSummary, error) {
	summary := salary.PayrollSummary{Month: month, Year: year}
	for _, s := range f.salaries {
		if s.Month == month && s.Year == year {
			summary.Records++
			summary.TotalNetSalary = summary.TotalNetSalary.Add(s.NetSalary)
		}
	}
	return summary, nil
}

type fakeConfigRepo struct {
	configs map[string]salary.SalaryConfig
}

func (f *fakeConfigRepo) Get(ctx context.Context, userID string) (salary.SalaryConfig, error) {
	cfg, ok := f.configs[userID]
	if !ok {
		return salary.SalaryConfig{}, salary.ErrSalaryConfigNotFound
	}
	return cfg, nil
}

func (f *fakeConfigRepo) Upsert(ctx context.Context, cfg salary.SalaryConfig) (salary.SalaryConfig, error) {
	f.configs[cfg.UserID] = cfg
	return cfg, nil
}

type fixedSummarizer struct {
	present int
}

func (f fixedSummarizer) MonthlySummary(ctx context.Context, userID string, month, year int) (attendance.MonthlySummary, error) {
	return attendance.MonthlySummary{UserID: userID, Month: month, Year: year, TotalDays: f.present, PresentDays: f.present}, nil
}

type recordingNotifier struct {
	sent []notification.CreateNotificationRequest
}

func (n *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.sent = append(n.sent, req)
	return nil
}

type nopPublisher struct{}

func (nopPublisher) PublishToMany(topics []string, event realtime.Event) {}

type salaryFixture struct {
	svc      *SalaryServiceImpl
	salaries *fakeSalaryRepo
	configs  *fakeConfigRepo
	notifier *recordingNotifier
}

func newSalaryFixture(present int) salaryFixture {
	f := salaryFixture{
		salaries: newFakeSalaryRepo(),
		configs: &fakeConfigRepo{configs: map[string]salary.SalaryConfig{
			"u1": {UserID: "u1", BaseSalary: decimal.NewFromInt(30000), WorkingDaysPerMonth: 26},
		}},
		notifier: &recordingNotifier{},
	}
	f.svc = NewSalaryService(f.salaries, f.configs, fixedSummarizer{present: present}, f.notifier, nopPublisher{}, 10).(*SalaryServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestGenerate_AbsenceDeduction(t *testing.T) {
	f := newSalaryFixture(24)

	resp, err := f.svc.Generate(context.Background(), salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, "1153.85", resp.PerDaySalary.StringFixed(2))
	assert.Equal(t, "2307.69", resp.TotalDeductions.StringFixed(2))
	assert.Equal(t, "27692.31", resp.NetSalary.StringFixed(2))
	assert.Equal(t, salary.PaymentStatusPending, resp.PaymentStatus)
	require.Len(t, resp.Deductions, 1)
	assert.Equal(t, salary.AbsentDeductionID, resp.Deductions[0].ID)
	assert.Equal(t, salary.AbsentDeductionReason, resp.Deductions[0].Reason)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeSalaryGenerated, f.notifier.sent[0].Type)
}

func TestGenerate_TwiceConflictsAndKeepsFirst(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	first, err := f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)

	override := decimal.NewFromInt(99999)
	_, err = f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024, BaseSalary: &override})
	assert.ErrorIs(t, err, salary.ErrSalaryAlreadyExists)

	stored, err := f.svc.GetSalary(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.NetSalary.Equal(decimal.NewFromInt(30000)))
	assert.Len(t, f.salaries.salaries, 1)
}

func TestGenerate_NoConfig(t *testing.T) {
	f := newSalaryFixture(26)

	_, err := f.svc.Generate(context.Background(), salary.SalaryRunRequest{UserID: "u2", Month: 3, Year: 2024})
	assert.ErrorIs(t, err, salary.ErrSalaryConfigNotFound)

	base := decimal.NewFromInt(26000)
	resp, err := f.svc.Generate(context.Background(), salary.SalaryRunRequest{UserID: "u2", Month: 3, Year: 2024, BaseSalary: &base})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", resp.PerDaySalary.StringFixed(2))
}

func TestRecalculate_KeepsManualDeductions(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	generated, err := f.svc.Generate(ctx, salary.SalaryRunRequest{
		UserID: "u1", Month: 3, Year: 2024,
		Deductions: []salary.Deduction{{ID: "loan", Reason: "loan", Amount: decimal.NewFromInt(500)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "29500.00", generated.NetSalary.StringFixed(2))

	f.svc.attendance = fixedSummarizer{present: 25}
	recalculated, err := f.svc.Recalculate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, generated.ID, recalculated.ID)
	require.Len(t, recalculated.Deductions, 2)
	assert.Equal(t, "loan", recalculated.Deductions[0].ID)
	assert.Equal(t, salary.AbsentDeductionID, recalculated.Deductions[1].ID)
	assert.Equal(t, "1653.85", recalculated.TotalDeductions.StringFixed(2))
	assert.True(t, recalculated.NetSalary.Equal(
		recalculated.BaseSalary.Add(recalculated.TotalAllowances).Sub(recalculated.TotalDeductions)))
}

func TestRecalculateIfConfigured(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	ok, err := f.svc.RecalculateIfConfigured(ctx, "nobody", 3, 2024)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.RecalculateIfConfigured(ctx, "u1", 3, 2024)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.salaries.salaries, 1)
}

func TestUpdatePaymentStatus_PaidStampsToday(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	generated, err := f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)

	paid, err := f.svc.UpdatePaymentStatus(ctx, salary.UpdatePaymentStatusRequest{ID: generated.ID, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, salary.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, "2024-04-15", *paid.PaymentDate)
	assert.Equal(t, notification.TypeSalaryPaid, f.notifier.sent[len(f.notifier.sent)-1].Type)

	_, err = f.svc.UpdatePaymentStatus(ctx, salary.UpdatePaymentStatusRequest{ID: generated.ID, Status: "lost"})
	assert.Error(t, err)
}

func TestUpsertConfig_AssignsAllowanceIDsAndRecalculates(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	resp, err := f.svc.UpsertConfig(ctx, salary.UpsertSalaryConfigRequest{
		UserID:     "u3",
		BaseSalary: decimal.NewFromInt(20000),
		Allowances: []salary.Allowance{{Name: "meal", Amount: decimal.NewFromInt(400)}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Allowances, 1)
	assert.NotEmpty(t, resp.Allowances[0].ID)
	assert.Equal(t, salary.AllowanceTypeFixed, resp.Allowances[0].Type)
	assert.Equal(t, salary.DefaultWorkingDaysPerMonth, resp.WorkingDaysPerMonth)

	current, err := f.salaries.GetByUserPeriod(ctx, "u3", 4, 2024)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.True(t, current.TotalAllowances.Equal(decimal.NewFromInt(400)))
}

func TestMarkOverdue(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	// March ended 2024-04-01; with a 10 day window it is overdue on 2024-04-15.
	_, err := f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)
	_, err = f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 4, Year: 2024})
	require.NoError(t, err)

	count, err := f.svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, notification.TypeSalaryOverdue, f.notifier.sent[len(f.notifier.sent)-1].Type)
}

func TestPayslipAndExport(t *testing.T) {
	ctx := context.Background()
	f := newSalaryFixture(26)

	generated, err := f.svc.Generate(ctx, salary.SalaryRunRequest{UserID: "u1", Month: 3, Year: 2024})
	require.NoError(t, err)

	pdf, err := f.svc.Payslip(ctx, generated.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, err = f.svc.Payslip(ctx, "missing")
	assert.ErrorIs(t, err, salary.ErrSalaryNotFound)

	sheet, err := f.svc.Export(ctx, 3, 2024)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(sheet, []byte("PK")))

	_, err = f.svc.Export(ctx, 13, 2024)
	assert.ErrorIs(t, err, salary.ErrInvalidPeriod)
}
