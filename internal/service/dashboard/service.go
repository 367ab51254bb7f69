package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
)

// SubscriberCounter reports live stream connections. *realtime.Hub satisfies it.
type SubscriberCounter interface {
	TotalSubscribers() int
}

type DashboardServiceImpl struct {
	requests    leave.LeaveRequestRepository
	attendances attendance.AttendanceRepository
	salaries    salary.SalaryRepository
	subscribers SubscriberCounter
	location    *time.Location
	now         func() time.Time
}

func NewDashboardService(
	requests leave.LeaveRequestRepository,
	attendances attendance.AttendanceRepository,
	salaries salary.SalaryRepository,
	subscribers SubscriberCounter,
	location *time.Location,
) dashboard.DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &DashboardServiceImpl{
		requests:    requests,
		attendances: attendances,
		salaries:    salaries,
		subscribers: subscribers,
		location:    location,
		now:         time.Now,
	}
}

// GetDashboard runs the three queries in parallel; the first failure cancels the rest.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (*dashboard.DashboardResponse, error) {
	now := s.now()
	today := attendance.DateOf(now, s.location)
	local := now.In(s.location)

	var (
		pending int64
		counts  map[attendance.Status]int
		payroll salary.PayrollSummary
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pending, err = s.requests.CountByStatus(gCtx, leave.LeaveRequestStatusPending)
		return err
	})

	g.Go(func() error {
		var err error
		counts, err = s.attendances.CountByStatusOnDate(gCtx, today)
		return err
	})

	g.Go(func() error {
		var err error
		payroll, err = s.salaries.Summary(gCtx, int(local.Month()), local.Year())
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := dashboard.AttendanceStatsResponse{
		Present: counts[attendance.StatusPresent],
		Late:    counts[attendance.StatusLate],
		HalfDay: counts[attendance.StatusHalfDay],
		Absent:  counts[attendance.StatusAbsent],
	}
	stats.Total = stats.Present + stats.Late + stats.HalfDay + stats.Absent

	resp := &dashboard.DashboardResponse{
		Date:                 today.Format("2006-01-02"),
		PendingLeaveRequests: pending,
		AttendanceToday:      stats,
		Payroll:              payroll,
	}
	if s.subscribers != nil {
		resp.Realtime.Subscribers = s.subscribers.TotalSubscribers()
	}
	return resp, nil
}
