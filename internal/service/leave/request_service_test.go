package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type requestFixture struct {
	svc       *RequestServiceImpl
	requests  *fakeRequestRepo
	balances  *fakeBalanceRepo
	salaries  *recordingRecalculator
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newRequestFixture(policies ...leave.LeavePolicy) requestFixture {
	f := requestFixture{
		requests:  newFakeRequestRepo(),
		balances:  newFakeBalanceRepo(),
		salaries:  &recordingRecalculator{},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewRequestService(f.requests, f.balances, newFakePolicyRepo(policies...), f.salaries, f.notifier, f.publisher).(*RequestServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var annual = leave.LeavePolicy{LeaveType: "annual", Name: "Annual", DaysPerYear: 12, CarryForwardCap: 5, IsActive: true}

func TestApprove_ConsumesBalanceOnce(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(annual)
	_, err := f.balances.Replace(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "annual", Year: 2024, TotalAllowed: 12})
	require.NoError(t, err)

	applied, err := f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 6), Reason: "family",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", applied.Status)
	assert.Equal(t, 3, applied.TotalDays)

	approved, err := f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: applied.ID, ApproverID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)

	balance, err := f.balances.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Used)
	assert.Equal(t, 9, balance.Remaining)

	_, err = f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: applied.ID, ApproverID: "admin-1"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	balance, err = f.balances.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, balance.Used)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeLeaveApproved, f.notifier.sent[0].Type)
	assert.Equal(t, "u1", f.notifier.sent[0].RecipientID)
	assert.Equal(t, []leave.Period{{Month: 3, Year: 2024}}, f.salaries.calls)
}

func TestApprove_MissingBalanceCreatedFromPolicy(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(annual)

	req, err := f.requests.Create(ctx, leave.LeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 5),
		Status: leave.LeaveRequestStatusPending, Reason: "rest",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: req.ID, ApproverID: "admin-1"})
	require.NoError(t, err)

	balance, err := f.balances.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 12, balance.TotalAllowed)
	assert.Equal(t, 2, balance.Used)
	assert.Equal(t, 10, balance.Remaining)
}

func TestApprove_SideEffectFailuresDoNotFailApproval(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(annual)
	f.balances.failInc = errors.New("connection reset")
	f.salaries.failFor = map[leave.Period]error{{Month: 1, Year: 2024}: errors.New("no attendance")}

	req, err := f.requests.Create(ctx, leave.LeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 1, 30), EndDate: date(2024, 2, 2),
		Status: leave.LeaveRequestStatusPending, Reason: "trip",
	})
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: req.ID, ApproverID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, 4, approved.TotalDays)

	// January failed, February still ran.
	assert.Equal(t, []leave.Period{{Month: 1, Year: 2024}, {Month: 2, Year: 2024}}, f.salaries.calls)
	assert.Len(t, f.notifier.sent, 1)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "leave.approved", f.publisher.events[0].Event)
}

func TestApprove_SideEffectsOutliveCallerCancellation(t *testing.T) {
	f := newRequestFixture(annual)
	req, err := f.requests.Create(context.Background(), leave.LeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 5),
		Status: leave.LeaveRequestStatusPending, Reason: "rest",
	})
	require.NoError(t, err)

	// Client went away after the transition committed.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: req.ID, ApproverID: "admin-1"})
	require.NoError(t, err)

	balance, err := f.balances.Get(context.Background(), "u1", "annual", 2024)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 2, balance.Used)
	assert.Len(t, f.notifier.sent, 1)
}

func TestApply_ChecksBalanceOfYearApprovalCharges(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(annual)
	f.svc.now = func() time.Time { return time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC) }
	_, err := f.balances.Replace(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "annual", Year: 2024, TotalAllowed: 12, Used: 12})
	require.NoError(t, err)

	// Leave dated in the next year still draws on the exhausted current-year balance.
	_, err = f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2025, 1, 2), EndDate: date(2025, 1, 5), Reason: "new year",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	_, err = f.balances.Replace(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "annual", Year: 2024, TotalAllowed: 12, Used: 8})
	require.NoError(t, err)
	applied, err := f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2025, 1, 2), EndDate: date(2025, 1, 5), Reason: "new year",
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: applied.ID, ApproverID: "admin-1"})
	require.NoError(t, err)

	balance, err := f.balances.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	assert.Equal(t, 12, balance.Used)
	next, err := f.balances.Get(ctx, "u1", "annual", 2025)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestApprove_NotFound(t *testing.T) {
	f := newRequestFixture(annual)
	_, err := f.svc.Approve(context.Background(), leave.ApproveLeaveRequest{LeaveID: "missing", ApproverID: "admin-1"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestReject_LeavesBalanceUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(annual)
	_, err := f.balances.Replace(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "annual", Year: 2024, TotalAllowed: 12})
	require.NoError(t, err)

	req, err := f.requests.Create(ctx, leave.LeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 6),
		Status: leave.LeaveRequestStatusPending, Reason: "trip",
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, leave.RejectLeaveRequest{LeaveID: req.ID})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	rejected, err := f.svc.Reject(ctx, leave.RejectLeaveRequest{LeaveID: req.ID, Reason: "busy season"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "busy season", *rejected.RejectionReason)

	balance, err := f.balances.Get(ctx, "u1", "annual", 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Used)
	assert.Equal(t, 12, balance.Remaining)
	assert.Empty(t, f.salaries.calls)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeLeaveRejected, f.notifier.sent[0].Type)

	_, err = f.svc.Approve(ctx, leave.ApproveLeaveRequest{LeaveID: req.ID, ApproverID: "admin-1"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
}

func TestApply_Validation(t *testing.T) {
	ctx := context.Background()
	inactive := leave.LeavePolicy{LeaveType: "unpaid", Name: "Unpaid", IsActive: false}
	f := newRequestFixture(annual, inactive)
	_, err := f.balances.Replace(ctx, leave.LeaveBalance{UserID: "u1", LeaveType: "annual", Year: 2024, TotalAllowed: 12, Used: 10})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 6), Reason: "trip",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	_, err = f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "unpaid", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 4), Reason: "trip",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeInactive)

	_, err = f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "sabbatical", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 4), Reason: "trip",
	})
	assert.ErrorIs(t, err, leave.ErrLeavePolicyNotFound)

	_, err = f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 6), EndDate: date(2024, 3, 4),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "reason")
	assert.Contains(t, verrs.ToMap(), "end_date")
}

func TestApply_NoPoliciesConfigured(t *testing.T) {
	f := newRequestFixture()
	resp, err := f.svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		UserID: "u1", LeaveType: "annual", StartDate: date(2024, 3, 4), EndDate: date(2024, 3, 4), Reason: "rest",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalDays)
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture()
	for i := 0; i < 3; i++ {
		_, err := f.requests.Create(ctx, leave.LeaveRequest{UserID: "u1", Status: leave.LeaveRequestStatusPending})
		require.NoError(t, err)
	}

	resp, err := f.svc.ListRequests(ctx, leave.LeaveRequestFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
}
