package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/postcommit"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type RequestServiceImpl struct {
	requests  leave.LeaveRequestRepository
	balances  leave.LeaveBalanceRepository
	policies  leave.LeavePolicyRepository
	salaries  leave.SalaryRecalculator
	notifier  notification.Notifier
	publisher realtime.Publisher
	now       func() time.Time
}

func NewRequestService(
	requestRepo leave.LeaveRequestRepository,
	balanceRepo leave.LeaveBalanceRepository,
	policyRepo leave.LeavePolicyRepository,
	salaries leave.SalaryRecalculator,
	notifier notification.Notifier,
	publisher realtime.Publisher,
) leave.RequestService {
	return &RequestServiceImpl{
		requests:  requestRepo,
		balances:  balanceRepo,
		policies:  policyRepo,
		salaries:  salaries,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// Apply implements leave.RequestService.
func (s *RequestServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(req.Reason) {
		errs.Add("reason", "reason is required")
	}
	if req.EndDate.Before(req.StartDate) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	if err := errs.Err(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := s.checkPolicy(ctx, req.LeaveType); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	days := leave.DaysRequested(req.StartDate, req.EndDate)
	balance, err := s.balances.Get(ctx, req.UserID, req.LeaveType, s.balanceYear())
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if balance != nil && balance.Remaining < days {
		return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
	}

	created, err := s.requests.Create(ctx, leave.LeaveRequest{
		UserID:    req.UserID,
		LeaveType: req.LeaveType,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		TotalDays: days,
		Status:    leave.LeaveRequestStatusPending,
		Reason:    req.Reason,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	resp := leave.NewLeaveRequestResponse(created)
	s.publish("leave.requested", created.UserID, resp)
	return resp, nil
}

// balanceYear is the year whose balance leave is checked against and charged to.
func (s *RequestServiceImpl) balanceYear() int {
	return s.now().Year()
}

// checkPolicy requires an active policy for leaveType once any policy is configured.
func (s *RequestServiceImpl) checkPolicy(ctx context.Context, leaveType string) error {
	policy, err := s.policies.GetByLeaveType(ctx, leaveType)
	if err == nil {
		if !policy.IsActive {
			return leave.ErrLeaveTypeInactive
		}
		return nil
	}
	if !errors.Is(err, leave.ErrLeavePolicyNotFound) {
		return fmt.Errorf("failed to get leave policy: %w", err)
	}

	configured, err := s.policies.List(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list leave policies: %w", err)
	}
	if len(configured) > 0 {
		return leave.ErrLeavePolicyNotFound
	}
	return nil
}

// Approve implements leave.RequestService. Only the transition is part of the
// call's outcome; balance, salary, notification and publish run afterwards and
// never fail the approval.
func (s *RequestServiceImpl) Approve(ctx context.Context, req leave.ApproveLeaveRequest) (leave.LeaveRequestResponse, error) {
	request, err := s.requests.GetByID(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	days := leave.DaysRequested(request.StartDate, request.EndDate)
	now := s.now()

	approved, err := s.requests.Approve(ctx, request.ID, req.ApproverID, days, now)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to approve leave request: %w", err)
	}

	slog.Info("leave request approved", "leave_id", approved.ID, "user_id", approved.UserID, "days", days)
	resp := leave.NewLeaveRequestResponse(approved)

	postcommit.Run(context.WithoutCancel(ctx),
		postcommit.Task{Name: "balance", Fn: func(ctx context.Context) error {
			return s.consumeBalance(ctx, approved, days, s.balanceYear())
		}},
		postcommit.Task{Name: "salary", Fn: func(ctx context.Context) error {
			return s.recalculateSalaries(ctx, approved)
		}},
		postcommit.Task{Name: "notify", Fn: func(ctx context.Context) error {
			return s.notify(ctx, approved, &req.ApproverID, notification.TypeLeaveApproved,
				"Leave request approved",
				fmt.Sprintf("Your %s leave from %s to %s was approved.", approved.LeaveType, resp.StartDate, resp.EndDate))
		}},
		postcommit.Task{Name: "publish", Fn: func(ctx context.Context) error {
			s.publish("leave.approved", approved.UserID, resp)
			return nil
		}},
	)

	return resp, nil
}

func (s *RequestServiceImpl) consumeBalance(ctx context.Context, request leave.LeaveRequest, days, year int) error {
	totalAllowed := 0
	policy, err := s.policies.GetByLeaveType(ctx, request.LeaveType)
	switch {
	case err == nil:
		totalAllowed = policy.DaysPerYear
	case !errors.Is(err, leave.ErrLeavePolicyNotFound):
		return fmt.Errorf("get leave policy: %w", err)
	}

	if _, err := s.balances.IncrementUsed(ctx, request.UserID, request.LeaveType, year, days, totalAllowed); err != nil {
		return fmt.Errorf("increment used days: %w", err)
	}
	return nil
}

// recalculateSalaries refreshes every month the leave touches; one failing
// month does not stop the others.
func (s *RequestServiceImpl) recalculateSalaries(ctx context.Context, request leave.LeaveRequest) error {
	if s.salaries == nil {
		return nil
	}

	var errs []error
	for _, p := range leave.MonthsSpanned(request.StartDate, request.EndDate) {
		if _, err := s.salaries.RecalculateIfConfigured(ctx, request.UserID, p.Month, p.Year); err != nil {
			slog.Warn("salary recalculation after leave failed",
				"user_id", request.UserID, "month", p.Month, "year", p.Year, "error", err)
			errs = append(errs, fmt.Errorf("%04d-%02d: %w", p.Year, p.Month, err))
		}
	}
	return errors.Join(errs...)
}

// Reject implements leave.RequestService.
func (s *RequestServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	if validator.IsEmpty(req.Reason) {
		var errs validator.ValidationErrors
		errs.Add("reason", "reason is required")
		return leave.LeaveRequestResponse{}, errs.Err()
	}

	rejected, err := s.requests.Reject(ctx, req.LeaveID, req.Reason, s.now())
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to reject leave request: %w", err)
	}

	slog.Info("leave request rejected", "leave_id", rejected.ID, "user_id", rejected.UserID)
	resp := leave.NewLeaveRequestResponse(rejected)

	postcommit.Run(context.WithoutCancel(ctx),
		postcommit.Task{Name: "notify", Fn: func(ctx context.Context) error {
			return s.notify(ctx, rejected, nil, notification.TypeLeaveRejected,
				"Leave request rejected",
				fmt.Sprintf("Your %s leave request was rejected: %s", rejected.LeaveType, req.Reason))
		}},
		postcommit.Task{Name: "publish", Fn: func(ctx context.Context) error {
			s.publish("leave.rejected", rejected.UserID, resp)
			return nil
		}},
	)

	return resp, nil
}

// GetRequest implements leave.RequestService.
func (s *RequestServiceImpl) GetRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return leave.NewLeaveRequestResponse(request), nil
}

// ListRequests implements leave.RequestService.
func (s *RequestServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

func (s *RequestServiceImpl) notify(ctx context.Context, request leave.LeaveRequest, senderID *string, notifType notification.NotificationType, title, message string) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: request.UserID,
		SenderID:    senderID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data: map[string]any{
			"leave_id":   request.ID,
			"leave_type": request.LeaveType,
			"status":     string(request.Status),
		},
	})
}

func (s *RequestServiceImpl) publish(event, userID string, data leave.LeaveRequestResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToMany(realtime.Topics(realtime.TopicLeaves, userID), realtime.Event{Event: event, Data: data})
}
