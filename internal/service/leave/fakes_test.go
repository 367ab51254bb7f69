package leave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
)

type fakeRequestRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]leave.LeaveRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]leave.LeaveRequest{}}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = fmt.Sprintf("req-%d", f.seq)
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(r.Status) != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) CountByStatus(ctx context.Context, status leave.LeaveRequestStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.requests {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRequestRepo) transition(id string, apply func(*leave.LeaveRequest)) (leave.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if r.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	apply(&r)
	f.requests[id] = r
	return r, nil
}

func (f *fakeRequestRepo) Approve(ctx context.Context, id, approverID string, totalDays int, at time.Time) (leave.LeaveRequest, error) {
	return f.transition(id, func(r *leave.LeaveRequest) {
		r.Status = leave.LeaveRequestStatusApproved
		r.TotalDays = totalDays
		r.ApprovedBy = &approverID
		r.ApprovedDate = &at
	})
}

func (f *fakeRequestRepo) Reject(ctx context.Context, id, reason string, at time.Time) (leave.LeaveRequest, error) {
	return f.transition(id, func(r *leave.LeaveRequest) {
		r.Status = leave.LeaveRequestStatusRejected
		r.RejectionReason = &reason
	})
}

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]leave.LeaveBalance
	failInc  error
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: map[string]leave.LeaveBalance{}}
}

func balanceKey(userID, leaveType string, year int) string {
	return fmt.Sprintf("%s|%s|%d", userID, leaveType, year)
}

func (f *fakeBalanceRepo) Get(ctx context.Context, userID, leaveType string, year int) (*leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[balanceKey(userID, leaveType, year)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBalanceRepo) ListByUserAndYear(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range f.balances {
		if b.UserID == userID && b.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

func (f *fakeBalanceRepo) ListByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leave.LeaveBalance
	for _, b := range f.balances {
		if b.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return balanceKey(out[i].UserID, out[i].LeaveType, 0) < balanceKey(out[j].UserID, out[j].LeaveType, 0)
	})
	return out, nil
}

func (f *fakeBalanceRepo) Replace(ctx context.Context, b leave.LeaveBalance) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.Recompute()
	f.balances[balanceKey(b.UserID, b.LeaveType, b.Year)] = b
	return b, nil
}

func (f *fakeBalanceRepo) CreateIfAbsent(ctx context.Context, b leave.LeaveBalance) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := balanceKey(b.UserID, b.LeaveType, b.Year)
	if _, ok := f.balances[key]; ok {
		return false, nil
	}
	b.Recompute()
	f.balances[key] = b
	return true, nil
}

func (f *fakeBalanceRepo) IncrementUsed(ctx context.Context, userID, leaveType string, year, days, totalAllowed int) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInc != nil {
		return leave.LeaveBalance{}, f.failInc
	}
	if err := ctx.Err(); err != nil {
		return leave.LeaveBalance{}, err
	}
	key := balanceKey(userID, leaveType, year)
	b, ok := f.balances[key]
	if !ok {
		b = leave.LeaveBalance{UserID: userID, LeaveType: leaveType, Year: year, TotalAllowed: totalAllowed}
	}
	b.Used += days
	b.Recompute()
	f.balances[key] = b
	return b, nil
}

type fakeTransactor struct {
	calls     int
	commitErr error
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return f.commitErr
}

type fakePolicyRepo struct {
	policies map[string]leave.LeavePolicy
}

func newFakePolicyRepo(policies ...leave.LeavePolicy) *fakePolicyRepo {
	f := &fakePolicyRepo{policies: map[string]leave.LeavePolicy{}}
	for i, p := range policies {
		if p.ID == "" {
			p.ID = fmt.Sprintf("pol-%d", i+1)
		}
		f.policies[p.ID] = p
	}
	return f
}

func (f *fakePolicyRepo) Create(ctx context.Context, p leave.LeavePolicy) (leave.LeavePolicy, error) {
	for _, existing := range f.policies {
		if existing.LeaveType == p.LeaveType {
			return leave.LeavePolicy{}, leave.ErrLeavePolicyExists
		}
	}
	p.ID = fmt.Sprintf("pol-%d", len(f.policies)+1)
	f.policies[p.ID] = p
	return p, nil
}

func (f *fakePolicyRepo) Update(ctx context.Context, p leave.LeavePolicy) (leave.LeavePolicy, error) {
	if _, ok := f.policies[p.ID]; !ok {
		return leave.LeavePolicy{}, leave.ErrLeavePolicyNotFound
	}
	f.policies[p.ID] = p
	return p, nil
}

func (f *fakePolicyRepo) GetByID(ctx context.Context, id string) (leave.LeavePolicy, error) {
	p, ok := f.policies[id]
	if !ok {
		return leave.LeavePolicy{}, leave.ErrLeavePolicyNotFound
	}
	return p, nil
}

func (f *fakePolicyRepo) GetByLeaveType(ctx context.Context, leaveType string) (leave.LeavePolicy, error) {
	for _, p := range f.policies {
		if p.LeaveType == leaveType {
			return p, nil
		}
	}
	return leave.LeavePolicy{}, leave.ErrLeavePolicyNotFound
}

func (f *fakePolicyRepo) List(ctx context.Context, activeOnly bool) ([]leave.LeavePolicy, error) {
	var out []leave.LeavePolicy
	for _, p := range f.policies {
		if !activeOnly || p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

func (f *fakePolicyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.policies[id]; !ok {
		return leave.ErrLeavePolicyNotFound
	}
	delete(f.policies, id)
	return nil
}

type recordingRecalculator struct {
	calls   []leave.Period
	failFor map[leave.Period]error
}

func (r *recordingRecalculator) RecalculateIfConfigured(ctx context.Context, userID string, month, year int) (bool, error) {
	p := leave.Period{Month: month, Year: year}
	r.calls = append(r.calls, p)
	if err := r.failFor[p]; err != nil {
		return false, err
	}
	return true, nil
}

type recordingNotifier struct {
	sent []notification.CreateNotificationRequest
}

func (n *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.sent = append(n.sent, req)
	return nil
}

type recordingPublisher struct {
	events []realtime.Event
}

func (p *recordingPublisher) PublishToMany(topics []string, event realtime.Event) {
	p.events = append(p.events, event)
}
