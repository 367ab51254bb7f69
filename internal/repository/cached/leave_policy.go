// Package cached wraps repositories with read-through caching. Reads are
// served from a cache.Namespace, every write invalidates it.
package cached

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cache"
)

const leavePolicyNamespace = "leave_policy"

type leavePolicyRepository struct {
	next  leave.LeavePolicyRepository
	cache cache.Namespace
}

// NewLeavePolicyRepository caches policy lookups by id and by leave type.
func NewLeavePolicyRepository(next leave.LeavePolicyRepository, store cache.Store) leave.LeavePolicyRepository {
	return &leavePolicyRepository{
		next:  next,
		cache: cache.NewNamespace(store, leavePolicyNamespace),
	}
}

func (r *leavePolicyRepository) Create(ctx context.Context, policy leave.LeavePolicy) (leave.LeavePolicy, error) {
	created, err := r.next.Create(ctx, policy)
	if err != nil {
		return leave.LeavePolicy{}, err
	}
	r.cache.InvalidateAll()
	return created, nil
}

func (r *leavePolicyRepository) Update(ctx context.Context, policy leave.LeavePolicy) (leave.LeavePolicy, error) {
	updated, err := r.next.Update(ctx, policy)
	if err != nil {
		return leave.LeavePolicy{}, err
	}
	r.cache.InvalidateAll()
	return updated, nil
}

func (r *leavePolicyRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.InvalidateAll()
	return nil
}

func (r *leavePolicyRepository) GetByID(ctx context.Context, id string) (leave.LeavePolicy, error) {
	return r.getPolicy(ctx, "id:"+id, func(ctx context.Context) (leave.LeavePolicy, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *leavePolicyRepository) GetByLeaveType(ctx context.Context, leaveType string) (leave.LeavePolicy, error) {
	return r.getPolicy(ctx, "type:"+leaveType, func(ctx context.Context) (leave.LeavePolicy, error) {
		return r.next.GetByLeaveType(ctx, leaveType)
	})
}

func (r *leavePolicyRepository) List(ctx context.Context, activeOnly bool) ([]leave.LeavePolicy, error) {
	key := "list:all"
	if activeOnly {
		key = "list:active"
	}
	if v, ok := r.cache.Get(key); ok {
		if policies, ok := v.([]leave.LeavePolicy); ok {
			return append([]leave.LeavePolicy(nil), policies...), nil
		}
	}

	policies, err := r.next.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, append([]leave.LeavePolicy(nil), policies...))
	return policies, nil
}

// getPolicy never caches errors, so a missing policy is looked up again next time.
func (r *leavePolicyRepository) getPolicy(ctx context.Context, key string, load func(context.Context) (leave.LeavePolicy, error)) (leave.LeavePolicy, error) {
	if v, ok := r.cache.Get(key); ok {
		if policy, ok := v.(leave.LeavePolicy); ok {
			return policy, nil
		}
	}

	policy, err := load(ctx)
	if err != nil {
		return leave.LeavePolicy{}, err
	}
	r.cache.Set(key, policy)
	return policy, nil
}
