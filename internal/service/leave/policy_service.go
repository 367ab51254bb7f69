package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type PolicyServiceImpl struct {
	leave.LeavePolicyRepository
}

func NewPolicyService(policyRepo leave.LeavePolicyRepository) leave.PolicyService {
	return &PolicyServiceImpl{LeavePolicyRepository: policyRepo}
}

// CreatePolicy implements leave.PolicyService.
func (s *PolicyServiceImpl) CreatePolicy(ctx context.Context, req leave.CreateLeavePolicyRequest) (leave.LeavePolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeavePolicyResponse{}, err
	}

	policy := leave.LeavePolicy{
		LeaveType:        req.LeaveType,
		Name:             req.Name,
		DaysPerYear:      req.DaysPerYear,
		CarryForwardCap:  req.CarryForwardCap,
		RequiresApproval: true,
		IsActive:         true,
	}
	if req.RequiresApproval != nil {
		policy.RequiresApproval = *req.RequiresApproval
	}
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}

	created, err := s.LeavePolicyRepository.Create(ctx, policy)
	if err != nil {
		return leave.LeavePolicyResponse{}, fmt.Errorf("failed to create leave policy: %w", err)
	}
	return leave.NewLeavePolicyResponse(created), nil
}

// UpdatePolicy implements leave.PolicyService.
func (s *PolicyServiceImpl) UpdatePolicy(ctx context.Context, req leave.UpdateLeavePolicyRequest) (leave.LeavePolicyResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeavePolicyResponse{}, err
	}

	policy, err := s.LeavePolicyRepository.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeavePolicyResponse{}, fmt.Errorf("failed to get leave policy: %w", err)
	}

	if req.Name != nil {
		policy.Name = *req.Name
	}
	if req.DaysPerYear != nil {
		policy.DaysPerYear = *req.DaysPerYear
	}
	if req.CarryForwardCap != nil {
		policy.CarryForwardCap = *req.CarryForwardCap
	}
	if req.RequiresApproval != nil {
		policy.RequiresApproval = *req.RequiresApproval
	}
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}

	updated, err := s.LeavePolicyRepository.Update(ctx, policy)
	if err != nil {
		return leave.LeavePolicyResponse{}, fmt.Errorf("failed to update leave policy: %w", err)
	}
	return leave.NewLeavePolicyResponse(updated), nil
}

// GetPolicy implements leave.PolicyService.
func (s *PolicyServiceImpl) GetPolicy(ctx context.Context, id string) (leave.LeavePolicyResponse, error) {
	policy, err := s.LeavePolicyRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeavePolicyResponse{}, fmt.Errorf("failed to get leave policy: %w", err)
	}
	return leave.NewLeavePolicyResponse(policy), nil
}

// ListPolicies implements leave.PolicyService.
func (s *PolicyServiceImpl) ListPolicies(ctx context.Context, activeOnly bool) ([]leave.LeavePolicyResponse, error) {
	policies, err := s.LeavePolicyRepository.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}

	responses := make([]leave.LeavePolicyResponse, 0, len(policies))
	for _, p := range policies {
		responses = append(responses, leave.NewLeavePolicyResponse(p))
	}
	return responses, nil
}

// DeletePolicy implements leave.PolicyService.
func (s *PolicyServiceImpl) DeletePolicy(ctx context.Context, id string) error {
	if err := s.LeavePolicyRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leave policy: %w", err)
	}
	return nil
}
