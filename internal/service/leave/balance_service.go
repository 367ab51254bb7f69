package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type BalanceServiceImpl struct {
	leave.LeaveBalanceRepository
	leave.LeavePolicyRepository
	tx  leave.Transactor
	now func() time.Time
}

// NewBalanceService builds the balance tracker. A nil tx runs bulk writes
// without a surrounding transaction.
func NewBalanceService(balanceRepo leave.LeaveBalanceRepository, policyRepo leave.LeavePolicyRepository, tx leave.Transactor) leave.BalanceService {
	return &BalanceServiceImpl{
		LeaveBalanceRepository: balanceRepo,
		LeavePolicyRepository:  policyRepo,
		tx:                     tx,
		now:                    time.Now,
	}
}

func (s *BalanceServiceImpl) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

// GetBalance implements leave.BalanceService.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, userID, leaveType string, year int) (*leave.LeaveBalanceResponse, error) {
	balance, err := s.LeaveBalanceRepository.Get(ctx, userID, leaveType, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if balance == nil {
		return nil, nil
	}
	resp := leave.NewLeaveBalanceResponse(*balance)
	return &resp, nil
}

// ListBalances implements leave.BalanceService.
func (s *BalanceServiceImpl) ListBalances(ctx context.Context, userID string, year int) ([]leave.LeaveBalanceResponse, error) {
	balances, err := s.LeaveBalanceRepository.ListByUserAndYear(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.NewLeaveBalanceResponse(b))
	}
	return responses, nil
}

// SetBalance implements leave.BalanceService.
func (s *BalanceServiceImpl) SetBalance(ctx context.Context, req leave.SetBalanceRequest) (leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	balance := leave.LeaveBalance{
		UserID:       req.UserID,
		LeaveType:    req.LeaveType,
		Year:         req.Year,
		TotalAllowed: req.TotalAllowed,
		Used:         req.Used,
		CarryForward: req.CarryForward,
	}
	balance.Recompute()

	saved, err := s.LeaveBalanceRepository.Replace(ctx, balance)
	if err != nil {
		return leave.LeaveBalanceResponse{}, fmt.Errorf("failed to set leave balance: %w", err)
	}
	return leave.NewLeaveBalanceResponse(saved), nil
}

// InitializeForUser implements leave.BalanceService. A user who already has
// any balance for the current year is left untouched.
func (s *BalanceServiceImpl) InitializeForUser(ctx context.Context, userID string) (leave.InitializeBalanceResponse, error) {
	year := s.now().Year()
	resp := leave.InitializeBalanceResponse{UserID: userID, Year: year, Created: []leave.LeaveBalanceResponse{}}

	existing, err := s.LeaveBalanceRepository.ListByUserAndYear(ctx, userID, year)
	if err != nil {
		return resp, fmt.Errorf("failed to list leave balances: %w", err)
	}
	if len(existing) > 0 {
		resp.Skipped = true
		return resp, nil
	}

	err = s.atomically(ctx, func(ctx context.Context) error {
		policies, err := s.LeavePolicyRepository.List(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to list leave policies: %w", err)
		}

		for _, p := range policies {
			balance := leave.LeaveBalance{
				UserID:       userID,
				LeaveType:    p.LeaveType,
				Year:         year,
				TotalAllowed: p.DaysPerYear,
			}
			balance.Recompute()

			created, err := s.LeaveBalanceRepository.CreateIfAbsent(ctx, balance)
			if err != nil {
				return fmt.Errorf("failed to initialize %s balance: %w", p.LeaveType, err)
			}
			if created {
				resp.Created = append(resp.Created, leave.NewLeaveBalanceResponse(balance))
			}
		}
		return nil
	})
	if err != nil {
		resp.Created = []leave.LeaveBalanceResponse{}
		return resp, err
	}

	slog.Info("leave balances initialized", "user_id", userID, "year", year, "created", len(resp.Created))
	return resp, nil
}

// Rollover implements leave.BalanceService. It seeds fromYear+1 balances for
// every fromYear balance whose leave type still has an active policy, in one
// transaction. It can be re-run safely since existing rows are never overwritten.
func (s *BalanceServiceImpl) Rollover(ctx context.Context, fromYear int) (leave.RolloverResponse, error) {
	resp := leave.RolloverResponse{FromYear: fromYear, ToYear: fromYear + 1}

	balances, err := s.LeaveBalanceRepository.ListByYear(ctx, fromYear)
	if err != nil {
		return resp, fmt.Errorf("failed to list %d balances: %w", fromYear, err)
	}

	err = s.atomically(ctx, func(ctx context.Context) error {
		policies := make(map[string]*leave.LeavePolicy)
		for _, prev := range balances {
			policy, seen := policies[prev.LeaveType]
			if !seen {
				p, err := s.LeavePolicyRepository.GetByLeaveType(ctx, prev.LeaveType)
				switch {
				case errors.Is(err, leave.ErrLeavePolicyNotFound):
				case err != nil:
					return fmt.Errorf("failed to get %s policy: %w", prev.LeaveType, err)
				default:
					policy = &p
				}
				policies[prev.LeaveType] = policy
			}
			if policy == nil || !policy.IsActive {
				resp.Skipped++
				continue
			}

			next := leave.LeaveBalance{
				UserID:       prev.UserID,
				LeaveType:    prev.LeaveType,
				Year:         resp.ToYear,
				TotalAllowed: policy.DaysPerYear,
				CarryForward: leave.CarryForward(prev, policy.CarryForwardCap),
			}
			next.Recompute()

			created, err := s.LeaveBalanceRepository.CreateIfAbsent(ctx, next)
			if err != nil {
				return fmt.Errorf("failed to roll over %s balance of %s: %w", prev.LeaveType, prev.UserID, err)
			}
			if created {
				resp.Created++
			} else {
				resp.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		resp.Created, resp.Skipped = 0, 0
		return resp, err
	}

	slog.Info("leave balances rolled over", "from_year", fromYear, "created", resp.Created, "skipped", resp.Skipped)
	return resp, nil
}
