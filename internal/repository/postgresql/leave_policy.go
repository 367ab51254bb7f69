package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type leavePolicyRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewLeavePolicyRepository(db *database.DB, retrier *Retrier) leave.LeavePolicyRepository {
	return &leavePolicyRepositoryImpl{db: db, retry: retrier}
}

const leavePolicyColumns = `id, leave_type, name, days_per_year, carry_forward_cap, requires_approval, is_active, created_at, updated_at`

func scanLeavePolicy(row pgx.Row) (leave.LeavePolicy, error) {
	var p leave.LeavePolicy
	err := row.Scan(
		&p.ID, &p.LeaveType, &p.Name, &p.DaysPerYear, &p.CarryForwardCap,
		&p.RequiresApproval, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *leavePolicyRepositoryImpl) Create(ctx context.Context, policy leave.LeavePolicy) (leave.LeavePolicy, error) {
	query := `
		INSERT INTO leave_policies (leave_type, name, days_per_year, carry_forward_cap, requires_approval, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leavePolicyColumns

	var created leave.LeavePolicy
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = scanLeavePolicy(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			policy.LeaveType, policy.Name, policy.DaysPerYear, policy.CarryForwardCap,
			policy.RequiresApproval, policy.IsActive,
		))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return leave.LeavePolicy{}, leave.ErrLeavePolicyExists
		}
		return leave.LeavePolicy{}, fmt.Errorf("create leave policy: %w", err)
	}
	return created, nil
}

func (r *leavePolicyRepositoryImpl) Update(ctx context.Context, policy leave.LeavePolicy) (leave.LeavePolicy, error) {
	query := `
		UPDATE leave_policies
		SET name = $2, days_per_year = $3, carry_forward_cap = $4,
			requires_approval = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leavePolicyColumns

	var updated leave.LeavePolicy
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = scanLeavePolicy(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			policy.ID, policy.Name, policy.DaysPerYear, policy.CarryForwardCap,
			policy.RequiresApproval, policy.IsActive,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeavePolicy{}, leave.ErrLeavePolicyNotFound
		}
		return leave.LeavePolicy{}, fmt.Errorf("update leave policy: %w", err)
	}
	return updated, nil
}

func (r *leavePolicyRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeavePolicy, error) {
	return r.getOne(ctx, `SELECT `+leavePolicyColumns+` FROM leave_policies WHERE id = $1`, id)
}

func (r *leavePolicyRepositoryImpl) GetByLeaveType(ctx context.Context, leaveType string) (leave.LeavePolicy, error) {
	return r.getOne(ctx, `SELECT `+leavePolicyColumns+` FROM leave_policies WHERE leave_type = $1`, leaveType)
}

func (r *leavePolicyRepositoryImpl) getOne(ctx context.Context, query string, arg string) (leave.LeavePolicy, error) {
	var p leave.LeavePolicy
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		p, err = scanLeavePolicy(GetQuerier(ctx, r.db).QueryRow(ctx, query, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeavePolicy{}, leave.ErrLeavePolicyNotFound
		}
		return leave.LeavePolicy{}, fmt.Errorf("get leave policy: %w", err)
	}
	return p, nil
}

func (r *leavePolicyRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]leave.LeavePolicy, error) {
	query := `
		SELECT ` + leavePolicyColumns + `
		FROM leave_policies
		WHERE ($1 = FALSE OR is_active)
		ORDER BY leave_type
	`

	policies := make([]leave.LeavePolicy, 0)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, activeOnly)
		if err != nil {
			return err
		}
		defer rows.Close()

		policies = policies[:0]
		for rows.Next() {
			p, err := scanLeavePolicy(rows)
			if err != nil {
				return err
			}
			policies = append(policies, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list leave policies: %w", err)
	}
	return policies, nil
}

func (r *leavePolicyRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.retry.Do(ctx, func(ctx context.Context) error {
		tag, err := GetQuerier(ctx, r.db).Exec(ctx, `DELETE FROM leave_policies WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete leave policy: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return leave.ErrLeavePolicyNotFound
		}
		return nil
	})
}
