package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewLeaveBalanceRepository(db *database.DB, retrier *Retrier) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db, retry: retrier}
}

// remaining is a generated column, so it is only ever read.
const leaveBalanceColumns = `id, user_id, leave_type, year, total_allowed, used, remaining, carry_forward, created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.UserID, &b.LeaveType, &b.Year,
		&b.TotalAllowed, &b.Used, &b.Remaining, &b.CarryForward,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *leaveBalanceRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveBalance, error) {
	balances := make([]leave.LeaveBalance, 0)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		balances = balances[:0]
		for rows.Next() {
			b, err := scanLeaveBalance(rows)
			if err != nil {
				return err
			}
			balances = append(balances, b)
		}
		return rows.Err()
	})
	return balances, err
}

func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID, leaveType string, year int) (*leave.LeaveBalance, error) {
	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE user_id = $1 AND leave_type = $2 AND year = $3
	`

	var b leave.LeaveBalance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		b, err = scanLeaveBalance(GetQuerier(ctx, r.db).QueryRow(ctx, query, userID, leaveType, year))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get leave balance: %w", err)
	}
	return &b, nil
}

func (r *leaveBalanceRepositoryImpl) ListByUserAndYear(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	balances, err := r.list(ctx, `
		SELECT `+leaveBalanceColumns+`
		FROM leave_balances
		WHERE user_id = $1 AND year = $2
		ORDER BY leave_type
	`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	return balances, nil
}

func (r *leaveBalanceRepositoryImpl) ListByYear(ctx context.Context, year int) ([]leave.LeaveBalance, error) {
	balances, err := r.list(ctx, `
		SELECT `+leaveBalanceColumns+`
		FROM leave_balances
		WHERE year = $1
		ORDER BY user_id, leave_type
	`, year)
	if err != nil {
		return nil, fmt.Errorf("list leave balances by year: %w", err)
	}
	return balances, nil
}

func (r *leaveBalanceRepositoryImpl) Replace(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	query := `
		INSERT INTO leave_balances (user_id, leave_type, year, total_allowed, used, carry_forward)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uk_leave_balance_user_type_year DO UPDATE
		SET total_allowed = EXCLUDED.total_allowed,
			used = EXCLUDED.used,
			carry_forward = EXCLUDED.carry_forward,
			updated_at = NOW()
		RETURNING ` + leaveBalanceColumns

	var saved leave.LeaveBalance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = scanLeaveBalance(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			balance.UserID, balance.LeaveType, balance.Year,
			balance.TotalAllowed, balance.Used, balance.CarryForward,
		))
		return err
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("replace leave balance: %w", err)
	}
	return saved, nil
}

func (r *leaveBalanceRepositoryImpl) CreateIfAbsent(ctx context.Context, balance leave.LeaveBalance) (bool, error) {
	query := `
		INSERT INTO leave_balances (user_id, leave_type, year, total_allowed, used, carry_forward)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uk_leave_balance_user_type_year DO NOTHING
	`

	var created bool
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		tag, err := GetQuerier(ctx, r.db).Exec(ctx, query,
			balance.UserID, balance.LeaveType, balance.Year,
			balance.TotalAllowed, balance.Used, balance.CarryForward,
		)
		if err != nil {
			return err
		}
		created = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create leave balance: %w", err)
	}
	return created, nil
}

func (r *leaveBalanceRepositoryImpl) IncrementUsed(ctx context.Context, userID, leaveType string, year, days, totalAllowed int) (leave.LeaveBalance, error) {
	query := `
		INSERT INTO leave_balances (user_id, leave_type, year, total_allowed, used, carry_forward)
		VALUES ($1, $2, $3, $4, $5, 0)
		ON CONFLICT ON CONSTRAINT uk_leave_balance_user_type_year DO UPDATE
		SET used = leave_balances.used + EXCLUDED.used,
			updated_at = NOW()
		RETURNING ` + leaveBalanceColumns

	var saved leave.LeaveBalance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = scanLeaveBalance(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			userID, leaveType, year, totalAllowed, days,
		))
		return err
	})
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("increment leave balance: %w", err)
	}
	return saved, nil
}
