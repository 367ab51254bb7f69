package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type salaryConfigRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewSalaryConfigRepository(db *database.DB, retrier *Retrier) salary.SalaryConfigRepository {
	return &salaryConfigRepositoryImpl{db: db, retry: retrier}
}

const salaryConfigColumns = `user_id, base_salary, allowances, total_leaves_allowed, working_days_per_month, created_at, updated_at`

func scanSalaryConfig(row pgx.Row) (salary.SalaryConfig, error) {
	var (
		c             salary.SalaryConfig
		allowancesRaw []byte
	)
	err := row.Scan(
		&c.UserID, &c.BaseSalary, &allowancesRaw, &c.TotalLeavesAllowed,
		&c.WorkingDaysPerMonth, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return salary.SalaryConfig{}, err
	}
	if len(allowancesRaw) > 0 {
		if err := json.Unmarshal(allowancesRaw, &c.Allowances); err != nil {
			return salary.SalaryConfig{}, fmt.Errorf("decode allowances: %w", err)
		}
	}
	return c, nil
}

func (r *salaryConfigRepositoryImpl) Get(ctx context.Context, userID string) (salary.SalaryConfig, error) {
	query := `SELECT ` + salaryConfigColumns + ` FROM salary_configs WHERE user_id = $1`

	var c salary.SalaryConfig
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		c, err = scanSalaryConfig(GetQuerier(ctx, r.db).QueryRow(ctx, query, userID))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.SalaryConfig{}, salary.ErrSalaryConfigNotFound
		}
		return salary.SalaryConfig{}, fmt.Errorf("get salary config: %w", err)
	}
	return c, nil
}

func (r *salaryConfigRepositoryImpl) Upsert(ctx context.Context, config salary.SalaryConfig) (salary.SalaryConfig, error) {
	if config.Allowances == nil {
		config.Allowances = []salary.Allowance{}
	}
	allowances, err := json.Marshal(config.Allowances)
	if err != nil {
		return salary.SalaryConfig{}, fmt.Errorf("encode allowances: %w", err)
	}

	query := `
		INSERT INTO salary_configs (user_id, base_salary, allowances, total_leaves_allowed, working_days_per_month)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET base_salary = EXCLUDED.base_salary,
			allowances = EXCLUDED.allowances,
			total_leaves_allowed = EXCLUDED.total_leaves_allowed,
			working_days_per_month = EXCLUDED.working_days_per_month,
			updated_at = NOW()
		RETURNING ` + salaryConfigColumns

	var saved salary.SalaryConfig
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = scanSalaryConfig(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			config.UserID, config.BaseSalary, allowances, config.TotalLeavesAllowed, config.WorkingDaysPerMonth,
		))
		return err
	})
	if err != nil {
		return salary.SalaryConfig{}, fmt.Errorf("upsert salary config: %w", err)
	}
	return saved, nil
}
