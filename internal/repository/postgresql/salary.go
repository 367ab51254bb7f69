package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type salaryRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewSalaryRepository(db *database.DB, retrier *Retrier) salary.SalaryRepository {
	return &salaryRepositoryImpl{db: db, retry: retrier}
}

const salaryColumns = `id, user_id, period_month, period_year, base_salary, allowances, deductions,
	per_day_salary, total_allowances, total_deductions, net_salary, payment_status, payment_date,
	created_at, updated_at`

func scanSalary(row pgx.Row) (salary.Salary, error) {
	var (
		s                            salary.Salary
		allowancesRaw, deductionsRaw []byte
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.Month, &s.Year, &s.BaseSalary, &allowancesRaw, &deductionsRaw,
		&s.PerDaySalary, &s.TotalAllowances, &s.TotalDeductions, &s.NetSalary,
		&s.PaymentStatus, &s.PaymentDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return salary.Salary{}, err
	}
	if len(allowancesRaw) > 0 {
		if err := json.Unmarshal(allowancesRaw, &s.Allowances); err != nil {
			return salary.Salary{}, fmt.Errorf("decode allowances: %w", err)
		}
	}
	if len(deductionsRaw) > 0 {
		if err := json.Unmarshal(deductionsRaw, &s.Deductions); err != nil {
			return salary.Salary{}, fmt.Errorf("decode deductions: %w", err)
		}
	}
	return s, nil
}

func salaryJSON(s salary.Salary) (allowances, deductions []byte, err error) {
	if s.Allowances == nil {
		s.Allowances = []salary.Allowance{}
	}
	if s.Deductions == nil {
		s.Deductions = []salary.Deduction{}
	}
	if allowances, err = json.Marshal(s.Allowances); err != nil {
		return nil, nil, fmt.Errorf("encode allowances: %w", err)
	}
	if deductions, err = json.Marshal(s.Deductions); err != nil {
		return nil, nil, fmt.Errorf("encode deductions: %w", err)
	}
	return allowances, deductions, nil
}

func (r *salaryRepositoryImpl) Create(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	allowances, deductions, err := salaryJSON(s)
	if err != nil {
		return salary.Salary{}, err
	}

	query := `
		INSERT INTO salaries (
			user_id, period_month, period_year, base_salary, allowances, deductions,
			per_day_salary, total_allowances, total_deductions, net_salary, payment_status, payment_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + salaryColumns

	var created salary.Salary
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = scanSalary(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			s.UserID, s.Month, s.Year, s.BaseSalary, allowances, deductions,
			s.PerDaySalary, s.TotalAllowances, s.TotalDeductions, s.NetSalary, s.PaymentStatus, s.PaymentDate,
		))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return salary.Salary{}, salary.ErrSalaryAlreadyExists
		}
		return salary.Salary{}, fmt.Errorf("create salary: %w", err)
	}
	return created, nil
}

func (r *salaryRepositoryImpl) Upsert(ctx context.Context, s salary.Salary) (salary.Salary, error) {
	allowances, deductions, err := salaryJSON(s)
	if err != nil {
		return salary.Salary{}, err
	}

	query := `
		INSERT INTO salaries (
			user_id, period_month, period_year, base_salary, allowances, deductions,
			per_day_salary, total_allowances, total_deductions, net_salary, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ON CONSTRAINT uk_salary_user_period DO UPDATE
		SET base_salary = EXCLUDED.base_salary,
			allowances = EXCLUDED.allowances,
			deductions = EXCLUDED.deductions,
			per_day_salary = EXCLUDED.per_day_salary,
			total_allowances = EXCLUDED.total_allowances,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			updated_at = NOW()
		RETURNING ` + salaryColumns

	var saved salary.Salary
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		saved, err = scanSalary(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			s.UserID, s.Month, s.Year, s.BaseSalary, allowances, deductions,
			s.PerDaySalary, s.TotalAllowances, s.TotalDeductions, s.NetSalary, salary.PaymentStatusPending,
		))
		return err
	})
	if err != nil {
		return salary.Salary{}, fmt.Errorf("upsert salary: %w", err)
	}
	return saved, nil
}

func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (salary.Salary, error) {
	query := `SELECT ` + salaryColumns + ` FROM salaries WHERE id = $1`

	var s salary.Salary
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		s, err = scanSalary(GetQuerier(ctx, r.db).QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Salary{}, salary.ErrSalaryNotFound
		}
		return salary.Salary{}, fmt.Errorf("get salary: %w", err)
	}
	return s, nil
}

func (r *salaryRepositoryImpl) GetByUserPeriod(ctx context.Context, userID string, month, year int) (*salary.Salary, error) {
	query := `
		SELECT ` + salaryColumns + `
		FROM salaries
		WHERE user_id = $1 AND period_month = $2 AND period_year = $3
	`

	var s salary.Salary
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		s, err = scanSalary(GetQuerier(ctx, r.db).QueryRow(ctx, query, userID, month, year))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get salary by period: %w", err)
	}
	return &s, nil
}

func (r *salaryRepositoryImpl) collect(ctx context.Context, query string, args ...interface{}) ([]salary.Salary, error) {
	salaries := make([]salary.Salary, 0)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		salaries = salaries[:0]
		for rows.Next() {
			s, err := scanSalary(rows)
			if err != nil {
				return err
			}
			salaries = append(salaries, s)
		}
		return rows.Err()
	})
	return salaries, err
}

func (r *salaryRepositoryImpl) List(ctx context.Context, filter salary.SalaryFilter) ([]salary.Salary, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)
	addArg := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil && *filter.UserID != "" {
		addArg("user_id = $%d", *filter.UserID)
	}
	if filter.Month != nil {
		addArg("period_month = $%d", *filter.Month)
	}
	if filter.Year != nil {
		addArg("period_year = $%d", *filter.Year)
	}
	if filter.PaymentStatus != nil && *filter.PaymentStatus != "" {
		addArg("payment_status = $%d", *filter.PaymentStatus)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return GetQuerier(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM salaries `+where, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count salaries: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM salaries %s
		ORDER BY period_year DESC, period_month DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, salaryColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	salaries, err := r.collect(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list salaries: %w", err)
	}
	return salaries, total, nil
}

func (r *salaryRepositoryImpl) ListByPeriod(ctx context.Context, month, year int) ([]salary.Salary, error) {
	salaries, err := r.collect(ctx, `
		SELECT `+salaryColumns+`
		FROM salaries
		WHERE period_month = $1 AND period_year = $2
		ORDER BY user_id
	`, month, year)
	if err != nil {
		return nil, fmt.Errorf("list salaries by period: %w", err)
	}
	return salaries, nil
}

func (r *salaryRepositoryImpl) UpdatePaymentStatus(ctx context.Context, id string, status salary.PaymentStatus, paymentDate *time.Time) (salary.Salary, error) {
	query := `
		UPDATE salaries
		SET payment_status = $2, payment_date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + salaryColumns

	var updated salary.Salary
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = scanSalary(GetQuerier(ctx, r.db).QueryRow(ctx, query, id, status, paymentDate))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Salary{}, salary.ErrSalaryNotFound
		}
		return salary.Salary{}, fmt.Errorf("update payment status: %w", err)
	}
	return updated, nil
}

func (r *salaryRepositoryImpl) MarkOverdue(ctx context.Context, cutoff time.Time) ([]salary.Salary, error) {
	// a period ends on the first day of the following month
	salaries, err := r.collect(ctx, `
		UPDATE salaries
		SET payment_status = 'overdue', updated_at = NOW()
		WHERE payment_status = 'pending'
		  AND (make_date(period_year, period_month, 1) + INTERVAL '1 month') <= $1::date
		RETURNING `+salaryColumns, cutoff)
	if err != nil {
		return nil, fmt.Errorf("mark salaries overdue: %w", err)
	}
	return salaries, nil
}

func (r *salaryRepositoryImpl) Summary(ctx context.Context, month, year int) (salary.PayrollSummary, error) {
	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE payment_status = 'pending'),
			   COUNT(*) FILTER (WHERE payment_status = 'paid'),
			   COUNT(*) FILTER (WHERE payment_status = 'overdue'),
			   COALESCE(SUM(net_salary), 0),
			   COALESCE(SUM(total_deductions), 0)
		FROM salaries
		WHERE period_month = $1 AND period_year = $2
	`

	summary := salary.PayrollSummary{Month: month, Year: year}
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return GetQuerier(ctx, r.db).QueryRow(ctx, query, month, year).Scan(
			&summary.Records, &summary.Pending, &summary.Paid, &summary.Overdue,
			&summary.TotalNetSalary, &summary.TotalDeductions,
		)
	})
	if err != nil {
		return salary.PayrollSummary{}, fmt.Errorf("salary summary: %w", err)
	}
	return summary, nil
}
