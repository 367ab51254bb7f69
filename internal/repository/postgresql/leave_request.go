package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewLeaveRequestRepository(db *database.DB, retrier *Retrier) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db, retry: retrier}
}

const leaveRequestColumns = `id, user_id, leave_type, start_date, end_date, total_days, status, reason,
	approved_by, approved_date, rejection_reason, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.UserID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.TotalDays,
		&lr.Status,
		&lr.Reason,
		&lr.ApprovedBy,
		&lr.ApprovedDate,
		&lr.RejectionReason,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	query := `
		INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, total_days, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + leaveRequestColumns

	var created leave.LeaveRequest
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = scanLeaveRequest(GetQuerier(ctx, r.db).QueryRow(ctx, query,
			request.UserID, request.LeaveType, request.StartDate, request.EndDate,
			request.TotalDays, request.Status, request.Reason,
		))
		return err
	})
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	var lr leave.LeaveRequest
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		lr, err = scanLeaveRequest(GetQuerier(ctx, r.db).QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
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
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		addArg("leave_type = $%d", *filter.LeaveType)
	}
	if filter.Status != nil && *filter.Status != "" {
		addArg("status = $%d", *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM leave_requests ` + where
	listQuery := fmt.Sprintf(`
		SELECT %s FROM leave_requests %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, where, len(args)+1, len(args)+2)
	listArgs := append(append([]interface{}{}, args...), filter.Limit, (filter.Page-1)*filter.Limit)

	var (
		requests []leave.LeaveRequest
		total    int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}

		rows, err := q.Query(ctx, listQuery, listArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		requests = requests[:0]
		for rows.Next() {
			lr, err := scanLeaveRequest(rows)
			if err != nil {
				return err
			}
			requests = append(requests, lr)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, total, nil
}

func (r *leaveRequestRepositoryImpl) CountByStatus(ctx context.Context, status leave.LeaveRequestStatus) (int64, error) {
	var count int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return GetQuerier(ctx, r.db).QueryRow(ctx,
			`SELECT COUNT(*) FROM leave_requests WHERE status = $1`, status,
		).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count leave requests: %w", err)
	}
	return count, nil
}

func (r *leaveRequestRepositoryImpl) Approve(ctx context.Context, id, approverID string, totalDays int, at time.Time) (leave.LeaveRequest, error) {
	query := `
		UPDATE leave_requests
		SET status = 'approved', total_days = $2, approved_by = $3, approved_date = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + leaveRequestColumns

	return r.transition(ctx, id, query, id, totalDays, approverID, at)
}

func (r *leaveRequestRepositoryImpl) Reject(ctx context.Context, id, reason string, at time.Time) (leave.LeaveRequest, error) {
	query := `
		UPDATE leave_requests
		SET status = 'rejected', rejection_reason = $2, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + leaveRequestColumns

	return r.transition(ctx, id, query, id, reason, at)
}

// transition runs a status-guarded update. No returned row means the request is
// missing or no longer pending.
func (r *leaveRequestRepositoryImpl) transition(ctx context.Context, id, query string, args ...interface{}) (leave.LeaveRequest, error) {
	var updated leave.LeaveRequest
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = scanLeaveRequest(GetQuerier(ctx, r.db).QueryRow(ctx, query, args...))
		return err
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, fmt.Errorf("update leave request status: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return leave.LeaveRequest{}, getErr
	}
	return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
}
