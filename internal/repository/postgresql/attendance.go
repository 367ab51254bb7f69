package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db    *database.DB
	retry *Retrier
}

func NewAttendanceRepository(db *database.DB, retrier *Retrier) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db, retry: retrier}
}

const attendanceColumns = `id, user_id, date, check_in_time, check_out_time, status, check_in_location, check_out_location, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		a                   attendance.Attendance
		inLocRaw, outLocRaw []byte
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Date,
		&a.CheckInTime,
		&a.CheckOutTime,
		&a.Status,
		&inLocRaw,
		&outLocRaw,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if a.CheckInLocation, err = decodeLocation(inLocRaw); err != nil {
		return attendance.Attendance{}, err
	}
	if a.CheckOutLocation, err = decodeLocation(outLocRaw); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func decodeLocation(raw []byte) (*attendance.Location, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var loc attendance.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &loc, nil
}

func encodeLocation(loc *attendance.Location) ([]byte, error) {
	if loc == nil {
		return nil, nil
	}
	return json.Marshal(loc)
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	inLoc, err := encodeLocation(a.CheckInLocation)
	if err != nil {
		return attendance.Attendance{}, err
	}
	outLoc, err := encodeLocation(a.CheckOutLocation)
	if err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		INSERT INTO attendances (
			user_id, date, check_in_time, check_out_time, status,
			check_in_location, check_out_location
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + attendanceColumns

	var created attendance.Attendance
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		var err error
		created, err = scanAttendance(q.QueryRow(ctx, query,
			a.UserID, a.Date, a.CheckInTime, a.CheckOutTime, a.Status, inLoc, outLoc,
		))
		return err
	})
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("create attendance: %w", err)
	}
	return created, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	var a attendance.Attendance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		a, err = scanAttendance(GetQuerier(ctx, r.db).QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	var a attendance.Attendance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		a, err = scanAttendance(GetQuerier(ctx, r.db).QueryRow(ctx, query, userID, date))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance by date: %w", err)
	}
	return &a, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) error {
	inLoc, err := encodeLocation(a.CheckInLocation)
	if err != nil {
		return err
	}
	outLoc, err := encodeLocation(a.CheckOutLocation)
	if err != nil {
		return err
	}

	query := `
		UPDATE attendances
		SET check_in_time = $2, check_out_time = $3, status = $4,
			check_in_location = $5, check_out_location = $6, updated_at = NOW()
		WHERE id = $1
	`

	return r.retry.Do(ctx, func(ctx context.Context) error {
		tag, err := GetQuerier(ctx, r.db).Exec(ctx, query,
			a.ID, a.CheckInTime, a.CheckOutTime, a.Status, inLoc, outLoc,
		)
		if err != nil {
			return fmt.Errorf("update attendance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return attendance.ErrAttendanceNotFound
		}
		return nil
	})
}

func (r *attendanceRepositoryImpl) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, created_at ASC
	`

	var records []attendance.Attendance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, userID, from, to)
		if err != nil {
			return err
		}
		records, err = collectAttendances(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
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
	if filter.Status != nil && *filter.Status != "" {
		addArg("status = $%d", *filter.Status)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		if start, err := time.Parse("2006-01-02", *filter.StartDate); err == nil {
			addArg("date >= $%d", start)
		}
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		if end, err := time.Parse("2006-01-02", *filter.EndDate); err == nil {
			addArg("date <= $%d", end)
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	countQuery := `SELECT COUNT(*) FROM attendances ` + where
	listQuery := fmt.Sprintf(`
		SELECT %s FROM attendances %s
		ORDER BY date %s, created_at %s
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, order, order, len(args)+1, len(args)+2)
	listArgs := append(append([]interface{}{}, args...), filter.Limit, (filter.Page-1)*filter.Limit)

	var (
		records []attendance.Attendance
		total   int64
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
		records, err = collectAttendances(rows)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	return records, total, nil
}

func (r *attendanceRepositoryImpl) CountByStatusOnDate(ctx context.Context, date time.Time) (map[attendance.Status]int, error) {
	query := `SELECT status, COUNT(*) FROM attendances WHERE date = $1 GROUP BY status`

	counts := make(map[attendance.Status]int)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, date)
		if err != nil {
			return err
		}
		defer rows.Close()

		clear(counts)
		for rows.Next() {
			var (
				status attendance.Status
				count  int
			)
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			counts[status] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}
	return counts, nil
}

func (r *attendanceRepositoryImpl) ListDuplicates(ctx context.Context) ([]attendance.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE EXISTS (
			SELECT 1 FROM attendances b
			WHERE b.user_id = a.user_id AND b.date = a.date AND b.id <> a.id
		)
		ORDER BY user_id, date, created_at
	`

	var records []attendance.Attendance
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query)
		if err != nil {
			return err
		}
		records, err = collectAttendances(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list duplicate attendance: %w", err)
	}
	return records, nil
}

func (r *attendanceRepositoryImpl) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		tag, err := GetQuerier(ctx, r.db).Exec(ctx, `DELETE FROM attendances WHERE id = ANY($1::uuid[])`, ids)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return deleted, nil
}
