package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate returns nil when the user has no record for date.
	// Used to prevent double check-in
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// Update updates an existing attendance record
	Update(ctx context.Context, attendance Attendance) error

	// ListByUserBetween returns every record of userID with from <= date < to.
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	CountByStatusOnDate(ctx context.Context, date time.Time) (map[Status]int, error)

	// ListDuplicates returns every record that shares (user, date) with another one.
	ListDuplicates(ctx context.Context) ([]Attendance, error)

	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
