package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// Mark sets the status of a user's day, creating the record when missing (admin)
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// MonthlySummary aggregates a user's records for one calendar month
	MonthlySummary(ctx context.Context, userID string, month, year int) (MonthlySummary, error)

	// Dedupe removes same-day duplicate records, keeping the earliest one per day
	Dedupe(ctx context.Context, dryRun bool) (DedupeResult, error)
}
