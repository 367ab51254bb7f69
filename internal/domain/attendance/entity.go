package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLate    Status = "late"
)

var validStatuses = []string{string(StatusPresent), string(StatusAbsent), string(StatusHalfDay), string(StatusLate)}

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLate:
		return true
	}
	return false
}

// Location is where a check-in or check-out happened.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

// Attendance is a single day record. Date is the calendar day at midnight UTC.
type Attendance struct {
	ID               string
	UserID           string
	Date             time.Time
	CheckInTime      *time.Time
	CheckOutTime     *time.Time
	Status           Status
	CheckInLocation  *Location
	CheckOutLocation *Location
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type MonthlySummary struct {
	UserID               string `json:"user_id"`
	Month                int    `json:"month"`
	Year                 int    `json:"year"`
	TotalDays            int    `json:"total_days"`
	PresentDays          int    `json:"present_days"`
	AbsentDays           int    `json:"absent_days"`
	HalfDays             int    `json:"half_days"`
	LateDays             int    `json:"late_days"`
	AttendancePercentage int    `json:"attendance_percentage"`
}

// DateOf returns the calendar day of t in loc as midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
