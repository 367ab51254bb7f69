package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregate_CountsAndPercentage(t *testing.T) {
	var records []Attendance
	for d := 1; d <= 20; d++ {
		records = append(records, Attendance{ID: "p", Date: day(2024, time.March, d), Status: StatusPresent})
	}
	records = append(records,
		Attendance{Date: day(2024, time.March, 21), Status: StatusAbsent},
		Attendance{Date: day(2024, time.March, 22), Status: StatusAbsent},
		// outside the month
		Attendance{Date: day(2024, time.April, 1), Status: StatusPresent},
		Attendance{Date: day(2023, time.March, 5), Status: StatusPresent},
	)

	s := Aggregate("u1", records, 3, 2024)

	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, 22, s.TotalDays)
	assert.Equal(t, 20, s.PresentDays)
	assert.Equal(t, 2, s.AbsentDays)
	assert.Equal(t, 91, s.AttendancePercentage)
}

func TestAggregate_HalfDaysCountAsAttendedLateDoNot(t *testing.T) {
	records := []Attendance{
		{Date: day(2024, time.May, 1), Status: StatusPresent},
		{Date: day(2024, time.May, 2), Status: StatusHalfDay},
		{Date: day(2024, time.May, 3), Status: StatusLate},
		{Date: day(2024, time.May, 4), Status: StatusAbsent},
	}

	s := Aggregate("u1", records, 5, 2024)

	assert.Equal(t, 4, s.TotalDays)
	assert.Equal(t, 1, s.HalfDays)
	assert.Equal(t, 1, s.LateDays)
	assert.Equal(t, 50, s.AttendancePercentage)
	assert.Equal(t, s.TotalDays, s.PresentDays+s.AbsentDays+s.HalfDays+s.LateDays)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate("u1", nil, 2, 2024)

	assert.Equal(t, 0, s.TotalDays)
	assert.Equal(t, 0, s.AttendancePercentage)
}

func TestAggregate_DuplicateDaysCountedIndividually(t *testing.T) {
	records := []Attendance{
		{ID: "a", Date: day(2024, time.June, 3), Status: StatusPresent},
		{ID: "b", Date: day(2024, time.June, 3), Status: StatusPresent},
	}

	s := Aggregate("u1", records, 6, 2024)

	assert.Equal(t, 2, s.TotalDays)
	assert.Equal(t, 2, s.PresentDays)
}

func TestDuplicatesToRemove_KeepsEarliestCheckIn(t *testing.T) {
	early := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	records := []Attendance{
		{ID: "second", UserID: "u1", Date: day(2024, time.June, 3), CheckInTime: &late},
		{ID: "first", UserID: "u1", Date: day(2024, time.June, 3), CheckInTime: &early},
		{ID: "other-user", UserID: "u2", Date: day(2024, time.June, 3), CheckInTime: &late},
		{ID: "other-day", UserID: "u1", Date: day(2024, time.June, 4), CheckInTime: &late},
	}

	assert.Equal(t, []string{"second"}, DuplicatesToRemove(records))
}

func TestDateOf_UsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	ts := time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC) // 03:00 next day in WIB

	assert.Equal(t, day(2024, time.June, 4), DateOf(ts, jakarta))
	assert.Equal(t, day(2024, time.June, 3), DateOf(ts, time.UTC))
}
