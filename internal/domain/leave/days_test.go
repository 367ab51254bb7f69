package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDaysRequested(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"inclusive range", "2024-03-01", "2024-03-03", 3},
		{"single day", "2024-03-01", "2024-03-01", 1},
		{"across month end", "2024-02-28", "2024-03-01", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRequested(date(tt.start), date(tt.end)))
		})
	}
}

func TestDaysRequested_PartialDayRoundsUp(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysRequested(start, end))
}

func TestMonthsSpanned(t *testing.T) {
	assert.Equal(t, []Period{{Month: 3, Year: 2024}}, MonthsSpanned(date("2024-03-01"), date("2024-03-03")))
	assert.Equal(t,
		[]Period{{Month: 12, Year: 2024}, {Month: 1, Year: 2025}},
		MonthsSpanned(date("2024-12-30"), date("2025-01-02")),
	)
	assert.Nil(t, MonthsSpanned(date("2024-03-03"), date("2024-03-01")))
}

func TestCarryForward(t *testing.T) {
	assert.Equal(t, 5, CarryForward(LeaveBalance{Remaining: 9}, 5))
	assert.Equal(t, 3, CarryForward(LeaveBalance{Remaining: 3}, 5))
	assert.Equal(t, 0, CarryForward(LeaveBalance{Remaining: -1}, 5))
	assert.Equal(t, 0, CarryForward(LeaveBalance{Remaining: 9}, 0))
}

func TestLeaveBalance_Recompute(t *testing.T) {
	b := LeaveBalance{TotalAllowed: 12, CarryForward: 2, Used: 3}
	b.Recompute()

	assert.Equal(t, 11, b.Remaining)
}
