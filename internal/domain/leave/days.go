package leave

import (
	"math"
	"time"
)

// DaysRequested counts calendar days from start to end, both inclusive.
func DaysRequested(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}

// MonthsSpanned lists every calendar month touched by [start, end] in order.
func MonthsSpanned(start, end time.Time) []Period {
	if end.Before(start) {
		return nil
	}

	var periods []Period
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		periods = append(periods, Period{Month: int(cursor.Month()), Year: cursor.Year()})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return periods
}

// CarryForward is how many of prev's remaining days move into the next year.
func CarryForward(prev LeaveBalance, policyCap int) int {
	if prev.Remaining <= 0 || policyCap <= 0 {
		return 0
	}
	return min(prev.Remaining, policyCap)
}
