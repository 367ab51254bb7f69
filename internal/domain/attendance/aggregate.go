package attendance

import "math"

// Aggregate counts the records whose Date falls in month/year. Every record is
// counted on its own, so two records for the same day add two to TotalDays.
func Aggregate(userID string, records []Attendance, month, year int) MonthlySummary {
	summary := MonthlySummary{UserID: userID, Month: month, Year: year}

	for _, r := range records {
		if r.Date.Year() != year || int(r.Date.Month()) != month {
			continue
		}
		switch r.Status {
		case StatusPresent:
			summary.PresentDays++
		case StatusAbsent:
			summary.AbsentDays++
		case StatusHalfDay:
			summary.HalfDays++
		case StatusLate:
			summary.LateDays++
		default:
			continue
		}
		summary.TotalDays++
	}

	if summary.TotalDays > 0 {
		attended := float64(summary.PresentDays + summary.HalfDays)
		summary.AttendancePercentage = int(math.Round(100 * attended / float64(summary.TotalDays)))
	}

	return summary
}
