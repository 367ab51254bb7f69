package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultWorkingDaysPerMonth = 26

	AbsentDeductionID     = "absent-deduction"
	AbsentDeductionReason = "absent"
)

// Breakdown holds the derived salary figures. Totals and NetSalary are rounded
// to cents; PerDaySalary keeps full precision so absence deductions built from
// it round only once.
type Breakdown struct {
	PerDaySalary    decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
}

// Calculate derives the salary figures from its inputs. NetSalary is always
// base + TotalAllowances - TotalDeductions.
func Calculate(base decimal.Decimal, allowances []Allowance, deductions []Deduction, workingDaysPerMonth int) (Breakdown, error) {
	if workingDaysPerMonth < 1 {
		return Breakdown{}, ErrInvalidWorkingDays
	}

	totalAllowances := decimal.Zero
	for _, a := range allowances {
		totalAllowances = totalAllowances.Add(a.Amount)
	}

	totalDeductions := decimal.Zero
	for _, d := range deductions {
		totalDeductions = totalDeductions.Add(d.Amount)
	}

	base = base.Round(2)
	totalAllowances = totalAllowances.Round(2)
	totalDeductions = totalDeductions.Round(2)

	return Breakdown{
		PerDaySalary:    base.Div(decimal.NewFromInt(int64(workingDaysPerMonth))),
		TotalAllowances: totalAllowances,
		TotalDeductions: totalDeductions,
		NetSalary:       base.Add(totalAllowances).Sub(totalDeductions),
	}, nil
}

// WorkingDaysIn is the number of days attendance is expected in a month.
func WorkingDaysIn(month, year int) int {
	return min(DefaultWorkingDaysPerMonth, daysInMonth(month, year))
}

// AbsenceDeduction charges perDay for every expected working day the user was
// not present. It returns the deduction and the absent day count.
func AbsenceDeduction(perDay decimal.Decimal, presentDays, month, year int) (Deduction, int) {
	absentDays := max(0, WorkingDaysIn(month, year)-presentDays)

	return Deduction{
		ID:     AbsentDeductionID,
		Reason: AbsentDeductionReason,
		Amount: perDay.Mul(decimal.NewFromInt(int64(absentDays))).Round(2),
	}, absentDays
}

// ApplyAbsenceDeduction replaces any previous absence deduction with d.
func ApplyAbsenceDeduction(deductions []Deduction, d Deduction) []Deduction {
	out := make([]Deduction, 0, len(deductions)+1)
	for _, existing := range deductions {
		if existing.ID == AbsentDeductionID {
			continue
		}
		out = append(out, existing)
	}
	return append(out, d)
}

func daysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
