package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Line is one allowance or deduction row.
type Line struct {
	Label  string
	Amount string
}

// Data is everything printed on a payslip. Amounts are preformatted.
type Data struct {
	SalaryID        string
	UserID          string
	Month           int
	Year            int
	BaseSalary      string
	PerDaySalary    string
	Allowances      []Line
	Deductions      []Line
	TotalAllowances string
	TotalDeductions string
	NetSalary       string
	PaymentStatus   string
	PaymentDate     *time.Time
}

// Render lays the payslip out on a single A4 page.
func Render(d Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %02d/%d", d.Month, d.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", d.UserID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s %d", time.Month(d.Month).String(), d.Year))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Reference: %s", d.SalaryID))
	pdf.Ln(10)

	row := func(label, amount string) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, amount, "", 1, "R", false, 0, "")
	}
	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(170, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	section("Earnings")
	row("Base salary", d.BaseSalary)
	for _, a := range d.Allowances {
		row(a.Label, a.Amount)
	}
	row("Total allowances", d.TotalAllowances)
	pdf.Ln(4)

	section("Deductions")
	if len(d.Deductions) == 0 {
		row("None", "0.00")
	}
	for _, ded := range d.Deductions {
		row(ded.Label, ded.Amount)
	}
	row("Total deductions", d.TotalDeductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	row("Net salary", d.NetSalary)
	pdf.SetFont("Helvetica", "", 10)
	row("Per day salary", d.PerDaySalary)
	pdf.Ln(6)

	status := fmt.Sprintf("Payment status: %s", d.PaymentStatus)
	if d.PaymentDate != nil {
		status += fmt.Sprintf(" (%s)", d.PaymentDate.Format("2006-01-02"))
	}
	pdf.Cell(0, 7, status)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
