package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// PayrollRow is one salary line of the payroll sheet.
type PayrollRow struct {
	UserID          string
	BaseSalary      float64
	TotalAllowances float64
	TotalDeductions float64
	NetSalary       float64
	PaymentStatus   string
	PaymentDate     *time.Time
}

var payrollHeaders = []string{"User ID", "Base Salary", "Allowances", "Deductions", "Net Salary", "Status", "Payment Date"}

// PayrollSheet builds an XLSX workbook listing rows for month/year, followed by a totals line.
func PayrollSheet(month, year int, rows []PayrollRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("Payroll %d-%02d", year, month)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("PAYROLL %s %d", time.Month(month).String(), year))

	for i, h := range payrollHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, "A3", "G3", headerStyle)

	var totalNet, totalDeductions float64
	row := 4
	for _, r := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.BaseSalary)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.TotalAllowances)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.TotalDeductions)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.NetSalary)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.PaymentStatus)
		if r.PaymentDate != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.PaymentDate.Format("2006-01-02"))
		}
		totalNet += r.NetSalary
		totalDeductions += r.TotalDeductions
		row++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "TOTAL")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), totalDeductions)
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), totalNet)
	f.SetCellStyle(sheetName, "B4", fmt.Sprintf("E%d", row), moneyStyle)

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
