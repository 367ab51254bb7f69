package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestPayrollSheet(t *testing.T) {
	paid := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := []PayrollRow{
		{UserID: "u1", BaseSalary: 30000, TotalDeductions: 2307.69, NetSalary: 27692.31, PaymentStatus: "paid", PaymentDate: &paid},
		{UserID: "u2", BaseSalary: 20000, TotalAllowances: 500, NetSalary: 20500, PaymentStatus: "pending"},
	}

	out, err := PayrollSheet(3, 2024, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheet := "Payroll 2024-03"
	assert.Equal(t, []string{sheet}, f.GetSheetList())

	header, _ := f.GetCellValue(sheet, "E3")
	assert.Equal(t, "Net Salary", header)
	user, _ := f.GetCellValue(sheet, "A5")
	assert.Equal(t, "u2", user)
	date, _ := f.GetCellValue(sheet, "G4")
	assert.Equal(t, "2024-04-01", date)
	total, _ := f.GetCellValue(sheet, "A6")
	assert.Equal(t, "TOTAL", total)
}
