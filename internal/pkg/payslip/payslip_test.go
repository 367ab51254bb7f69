package payslip

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ProducesPDF(t *testing.T) {
	paid := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	out, err := Render(Data{
		SalaryID:        "s1",
		UserID:          "u1",
		Month:           3,
		Year:            2024,
		BaseSalary:      "30000.00",
		PerDaySalary:    "1153.85",
		Deductions:      []Line{{Label: "absent", Amount: "2307.69"}},
		TotalAllowances: "0.00",
		TotalDeductions: "2307.69",
		NetSalary:       "27692.31",
		PaymentStatus:   "paid",
		PaymentDate:     &paid,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
