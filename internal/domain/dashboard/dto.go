package dashboard

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
)

// DashboardResponse is the combined response for the admin dashboard endpoint
type DashboardResponse struct {
	Date                 string                  `json:"date"`
	PendingLeaveRequests int64                   `json:"pending_leave_requests"`
	AttendanceToday      AttendanceStatsResponse `json:"attendance_today"`
	Payroll              salary.PayrollSummary   `json:"payroll"`
	Realtime             RealtimeStatsResponse   `json:"realtime"`
}

// AttendanceStatsResponse counts today's attendance records by status
type AttendanceStatsResponse struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	HalfDay int `json:"half_day"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}

type RealtimeStatsResponse struct {
	Subscribers int `json:"subscribers"`
}
