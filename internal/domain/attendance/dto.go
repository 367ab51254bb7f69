package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const (
	ActionCheckIn  = "checkin"
	ActionCheckOut = "checkout"
	ActionMark     = "mark"
)

// AttendanceActionRequest is the body of POST /attendance. Timestamp is RFC3339
// and defaults to now; Date is YYYY-MM-DD and only used by mark.
type AttendanceActionRequest struct {
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	Status    *string   `json:"status,omitempty"`
	Date      *string   `json:"date,omitempty"`
	Timestamp *string   `json:"timestamp,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

func (r *AttendanceActionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Action, []string{ActionCheckIn, ActionCheckOut, ActionMark}) {
		errs.Add("action", "action must be one of: checkin, checkout, mark")
	}

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}

	if r.Timestamp != nil && *r.Timestamp != "" {
		if _, valid := validator.IsValidDateTime(*r.Timestamp); !valid {
			errs.Add("timestamp", "timestamp must be RFC3339")
		}
	}

	if r.Action == ActionMark {
		if r.Status == nil || !Status(*r.Status).IsValid() {
			errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
		}
		if r.Date != nil && *r.Date != "" {
			if _, valid := validator.IsValidDate(*r.Date); !valid {
				errs.Add("date", "date must be in YYYY-MM-DD format")
			}
		}
	}

	if r.Location != nil {
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
			errs.Add("location.latitude", "latitude must be between -90 and 90")
		}
		if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			errs.Add("location.longitude", "longitude must be between -180 and 180")
		}
	}

	return errs.Err()
}

// At returns the parsed timestamp, or nil when none was given. Call after Validate.
func (r *AttendanceActionRequest) At() *time.Time {
	if r.Timestamp == nil || *r.Timestamp == "" {
		return nil
	}
	t, _ := validator.IsValidDateTime(*r.Timestamp)
	return &t
}

type CheckInRequest struct {
	UserID    string
	Timestamp *time.Time
	Location  *Location
}

type CheckOutRequest struct {
	UserID    string
	Timestamp *time.Time
	Location  *Location
}

type MarkAttendanceRequest struct {
	UserID string
	Status Status
	Date   *time.Time
}

type AttendanceResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             string    `json:"date"`
	CheckInTime      *string   `json:"check_in_time"`
	CheckOutTime     *string   `json:"check_out_time"`
	Status           string    `json:"status"`
	CheckInLocation  *Location `json:"check_in_location,omitempty"`
	CheckOutLocation *Location `json:"check_out_location,omitempty"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		Date:             a.Date.Format("2006-01-02"),
		Status:           string(a.Status),
		CheckInLocation:  a.CheckInLocation,
		CheckOutLocation: a.CheckOutLocation,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CheckInTime != nil {
		s := a.CheckInTime.Format(time.RFC3339)
		resp.CheckInTime = &s
	}
	if a.CheckOutTime != nil {
		s := a.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &s
	}
	return resp
}

type AttendanceFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc"
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type DedupeResult struct {
	Duplicates int      `json:"duplicates"`
	Removed    int64    `json:"removed"`
	IDs        []string `json:"ids"`
	DryRun     bool     `json:"dry_run"`
}
