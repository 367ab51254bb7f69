package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	// Action handles checkin, checkout and mark
	Action(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

// Action implements AttendanceHandler.
func (h *attendanceHandlerImpl) Action(w http.ResponseWriter, r *http.Request) {
	var req attendance.AttendanceActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Action == attendance.ActionMark {
		if _, isAdmin := middleware.Claims(r); !isAdmin {
			response.Forbidden(w, "Admin privilege required")
			return
		}
	}

	userID, ok := scopeUserID(w, r, req.UserID)
	if !ok {
		return
	}
	req.UserID = userID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	switch req.Action {
	case attendance.ActionCheckIn:
		result, err := h.attendanceService.CheckIn(r.Context(), attendance.CheckInRequest{
			UserID:    req.UserID,
			Timestamp: req.At(),
			Location:  req.Location,
		})
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Created(w, "Check in successful", result)

	case attendance.ActionCheckOut:
		result, err := h.attendanceService.CheckOut(r.Context(), attendance.CheckOutRequest{
			UserID:    req.UserID,
			Timestamp: req.At(),
			Location:  req.Location,
		})
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Check out successful", result)

	case attendance.ActionMark:
		mark := attendance.MarkAttendanceRequest{UserID: req.UserID, Status: attendance.Status(*req.Status)}
		if req.Date != nil && *req.Date != "" {
			date, _ := validator.IsValidDate(*req.Date)
			mark.Date = &date
		}
		result, err := h.attendanceService.Mark(r.Context(), mark)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Attendance marked", result)
	}
}

// GetMyAttendance lists the caller's records of one month
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.Claims(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	month, year, err := getPeriodQueryParams(r, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := monthFilter(month, year)
	filter.UserID = &userID
	filter.Page = getIntQueryParam(r, "page", 1)
	filter.Limit = getIntQueryParam(r, "limit", 31)
	filter.SortOrder = "asc"

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := scopeUserID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}

	month, year, err := getPeriodQueryParams(r, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.MonthlySummary(r.Context(), userID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// List is the admin view over every user's records
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{}
	if r.URL.Query().Get("month") != "" || r.URL.Query().Get("year") != "" {
		month, year, err := getPeriodQueryParams(r, h.now())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		filter = monthFilter(month, year)
	}

	filter.UserID = getOptionalQueryParam(r, "user_id")
	filter.Status = getOptionalQueryParam(r, "status")
	filter.Page = getIntQueryParam(r, "page", 1)
	filter.Limit = getIntQueryParam(r, "limit", 20)
	filter.SortOrder = r.URL.Query().Get("sort_order")

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if _, ok := scopeUserID(w, r, result.UserID); !ok {
		return
	}

	response.Success(w, result)
}

func monthFilter(month, year int) attendance.AttendanceFilter {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	start := first.Format("2006-01-02")
	end := first.AddDate(0, 1, -1).Format("2006-01-02")
	return attendance.AttendanceFilter{StartDate: &start, EndDate: &end}
}
