package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SalaryHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	UpdatePaymentStatus(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMySalaries(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Payslip(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)

	// Configs
	GetConfig(w http.ResponseWriter, r *http.Request)
	UpsertConfig(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService salary.SalaryService
	now           func() time.Time
}

func NewSalaryHandler(salaryService salary.SalaryService) SalaryHandler {
	return &salaryHandlerImpl{
		salaryService: salaryService,
		now:           time.Now,
	}
}

// Generate implements SalaryHandler.
func (h *salaryHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req salary.SalaryRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.salaryService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary generated", result)
}

// Recalculate implements SalaryHandler.
func (h *salaryHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req salary.SalaryRunRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.salaryService.Recalculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary recalculated", result)
}

// UpdatePaymentStatus implements SalaryHandler.
func (h *salaryHandlerImpl) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req salary.UpdatePaymentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.salaryService.UpdatePaymentStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment status updated", result)
}

// List implements SalaryHandler.
func (h *salaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, getOptionalQueryParam(r, "user_id"))
}

// GetMySalaries implements SalaryHandler.
func (h *salaryHandlerImpl) GetMySalaries(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.Claims(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	h.list(w, r, &userID)
}

func (h *salaryHandlerImpl) list(w http.ResponseWriter, r *http.Request, userID *string) {
	filter := salary.SalaryFilter{
		UserID:        userID,
		PaymentStatus: getOptionalQueryParam(r, "payment_status"),
		Page:          getIntQueryParam(r, "page", 1),
		Limit:         getIntQueryParam(r, "limit", 20),
	}
	if r.URL.Query().Get("month") != "" {
		month := getIntQueryParam(r, "month", 0)
		filter.Month = &month
	}
	if r.URL.Query().Get("year") != "" {
		year := getIntQueryParam(r, "year", 0)
		filter.Year = &year
	}

	result, err := h.salaryService.ListSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Salaries, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// ownSalary loads a salary the caller may see: admins see all, employees their own.
func (h *salaryHandlerImpl) ownSalary(w http.ResponseWriter, r *http.Request) (salary.SalaryResponse, bool) {
	result, err := h.salaryService.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return salary.SalaryResponse{}, false
	}

	callerID, isAdmin := middleware.Claims(r)
	if !isAdmin && result.UserID != callerID {
		response.HandleError(w, salary.ErrSalaryAccessForbidden)
		return salary.SalaryResponse{}, false
	}
	return result, true
}

// Get implements SalaryHandler.
func (h *salaryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, ok := h.ownSalary(w, r)
	if !ok {
		return
	}
	response.Success(w, result)
}

// Payslip streams the salary as a PDF download
func (h *salaryHandlerImpl) Payslip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.ownSalary(w, r)
	if !ok {
		return
	}

	pdf, err := h.salaryService.Payslip(r.Context(), s.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "application/pdf", fmt.Sprintf("payslip-%04d-%02d.pdf", s.Year, s.Month), pdf)
}

// Export implements SalaryHandler.
func (h *salaryHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	month, year, err := getPeriodQueryParams(r, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	sheet, err := h.salaryService.Export(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, xlsxContentType, fmt.Sprintf("payroll-%04d-%02d.xlsx", year, month), sheet)
}

// GetConfig implements SalaryHandler.
func (h *salaryHandlerImpl) GetConfig(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.GetConfig(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpsertConfig implements SalaryHandler.
func (h *salaryHandlerImpl) UpsertConfig(w http.ResponseWriter, r *http.Request) {
	var req salary.UpsertSalaryConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = chi.URLParam(r, "userId")

	result, err := h.salaryService.UpsertConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary configuration saved", result)
}
