package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	// Action handles apply, approve and reject
	Action(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)

	// Balances
	GetBalance(w http.ResponseWriter, r *http.Request)
	SetBalance(w http.ResponseWriter, r *http.Request)
	InitializeBalances(w http.ResponseWriter, r *http.Request)
	Rollover(w http.ResponseWriter, r *http.Request)

	// Policies
	ListPolicies(w http.ResponseWriter, r *http.Request)
	GetPolicy(w http.ResponseWriter, r *http.Request)
	CreatePolicy(w http.ResponseWriter, r *http.Request)
	UpdatePolicy(w http.ResponseWriter, r *http.Request)
	DeletePolicy(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	requestService leave.RequestService
	balanceService leave.BalanceService
	policyService  leave.PolicyService
	now            func() time.Time
}

func NewLeaveHandler(requestService leave.RequestService, balanceService leave.BalanceService, policyService leave.PolicyService) LeaveHandler {
	return &leaveHandlerImpl{
		requestService: requestService,
		balanceService: balanceService,
		policyService:  policyService,
		now:            time.Now,
	}
}

// Action implements LeaveHandler.
func (h *leaveHandlerImpl) Action(w http.ResponseWriter, r *http.Request) {
	var req leave.LeaveActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	callerID, isAdmin := middleware.Claims(r)
	if req.Action == leave.ActionApprove || req.Action == leave.ActionReject {
		if !isAdmin {
			response.Forbidden(w, "Admin privilege required")
			return
		}
		req.AdminID = callerID
	}
	if req.Action == leave.ActionApply {
		userID, ok := scopeUserID(w, r, req.UserID)
		if !ok {
			return
		}
		req.UserID = userID
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	switch req.Action {
	case leave.ActionApply:
		result, err := h.requestService.Apply(r.Context(), req.ToApply())
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Created(w, "Leave request submitted", result)

	case leave.ActionApprove:
		result, err := h.requestService.Approve(r.Context(), leave.ApproveLeaveRequest{
			LeaveID:    req.LeaveID,
			ApproverID: req.AdminID,
		})
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Leave request approved", result)

	case leave.ActionReject:
		result, err := h.requestService.Reject(r.Context(), leave.RejectLeaveRequest{
			LeaveID: req.LeaveID,
			Reason:  req.Reason,
		})
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Leave request rejected", result)
	}
}

// GetMyRequests implements LeaveHandler.
func (h *leaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.Claims(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	h.list(w, r, &userID)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, getOptionalQueryParam(r, "user_id"))
}

func (h *leaveHandlerImpl) list(w http.ResponseWriter, r *http.Request, userID *string) {
	filter := leave.LeaveRequestFilter{
		UserID:    userID,
		LeaveType: getOptionalQueryParam(r, "leave_type"),
		Status:    getOptionalQueryParam(r, "status"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
	}

	result, err := h.requestService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.requestService.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if _, ok := scopeUserID(w, r, result.UserID); !ok {
		return
	}

	response.Success(w, result)
}

// GetBalance returns one balance when leave_type is given, otherwise every balance of the year.
func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := scopeUserID(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}
	year := getIntQueryParam(r, "year", h.now().Year())

	leaveType := r.URL.Query().Get("leave_type")
	if leaveType == "" {
		balances, err := h.balanceService.ListBalances(r.Context(), userID, year)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, balances)
		return
	}

	balance, err := h.balanceService.GetBalance(r.Context(), userID, leaveType, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if balance == nil {
		response.HandleError(w, leave.ErrLeaveBalanceNotFound)
		return
	}

	response.Success(w, balance)
}

// SetBalance implements LeaveHandler.
func (h *leaveHandlerImpl) SetBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.SetBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Year == 0 {
		req.Year = h.now().Year()
	}

	result, err := h.balanceService.SetBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance updated", result)
}

type initializeBalancesRequest struct {
	UserID string `json:"user_id"`
}

// InitializeBalances implements LeaveHandler.
func (h *leaveHandlerImpl) InitializeBalances(w http.ResponseWriter, r *http.Request) {
	var req initializeBalancesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		response.ValidationError(w, map[string]string{"user_id": "user_id is required"})
		return
	}

	result, err := h.balanceService.InitializeForUser(r.Context(), req.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

type rolloverRequest struct {
	FromYear int `json:"from_year"`
}

// Rollover carries the remaining days of from_year (default: last year) into the next one.
func (h *leaveHandlerImpl) Rollover(w http.ResponseWriter, r *http.Request) {
	var req rolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.FromYear == 0 {
		req.FromYear = h.now().Year() - 1
	}

	result, err := h.balanceService.Rollover(r.Context(), req.FromYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPolicies implements LeaveHandler.
func (h *leaveHandlerImpl) ListPolicies(w http.ResponseWriter, r *http.Request) {
	result, err := h.policyService.ListPolicies(r.Context(), getBoolQueryParam(r, "active", false))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetPolicy implements LeaveHandler.
func (h *leaveHandlerImpl) GetPolicy(w http.ResponseWriter, r *http.Request) {
	result, err := h.policyService.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CreatePolicy implements LeaveHandler.
func (h *leaveHandlerImpl) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeavePolicyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.policyService.CreatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave policy created", result)
}

// UpdatePolicy implements LeaveHandler.
func (h *leaveHandlerImpl) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateLeavePolicyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.policyService.UpdatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave policy updated", result)
}

// DeletePolicy implements LeaveHandler.
func (h *leaveHandlerImpl) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policyService.DeletePolicy(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave policy deleted", nil)
}
