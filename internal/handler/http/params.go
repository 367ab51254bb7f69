package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func getOptionalQueryParam(r *http.Request, key string) *string {
	if val := r.URL.Query().Get(key); val != "" {
		return &val
	}
	return nil
}

// getPeriodQueryParams reads month and year, defaulting each to the current one.
func getPeriodQueryParams(r *http.Request, now time.Time) (month, year int, err error) {
	month = getIntQueryParam(r, "month", int(now.Month()))
	year = getIntQueryParam(r, "year", now.Year())
	if !validator.IsValidPeriod(month, year) {
		var errs validator.ValidationErrors
		errs.Add("period", "month must be 1-12 and year must be valid")
		return 0, 0, errs.Err()
	}
	return month, year, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// scopeUserID resolves which user a request acts on. Admins may name anyone;
// everyone else is limited to themselves and an empty id means the caller.
func scopeUserID(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	callerID, isAdmin := middleware.Claims(r)
	if callerID == "" {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	if requested == "" {
		return callerID, true
	}
	if requested != callerID && !isAdmin {
		response.Forbidden(w, "You can only access your own records")
		return "", false
	}
	return requested, true
}
