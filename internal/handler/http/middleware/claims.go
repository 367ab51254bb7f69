package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// Claims returns the caller's user id and admin flag from the verified token.
func Claims(r *http.Request) (userID string, isAdmin bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	userID, _ = claims["user_id"].(string)
	isAdmin, _ = claims["is_admin"].(bool)
	return userID, isAdmin
}
