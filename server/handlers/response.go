package handlers

import (
	"net/http"

	"github.com/goccy/go-json"

	"transit-dashboard/config"
	"transit-dashboard/logging"
	"transit-dashboard/models"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Component("Handlers").Error().Err(err).Msg("error encoding response")
	}
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, models.ErrorResponse{Error: message})
}

// SessionID returns the caller's session from the header or the session cookie.
func SessionID(r *http.Request) string {
	if id := r.Header.Get(config.SESSION_HEADER_NAME); id != "" {
		return id
	}
	if cookie, err := r.Cookie(config.SESSION_COOKIE_NAME); err == nil {
		return cookie.Value
	}
	return ""
}
