package handlers

import "net/http"

// Ping answers liveness probes.
func Ping(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}
