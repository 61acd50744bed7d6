package models

import "transit-dashboard/transform"

// ForecastView is the display-ready result of one forecast submission.
type ForecastView struct {
	Route      string                      `json:"route"`
	Selector   string                      `json:"selector"`
	Submission int64                       `json:"submission"`
	Tables     []transform.TableDescriptor `json:"tables"`
	Collisions []transform.Collision       `json:"collisions,omitempty"`
}

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
