package models

import (
	"transit-dashboard/config"
	"transit-dashboard/transform"
)

// ForecastRequest is the form submitted from a forecast page.
type ForecastRequest struct {
	DFKey        string `json:"df_key" validate:"omitempty,max=128"`
	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ForecastDays int    `json:"forecast_days" validate:"omitempty,min=1,max=365"`
}

// WithDefaults fills the fields the pages leave empty.
func (r ForecastRequest) WithDefaults() ForecastRequest {
	if r.DFKey == "" {
		r.DFKey = transform.SelectAll
	}
	if r.StartDate == "" {
		r.StartDate = config.DEFAULT_START_DATE
	}
	if r.EndDate == "" {
		r.EndDate = config.DEFAULT_END_DATE
	}
	if r.ForecastDays == 0 {
		r.ForecastDays = config.DEFAULT_FORECAST_DAYS
	}
	return r
}

// Selector is the table selector applied to the forecast response.
func (r ForecastRequest) Selector() string {
	if r.DFKey == "" {
		return transform.SelectAll
	}
	return r.DFKey
}

// UpstreamBody shapes the request for the forecast service behind a route.
// Routes whose selector field is "key" take {key, start, end}.
func (r ForecastRequest) UpstreamBody(selectorField string) map[string]interface{} {
	if selectorField == "key" {
		return map[string]interface{}{
			"key":   r.DFKey,
			"start": r.StartDate,
			"end":   r.EndDate,
		}
	}
	return map[string]interface{}{
		"df_key":        r.DFKey,
		"start_date":    r.StartDate,
		"end_date":      r.EndDate,
		"forecast_days": r.ForecastDays,
	}
}
