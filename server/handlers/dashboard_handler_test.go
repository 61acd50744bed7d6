package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"transit-dashboard/models"
	"transit-dashboard/transform"
)

type fakeDashboard struct {
	summary *models.DashboardResponse
	err     error
}

func (f *fakeDashboard) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	return f.summary, f.err
}

func sampleSummary() *models.DashboardResponse {
	return &models.DashboardResponse{
		Stats:                   []models.StatCard{{Title: "Total Trips", Value: "12"}},
		ServiceTypeDistribution: []models.ServiceTypeCount{{ServiceType: "AC", TripCount: 12}},
		DailyTrips:              []models.DailyTripCount{{TripDate: "2024-11-30", TripCount: 12}},
		Charts: models.DashboardCharts{
			DailyTrips: transform.PrepareChartDataBy([]*transform.Row{
				transform.RowOf("trip_date", "2024-11-30", "Trips", 12),
			}, "trip_date"),
		},
	}
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{summary: sampleSummary()})
	rr := httptest.NewRecorder()

	h.GetDashboard(rr, httptest.NewRequest("GET", "/v1/dashboard", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"serviceTypeDistribution":[{"service_type":"AC","trip_count":12}]`)
	assert.Contains(t, rr.Body.String(), `"dailyTrips":[{"trip_date":"2024-11-30","trip_count":12}]`)
}

func TestDashboardHandler_GetDashboardPage(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{summary: sampleSummary()})
	rr := httptest.NewRecorder()

	h.GetDashboardPage(rr, httptest.NewRequest("GET", "/dashboard", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Daily Trips")
}

func TestDashboardHandler_Error(t *testing.T) {
	h := NewDashboardHandler(&fakeDashboard{err: errors.New("mysql down")})

	rr := httptest.NewRecorder()
	h.GetDashboard(rr, httptest.NewRequest("GET", "/v1/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to load dashboard"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.GetDashboardPage(rr, httptest.NewRequest("GET", "/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
