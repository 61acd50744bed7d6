package models

import "transit-dashboard/transform"

// ServiceTypeCount is one row of the service type distribution.
type ServiceTypeCount struct {
	ServiceType string `json:"service_type"`
	TripCount   int64  `json:"trip_count"`
}

// DailyTripCount is the number of trips recorded on one day.
type DailyTripCount struct {
	TripDate  string `json:"trip_date"`
	TripCount int64  `json:"trip_count"`
}

// StatCard is a headline number on the dashboard.
type StatCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Trend string `json:"trend"`
}

// DashboardCharts holds the chart-ready aggregates.
type DashboardCharts struct {
	DailyTrips   *transform.ChartData `json:"dailyTrips,omitempty"`
	ServiceTypes *transform.ChartData `json:"serviceTypes,omitempty"`
}

// DashboardResponse is served by the dashboard endpoint and cached in Redis.
type DashboardResponse struct {
	Stats                   []StatCard         `json:"stats"`
	ServiceTypeDistribution []ServiceTypeCount `json:"serviceTypeDistribution"`
	DailyTrips              []DailyTripCount   `json:"dailyTrips"`
	Charts                  DashboardCharts    `json:"charts"`
	GeneratedAt             string             `json:"generatedAt"`
}

// TripsSnapshot holds pre-aggregated trip counts, used as a development fixture.
type TripsSnapshot struct {
	ServiceTypes []ServiceTypeCount `json:"service_types"`
	DailyTrips   []DailyTripCount   `json:"daily_trips"`
}
