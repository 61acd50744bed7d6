package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"transit-dashboard/config"
	"transit-dashboard/dao/mysql"
	"transit-dashboard/dao/redis"
	"transit-dashboard/logging"
	"transit-dashboard/metrics"
	"transit-dashboard/models"
	"transit-dashboard/transform"
)

const (
	tripDateLabel    = "trip_date"
	serviceTypeLabel = "service_type"
	tripsSeries      = "Trips"
)

// DashboardService builds the ticketing aggregates shown on the dashboard.
type DashboardService struct {
	trips   mysql.TripsStore
	dashDao *redis.RedisDashboardDAO
	now     func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(trips mysql.TripsStore, dashDao *redis.RedisDashboardDAO) *DashboardService {
	return &DashboardService{
		trips:   trips,
		dashDao: dashDao,
		now:     time.Now,
	}
}

// GetDashboard returns the cached aggregates, rebuilding them on a miss.
func (ds *DashboardService) GetDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	cached, err := ds.dashDao.GetDashboardSummary()
	if err != nil {
		logging.Ctx(ctx, logging.Component("DashboardService")).Warn().Err(err).Msg("dashboard cache read failed")
	}
	metrics.RecordCacheLookup("dashboard", cached != nil)
	if cached != nil {
		return cached, nil
	}
	return ds.RefreshDashboard(ctx)
}

// RefreshDashboard queries the trips store and replaces the cached aggregates.
func (ds *DashboardService) RefreshDashboard(ctx context.Context) (*models.DashboardResponse, error) {
	serviceTypes, err := ds.trips.ServiceTypeDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load service type distribution: %w", err)
	}
	daily, err := ds.trips.DailyTrips(ctx, config.DAILY_TRIPS_LIMIT)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily trips: %w", err)
	}

	summary := &models.DashboardResponse{
		Stats:                   statCards(serviceTypes, daily),
		ServiceTypeDistribution: serviceTypes,
		DailyTrips:              daily,
		Charts: models.DashboardCharts{
			DailyTrips:   dailyTripsChart(daily),
			ServiceTypes: serviceTypesChart(serviceTypes),
		},
		GeneratedAt: ds.now().UTC().Format(time.RFC3339),
	}

	if err := ds.dashDao.SetDashboardSummary(summary, config.DASHBOARD_CACHE_TTL); err != nil {
		logging.Ctx(ctx, logging.Component("DashboardService")).Warn().Err(err).Msg("dashboard cache write failed")
	}
	return summary, nil
}

// dailyTripsChart plots the days oldest first; the store returns them newest first.
func dailyTripsChart(daily []models.DailyTripCount) *transform.ChartData {
	rows := make([]*transform.Row, 0, len(daily))
	for i := len(daily) - 1; i >= 0; i-- {
		rows = append(rows, transform.RowOf(tripDateLabel, daily[i].TripDate, tripsSeries, daily[i].TripCount))
	}
	return transform.PrepareChartDataBy(rows, tripDateLabel)
}

func serviceTypesChart(types []models.ServiceTypeCount) *transform.ChartData {
	rows := make([]*transform.Row, 0, len(types))
	for _, t := range types {
		rows = append(rows, transform.RowOf(serviceTypeLabel, t.ServiceType, tripsSeries, t.TripCount))
	}
	return transform.PrepareChartDataBy(rows, serviceTypeLabel)
}

func statCards(types []models.ServiceTypeCount, daily []models.DailyTripCount) []models.StatCard {
	var total int64
	for _, t := range types {
		total += t.TripCount
	}
	cards := []models.StatCard{
		{Title: "Total Trips", Value: formatCount(total)},
		{Title: "Service Types", Value: strconv.Itoa(len(types))},
	}

	if len(daily) > 0 {
		latest := models.StatCard{Title: "Latest Day", Value: formatCount(daily[0].TripCount)}
		if len(daily) > 1 {
			latest.Trend = trend(daily[0].TripCount, daily[1].TripCount)
		}
		busiest := daily[0]
		for _, d := range daily[1:] {
			if d.TripCount > busiest.TripCount {
				busiest = d
			}
		}
		cards = append(cards, latest, models.StatCard{
			Title: "Busiest Day",
			Value: busiest.TripDate,
			Trend: formatCount(busiest.TripCount) + " trips",
		})
	}
	return cards
}

// trend formats the relative change from previous to current, e.g. "+4.2%".
func trend(current, previous int64) string {
	if previous == 0 {
		return ""
	}
	change := float64(current-previous) / float64(previous) * 100
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(change, 'f', 1, 64) + "%"
}

// formatCount groups digits by thousands.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
