package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-dashboard/models"
	"transit-dashboard/transform"
)

func sampleChart() *transform.ChartData {
	return transform.PrepareChartData([]*transform.Row{
		transform.RowOf("Date", "2024-01-01", "df_49M", 10, "df_49MA", 4),
		transform.RowOf("Date", "2024-01-02", "df_49M", 12),
	})
}

func TestRenderForecastCharts(t *testing.T) {
	view := &models.ForecastView{
		Route: "49m_route",
		Tables: []transform.TableDescriptor{
			{ID: "results", Title: "results", ChartData: sampleChart()},
			{ID: "combined_table", Title: "combined_table"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderForecastCharts(&buf, view))

	html := buf.String()
	assert.Contains(t, html, "49m_route forecast: results")
	assert.NotContains(t, html, "forecast: combined_table")
	assert.Contains(t, html, "df_49MA")
	assert.Contains(t, html, "#F28E2B")
}

func TestRenderDashboard(t *testing.T) {
	summary := &models.DashboardResponse{
		ServiceTypeDistribution: []models.ServiceTypeCount{{ServiceType: "METRO EXPRESS", TripCount: 12}},
		Charts: models.DashboardCharts{
			DailyTrips: transform.PrepareChartDataBy([]*transform.Row{
				transform.RowOf("trip_date", "2024-11-29", "Trips", 3),
				transform.RowOf("trip_date", "2024-11-30", "Trips", 5),
			}, "trip_date"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDashboard(&buf, summary))

	html := buf.String()
	assert.Contains(t, html, "Daily Trips")
	assert.Contains(t, html, "Trips by Service Type")
	assert.Contains(t, html, "METRO EXPRESS")
}

func TestBarChartSeries(t *testing.T) {
	bar := BarChart("t", sampleChart())
	assert.Len(t, bar.MultiSeries, 2)
}
