package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"transit-dashboard/models"
	"transit-dashboard/transform"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"
)

// RenderForecastCharts writes an HTML page with one bar chart per table that
// carries chart data.
func RenderForecastCharts(w io.Writer, view *models.ForecastView) error {
	page := components.NewPage()
	for _, table := range view.Tables {
		if table.ChartData == nil {
			continue
		}
		title := fmt.Sprintf("%s forecast: %s", view.Route, table.Title)
		page.AddCharts(BarChart(title, table.ChartData))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render forecast charts: %w", err)
	}
	return nil
}

// RenderDashboard writes the dashboard page: daily trips as a line and the
// service type split as a pie.
func RenderDashboard(w io.Writer, summary *models.DashboardResponse) error {
	page := components.NewPage()
	if summary.Charts.DailyTrips != nil {
		page.AddCharts(LineChart("Daily Trips", summary.Charts.DailyTrips))
	}
	if len(summary.ServiceTypeDistribution) > 0 {
		page.AddCharts(serviceTypePie(summary.ServiceTypeDistribution))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// BarChart plots every dataset as a bar series in its palette color.
func BarChart(title string, data *transform.ChartData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	)

	bar.SetXAxis(data.Labels)
	for _, ds := range data.Datasets {
		values := make([]opts.BarData, len(ds.Data))
		for i, v := range ds.Data {
			values[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(ds.Label, values,
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       ds.BackgroundColor,
				BorderColor: ds.BorderColor,
			}),
		)
	}
	return bar
}

// LineChart plots every dataset as a smoothed line.
func LineChart(title string, data *transform.ChartData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Trips"}),
	)

	line.SetXAxis(data.Labels)
	for _, ds := range data.Datasets {
		values := make([]opts.LineData, len(ds.Data))
		for i, v := range ds.Data {
			values[i] = opts.LineData{Value: v}
		}
		line.AddSeries(ds.Label, values,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BorderColor}),
		)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func serviceTypePie(types []models.ServiceTypeCount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Service Types",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Trips by Service Type"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	items := make([]opts.PieData, len(types))
	for i, t := range types {
		items[i] = opts.PieData{
			Name:      t.ServiceType,
			Value:     t.TripCount,
			ItemStyle: &opts.ItemStyle{Color: transform.Color(i)},
		}
	}
	pie.AddSeries("Trips", items,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
	)
	return pie
}
