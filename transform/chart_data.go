package transform

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Palette is cycled by dataset index.
var Palette = []string{
	"#4E79A7", // soft blue
	"#F28E2B", // warm orange
	"#E15759", // coral red
	"#76B7B2", // teal
	"#59A14F", // green
	"#EDC948", // gold
	"#B07AA1", // lavender
	"#FF9DA7", // pink
	"#9C755F", // brown
	"#BAB0AC", // gray
}

// hoverAlpha is appended to a palette color for the hover background.
const hoverAlpha = "CC"

// Dataset is one series of a chart.
type Dataset struct {
	Label                string    `json:"label"`
	Data                 []float64 `json:"data"`
	BackgroundColor      string    `json:"backgroundColor"`
	BorderColor          string    `json:"borderColor"`
	BorderWidth          int       `json:"borderWidth"`
	BorderRadius         int       `json:"borderRadius"`
	HoverBackgroundColor string    `json:"hoverBackgroundColor"`
	HoverBorderColor     string    `json:"hoverBorderColor"`
}

// ChartData is a labels/datasets structure ready for a bar or line chart.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Color returns the palette color for a dataset index.
func Color(index int) string {
	n := len(Palette)
	return Palette[((index%n)+n)%n]
}

// PrepareChartData builds chart data labelled by the Date column.
func PrepareChartData(rows []*Row) *ChartData {
	return PrepareChartDataBy(rows, DateField)
}

// PrepareChartDataBy builds one dataset per column other than labelKey.
// Columns are the union across all rows in first-seen order; rows lacking a column
// contribute 0. Returns nil for empty input.
func PrepareChartDataBy(rows []*Row, labelKey string) *ChartData {
	if len(rows) == 0 {
		return nil
	}

	var columns []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		for _, k := range r.Keys() {
			if k == labelKey {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			columns = append(columns, k)
		}
	}

	labels := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get(labelKey)
		labels[i] = stringify(v)
	}

	datasets := make([]Dataset, 0, len(columns))
	for i, col := range columns {
		data := make([]float64, len(rows))
		for j, r := range rows {
			v, _ := r.Get(col)
			data[j] = toFloat(v)
		}
		color := Color(i)
		datasets = append(datasets, Dataset{
			Label:                col,
			Data:                 data,
			BackgroundColor:      color,
			BorderColor:          color,
			BorderWidth:          1,
			BorderRadius:         4,
			HoverBackgroundColor: color + hoverAlpha,
			HoverBorderColor:     color,
		})
	}

	return &ChartData{Labels: labels, Datasets: datasets}
}

// toFloat converts a cell to a number; anything non-numeric is 0.
func toFloat(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
