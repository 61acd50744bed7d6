package forecast

import (
	"context"

	"transit-dashboard/config"
	"transit-dashboard/models"
)

// ForecastAPI defines the calls made to the forecast services behind each route.
type ForecastAPI interface {
	GetKeys(ctx context.Context, route config.RouteProfile) (*models.KeysResponse, error)
	// Forecast returns the upstream body as received so field order survives.
	Forecast(ctx context.Context, route config.RouteProfile, body interface{}) ([]byte, error)
}
