package forecast

import (
	"context"
	"fmt"

	"transit-dashboard/config"
	"transit-dashboard/models"
	"transit-dashboard/util"
)

// ForecastApiClientMock serves the keys and forecast responses from JSON resources.
type ForecastApiClientMock struct {
	keysPath     string
	forecastPath string
}

// NewForecastApiClientMock creates a mock reading the default resources.
func NewForecastApiClientMock() *ForecastApiClientMock {
	return NewForecastApiClientMockFrom(
		config.GetResourcePath(config.KEYS_RESPONSE_RESOURCE),
		config.GetResourcePath(config.FORECAST_RESPONSE_RESOURCE),
	)
}

// NewForecastApiClientMockFrom creates a mock reading the given files.
func NewForecastApiClientMockFrom(keysPath, forecastPath string) *ForecastApiClientMock {
	return &ForecastApiClientMock{
		keysPath:     keysPath,
		forecastPath: forecastPath,
	}
}

func (c *ForecastApiClientMock) GetKeys(ctx context.Context, route config.RouteProfile) (*models.KeysResponse, error) {
	response, err := util.ReadKeysResponseFromJSON(c.keysPath)
	if err != nil {
		return nil, fmt.Errorf("could not read keys response for route %s: %w", route.ID, err)
	}
	return response, nil
}

func (c *ForecastApiClientMock) Forecast(ctx context.Context, route config.RouteProfile, body interface{}) ([]byte, error) {
	data, err := util.ReadRawJSON(c.forecastPath)
	if err != nil {
		return nil, fmt.Errorf("could not read forecast response for route %s: %w", route.ID, err)
	}
	return data, nil
}
