package forecast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"transit-dashboard/api"
	"transit-dashboard/config"
	"transit-dashboard/logging"
	"transit-dashboard/metrics"
	"transit-dashboard/models"
)

// ClientSettings tunes the upstream clients and their circuit breakers.
type ClientSettings struct {
	Timeout          time.Duration
	Retries          int
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// SettingsFromConfig picks the upstream settings out of cfg.
func SettingsFromConfig(cfg *config.Config) ClientSettings {
	return ClientSettings{
		Timeout:          cfg.UpstreamTimeout,
		Retries:          cfg.UpstreamRetries,
		BreakerFailures:  cfg.BreakerFailures,
		BreakerOpenDelay: cfg.BreakerOpenDelay,
	}
}

// ForecastApiClient calls the forecast services, one HTTP client per base URL and
// one circuit breaker per route.
type ForecastApiClient struct {
	settings ClientSettings

	mu       sync.Mutex
	clients  map[string]*api.HTTPClient
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewForecastApiClient creates a client for the given settings.
func NewForecastApiClient(settings ClientSettings) *ForecastApiClient {
	if settings.BreakerFailures == 0 {
		settings.BreakerFailures = 5
	}
	if settings.BreakerOpenDelay == 0 {
		settings.BreakerOpenDelay = 30 * time.Second
	}
	return &ForecastApiClient{
		settings: settings,
		clients:  make(map[string]*api.HTTPClient),
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// GetKeys retrieves the selectable keys of a route.
func (c *ForecastApiClient) GetKeys(ctx context.Context, route config.RouteProfile) (*models.KeysResponse, error) {
	body, err := c.call(ctx, route, "keys", http.MethodGet, route.KeysEndpoint, nil)
	if err != nil {
		return nil, err
	}
	var response models.KeysResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode keys of route %s: %w", route.ID, err)
	}
	return &response, nil
}

// Forecast posts body to the forecast endpoint of a route.
func (c *ForecastApiClient) Forecast(ctx context.Context, route config.RouteProfile, body interface{}) ([]byte, error) {
	return c.call(ctx, route, "forecast", http.MethodPost, route.ForecastEndpoint, body)
}

func (c *ForecastApiClient) call(ctx context.Context, route config.RouteProfile, operation, method, endpoint string, body interface{}) ([]byte, error) {
	client, breaker := c.forRoute(route)
	headers := map[string]string{}
	if id := logging.RequestID(ctx); id != "" {
		headers["X-Request-ID"] = id
	}

	start := time.Now()
	res, err := breaker.Execute(func() ([]byte, error) {
		return client.RequestRaw(ctx, method, endpoint, headers, body)
	})
	metrics.RecordUpstream(route.ID, operation, err, time.Since(start))

	if err != nil {
		logging.Ctx(ctx, logging.Component("ForecastApiClient")).Error().
			Err(err).
			Str("route", route.ID).
			Str("operation", operation).
			Msg("upstream call failed")
		return nil, fmt.Errorf("%s request for route %s failed: %w", operation, route.ID, err)
	}
	return res, nil
}

func (c *ForecastApiClient) forRoute(route config.RouteProfile) (*api.HTTPClient, *gobreaker.CircuitBreaker[[]byte]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, ok := c.clients[route.BaseURL]
	if !ok {
		client = api.NewHTTPClient(route.BaseURL, c.settings.Timeout, c.settings.Retries)
		c.clients[route.BaseURL] = client
	}

	breaker, ok := c.breakers[route.ID]
	if !ok {
		breaker = c.newBreaker("forecast-" + route.ID)
		c.breakers[route.ID] = breaker
	}
	return client, breaker
}

func (c *ForecastApiClient) newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	failures := c.settings.BreakerFailures
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.settings.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller going away says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Component("ForecastApiClient").Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}
