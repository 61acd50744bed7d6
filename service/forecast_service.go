package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transit-dashboard/api/forecast"
	"transit-dashboard/config"
	"transit-dashboard/dao/redis"
	"transit-dashboard/logging"
	"transit-dashboard/metrics"
	"transit-dashboard/models"
	"transit-dashboard/transform"
	"transit-dashboard/validation"
)

var (
	// ErrUnknownRoute is returned for route ids without a profile.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrStaleSubmission is returned when a newer submission superseded this one.
	ErrStaleSubmission = errors.New("submission superseded by a newer one")
	// ErrInvalidRequest wraps validation failures of a forecast request.
	ErrInvalidRequest = errors.New("invalid forecast request")
)

// DefaultProjections restricts well-known tables to their display columns.
var DefaultProjections = map[string][]string{
	"combined_table": transform.BusColumns,
}

// ForecastService proxies forecast requests and turns responses into tables.
type ForecastService struct {
	routes      []config.RouteProfile
	forecastApi forecast.ForecastAPI
	dashDao     *redis.RedisDashboardDAO
	generator   transform.Generator
	projections map[string][]string
}

// NewForecastService constructs a ForecastService over the given route profiles.
func NewForecastService(
	routes []config.RouteProfile,
	forecastApi forecast.ForecastAPI,
	dashDao *redis.RedisDashboardDAO) *ForecastService {

	return &ForecastService{
		routes:      routes,
		forecastApi: forecastApi,
		dashDao:     dashDao,
		projections: DefaultProjections,
	}
}

// Routes lists the configured route profiles.
func (fs *ForecastService) Routes() []config.RouteProfile {
	return fs.routes
}

// Route looks up a route profile by id.
func (fs *ForecastService) Route(routeID string) (config.RouteProfile, error) {
	for _, r := range fs.routes {
		if r.ID == routeID {
			return r, nil
		}
	}
	return config.RouteProfile{}, fmt.Errorf("%w: %s", ErrUnknownRoute, routeID)
}

// GetKeys returns the keys of a route, from cache when possible.
func (fs *ForecastService) GetKeys(ctx context.Context, routeID string) (*models.KeysResponse, error) {
	route, err := fs.Route(routeID)
	if err != nil {
		return nil, err
	}
	log := logging.Ctx(ctx, logging.Component("ForecastService"))

	cached, err := fs.dashDao.GetRouteKeys(routeID)
	if err != nil {
		log.Warn().Err(err).Str("route", routeID).Msg("route keys cache read failed")
	}
	metrics.RecordCacheLookup("route_keys", cached != nil)
	if cached != nil {
		return cached, nil
	}

	return fs.RefreshKeys(ctx, route)
}

// RefreshKeys fetches the keys of route from upstream and caches them.
func (fs *ForecastService) RefreshKeys(ctx context.Context, route config.RouteProfile) (*models.KeysResponse, error) {
	keys, err := fs.forecastApi.GetKeys(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keys: %w", err)
	}
	keys = withDefaultWindow(keys)

	if err := fs.dashDao.SetRouteKeys(route.ID, keys, config.ROUTE_KEYS_CACHE_TTL); err != nil {
		logging.Ctx(ctx, logging.Component("ForecastService")).Warn().
			Err(err).Str("route", route.ID).Msg("route keys cache write failed")
	}
	return keys, nil
}

// ProxyForecast forwards body to the forecast endpoint and returns the upstream
// document unchanged.
func (fs *ForecastService) ProxyForecast(ctx context.Context, routeID string, body []byte) ([]byte, error) {
	route, err := fs.Route(routeID)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	raw, err := fs.forecastApi.Forecast(ctx, route, body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	if _, err := transform.DecodeObject(raw); err != nil {
		return nil, fmt.Errorf("forecast response of route %s: %w", routeID, err)
	}
	return raw, nil
}

// RunForecast submits req for the session and returns the display tables.
// Only the latest submission of a session on a route is returned; older ones
// finishing later fail with ErrStaleSubmission.
func (fs *ForecastService) RunForecast(ctx context.Context, routeID, sessionID string, req models.ForecastRequest) (*models.ForecastView, error) {
	route, err := fs.Route(routeID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if route.RequiresKey && req.DFKey == "" {
		return nil, fmt.Errorf("%w: route %s needs a key", ErrInvalidRequest, routeID)
	}
	req = req.WithDefaults()
	log := logging.Ctx(ctx, logging.Component("ForecastService"))

	var token int64
	if sessionID != "" {
		if token, err = fs.dashDao.NextSubmission(sessionID, routeID); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	raw, err := fs.forecastApi.Forecast(ctx, route, req.UpstreamBody(route.SelectorField))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	resp, err := transform.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("forecast response of route %s: %w", routeID, err)
	}

	generator := fs.generator
	generator.Unfiltered = !route.FilterOnAll
	generation := generator.Generate(resp, req.Selector())
	tables := transform.AttachGroups(generation.Tables)
	tables = transform.ApplyProjections(tables, fs.projections)

	if n := len(generation.Collisions); n > 0 {
		metrics.NormalizerCollisions.WithLabelValues(routeID).Add(float64(n))
		log.Warn().
			Str("route", routeID).
			Int("collisions", n).
			Msg("duplicate date and key in results, later values kept")
	}

	if sessionID != "" {
		latest, err := fs.dashDao.CurrentSubmission(sessionID, routeID)
		if err != nil {
			return nil, err
		}
		if latest != token {
			metrics.StaleSubmissions.WithLabelValues(routeID).Inc()
			log.Info().
				Str("route", routeID).
				Int64("submission", token).
				Int64("latest", latest).
				Msg("discarding superseded forecast")
			return nil, ErrStaleSubmission
		}
	}

	log.Debug().
		Str("route", routeID).
		Str("selector", req.Selector()).
		Int("tables", len(tables)).
		Dur("took", time.Since(start)).
		Msg("forecast processed")

	return &models.ForecastView{
		Route:      routeID,
		Selector:   req.Selector(),
		Submission: token,
		Tables:     tables,
		Collisions: generation.Collisions,
	}, nil
}

func validateRequest(req models.ForecastRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidRequest)
	}
	return nil
}

// withDefaultWindow fills missing default dates and trims them to YYYY-MM-DD.
func withDefaultWindow(keys *models.KeysResponse) *models.KeysResponse {
	out := *keys
	if out.Keys == nil {
		out.Keys = []string{}
	}
	out.DefaultStart = dateOnly(out.DefaultStart, config.DEFAULT_START_DATE)
	out.DefaultEnd = dateOnly(out.DefaultEnd, config.DEFAULT_END_DATE)
	return &out
}

func dateOnly(value, fallback string) string {
	if value == "" {
		return fallback
	}
	t, ok := transform.ParseDate(value)
	if !ok {
		return fallback
	}
	return t.Format("2006-01-02")
}
