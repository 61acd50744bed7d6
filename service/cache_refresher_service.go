package services

import (
	"context"
	"time"

	"transit-dashboard/dao/redis"
	"transit-dashboard/logging"
)

// CacheRefresherService periodically rebuilds the dashboard aggregates and the
// keys of every route that has been requested.
type CacheRefresherService struct {
	dashboard *DashboardService
	forecasts *ForecastService
	dashDao   *redis.RedisDashboardDAO
}

// NewCacheRefresherService constructs a new refresher with dependencies.
func NewCacheRefresherService(
	dashboard *DashboardService,
	forecasts *ForecastService,
	dashDao *redis.RedisDashboardDAO,
) *CacheRefresherService {
	return &CacheRefresherService{
		dashboard: dashboard,
		forecasts: forecasts,
		dashDao:   dashDao,
	}
}

// StartPeriodicJob launches the background loop; it stops when ctx is done.
func (cr *CacheRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go cr.startPeriodicJob(ctx, interval)
}

func (cr *CacheRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	log := logging.Component("CacheRefresherService")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping periodic cache refresher")
			return
		case <-ticker.C:
			log.Debug().Msg("running periodic cache refresher job")
			cr.Refresh(ctx)
		}
	}
}

// Refresh rebuilds the dashboard and the cached route keys. It returns the number
// of caches that failed to refresh.
func (cr *CacheRefresherService) Refresh(ctx context.Context) int {
	log := logging.Component("CacheRefresherService")
	failed := 0

	if _, err := cr.dashboard.RefreshDashboard(ctx); err != nil {
		log.Error().Err(err).Msg("dashboard refresh failed")
		failed++
	}

	ids, err := cr.dashDao.ListCachedRoutes()
	if err != nil {
		log.Error().Err(err).Msg("listing cached routes failed")
		return failed + 1
	}
	for _, id := range ids {
		route, err := cr.forecasts.Route(id)
		if err != nil {
			log.Warn().Str("route", id).Msg("dropping keys of unknown route")
			if err := cr.dashDao.InvalidateRouteKeys(id); err != nil {
				log.Error().Err(err).Str("route", id).Msg("invalidate failed")
			}
			continue
		}
		if _, err := cr.forecasts.RefreshKeys(ctx, route); err != nil {
			log.Error().Err(err).Str("route", id).Msg("route keys refresh failed")
			failed++
		}
	}

	log.Info().Int("routes", len(ids)).Int("failed", failed).Msg("cache refresh finished")
	return failed
}
