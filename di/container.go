package di

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"transit-dashboard/api/forecast"
	"transit-dashboard/config"
	"transit-dashboard/dao/mysql"
	"transit-dashboard/dao/redis"
	"transit-dashboard/db"
	"transit-dashboard/logging"
	"transit-dashboard/server"
	"transit-dashboard/server/handlers"
	services "transit-dashboard/service"
)

// Container holds all application dependencies.
type Container struct {
	Config                *config.Config
	RedisClient           db.RedisClient
	RedisDashboardDao     *redis.RedisDashboardDAO
	TripsStore            mysql.TripsStore
	ForecastAPI           forecast.ForecastAPI
	ForecastService       *services.ForecastService
	DashboardService      *services.DashboardService
	CacheRefresherService *services.CacheRefresherService
	ForecastHandler       *handlers.ForecastHandler
	DashboardHandler      *handlers.DashboardHandler
	MuxRouter             *mux.Router
	Router                *server.Router
	DashboardHttpServer   *server.DashboardHttpServer

	closers []func() error
}

// NewContainer initializes and wires up all dependencies. Outside prod the
// upstream API, trips database and Redis are replaced by local fakes.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logging.Component("Container")
	log.Info().Str("env", cfg.Env).Msg("initializing container")
	c := &Container{Config: cfg}

	var (
		redisClient db.RedisClient
		forecastApi forecast.ForecastAPI
		tripsStore  mysql.TripsStore
	)

	if cfg.IsProd() {
		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		goRedisClient, err := db.NewGoRedisClient(ctx, redisInternalClient)
		if err != nil {
			redisInternalClient.Close()
			return nil, err
		}
		c.closers = append(c.closers, redisInternalClient.Close)
		redisClient = goRedisClient

		sqlDB, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, closeDB(sqlDB))
		tripsStore = mysql.NewTripsDAO(sqlDB)

		forecastApi = forecast.NewForecastApiClient(forecast.SettingsFromConfig(cfg))
		log.Info().Msg("using prod redis, mysql and forecast api")
	} else {
		redisClient = db.NewMockRedisClient(ctx)
		tripsStore = mysql.NewSnapshotTripsStore(config.GetResourcePath(config.DASHBOARD_TRIPS_RESOURCE))
		forecastApi = forecast.NewForecastApiClientMock()
		log.Info().Msg("using in-memory redis and fixture-backed forecast api and trips")
	}

	dashDao := redis.NewRedisDashboardDAO(redisClient)
	forecastService := services.NewForecastService(cfg.RouteProfiles(), forecastApi, dashDao)
	dashboardService := services.NewDashboardService(tripsStore, dashDao)

	muxRouter := mux.NewRouter()
	forecastHandler := handlers.NewForecastHandler(forecastService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	router := server.NewRouter(
		forecastHandler,
		dashboardHandler,
		server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		muxRouter,
	)

	c.RedisClient = redisClient
	c.RedisDashboardDao = dashDao
	c.TripsStore = tripsStore
	c.ForecastAPI = forecastApi
	c.ForecastService = forecastService
	c.DashboardService = dashboardService
	c.CacheRefresherService = services.NewCacheRefresherService(dashboardService, forecastService, dashDao)
	c.ForecastHandler = forecastHandler
	c.DashboardHandler = dashboardHandler
	c.MuxRouter = muxRouter
	c.Router = router
	c.DashboardHttpServer = server.NewDashboardHttpServer(router, muxRouter, cfg.Port, cfg.ShutdownTimeout)
	return c, nil
}

// Close releases the connections opened by NewContainer.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func closeDB(sqlDB *sql.DB) func() error {
	return func() error {
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close mysql: %w", err)
		}
		return nil
	}
}
