package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Redis keys
const DASHBOARD_SUMMARY_KEY_V1 = "dashboard_summary_v1"
const ROUTE_KEYS_KEY_FORMAT_V1 = "route_keys_v1:%s"
const FORECAST_SUBMISSION_KEY_FORMAT_V1 = "forecast_submission_v1:%s:%s"

// Cache lifetimes
// Dashboard aggregates are recomputed at most hourly.
const DASHBOARD_CACHE_TTL = time.Hour
const ROUTE_KEYS_CACHE_TTL = 10 * time.Minute
const SUBMISSION_TOKEN_TTL = 24 * time.Hour

// Background cache refresher
const CACHE_REFRESHER_SCHEDULE_MINUTES = 30

// Forecast request defaults
const DEFAULT_START_DATE = "2023-12-01"
const DEFAULT_END_DATE = "2024-12-31"
const DEFAULT_FORECAST_DAYS = 7

// Dashboard queries
const TRIPS_TABLE = "wl_upl_nov24"
const DAILY_TRIPS_LIMIT = 7

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const KEYS_RESPONSE_RESOURCE = "keys_response.json"
const FORECAST_RESPONSE_RESOURCE = "forecast_response.json"
const DASHBOARD_TRIPS_RESOURCE = "dashboard_trips.json"

// Session handling
const SESSION_COOKIE_NAME = "dashboard_session"
const SESSION_HEADER_NAME = "X-Session-ID"

// Config holds the environment driven settings.
type Config struct {
	Env  string `env:"APP_ENV,default=dev"`
	Port string `env:"PORT,default=8080"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	RedisAddress  string `env:"REDIS_ADDRESS,default=redis:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	MySQLDSN string `env:"MYSQL_DSN,default=dashboard:dashboard@tcp(mysql:3306)/ticketing?parseTime=true"`

	ForecastAPIBase  string        `env:"API_BASE,default=http://localhost:5000"`
	WRLUppalAPIBase  string        `env:"API_WRL_UPPAL,default=http://localhost:5001"`
	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT,default=30s"`
	UpstreamRetries  int           `env:"UPSTREAM_RETRIES,default=0"`
	BreakerFailures  uint32        `env:"BREAKER_FAILURES,default=5"`
	BreakerOpenDelay time.Duration `env:"BREAKER_OPEN_DELAY,default=30s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=40"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// IsProd reports whether real Redis, MySQL and upstream clients should be used.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// RouteProfile describes one forecast page and the upstream service behind it.
type RouteProfile struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BaseURL          string `json:"-"`
	KeysEndpoint     string `json:"keys_endpoint"`
	ForecastEndpoint string `json:"forecast_endpoint"`
	// SelectorField names the request field that carries the table selector.
	SelectorField string `json:"selector_field"`
	// RequiresKey rejects submissions without a selected key.
	RequiresKey bool `json:"requires_key"`
	// FilterOnAll limits the "ALL" selection to the well-known tables.
	FilterOnAll bool `json:"filter_on_all"`
}

// RouteProfiles returns the forecast routes shown in the sidebar.
func (c *Config) RouteProfiles() []RouteProfile {
	return []RouteProfile{
		{
			ID:               "49m_route",
			Name:             "49m Route",
			BaseURL:          c.ForecastAPIBase,
			KeysEndpoint:     "/api/keys",
			ForecastEndpoint: "/api/forecast",
			SelectorField:    "df_key",
			FilterOnAll:      true,
		},
		{
			ID:               "oprs",
			Name:             "OPRS",
			BaseURL:          c.ForecastAPIBase,
			KeysEndpoint:     "/api/keys3",
			ForecastEndpoint: "/api/forecast3",
			SelectorField:    "key",
			RequiresKey:      true,
		},
		{
			ID:               "wrl_uppal",
			Name:             "WRL Uppal",
			BaseURL:          c.WRLUppalAPIBase,
			KeysEndpoint:     "/api/keys_app10",
			ForecastEndpoint: "/api/forecast_app10",
			SelectorField:    "df_key",
			FilterOnAll:      true,
		},
	}
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
