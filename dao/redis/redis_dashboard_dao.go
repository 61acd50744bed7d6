package redis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"transit-dashboard/config"
	"transit-dashboard/db"
	"transit-dashboard/logging"
	"transit-dashboard/models"
)

// RedisDashboardDAO caches dashboard aggregates and route keys, and issues
// forecast submission tokens.
type RedisDashboardDAO struct {
	client db.RedisClient
}

// NewRedisDashboardDAO initializes a RedisDashboardDAO with the Redis client.
func NewRedisDashboardDAO(client db.RedisClient) *RedisDashboardDAO {
	return &RedisDashboardDAO{client: client}
}

// SetDashboardSummary caches the dashboard aggregates for ttl.
func (dao *RedisDashboardDAO) SetDashboardSummary(summary *models.DashboardResponse, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard summary: %w", err)
	}
	if err := dao.client.SetWithTTL(config.DASHBOARD_SUMMARY_KEY_V1, string(data), ttl); err != nil {
		return fmt.Errorf("failed to set dashboard summary in redis: %w", err)
	}
	return nil
}

// GetDashboardSummary returns nil without error on a cache miss.
func (dao *RedisDashboardDAO) GetDashboardSummary() (*models.DashboardResponse, error) {
	str, err := dao.client.Get(config.DASHBOARD_SUMMARY_KEY_V1)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard summary from redis: %w", err)
	}
	var summary models.DashboardResponse
	if err := json.Unmarshal([]byte(str), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dashboard summary JSON: %w", err)
	}
	return &summary, nil
}

// SetRouteKeys caches the keys list of a route for ttl.
func (dao *RedisDashboardDAO) SetRouteKeys(routeID string, keys *models.KeysResponse, ttl time.Duration) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal keys for route %s: %w", routeID, err)
	}
	key := fmt.Sprintf(config.ROUTE_KEYS_KEY_FORMAT_V1, routeID)
	if err := dao.client.SetWithTTL(key, string(data), ttl); err != nil {
		return fmt.Errorf("failed to set route keys in redis: %w", err)
	}
	return nil
}

// GetRouteKeys returns nil without error on a cache miss.
func (dao *RedisDashboardDAO) GetRouteKeys(routeID string) (*models.KeysResponse, error) {
	key := fmt.Sprintf(config.ROUTE_KEYS_KEY_FORMAT_V1, routeID)
	str, err := dao.client.Get(key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route keys from redis: %w", err)
	}
	var keys models.KeysResponse
	if err := json.Unmarshal([]byte(str), &keys); err != nil {
		return nil, fmt.Errorf("failed to unmarshal route keys JSON: %w", err)
	}
	return &keys, nil
}

// ListCachedRoutes returns the ids of routes with cached keys.
func (dao *RedisDashboardDAO) ListCachedRoutes() ([]string, error) {
	keys, err := dao.client.Keys(fmt.Sprintf(config.ROUTE_KEYS_KEY_FORMAT_V1, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list route keys: %w", err)
	}
	prefix := fmt.Sprintf(config.ROUTE_KEYS_KEY_FORMAT_V1, "")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

// InvalidateRouteKeys drops the cached keys of a route.
func (dao *RedisDashboardDAO) InvalidateRouteKeys(routeID string) error {
	key := fmt.Sprintf(config.ROUTE_KEYS_KEY_FORMAT_V1, routeID)
	if err := dao.client.Del(key); err != nil {
		return fmt.Errorf("failed to delete route keys %s: %w", key, err)
	}
	logging.Component("RedisDashboardDAO").Debug().Str("route", routeID).Msg("invalidated route keys")
	return nil
}

// NextSubmission issues a new, strictly increasing token for session and route.
func (dao *RedisDashboardDAO) NextSubmission(sessionID, routeID string) (int64, error) {
	key := fmt.Sprintf(config.FORECAST_SUBMISSION_KEY_FORMAT_V1, sessionID, routeID)
	token, err := dao.client.Incr(key)
	if err != nil {
		return 0, fmt.Errorf("failed to issue submission token: %w", err)
	}
	if err := dao.client.Expire(key, config.SUBMISSION_TOKEN_TTL); err != nil {
		return 0, fmt.Errorf("failed to set submission token expiry: %w", err)
	}
	return token, nil
}

// CurrentSubmission returns the latest token issued for session and route, or 0.
func (dao *RedisDashboardDAO) CurrentSubmission(sessionID, routeID string) (int64, error) {
	key := fmt.Sprintf(config.FORECAST_SUBMISSION_KEY_FORMAT_V1, sessionID, routeID)
	str, err := dao.client.Get(key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read submission token: %w", err)
	}
	token, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("submission token %q is not an integer: %w", str, err)
	}
	return token, nil
}
