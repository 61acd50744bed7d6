package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-dashboard/config"
	"transit-dashboard/dao/redis"
	"transit-dashboard/db"
	"transit-dashboard/models"
)

const forecastBody = `{
	"results": [
		{"key": "A", "table": [{"Date": "2024-01-02", "No Of Passengers": 5}, {"Date": "2024-01-01", "No Of Passengers": 3}]},
		{"key": "B", "table": [{"Date": "2024-01-01", "No Of Passengers": 7}, {"Date": "2024-01-01", "No Of Passengers": 8}]}
	],
	"combined_table": [{"Date": "2024-01-01", "Extra": 1, "Buses_CO": 2, "Grand Total": 9}],
	"grouped_results_by_prefix_table": [
		{"DATAFRAME": "A", "DATE": "2024-01-01", "NO OF PASSENGERS": 3},
		{"DATAFRAME": "B", "DATE": "2024-01-01", "NO OF PASSENGERS": 7}
	],
	"debug_table": [{"x": 1}]
}`

type fakeForecastAPI struct {
	keys       *models.KeysResponse
	body       string
	err        error
	keyCalls   int
	lastBody   interface{}
	beforeBody func()
}

func (f *fakeForecastAPI) GetKeys(ctx context.Context, route config.RouteProfile) (*models.KeysResponse, error) {
	f.keyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keys, nil
}

func (f *fakeForecastAPI) Forecast(ctx context.Context, route config.RouteProfile, body interface{}) ([]byte, error) {
	f.lastBody = body
	if f.beforeBody != nil {
		f.beforeBody()
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func newForecastService(api *fakeForecastAPI) (*ForecastService, *redis.RedisDashboardDAO) {
	cfg := &config.Config{ForecastAPIBase: "http://forecast", WRLUppalAPIBase: "http://uppal"}
	dao := redis.NewRedisDashboardDAO(db.NewMockRedisClient(context.Background()))
	return NewForecastService(cfg.RouteProfiles(), api, dao), dao
}

func TestForecastService_RunForecast(t *testing.T) {
	api := &fakeForecastAPI{body: forecastBody}
	svc, _ := newForecastService(api)

	view, err := svc.RunForecast(context.Background(), "49m_route", "session-1", models.ForecastRequest{})
	require.NoError(t, err)

	assert.Equal(t, "ALL", view.Selector)
	assert.Equal(t, int64(1), view.Submission)
	assert.Equal(t, map[string]interface{}{
		"df_key": "ALL", "start_date": "2023-12-01", "end_date": "2024-12-31", "forecast_days": 7,
	}, api.lastBody)

	ids := make([]string, len(view.Tables))
	for i, tbl := range view.Tables {
		ids[i] = tbl.ID
	}
	assert.Equal(t, []string{"results", "combined_table", "grouped_results_by_prefix_table"}, ids)

	results := view.Tables[0]
	require.Len(t, results.Rows, 2)
	assert.Equal(t, []string{"Date", "A", "B"}, results.Rows[0].Keys())
	require.NotNil(t, results.ChartData)

	combined := view.Tables[1]
	assert.Equal(t, []string{"Date", "Buses_CO", "Grand Total"}, combined.Columns)

	grouped := view.Tables[2]
	require.Len(t, grouped.Groups, 2)
	assert.Equal(t, "A", grouped.Groups[0].Name)

	require.Len(t, view.Collisions, 1)
	assert.Equal(t, "B", view.Collisions[0].Key)
}

func TestForecastService_RunForecast_KeySelectorBody(t *testing.T) {
	api := &fakeForecastAPI{body: forecastBody}
	svc, _ := newForecastService(api)

	view, err := svc.RunForecast(context.Background(), "oprs", "", models.ForecastRequest{
		DFKey: "A", StartDate: "2024-01-01", EndDate: "2024-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"key": "A", "start": "2024-01-01", "end": "2024-01-31"}, api.lastBody)
	assert.Equal(t, int64(0), view.Submission)

	ids := make([]string, len(view.Tables))
	for i, tbl := range view.Tables {
		ids[i] = tbl.ID
	}
	assert.Contains(t, ids, "debug_table")
}

func TestForecastService_RunForecast_KeyRequired(t *testing.T) {
	api := &fakeForecastAPI{body: forecastBody}
	svc, dao := newForecastService(api)

	_, err := svc.RunForecast(context.Background(), "oprs", "session-1", models.ForecastRequest{})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Nil(t, api.lastBody)
	current, err := dao.CurrentSubmission("session-1", "oprs")
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)
}

func TestForecastService_RunForecast_UnfilteredRouteShowsAllTables(t *testing.T) {
	api := &fakeForecastAPI{body: `{"results":[],"custom_table":[{"a":1}],"combined_table":[{"Date":"2024-01-01","Buses_CO":2}]}`}
	svc, _ := newForecastService(api)

	view, err := svc.RunForecast(context.Background(), "oprs", "", models.ForecastRequest{DFKey: "ALL"})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"key": "ALL", "start": "2023-12-01", "end": "2024-12-31"}, api.lastBody)
	ids := make([]string, len(view.Tables))
	for i, tbl := range view.Tables {
		ids[i] = tbl.ID
	}
	assert.Equal(t, []string{"custom_table", "combined_table"}, ids)
}

func TestForecastService_RunForecast_Errors(t *testing.T) {
	upstream := errors.New("connection refused")

	tests := []struct {
		name    string
		route   string
		req     models.ForecastRequest
		api     *fakeForecastAPI
		wantErr error
	}{
		{"unknown route", "nope", models.ForecastRequest{}, &fakeForecastAPI{body: forecastBody}, ErrUnknownRoute},
		{"bad date", "oprs", models.ForecastRequest{StartDate: "01-01-2024"}, &fakeForecastAPI{body: forecastBody}, ErrInvalidRequest},
		{"reversed window", "oprs", models.ForecastRequest{StartDate: "2024-02-01", EndDate: "2024-01-01"}, &fakeForecastAPI{body: forecastBody}, ErrInvalidRequest},
		{"upstream", "49m_route", models.ForecastRequest{}, &fakeForecastAPI{err: upstream}, upstream},
		{"missing key", "oprs", models.ForecastRequest{}, &fakeForecastAPI{body: forecastBody}, ErrInvalidRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, _ := newForecastService(test.api)
			_, err := svc.RunForecast(context.Background(), test.route, "s", test.req)
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestForecastService_RunForecast_NonObjectResponse(t *testing.T) {
	svc, _ := newForecastService(&fakeForecastAPI{body: `[1,2,3]`})

	_, err := svc.RunForecast(context.Background(), "49m_route", "", models.ForecastRequest{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRequest)
}

func TestForecastService_RunForecast_Stale(t *testing.T) {
	api := &fakeForecastAPI{body: forecastBody}
	svc, dao := newForecastService(api)

	api.beforeBody = func() {
		_, err := dao.NextSubmission("session-1", "oprs")
		require.NoError(t, err)
	}

	req := models.ForecastRequest{DFKey: "A"}
	_, err := svc.RunForecast(context.Background(), "oprs", "session-1", req)
	assert.ErrorIs(t, err, ErrStaleSubmission)

	api.beforeBody = nil
	view, err := svc.RunForecast(context.Background(), "oprs", "session-1", req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.Submission)
}

func TestForecastService_GetKeys_Cached(t *testing.T) {
	api := &fakeForecastAPI{keys: &models.KeysResponse{
		Keys:         []string{"A"},
		DefaultStart: "2024-01-05T00:00:00Z",
	}}
	svc, _ := newForecastService(api)

	keys, err := svc.GetKeys(context.Background(), "oprs")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", keys.DefaultStart)
	assert.Equal(t, "2024-12-31", keys.DefaultEnd)

	_, err = svc.GetKeys(context.Background(), "oprs")
	require.NoError(t, err)
	assert.Equal(t, 1, api.keyCalls)
}

func TestForecastService_GetKeys_Errors(t *testing.T) {
	svc, _ := newForecastService(&fakeForecastAPI{err: errors.New("down")})

	_, err := svc.GetKeys(context.Background(), "oprs")
	assert.Error(t, err)

	_, err = svc.GetKeys(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestForecastService_ProxyForecast(t *testing.T) {
	api := &fakeForecastAPI{body: `{"z":1,"a":2}`}
	svc, _ := newForecastService(api)

	raw, err := svc.ProxyForecast(context.Background(), "wrl_uppal", []byte(`{"df_key":"ALL"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(raw))
	assert.Equal(t, []byte(`{"df_key":"ALL"}`), api.lastBody)

	api.body = `"nope"`
	_, err = svc.ProxyForecast(context.Background(), "wrl_uppal", nil)
	assert.Error(t, err)
	assert.Equal(t, []byte("{}"), api.lastBody)
}
