package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"transit-dashboard/config"
)

// MockForecastHandler answers every forecast route with its own name.
type MockForecastHandler struct{}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func (h *MockForecastHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	reply(`routes`)(w, r)
}

func (h *MockForecastHandler) GetKeys(w http.ResponseWriter, r *http.Request) {
	reply(`keys:` + mux.Vars(r)["route"])(w, r)
}

func (h *MockForecastHandler) ProxyForecast(w http.ResponseWriter, r *http.Request) {
	reply(`forecast:` + mux.Vars(r)["route"])(w, r)
}

func (h *MockForecastHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	reply(`tables:` + mux.Vars(r)["route"])(w, r)
}

func (h *MockForecastHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	reply(`chart:` + mux.Vars(r)["route"])(w, r)
}

// MockDashboardHandler answers the dashboard routes.
type MockDashboardHandler struct{}

func (h *MockDashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	reply(`dashboard-json`)(w, r)
}

func (h *MockDashboardHandler) GetDashboardPage(w http.ResponseWriter, r *http.Request) {
	reply(`dashboard-html`)(w, r)
}

func newTestRouter(limiter *RateLimiter) *mux.Router {
	router := mux.NewRouter()
	appRouter := NewRouter(&MockForecastHandler{}, &MockDashboardHandler{}, limiter, router)
	appRouter.RegisterRoutes()
	return router
}

func TestRouter_RegisterRoutes(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		response   string
	}{
		{"Ping Route", "GET", "/ping", http.StatusOK, `{"status":"pong"}`},
		{"List Routes", "GET", "/v1/routes", http.StatusOK, "routes"},
		{"Route Keys", "GET", "/v1/routes/oprs/keys", http.StatusOK, "keys:oprs"},
		{"Forecast Proxy", "POST", "/v1/routes/49m_route/forecast", http.StatusOK, "forecast:49m_route"},
		{"Forecast Tables", "POST", "/v1/routes/wrl_uppal/tables", http.StatusOK, "tables:wrl_uppal"},
		{"Forecast Chart", "POST", "/v1/routes/oprs/chart", http.StatusOK, "chart:oprs"},
		{"Dashboard JSON", "GET", "/v1/dashboard", http.StatusOK, "dashboard-json"},
		{"Dashboard Page", "GET", "/dashboard", http.StatusOK, "dashboard-html"},
		{"Invalid Route", "GET", "/invalid", http.StatusNotFound, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, test.statusCode, rr.Code)
			if test.response != "" {
				assert.Equal(t, test.response, strings.TrimSpace(rr.Body.String()))
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dashboard_http_request_duration_seconds")
}

func TestRouter_RequestIDAndSession(t *testing.T) {
	router := newTestRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/routes", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), config.SESSION_COOKIE_NAME+"=")

	req := httptest.NewRequest("GET", "/v1/routes", nil)
	req.Header.Set("X-Request-ID", "given-id")
	req.AddCookie(&http.Cookie{Name: config.SESSION_COOKIE_NAME, Value: "known"})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "given-id", rr.Header().Get("X-Request-ID"))
	assert.Empty(t, rr.Header().Get("Set-Cookie"))
}

func TestRouter_RateLimit(t *testing.T) {
	router := newTestRouter(NewRateLimiter(0.001, 2))

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/routes", nil))
		codes[i] = rr.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
}
