package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transit-dashboard/server/handlers"
)

// ForecastRoutes serves the forecast endpoints.
type ForecastRoutes interface {
	ListRoutes(w http.ResponseWriter, r *http.Request)
	GetKeys(w http.ResponseWriter, r *http.Request)
	ProxyForecast(w http.ResponseWriter, r *http.Request)
	GetTables(w http.ResponseWriter, r *http.Request)
	GetChart(w http.ResponseWriter, r *http.Request)
}

// DashboardRoutes serves the dashboard endpoints.
type DashboardRoutes interface {
	GetDashboard(w http.ResponseWriter, r *http.Request)
	GetDashboardPage(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	forecastHandler  ForecastRoutes
	dashboardHandler DashboardRoutes
	limiter          *RateLimiter
	router           *mux.Router
}

// NewRouter creates a router with the app’s routes. A nil limiter disables rate limiting.
func NewRouter(
	forecastHandler ForecastRoutes,
	dashboardHandler DashboardRoutes,
	limiter *RateLimiter,
	router *mux.Router) *Router {
	return &Router{
		forecastHandler:  forecastHandler,
		dashboardHandler: dashboardHandler,
		limiter:          limiter,
		router:           router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(RequestID, Instrument)

	r.router.HandleFunc("/ping", handlers.Ping).Methods(http.MethodGet)
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.router.PathPrefix("/v1").Subrouter()
	if r.limiter != nil {
		v1.Use(r.limiter.Middleware)
	}
	v1.Use(Session)

	v1.HandleFunc("/routes", r.forecastHandler.ListRoutes).Methods(http.MethodGet)
	v1.HandleFunc("/routes/{route}/keys", r.forecastHandler.GetKeys).Methods(http.MethodGet)
	// expects the upstream request body as is
	v1.HandleFunc("/routes/{route}/forecast", r.forecastHandler.ProxyForecast).Methods(http.MethodPost)
	// expects {df_key, start_date, end_date, forecast_days}, all optional
	v1.HandleFunc("/routes/{route}/tables", r.forecastHandler.GetTables).Methods(http.MethodPost)
	v1.HandleFunc("/routes/{route}/chart", r.forecastHandler.GetChart).Methods(http.MethodPost)
	v1.HandleFunc("/dashboard", r.dashboardHandler.GetDashboard).Methods(http.MethodGet)

	r.router.HandleFunc("/dashboard", r.dashboardHandler.GetDashboardPage).Methods(http.MethodGet)
}
