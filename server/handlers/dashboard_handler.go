package handlers

import (
	"bytes"
	"context"
	"net/http"

	"transit-dashboard/logging"
	"transit-dashboard/models"
	"transit-dashboard/util"
)

const LOAD_DASHBOARD_ERROR = "Failed to load dashboard"

// DashboardProvider is what the dashboard endpoints need from the service layer.
type DashboardProvider interface {
	GetDashboard(ctx context.Context) (*models.DashboardResponse, error)
}

type DashboardHandler struct {
	dashboard DashboardProvider
}

func NewDashboardHandler(dashboard DashboardProvider) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard returns the ticketing aggregates as JSON.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.GetDashboard(r.Context())
	if err != nil {
		logging.Ctx(r.Context(), logging.Component("DashboardHandler")).Error().Err(err).Msg("error loading dashboard")
		WriteError(w, http.StatusInternalServerError, LOAD_DASHBOARD_ERROR)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// GetDashboardPage renders the aggregates as an HTML chart page.
func (h *DashboardHandler) GetDashboardPage(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context(), logging.Component("DashboardHandler"))
	summary, err := h.dashboard.GetDashboard(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("error loading dashboard")
		http.Error(w, LOAD_DASHBOARD_ERROR, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := util.RenderDashboard(&buf, summary); err != nil {
		log.Error().Err(err).Msg("error rendering dashboard")
		http.Error(w, LOAD_DASHBOARD_ERROR, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
