package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"transit-dashboard/config"
	"transit-dashboard/logging"
	"transit-dashboard/models"
	services "transit-dashboard/service"
	"transit-dashboard/util"
)

const (
	ROUTE_PATH_VAR = "route"

	FETCH_FORECAST_ERROR = "Failed to fetch forecast"
	FETCH_KEYS_ERROR     = "Failed to fetch keys"

	maxBodyBytes = 1 << 20
)

// ForecastProvider is what the forecast endpoints need from the service layer.
type ForecastProvider interface {
	Routes() []config.RouteProfile
	GetKeys(ctx context.Context, routeID string) (*models.KeysResponse, error)
	ProxyForecast(ctx context.Context, routeID string, body []byte) ([]byte, error)
	RunForecast(ctx context.Context, routeID, sessionID string, req models.ForecastRequest) (*models.ForecastView, error)
}

type ForecastHandler struct {
	forecasts ForecastProvider
}

func NewForecastHandler(forecasts ForecastProvider) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

// ListRoutes returns the configured route profiles.
func (h *ForecastHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.forecasts.Routes())
}

// GetKeys returns the selectable keys and default window of a route.
func (h *ForecastHandler) GetKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.forecasts.GetKeys(r.Context(), mux.Vars(r)[ROUTE_PATH_VAR])
	if err != nil {
		h.writeFailure(w, r, err, FETCH_KEYS_ERROR)
		return
	}
	WriteJSON(w, http.StatusOK, keys)
}

// ProxyForecast forwards the body upstream and relays the response as is.
func (h *ForecastHandler) ProxyForecast(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		WriteError(w, http.StatusBadRequest, "Request body is not valid JSON")
		return
	}

	raw, err := h.forecasts.ProxyForecast(r.Context(), mux.Vars(r)[ROUTE_PATH_VAR], body)
	if err != nil {
		h.writeFailure(w, r, err, FETCH_FORECAST_ERROR)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		logging.Ctx(r.Context(), logging.Component("ForecastHandler")).Error().Err(err).Msg("error writing proxied forecast")
	}
}

// GetTables runs a forecast and returns its table descriptors.
func (h *ForecastHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	view, ok := h.runForecast(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// GetChart runs a forecast and renders its chart-ready tables as HTML.
func (h *ForecastHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	view, ok := h.runForecast(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := util.RenderForecastCharts(&buf, view); err != nil {
		h.writeFailure(w, r, err, FETCH_FORECAST_ERROR)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *ForecastHandler) runForecast(w http.ResponseWriter, r *http.Request) (*models.ForecastView, bool) {
	var req models.ForecastRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Request body is not a valid forecast request")
			return nil, false
		}
	}

	view, err := h.forecasts.RunForecast(r.Context(), mux.Vars(r)[ROUTE_PATH_VAR], SessionID(r), req)
	if err != nil {
		h.writeFailure(w, r, err, FETCH_FORECAST_ERROR)
		return nil, false
	}
	return view, true
}

// writeFailure maps service errors to status codes. Anything unrecognised is an
// upstream failure and gets the generic message.
func (h *ForecastHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, upstreamMessage string) {
	log := logging.Ctx(r.Context(), logging.Component("ForecastHandler"))
	switch {
	case errors.Is(err, services.ErrUnknownRoute):
		WriteError(w, http.StatusNotFound, "Unknown route")
	case errors.Is(err, services.ErrInvalidRequest):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStaleSubmission):
		WriteError(w, http.StatusConflict, "A newer forecast request replaced this one")
	default:
		log.Error().Err(err).Str("route", mux.Vars(r)[ROUTE_PATH_VAR]).Msg(upstreamMessage)
		WriteError(w, http.StatusInternalServerError, upstreamMessage)
	}
}
