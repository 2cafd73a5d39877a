package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/paulmach/orb/geojson"

	"walk_router/pkg/routing"
)

// maxBodyBytes bounds the /route request body; a src/dst/bin/alpha payload is
// a couple hundred bytes at most.
const maxBodyBytes = 4096

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
	}
}

// HandleRoute handles POST /route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Src == nil || req.Dst == nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	bin := routing.DefaultBin
	if req.Bin != nil {
		bin = *req.Bin
	}
	alpha := routing.DefaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	result, err := h.router.ComputeRoute(r.Context(),
		routing.LatLng{Lat: req.Src.Lat, Lng: req.Src.Lon},
		routing.LatLng{Lat: req.Dst.Lat, Lng: req.Dst.Lon},
		bin, alpha)
	if err != nil {
		// Per-query failures stay distinguishable: "no path exists", "bad
		// input" and "internal inconsistency" are different answers.
		switch {
		case errors.Is(err, routing.ErrBadParameter):
			writeError(w, http.StatusBadRequest, "invalid_parameter")
		case errors.Is(err, routing.ErrNegativeWeight):
			writeError(w, http.StatusBadRequest, "negative_edge_cost")
		case errors.Is(err, routing.ErrNoRoute):
			writeError(w, http.StatusNotFound, "no_route_found")
		case errors.Is(err, routing.ErrTimeout),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	resp := RouteResponse{
		Route: geojson.NewFeature(result.Line),
		Metrics: MetricsJSON{
			DistanceM: result.DistanceM,
			PredRisk:  result.PredRisk,
			Alpha:     alpha,
			BinOfDay:  bin,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code})
}
