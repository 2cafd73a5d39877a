package api

import "github.com/paulmach/orb/geojson"

// RouteRequest is the JSON body for POST /route. All fields are pointers so
// an absent field is distinguishable from an explicit zero: src and dst are
// required (a missing endpoint must not silently become coordinate (0, 0)),
// bin and alpha fall back to defaults.
type RouteRequest struct {
	Src   *CoordJSON `json:"src"`
	Dst   *CoordJSON `json:"dst"`
	Bin   *int       `json:"bin"`
	Alpha *float64   `json:"alpha"`
}

// CoordJSON represents a lat/lon pair in JSON.
type CoordJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Route   *geojson.Feature `json:"route"` // LineString feature, (lon, lat) order
	Metrics MetricsJSON      `json:"metrics"`
}

// MetricsJSON carries the scalar metrics for a returned route.
type MetricsJSON struct {
	DistanceM float64 `json:"distance_m"`
	PredRisk  float64 `json:"pred_risk"`
	Alpha     float64 `json:"alpha"`
	BinOfDay  int     `json:"bin_of_day"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsResponse is the JSON response for GET /stats.
type StatsResponse struct {
	NumNodes      uint32 `json:"num_nodes"`
	NumEdges      uint32 `json:"num_edges"`
	JoinedEdges   uint32 `json:"joined_edges"`
	UnjoinedEdges uint32 `json:"unjoined_edges"`
	RiskEntries   int    `json:"risk_entries"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
