package routing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"walk_router/pkg/graph"
	"walk_router/pkg/risk"
)

// Per-query failure modes. All are normal, recoverable conditions surfaced to
// the caller as typed results; none is retried (routing is deterministic).
var (
	ErrNoRoute        = errors.New("no route found")
	ErrNegativeWeight = errors.New("negative edge cost")
	ErrTimeout        = errors.New("route query timed out")
	ErrBadParameter   = errors.New("invalid parameter")
)

// Query parameter defaults, matching the serving contract.
const (
	DefaultBin   = 2
	DefaultAlpha = 4.0
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Line      orb.LineString // path geometry, (lon, lat) point order
	DistanceM float64        // sum of length_m over the exact edges traversed
	PredRisk  float64        // sum of risk rates over the same edges
}

// Router is the interface for route queries.
type Router interface {
	ComputeRoute(ctx context.Context, src, dst LatLng, bin int, alpha float64) (*RouteResult, error)
}

// Engine implements Router over an immutable graph, risk table and node
// index. All three are built once at startup; queries share them read-only,
// so concurrent ComputeRoute calls need no locking.
type Engine struct {
	g     *graph.Graph
	table *risk.Table
	index *NodeIndex
}

// NewEngine builds the engine, including the nearest-node index.
func NewEngine(g *graph.Graph, table *risk.Table) (*Engine, error) {
	index, err := NewNodeIndex(g)
	if err != nil {
		return nil, err
	}
	return &Engine{g: g, table: table, index: index}, nil
}

// ComputeRoute snaps src and dst to graph nodes, searches for the lowest-cost
// path under length + alpha*risk at the given time bin, and folds the result
// into geometry plus distance/risk metrics.
func (e *Engine) ComputeRoute(ctx context.Context, src, dst LatLng, bin int, alpha float64) (*RouteResult, error) {
	if err := validateQuery(src, dst, bin, alpha); err != nil {
		return nil, err
	}

	srcNode, err := e.index.Nearest(src.Lng, src.Lat)
	if err != nil {
		return nil, err
	}
	dstNode, err := e.index.Nearest(dst.Lng, dst.Lat)
	if err != nil {
		return nil, err
	}

	qs := NewQueryState(e.g.NumNodes)
	path, err := findPath(ctx, e.g, qs, srcNode, dstNode, RiskCost(e.g, e.table, bin, alpha))
	if err != nil {
		return nil, err
	}

	return summarize(e.g, e.table, bin, path), nil
}

func validateQuery(src, dst LatLng, bin int, alpha float64) error {
	for _, ll := range []LatLng{src, dst} {
		if !isFinite(ll.Lat) || !isFinite(ll.Lng) {
			return fmt.Errorf("%w: coordinates must be finite numbers", ErrBadParameter)
		}
		if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
			return fmt.Errorf("%w: coordinates out of range", ErrBadParameter)
		}
	}
	if bin < 0 {
		return fmt.Errorf("%w: bin_of_day must be non-negative", ErrBadParameter)
	}
	if !isFinite(alpha) {
		return fmt.Errorf("%w: alpha must be finite", ErrBadParameter)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
