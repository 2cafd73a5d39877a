package routing

import (
	"github.com/paulmach/orb"

	"walk_router/pkg/graph"
	"walk_router/pkg/risk"
)

// summarize folds a found path into line geometry and scalar metrics. It is a
// pure fold over the node sequence and the edge indices the search recorded:
// distance and risk are summed over the exact edges traversed, never
// re-derived from (u, v) pairs — re-derivation could silently pick a
// different parallel edge.
func summarize(g *graph.Graph, t *risk.Table, bin int, p Path) *RouteResult {
	line := make(orb.LineString, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		line = append(line, orb.Point{g.NodeLon[n], g.NodeLat[n]})
	}

	var distM, predRisk float64
	for _, e := range p.Edges {
		distM += g.LengthM[e]
		predRisk += t.Lookup(g.EdgeID[e], bin)
	}

	return &RouteResult{Line: line, DistanceM: distM, PredRisk: predRisk}
}
