package routing

import (
	"walk_router/pkg/graph"
	"walk_router/pkg/risk"
)

// CostFunc computes the traversal cost of a CSR edge for the current query.
// Called once per edge relaxation, so it must stay cheap and allocation-free.
type CostFunc func(edgeIdx uint32) float64

// RiskCost builds the query cost function
//
//	cost(edge) = length_m + alpha * risk(edge_id, bin)
//
// closed over the immutable graph and risk table. An edge without an edge_id
// and a risk-table miss both contribute 0 risk. Pure: no observable state.
func RiskCost(g *graph.Graph, t *risk.Table, bin int, alpha float64) CostFunc {
	return func(e uint32) float64 {
		return g.LengthM[e] + alpha*t.Lookup(g.EdgeID[e], bin)
	}
}
