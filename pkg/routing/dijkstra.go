package routing

import (
	"context"
	"fmt"
	"math"

	"walk_router/pkg/graph"
)

const (
	noNode = uint32(math.MaxUint32)
	noEdge = uint32(math.MaxUint32)
)

// ctxCheckInterval is how many settled nodes pass between context checks.
const ctxCheckInterval = 256

// MinHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap. Equal distances order
// by node id so pop order is deterministic.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist float64
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) less(i, j int) bool {
	if h.items[i].Dist != h.items[j].Dist {
		return h.items[i].Dist < h.items[j].Dist
	}
	return h.items[i].Node < h.items[j].Node
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// QueryState holds per-query Dijkstra state. Each query gets a fresh one (or
// a Reset one); nothing here is shared across concurrent queries.
type QueryState struct {
	Dist     []float64
	PredNode []uint32 // predecessor node (noNode = none)
	PredEdge []uint32 // CSR index of the edge relaxed into each node (noEdge = none)
	Settled  []bool
	Touched  []uint32 // nodes touched during this query (for fast reset)
	PQ       MinHeap
}

// NewQueryState creates a QueryState for a graph with n nodes.
func NewQueryState(n uint32) *QueryState {
	dist := make([]float64, n)
	predNode := make([]uint32, n)
	predEdge := make([]uint32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		predNode[i] = noNode
		predEdge[i] = noEdge
	}
	return &QueryState{
		Dist:     dist,
		PredNode: predNode,
		PredEdge: predEdge,
		Settled:  make([]bool, n),
		Touched:  make([]uint32, 0, 1024),
		PQ:       MinHeap{items: make([]PQItem, 0, 256)},
	}
}

// Reset clears only the touched entries for fast reuse.
func (qs *QueryState) Reset() {
	for _, node := range qs.Touched {
		qs.Dist[node] = math.Inf(1)
		qs.PredNode[node] = noNode
		qs.PredEdge[node] = noEdge
		qs.Settled[node] = false
	}
	qs.Touched = qs.Touched[:0]
	qs.PQ.Reset()
}

func (qs *QueryState) touch(node uint32, dist float64) {
	if math.IsInf(qs.Dist[node], 1) {
		qs.Touched = append(qs.Touched, node)
	}
	qs.Dist[node] = dist
}

// Path is a found route. Nodes runs from src to dst inclusive; Edges[i] is
// the CSR index of the exact edge traversed from Nodes[i] to Nodes[i+1], so
// downstream consumers never have to guess which parallel edge was used.
type Path struct {
	Nodes []uint32
	Edges []uint32
	Cost  float64
}

// findPath runs single-pair Dijkstra from src to dst under the given cost
// function. Costs are computed per relaxation; any negative computed cost
// aborts the query with ErrNegativeWeight since Dijkstra's correctness
// assumes non-negative weights.
func findPath(ctx context.Context, g *graph.Graph, qs *QueryState, src, dst uint32, cost CostFunc) (Path, error) {
	// Trivial query: no queue needed.
	if src == dst {
		return Path{Nodes: []uint32{src}}, nil
	}

	qs.touch(src, 0)
	qs.PQ.Push(src, 0)

	settledCount := 0
	for qs.PQ.Len() > 0 {
		item := qs.PQ.Pop()
		u := item.Node
		d := item.Dist

		if d > qs.Dist[u] {
			continue // stale entry
		}
		qs.Settled[u] = true
		if u == dst {
			break
		}

		settledCount++
		if settledCount%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, fmt.Errorf("%w: %v", ErrTimeout, err)
			}
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			c := cost(e)
			if c < 0 {
				return Path{}, fmt.Errorf("%w: edge (%d->%d key %d) cost %v",
					ErrNegativeWeight, g.NodeID[u], g.NodeID[g.Head[e]], g.EdgeKey[e], c)
			}
			v := g.Head[e]
			newDist := d + c

			switch {
			case newDist < qs.Dist[v]:
				qs.touch(v, newDist)
				qs.PQ.Push(v, newDist)
				qs.PredNode[v] = u
				qs.PredEdge[v] = e
			case newDist == qs.Dist[v] && !qs.Settled[v]:
				// Equal-cost alternative: prefer the edge with the lowest
				// key, then the lowest edge_id, for deterministic paths.
				if prev := qs.PredEdge[v]; prev != noEdge && edgeLess(g, e, prev) {
					qs.PredNode[v] = u
					qs.PredEdge[v] = e
				}
			}
		}
	}

	if !qs.Settled[dst] {
		return Path{}, ErrNoRoute
	}

	// Reconstruct dst → src, then reverse.
	var nodes []uint32
	var edges []uint32
	for at := dst; ; {
		nodes = append(nodes, at)
		if at == src {
			break
		}
		edges = append(edges, qs.PredEdge[at])
		at = qs.PredNode[at]
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return Path{Nodes: nodes, Edges: edges, Cost: qs.Dist[dst]}, nil
}

// edgeLess orders parallel alternatives by (key, edge_id).
func edgeLess(g *graph.Graph, a, b uint32) bool {
	if g.EdgeKey[a] != g.EdgeKey[b] {
		return g.EdgeKey[a] < g.EdgeKey[b]
	}
	return g.EdgeID[a] < g.EdgeID[b]
}
