package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrLoad is the sentinel wrapped by every construction failure. Startup code
// treats any error matching it as fatal before queries are served.
var ErrLoad = errors.New("graph load failed")

// Node is a node record from the graph provider.
type Node struct {
	ID  int64
	Lat float64
	Lon float64
}

// Edge is a directed edge record from the graph provider. U and V are
// external node ids; Key disambiguates parallel edges between the same (U, V).
type Edge struct {
	U       int64
	V       int64
	Key     uint32
	LengthM float64
}

// EdgeAttr is an attribute row joining a canonical edge_id and authoritative
// length onto the edge identified by (U, V, Key).
type EdgeAttr struct {
	U       int64
	V       int64
	Key     uint32
	EdgeID  int64
	LengthM float64
}

// BuildStats reports how the attribute join went.
type BuildStats struct {
	JoinedEdges   uint32 // edges that received an edge_id
	UnjoinedEdges uint32 // edges left with NoEdgeID (risk always 0)
}

type joinKey struct {
	u, v int64
	key  uint32
}

// Build constructs the CSR graph from provider records, joining attribute
// rows on (u, v, key). Edges that fail to join keep the provider length and
// carry NoEdgeID. Malformed input (duplicate node ids, dangling edge
// endpoints, duplicate (u,v,key), negative lengths, duplicate edge_ids) is a
// construction failure, not a degraded mode.
func Build(nodes []Node, edges []Edge, attrs []EdgeAttr) (*Graph, BuildStats, error) {
	var stats BuildStats

	if len(nodes) == 0 {
		return nil, stats, fmt.Errorf("%w: node source is empty", ErrLoad)
	}

	// Step 1: compact external ids, sorted for a stable node order.
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := make(map[int64]uint32, len(sorted))
	for i, n := range sorted {
		if _, dup := idx[n.ID]; dup {
			return nil, stats, fmt.Errorf("%w: duplicate node id %d", ErrLoad, n.ID)
		}
		idx[n.ID] = uint32(i)
	}
	numNodes := uint32(len(sorted))

	// Step 2: index attribute rows and check edge_id uniqueness.
	attrByKey := make(map[joinKey]EdgeAttr, len(attrs))
	seenEdgeID := make(map[int64]struct{}, len(attrs))
	for _, a := range attrs {
		k := joinKey{a.U, a.V, a.Key}
		if _, dup := attrByKey[k]; dup {
			return nil, stats, fmt.Errorf("%w: duplicate attribute row for (%d,%d,%d)", ErrLoad, a.U, a.V, a.Key)
		}
		if _, dup := seenEdgeID[a.EdgeID]; dup {
			return nil, stats, fmt.Errorf("%w: duplicate edge_id %d", ErrLoad, a.EdgeID)
		}
		seenEdgeID[a.EdgeID] = struct{}{}
		if a.LengthM < 0 || math.IsNaN(a.LengthM) || math.IsInf(a.LengthM, 0) {
			return nil, stats, fmt.Errorf("%w: attribute length_m %v for edge_id %d", ErrLoad, a.LengthM, a.EdgeID)
		}
		attrByKey[k] = a
	}

	// Step 3: compact edge list with remapped endpoints and joined attributes.
	type compactEdge struct {
		from, to uint32
		key      uint32
		edgeID   int64
		lengthM  float64
	}
	compact := make([]compactEdge, 0, len(edges))
	seenEdge := make(map[joinKey]struct{}, len(edges))

	for _, e := range edges {
		from, ok := idx[e.U]
		if !ok {
			return nil, stats, fmt.Errorf("%w: edge references unknown node %d", ErrLoad, e.U)
		}
		to, ok := idx[e.V]
		if !ok {
			return nil, stats, fmt.Errorf("%w: edge references unknown node %d", ErrLoad, e.V)
		}
		k := joinKey{e.U, e.V, e.Key}
		if _, dup := seenEdge[k]; dup {
			return nil, stats, fmt.Errorf("%w: duplicate edge (%d,%d,%d)", ErrLoad, e.U, e.V, e.Key)
		}
		seenEdge[k] = struct{}{}

		lengthM := e.LengthM
		edgeID := NoEdgeID
		if a, joined := attrByKey[k]; joined {
			edgeID = a.EdgeID
			lengthM = a.LengthM // attribute source is authoritative
			stats.JoinedEdges++
		} else {
			stats.UnjoinedEdges++
		}
		if lengthM < 0 || math.IsNaN(lengthM) || math.IsInf(lengthM, 0) {
			return nil, stats, fmt.Errorf("%w: edge (%d,%d,%d) has length_m %v", ErrLoad, e.U, e.V, e.Key, lengthM)
		}

		compact = append(compact, compactEdge{from: from, to: to, key: e.Key, edgeID: edgeID, lengthM: lengthM})
	}

	// Step 4: sort edges by (source, target, key) for a deterministic CSR layout.
	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		if compact[i].to != compact[j].to {
			return compact[i].to < compact[j].to
		}
		return compact[i].key < compact[j].key
	})

	// Step 5: populate CSR arrays.
	numEdges := uint32(len(compact))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	edgeKey := make([]uint32, numEdges)
	edgeID := make([]int64, numEdges)
	lengthM := make([]float64, numEdges)

	for i, e := range compact {
		head[i] = e.to
		edgeKey[i] = e.key
		edgeID[i] = e.edgeID
		lengthM[i] = e.lengthM
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	nodeID := make([]int64, numNodes)
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for i, n := range sorted {
		nodeID[i] = n.ID
		nodeLat[i] = n.Lat
		nodeLon[i] = n.Lon
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		EdgeKey:  edgeKey,
		EdgeID:   edgeID,
		LengthM:  lengthM,
		NodeID:   nodeID,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
	}, stats, nil
}
