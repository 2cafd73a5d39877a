package graph

// NoEdgeID marks an edge the attribute join could not resolve. Risk lookups
// for such edges always miss (risk 0); this is a degraded mode, not an error.
const NoEdgeID = int64(-1)

// Graph is an immutable directed multigraph in CSR (Compressed Sparse Row)
// form. Nodes are addressed by compact uint32 indices; external provider ids
// are kept in NodeID for joins and diagnostics only.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	EdgeKey  []uint32  // len: NumEdges; disambiguates parallel edges within (u, v)
	EdgeID   []int64   // len: NumEdges; global edge identity, NoEdgeID if unjoined
	LengthM  []float64 // len: NumEdges; length in meters
	NodeID   []int64   // len: NumNodes; external node ids
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Edge returns the edge index for (u, v, key), or false if no such edge
// exists. Out-degrees on a road network are tiny, so a scan of the CSR range
// is cheaper than any auxiliary lookup structure.
func (g *Graph) Edge(u, v, key uint32) (uint32, bool) {
	start, end := g.EdgesFrom(u)
	for e := start; e < end; e++ {
		if g.Head[e] == v && g.EdgeKey[e] == key {
			return e, true
		}
	}
	return 0, false
}
