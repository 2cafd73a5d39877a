package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the external ids of the nodes in the largest
// weakly connected component (treating directed edges as undirected).
// Used by preprocessing to drop unroutable islands before serialization.
func LargestComponent(nodes []Node, edges []Edge) map[int64]bool {
	if len(nodes) == 0 {
		return nil
	}

	idx := make(map[int64]uint32, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = uint32(i)
	}

	uf := NewUnionFind(uint32(len(nodes)))
	for _, e := range edges {
		ui, uok := idx[e.U]
		vi, vok := idx[e.V]
		if uok && vok {
			uf.Union(ui, vi)
		}
	}

	// Find representative of the largest set.
	var bestRoot uint32
	var bestSize uint32
	for i := range uint32(len(nodes)) {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestSize = uf.size[root]
			bestRoot = root
		}
	}

	keep := make(map[int64]bool, bestSize)
	for i, n := range nodes {
		if uf.Find(uint32(i)) == bestRoot {
			keep[n.ID] = true
		}
	}
	return keep
}

// FilterToComponent returns only the nodes and edges whose endpoints are all
// inside the keep set.
func FilterToComponent(nodes []Node, edges []Edge, keep map[int64]bool) ([]Node, []Edge) {
	outNodes := make([]Node, 0, len(keep))
	for _, n := range nodes {
		if keep[n.ID] {
			outNodes = append(outNodes, n)
		}
	}
	outEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if keep[e.U] && keep[e.V] {
			outEdges = append(outEdges, e)
		}
	}
	return outNodes, outEdges
}
