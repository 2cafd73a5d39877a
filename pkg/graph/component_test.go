package graph

import "testing"

func TestLargestComponent(t *testing.T) {
	// Component {1,2,3} (three nodes) vs component {10,11} (two nodes).
	nodes := []Node{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 10}, {ID: 11}}
	edges := []Edge{
		{U: 1, V: 2, LengthM: 1},
		{U: 2, V: 3, LengthM: 1},
		{U: 10, V: 11, LengthM: 1},
	}

	keep := LargestComponent(nodes, edges)
	if len(keep) != 3 {
		t.Fatalf("keep size = %d, want 3", len(keep))
	}
	for _, id := range []int64{1, 2, 3} {
		if !keep[id] {
			t.Errorf("node %d not kept", id)
		}
	}
	if keep[10] || keep[11] {
		t.Error("small component nodes kept")
	}
}

func TestLargestComponent_TreatsDirectionAsUndirected(t *testing.T) {
	// 2 can only be reached, never left; still the same weak component.
	nodes := []Node{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []Edge{
		{U: 1, V: 2, LengthM: 1},
		{U: 3, V: 2, LengthM: 1},
	}
	keep := LargestComponent(nodes, edges)
	if len(keep) != 3 {
		t.Errorf("keep size = %d, want 3 (weakly connected)", len(keep))
	}
}

func TestFilterToComponent(t *testing.T) {
	nodes := []Node{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []Edge{
		{U: 1, V: 2, LengthM: 1},
		{U: 2, V: 3, LengthM: 1}, // crosses out of the keep set
	}
	keep := map[int64]bool{1: true, 2: true}

	outNodes, outEdges := FilterToComponent(nodes, edges, keep)
	if len(outNodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(outNodes))
	}
	if len(outEdges) != 1 {
		t.Fatalf("edges = %d, want 1", len(outEdges))
	}
	if outEdges[0].U != 1 || outEdges[0].V != 2 {
		t.Errorf("kept edge = %+v, want 1->2", outEdges[0])
	}
}

func TestLargestComponent_Empty(t *testing.T) {
	if keep := LargestComponent(nil, nil); keep != nil {
		t.Errorf("keep = %v, want nil", keep)
	}
}
