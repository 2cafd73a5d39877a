package routing

import (
	"context"
	"errors"
	"math"
	"testing"

	"walk_router/pkg/graph"
	"walk_router/pkg/risk"
)

// A short east-west corridor in Chicago with a southern detour. Node ids are
// deliberately non-contiguous.
func corridorGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 10, Lat: 41.8800, Lon: -87.6300},
		{ID: 20, Lat: 41.8800, Lon: -87.6280},
		{ID: 30, Lat: 41.8800, Lon: -87.6260},
		{ID: 40, Lat: 41.8780, Lon: -87.6290}, // detour node south of the corridor
	}
	edges := []graph.Edge{
		{U: 10, V: 20, LengthM: 166},
		{U: 20, V: 10, LengthM: 166},
		{U: 20, V: 30, LengthM: 166},
		{U: 30, V: 20, LengthM: 166},
		{U: 10, V: 40, LengthM: 250},
		{U: 40, V: 10, LengthM: 250},
		{U: 40, V: 20, LengthM: 250},
		{U: 20, V: 40, LengthM: 250},
	}
	attrs := []graph.EdgeAttr{
		{U: 10, V: 20, EdgeID: 0, LengthM: 166},
		{U: 20, V: 10, EdgeID: 1, LengthM: 166},
		{U: 20, V: 30, EdgeID: 2, LengthM: 166},
		{U: 30, V: 20, EdgeID: 3, LengthM: 166},
		{U: 10, V: 40, EdgeID: 4, LengthM: 250},
		{U: 40, V: 10, EdgeID: 5, LengthM: 250},
		{U: 40, V: 20, EdgeID: 6, LengthM: 250},
		{U: 20, V: 40, EdgeID: 7, LengthM: 250},
	}
	return buildGraph(t, nodes, edges, attrs)
}

func TestComputeRoute(t *testing.T) {
	g := corridorGraph(t)
	table := buildRiskTable(t, []risk.Entry{
		{EdgeID: 0, BinOfDay: 2, RiskRate: 1.5},
		{EdgeID: 2, BinOfDay: 2, RiskRate: 0.5},
		{EdgeID: 2, BinOfDay: 7, RiskRate: 9.0},
	})
	eng, err := NewEngine(g, table)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Query points sit slightly off the true node coordinates; the engine
	// must snap to nodes 10 and 30 and walk the corridor 10→20→30.
	src := LatLng{Lat: 41.8801, Lng: -87.6301}
	dst := LatLng{Lat: 41.8799, Lng: -87.6259}
	result, err := eng.ComputeRoute(context.Background(), src, dst, 2, 4)
	if err != nil {
		t.Fatalf("ComputeRoute: %v", err)
	}

	wantLine := [][2]float64{{-87.6300, 41.8800}, {-87.6280, 41.8800}, {-87.6260, 41.8800}}
	if len(result.Line) != len(wantLine) {
		t.Fatalf("line has %d points, want %d: %v", len(result.Line), len(wantLine), result.Line)
	}
	for i, want := range wantLine {
		if result.Line[i][0] != want[0] || result.Line[i][1] != want[1] {
			t.Errorf("line[%d] = %v, want (lon, lat) %v", i, result.Line[i], want)
		}
	}
	if result.DistanceM != 332 {
		t.Errorf("DistanceM = %v, want 332", result.DistanceM)
	}
	// Risk is summed over the exact edges traversed at the query bin,
	// independent of alpha: 1.5 + 0.5.
	if result.PredRisk != 2.0 {
		t.Errorf("PredRisk = %v, want 2.0", result.PredRisk)
	}

	// A different bin reads a different risk column. Bin 7 has risk only on
	// edge 2; edge 0's miss contributes zero.
	result, err = eng.ComputeRoute(context.Background(), src, dst, 7, 0)
	if err != nil {
		t.Fatalf("ComputeRoute bin 7: %v", err)
	}
	if result.PredRisk != 9.0 {
		t.Errorf("bin 7 PredRisk = %v, want 9.0", result.PredRisk)
	}
}

func TestComputeRoute_RiskShiftsPath(t *testing.T) {
	g := corridorGraph(t)
	// Heavy risk on the direct 10→20 edge pushes traffic through node 40.
	table := buildRiskTable(t, []risk.Entry{{EdgeID: 0, BinOfDay: 2, RiskRate: 200}})
	eng, err := NewEngine(g, table)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	src := LatLng{Lat: 41.8800, Lng: -87.6300}
	dst := LatLng{Lat: 41.8800, Lng: -87.6260}
	result, err := eng.ComputeRoute(context.Background(), src, dst, 2, 4)
	if err != nil {
		t.Fatalf("ComputeRoute: %v", err)
	}
	if len(result.Line) != 4 {
		t.Fatalf("line = %v, want 4 points via the detour node", result.Line)
	}
	if result.DistanceM != 250+250+166 {
		t.Errorf("DistanceM = %v, want 666", result.DistanceM)
	}
	if result.PredRisk != 0 {
		t.Errorf("PredRisk = %v, want 0 on the risk-free detour", result.PredRisk)
	}
}

func TestComputeRoute_SameSnap(t *testing.T) {
	g := corridorGraph(t)
	eng, err := NewEngine(g, emptyRisk(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Both points snap to node 10.
	p := LatLng{Lat: 41.8800, Lng: -87.6300}
	result, err := eng.ComputeRoute(context.Background(), p, LatLng{Lat: 41.88001, Lng: -87.63001}, 2, 4)
	if err != nil {
		t.Fatalf("ComputeRoute: %v", err)
	}
	if len(result.Line) != 1 {
		t.Errorf("line = %v, want single point", result.Line)
	}
	if result.DistanceM != 0 || result.PredRisk != 0 {
		t.Errorf("metrics = %v / %v, want zeros", result.DistanceM, result.PredRisk)
	}
}

func TestComputeRoute_Validation(t *testing.T) {
	g := corridorGraph(t)
	eng, err := NewEngine(g, emptyRisk(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ok := LatLng{Lat: 41.88, Lng: -87.63}
	cases := []struct {
		name  string
		src   LatLng
		dst   LatLng
		bin   int
		alpha float64
	}{
		{"nan latitude", LatLng{Lat: math.NaN(), Lng: -87.63}, ok, 2, 4},
		{"inf longitude", ok, LatLng{Lat: 41.88, Lng: math.Inf(1)}, 2, 4},
		{"latitude out of range", LatLng{Lat: 91, Lng: -87.63}, ok, 2, 4},
		{"longitude out of range", ok, LatLng{Lat: 41.88, Lng: -181}, 2, 4},
		{"negative bin", ok, ok, -1, 4},
		{"nan alpha", ok, ok, 2, math.NaN()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.ComputeRoute(context.Background(), tc.src, tc.dst, tc.bin, tc.alpha)
			if !errors.Is(err, ErrBadParameter) {
				t.Errorf("err = %v, want ErrBadParameter", err)
			}
		})
	}
}

func TestComputeRoute_NegativeAlphaAllowed(t *testing.T) {
	// A negative alpha is a valid parameter; it only fails if some computed
	// edge cost goes negative.
	g := corridorGraph(t)
	table := buildRiskTable(t, []risk.Entry{{EdgeID: 0, BinOfDay: 2, RiskRate: 1000}})
	eng, err := NewEngine(g, table)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	src := LatLng{Lat: 41.8800, Lng: -87.6300}
	dst := LatLng{Lat: 41.8800, Lng: -87.6260}
	_, err = eng.ComputeRoute(context.Background(), src, dst, 2, -1)
	if !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("err = %v, want ErrNegativeWeight", err)
	}
}
