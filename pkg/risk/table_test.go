package risk

import (
	"errors"
	"strings"
	"testing"

	"walk_router/pkg/graph"
)

func TestTable_Lookup(t *testing.T) {
	table, err := New([]Entry{
		{EdgeID: 1, BinOfDay: 2, RiskRate: 0.5},
		{EdgeID: 1, BinOfDay: 3, RiskRate: 0.7},
		{EdgeID: 9, BinOfDay: 2, RiskRate: 1.25},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name   string
		edgeID int64
		bin    int
		want   float64
	}{
		{"hit", 1, 2, 0.5},
		{"hit other bin", 1, 3, 0.7},
		{"miss unknown edge", 42, 2, 0},
		{"miss unknown bin", 1, 99, 0},
		{"unjoined edge", graph.NoEdgeID, 2, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := table.Lookup(c.edgeID, c.bin); got != c.want {
				t.Errorf("Lookup(%d, %d) = %v, want %v", c.edgeID, c.bin, got, c.want)
			}
		})
	}

	if table.Len() != 3 {
		t.Errorf("Len = %d, want 3", table.Len())
	}
}

func TestRead_CSV(t *testing.T) {
	csv := "edge_id,bin_of_day,risk_rate\n7,2,0.33\n7,3,0.5\n8,2,0\n"
	table, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := table.Lookup(7, 2); got != 0.33 {
		t.Errorf("Lookup(7,2) = %v, want 0.33", got)
	}
	if got := table.Lookup(8, 2); got != 0 {
		t.Errorf("Lookup(8,2) = %v, want 0", got)
	}
}

func TestRead_ColumnOrderIndependent(t *testing.T) {
	csv := "risk_rate,edge_id,bin_of_day\n0.9,5,1\n"
	table, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := table.Lookup(5, 1); got != 0.9 {
		t.Errorf("Lookup(5,1) = %v, want 0.9", got)
	}
}

func TestRead_Malformed(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"missing column", "edge_id,bin_of_day\n1,2\n"},
		{"bad edge_id", "edge_id,bin_of_day,risk_rate\nxx,2,0.5\n"},
		{"bad bin", "edge_id,bin_of_day,risk_rate\n1,yy,0.5\n"},
		{"bad rate", "edge_id,bin_of_day,risk_rate\n1,2,zz\n"},
		{"duplicate key", "edge_id,bin_of_day,risk_rate\n1,2,0.5\n1,2,0.6\n"},
		{"negative bin", "edge_id,bin_of_day,risk_rate\n1,-2,0.5\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(c.csv)); !errors.Is(err, ErrLoad) {
				t.Errorf("err = %v, want ErrLoad", err)
			}
		})
	}
}
