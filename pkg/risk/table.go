// Package risk holds the immutable (edge_id, bin_of_day) → risk rate table.
package risk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"walk_router/pkg/graph"
)

// ErrLoad is wrapped by every table construction failure (fatal at startup).
var ErrLoad = errors.New("risk table load failed")

type key struct {
	edgeID int64
	bin    int
}

// Table maps (edge_id, bin_of_day) to an expected risk rate. A missing key is
// a defined state meaning "no historical estimate", never an error.
type Table struct {
	rates map[key]float64
}

// Entry is a single risk row.
type Entry struct {
	EdgeID   int64
	BinOfDay int
	RiskRate float64
}

// New builds a table from entries. Duplicate (edge_id, bin) keys and
// non-finite rates are construction failures.
func New(entries []Entry) (*Table, error) {
	rates := make(map[key]float64, len(entries))
	for _, e := range entries {
		if e.BinOfDay < 0 {
			return nil, fmt.Errorf("%w: negative bin_of_day %d for edge_id %d", ErrLoad, e.BinOfDay, e.EdgeID)
		}
		if math.IsNaN(e.RiskRate) || math.IsInf(e.RiskRate, 0) {
			return nil, fmt.Errorf("%w: non-finite risk_rate for edge_id %d bin %d", ErrLoad, e.EdgeID, e.BinOfDay)
		}
		k := key{e.EdgeID, e.BinOfDay}
		if _, dup := rates[k]; dup {
			return nil, fmt.Errorf("%w: duplicate entry for edge_id %d bin %d", ErrLoad, e.EdgeID, e.BinOfDay)
		}
		rates[k] = e.RiskRate
	}
	return &Table{rates: rates}, nil
}

// Lookup returns the risk rate for (edgeID, bin), or 0 when absent. An edge
// that never joined an edge_id (graph.NoEdgeID) always resolves to 0.
func (t *Table) Lookup(edgeID int64, bin int) float64 {
	if edgeID == graph.NoEdgeID {
		return 0
	}
	return t.rates[key{edgeID, bin}]
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.rates)
}

// Load reads a CSV risk source with an `edge_id,bin_of_day,risk_rate` header.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrLoad, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses risk rows from r.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrLoad, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"edge_id", "bin_of_day", "risk_rate"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrLoad, name)
		}
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrLoad, line, err)
		}
		edgeID, err := strconv.ParseInt(rec[col["edge_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: edge_id: %v", ErrLoad, line, err)
		}
		bin, err := strconv.Atoi(rec[col["bin_of_day"]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bin_of_day: %v", ErrLoad, line, err)
		}
		rate, err := strconv.ParseFloat(rec[col["risk_rate"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: risk_rate: %v", ErrLoad, line, err)
		}
		entries = append(entries, Entry{EdgeID: edgeID, BinOfDay: bin, RiskRate: rate})
	}
	return New(entries)
}
