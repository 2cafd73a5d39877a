package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"walk_router/pkg/api"
	"walk_router/pkg/fetch"
	"walk_router/pkg/graph"
	"walk_router/pkg/risk"
	"walk_router/pkg/routing"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	dataDir := flag.String("data-dir", ".", "Directory holding the data files")
	graphFile := flag.String("graph", "walk_graph.bin", "Graph binary filename")
	attrsFile := flag.String("attrs", "edges.geojson", "Edge attribute GeoJSON filename")
	riskFile := flag.String("risk", "risk_surface.csv", "Risk table CSV filename")
	graphURL := flag.String("graph-url", "", "URL to fetch the graph binary from if missing")
	attrsURL := flag.String("attrs-url", "", "URL to fetch the edge attributes from if missing")
	riskURL := flag.String("risk-url", "", "URL to fetch the risk table from if missing")
	fetchTimeout := flag.Duration("fetch-timeout", 5*time.Minute, "Total retry window per downloaded file")
	queryTimeout := flag.Duration("query-timeout", 5*time.Second, "Wall-clock bound per route query")
	flag.Parse()

	start := time.Now()

	// Fetch missing data files. Any failure here is fatal: the process must
	// not start serving without its sources.
	graphPath := filepath.Join(*dataDir, *graphFile)
	attrsPath := filepath.Join(*dataDir, *attrsFile)
	riskPath := filepath.Join(*dataDir, *riskFile)

	fetcher := fetch.New(*fetchTimeout)
	for _, src := range []struct{ url, path string }{
		{*graphURL, graphPath},
		{*attrsURL, attrsPath},
		{*riskURL, riskPath},
	} {
		if src.url == "" {
			continue // file must already be present locally
		}
		if err := fetcher.EnsureFile(context.Background(), src.url, src.path); err != nil {
			log.Fatalf("Failed to fetch data: %v", err)
		}
	}

	// Load and join the graph sources.
	log.Printf("Loading graph from %s...", graphPath)
	nodes, edges, err := graph.ReadBinary(graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded %d nodes, %d edges", len(nodes), len(edges))

	log.Printf("Loading edge attributes from %s...", attrsPath)
	attrs, err := graph.ReadAttrs(attrsPath)
	if err != nil {
		log.Fatalf("Failed to load edge attributes: %v", err)
	}

	g, stats, err := graph.Build(nodes, edges, attrs)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	if stats.UnjoinedEdges > 0 {
		log.Printf("Warning: %d of %d edges have no edge_id (risk resolves to 0 for them)",
			stats.UnjoinedEdges, g.NumEdges)
	}

	log.Printf("Loading risk table from %s...", riskPath)
	table, err := risk.Load(riskPath)
	if err != nil {
		log.Fatalf("Failed to load risk table: %v", err)
	}
	log.Printf("Risk table: %d entries", table.Len())

	// Build routing engine (includes the nearest-node R-tree index).
	log.Println("Building R-tree spatial index...")
	engine, err := routing.NewEngine(g, table)
	if err != nil {
		log.Fatalf("Failed to build routing engine: %v", err)
	}

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin
	cfg.QueryTimeout = *queryTimeout

	handlers := api.NewHandlers(engine, api.StatsResponse{
		NumNodes:      g.NumNodes,
		NumEdges:      g.NumEdges,
		JoinedEdges:   stats.JoinedEdges,
		UnjoinedEdges: stats.UnjoinedEdges,
		RiskEntries:   table.Len(),
	})

	srv := api.NewServer(cfg, handlers)
	if err := api.ListenAndServe(srv); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
