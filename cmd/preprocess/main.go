package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"walk_router/pkg/graph"
	osmparser "walk_router/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	graphOut := flag.String("graph-out", "walk_graph.bin", "Output graph binary path")
	attrsOut := flag.String("attrs-out", "edges.geojson", "Output edge attribute GeoJSON path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	chicago := flag.Bool("chicago", false, "Shortcut for --bbox 41.64,-87.95,42.03,-87.50 (Chicago bounding box)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--graph-out walk_graph.bin] [--attrs-out edges.geojson] [--chicago | --bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	var opts osmparser.ParseOptions
	if *chicago {
		opts.BBox = osmparser.BBox{MinLat: 41.64, MaxLat: 42.03, MinLng: -87.95, MaxLng: -87.50}
		log.Println("Using Chicago bounding box filter: lat [41.64, 42.03], lng [-87.95, -87.50]")
	} else if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()

	// Step 1: Parse OSM data.
	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	// Step 2: Convert to provider records.
	nodes, edges := toRecords(parseResult)

	// Step 3: Keep only the largest weakly connected component so every
	// snapped endpoint can reach every other.
	keep := graph.LargestComponent(nodes, edges)
	nodes, edges = graph.FilterToComponent(nodes, edges, keep)
	log.Printf("Largest component: %d nodes, %d edges", len(nodes), len(edges))

	// Step 4: Assign parallel-edge keys and stable edge_ids.
	attrs := assignIdentities(edges)

	// Step 5: Serialize.
	log.Printf("Writing graph binary to %s...", *graphOut)
	if err := graph.WriteBinary(*graphOut, nodes, edges); err != nil {
		log.Fatalf("Failed to write graph binary: %v", err)
	}

	log.Printf("Writing edge attributes to %s...", *attrsOut)
	if err := writeAttrs(*attrsOut, nodes, edges, attrs); err != nil {
		log.Fatalf("Failed to write edge attributes: %v", err)
	}

	elapsed := time.Since(start)
	log.Printf("Done in %s: %d nodes, %d edges", elapsed.Round(time.Second), len(nodes), len(edges))
}

// toRecords flattens the parse result into provider node and edge records.
func toRecords(pr *osmparser.ParseResult) ([]graph.Node, []graph.Edge) {
	nodes := make([]graph.Node, 0, len(pr.NodeLat))
	for id, lat := range pr.NodeLat {
		nodes = append(nodes, graph.Node{ID: int64(id), Lat: lat, Lon: pr.NodeLon[id]})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]graph.Edge, 0, len(pr.Edges))
	for _, e := range pr.Edges {
		edges = append(edges, graph.Edge{U: int64(e.FromNodeID), V: int64(e.ToNodeID), LengthM: e.LengthM})
	}
	return nodes, edges
}

// assignIdentities sorts edges by (u, v), numbers parallel duplicates with
// ascending keys, and hands every edge a sequential edge_id. The returned
// attribute rows mirror what the server-side join expects.
func assignIdentities(edges []graph.Edge) []graph.EdgeAttr {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		if edges[i].V != edges[j].V {
			return edges[i].V < edges[j].V
		}
		return edges[i].LengthM < edges[j].LengthM
	})

	attrs := make([]graph.EdgeAttr, len(edges))
	for i := range edges {
		if i > 0 && edges[i].U == edges[i-1].U && edges[i].V == edges[i-1].V {
			edges[i].Key = edges[i-1].Key + 1
		} else {
			edges[i].Key = 0
		}
		attrs[i] = graph.EdgeAttr{
			U:       edges[i].U,
			V:       edges[i].V,
			Key:     edges[i].Key,
			EdgeID:  int64(i),
			LengthM: edges[i].LengthM,
		}
	}
	return attrs
}

// writeAttrs serializes the attribute rows as a GeoJSON FeatureCollection
// with straight-line segment geometry for each edge.
func writeAttrs(path string, nodes []graph.Node, edges []graph.Edge, attrs []graph.EdgeAttr) error {
	coord := make(map[int64]orb.Point, len(nodes))
	for _, n := range nodes {
		coord[n.ID] = orb.Point{n.Lon, n.Lat}
	}

	fc := geojson.NewFeatureCollection()
	for _, a := range attrs {
		f := geojson.NewFeature(orb.LineString{coord[a.U], coord[a.V]})
		f.Properties = geojson.Properties{
			"u":        a.U,
			"v":        a.V,
			"key":      a.Key,
			"edge_id":  a.EdgeID,
			"length_m": a.LengthM,
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
