package graph

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const attrsFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[-87.63, 41.88], [-87.62, 41.89]]},
      "properties": {"u": 100, "v": 200, "key": 0, "edge_id": 7, "length_m": 123.5}
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[-87.62, 41.89], [-87.63, 41.88]]},
      "properties": {"u": 200, "v": 100, "key": 1, "edge_id": 8, "length_m": 124}
    }
  ]
}`

func writeAttrsFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.geojson")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadAttrs(t *testing.T) {
	attrs, err := ReadAttrs(writeAttrsFixture(t, attrsFixture))
	if err != nil {
		t.Fatalf("ReadAttrs: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("len = %d, want 2", len(attrs))
	}
	want0 := EdgeAttr{U: 100, V: 200, Key: 0, EdgeID: 7, LengthM: 123.5}
	if attrs[0] != want0 {
		t.Errorf("attrs[0] = %+v, want %+v", attrs[0], want0)
	}
	if attrs[1].Key != 1 || attrs[1].EdgeID != 8 {
		t.Errorf("attrs[1] = %+v, want key 1, edge_id 8", attrs[1])
	}
}

func TestReadAttrs_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{"type": "FeatureCollection",`},
		{"missing edge_id", `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},
			 "properties":{"u":1,"v":2,"key":0,"length_m":5}}]}`},
		{"fractional key", `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},
			 "properties":{"u":1,"v":2,"key":0.5,"edge_id":1,"length_m":5}}]}`},
		{"negative key", `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},
			 "properties":{"u":1,"v":2,"key":-1,"edge_id":1,"length_m":5}}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ReadAttrs(writeAttrsFixture(t, c.body)); !errors.Is(err, ErrLoad) {
				t.Errorf("err = %v, want ErrLoad", err)
			}
		})
	}
}
