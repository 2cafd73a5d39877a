package graph

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// ReadAttrs loads edge-attribute rows from a GeoJSON FeatureCollection whose
// feature properties carry u, v, key, edge_id and length_m. The geometry of
// each feature is ignored here; only the join columns matter to the core.
func ReadAttrs(path string) ([]EdgeAttr, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open attrs: %v", ErrLoad, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse attrs: %v", ErrLoad, err)
	}

	attrs := make([]EdgeAttr, 0, len(fc.Features))
	for i, f := range fc.Features {
		u, err := propInt64(f.Properties, "u")
		if err != nil {
			return nil, fmt.Errorf("%w: attrs feature %d: %v", ErrLoad, i, err)
		}
		v, err := propInt64(f.Properties, "v")
		if err != nil {
			return nil, fmt.Errorf("%w: attrs feature %d: %v", ErrLoad, i, err)
		}
		key, err := propInt64(f.Properties, "key")
		if err != nil {
			return nil, fmt.Errorf("%w: attrs feature %d: %v", ErrLoad, i, err)
		}
		if key < 0 {
			return nil, fmt.Errorf("%w: attrs feature %d: negative key %d", ErrLoad, i, key)
		}
		edgeID, err := propInt64(f.Properties, "edge_id")
		if err != nil {
			return nil, fmt.Errorf("%w: attrs feature %d: %v", ErrLoad, i, err)
		}
		lengthM, err := propFloat64(f.Properties, "length_m")
		if err != nil {
			return nil, fmt.Errorf("%w: attrs feature %d: %v", ErrLoad, i, err)
		}
		attrs = append(attrs, EdgeAttr{U: u, V: v, Key: uint32(key), EdgeID: edgeID, LengthM: lengthM})
	}
	return attrs, nil
}

// propInt64 extracts an integral property. JSON numbers arrive as float64.
func propInt64(p geojson.Properties, key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing property %q", key)
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("property %q is not integral: %v", key, n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("property %q has type %T", key, v)
	}
}

func propFloat64(p geojson.Properties, key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing property %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("property %q has type %T", key, v)
	}
}
