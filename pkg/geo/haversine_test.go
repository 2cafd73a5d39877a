package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Willis Tower to Navy Pier, Chicago: ~3.3 km.
	d := Haversine(41.8789, -87.6359, 41.8917, -87.6050)
	if d < 2800 || d > 3800 {
		t.Errorf("Haversine = %.0f m, want ~3300 m", d)
	}
}

func TestHaversine_ZeroDistance(t *testing.T) {
	d := Haversine(41.88, -87.63, 41.88, -87.63)
	if d != 0 {
		t.Errorf("Haversine same point = %v, want 0", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(41.88, -87.63, 41.95, -87.70)
	b := Haversine(41.95, -87.70, 41.88, -87.63)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", a, b)
	}
}

func TestDegToMeters_MatchesHaversineAlongMeridian(t *testing.T) {
	// One degree of latitude is one degree of great-circle arc.
	h := Haversine(41.0, -87.63, 42.0, -87.63)
	if rel := math.Abs(h-DegToMeters) / h; rel > 1e-9 {
		t.Errorf("DegToMeters = %v, haversine over 1 degree = %v", DegToMeters, h)
	}
}
