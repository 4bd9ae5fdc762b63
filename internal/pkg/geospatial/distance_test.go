package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(49.258329, 4.031696, 49.258329, 4.031696); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestHaversine_ReimsCathedralToStation(t *testing.T) {
	// Notre-Dame de Reims to Reims railway station, a little under a kilometre apart.
	d := Haversine(49.253889, 4.034167, 49.259167, 4.024444)
	if d < 800 || d > 1100 {
		t.Errorf("expected ~900 m, got %.0f m", d)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 50 {
		t.Errorf("expected ~111195 m, got %.0f m", d)
	}
}
