package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestParsePropertyType(t *testing.T) {
	cases := map[string]PropertyType{
		"Apartment":    Apartment,
		" appartement": Apartment,
		"House":        House,
		"MAISON":       House,
	}
	for in, want := range cases {
		got, ok := ParsePropertyType(in)
		if !ok || got != want {
			t.Errorf("ParsePropertyType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParsePropertyType("Dépendance"); ok {
		t.Error("expected unknown type to be rejected")
	}
}

func TestSnapshotRows_Nil(t *testing.T) {
	var s *Snapshot
	if s.Rows() != 0 {
		t.Error("expected 0 rows for nil snapshot")
	}
}

func TestSchemaError(t *testing.T) {
	missing := &SchemaError{Missing: []string{"Latitude", "Longitude"}}
	if missing.Error() != "dataset schema error: missing columns Latitude, Longitude" {
		t.Errorf("unexpected message %q", missing.Error())
	}

	bad := &SchemaError{Line: 4, Column: "Year", Value: "x"}
	if bad.Error() != `dataset schema error: line 4: invalid Year "x"` {
		t.Errorf("unexpected message %q", bad.Error())
	}

	wrapped := fmt.Errorf("decode: %w", bad)
	if !errors.Is(wrapped, ErrSchema) {
		t.Error("expected wrapped SchemaError to match ErrSchema")
	}
	if errors.Is(wrapped, ErrSourceUnavailable) {
		t.Error("SchemaError must not match ErrSourceUnavailable")
	}
}

func TestEmptyYearError(t *testing.T) {
	err := fmt.Errorf("stats: %w", &EmptyYearError{Year: 2021})
	if !errors.Is(err, ErrEmptyYear) {
		t.Error("expected ErrEmptyYear")
	}
	var ey *EmptyYearError
	if !errors.As(err, &ey) || ey.Year != 2021 {
		t.Errorf("expected year 2021, got %+v", ey)
	}
}

func TestTypeCountsRows(t *testing.T) {
	counts := TypeCounts{
		{Year: 2018, Type: House}:     1,
		{Year: 2017, Type: House}:     2,
		{Year: 2017, Type: Apartment}: 3,
	}
	rows := counts.Rows()
	want := []TypeCount{
		{Year: 2017, PropertyType: Apartment, Count: 3},
		{Year: 2017, PropertyType: House, Count: 2},
		{Year: 2018, PropertyType: House, Count: 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestBoundsExtend(t *testing.T) {
	b := Bounds{MinLat: 49.25, MaxLat: 49.25, MinLon: 4.03, MaxLon: 4.03}
	b = b.Extend(GeoPoint{Lat: 49.20, Lon: 4.10})
	if b.MinLat != 49.20 || b.MaxLat != 49.25 || b.MinLon != 4.03 || b.MaxLon != 4.10 {
		t.Errorf("unexpected bounds %+v", b)
	}
}
