package usecases_test

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/usecases"
)

func englishAdapter() *usecases.ViewAdapter {
	opts := usecases.DefaultViewOptions()
	opts.Locale = language.English
	return usecases.NewViewAdapter(opts)
}

func sampleTransaction() domain.Transaction {
	no := 12
	return domain.Transaction{
		Year:                2019,
		PropertyType:        domain.Apartment,
		StreetNumber:        &no,
		StreetType:          "RUE",
		StreetName:          "DE TALLEYRAND",
		City:                "REIMS",
		PostalCode:          "51100",
		Country:             "FRANCE",
		Location:            domain.GeoPoint{Lat: 49.2553, Lon: 4.0301},
		BuiltSurfaceArea:    42.5,
		PropertyValue:       40375,
		PricePerSquareMeter: 950.004,
	}
}

func TestFormatTransaction(t *testing.T) {
	d := englishAdapter().FormatTransaction(sampleTransaction())

	if d.Address != "12, RUE DE TALLEYRAND, REIMS 51100 FRANCE" {
		t.Errorf("unexpected address %q", d.Address)
	}
	if d.PricePerSquareMeter != "950.00 €/m²" {
		t.Errorf("unexpected price per m² %q", d.PricePerSquareMeter)
	}
	if d.BuiltSurfaceArea != "42.50 m²" {
		t.Errorf("unexpected surface %q", d.BuiltSurfaceArea)
	}
	if !strings.HasSuffix(d.PropertyValue, " €") || !strings.Contains(d.PropertyValue, "375.00") {
		t.Errorf("unexpected value %q", d.PropertyValue)
	}
	if d.PropertyType != "Apartment" {
		t.Errorf("unexpected type %q", d.PropertyType)
	}
}

func TestFormatTransaction_FrenchDecimalComma(t *testing.T) {
	d := usecases.NewViewAdapter(usecases.DefaultViewOptions()).FormatTransaction(sampleTransaction())
	if d.BuiltSurfaceArea != "42,50 m²" {
		t.Errorf("expected French decimal comma, got %q", d.BuiltSurfaceArea)
	}
}

func TestFormatAddress_MissingNumber(t *testing.T) {
	tx := sampleTransaction()
	tx.StreetNumber = nil
	tx.StreetType = ""
	if got := usecases.FormatAddress(tx); got != "DE TALLEYRAND, REIMS 51100 FRANCE" {
		t.Errorf("unexpected address %q", got)
	}
}

func TestToMapMarkers(t *testing.T) {
	tx := sampleTransaction()
	tx.StreetName = "<script>"
	markers := englishAdapter().ToMapMarkers(domain.Dataset{tx, sampleTransaction()})

	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	m := markers[0]
	if m.Lat != 49.2553 || m.Lon != 4.0301 {
		t.Errorf("unexpected position %v,%v", m.Lat, m.Lon)
	}
	if strings.Contains(m.PopupText, "<script>") || !strings.Contains(m.PopupText, "&lt;script&gt;") {
		t.Errorf("popup not escaped: %s", m.PopupText)
	}
	if !strings.Contains(markers[1].PopupText, "<b>Price/m²:</b> 950.00 €/m²<br>") {
		t.Errorf("unexpected popup %s", markers[1].PopupText)
	}
	if strings.Contains(m.TooltipText, "<script>") || !strings.Contains(m.TooltipText, "&lt;script&gt;") {
		t.Errorf("tooltip not escaped: %s", m.TooltipText)
	}
	if markers[1].TooltipText != "12, RUE DE TALLEYRAND, REIMS 51100 FRANCE" {
		t.Errorf("unexpected tooltip %q", markers[1].TooltipText)
	}
	if m.DistanceMeters != nil {
		t.Error("distance should be unset without a point of interest")
	}
}

func TestWithDistances(t *testing.T) {
	markers := []domain.MapMarker{{Lat: 49.2553, Lon: 4.0301}, {Lat: 50.2553, Lon: 4.0301}}
	out := usecases.WithDistances(markers, domain.GeoPoint{Lat: 49.2553, Lon: 4.0301})

	if *out[0].DistanceMeters != 0 {
		t.Errorf("expected 0 m, got %v", *out[0].DistanceMeters)
	}
	if d := *out[1].DistanceMeters; d < 111000 || d > 111400 {
		t.Errorf("expected about 111 km, got %v", d)
	}
	if markers[0].DistanceMeters != nil {
		t.Error("input markers were modified")
	}
}

func TestToHeatPoints(t *testing.T) {
	ds := domain.Dataset{row(2017, domain.House, 1200), row(2017, domain.House, 3100), row(2018, domain.House, 900)}
	points, maxWeight := englishAdapter().ToHeatPoints(ds)

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if maxWeight != 3100 {
		t.Errorf("expected max weight 3100, got %v", maxWeight)
	}
	for _, p := range points {
		if p.Weight > maxWeight {
			t.Errorf("weight %v exceeds max %v", p.Weight, maxWeight)
		}
	}

	points, maxWeight = englishAdapter().ToHeatPoints(domain.Dataset{})
	if len(points) != 0 || maxWeight != 0 {
		t.Errorf("expected no points for empty input, got %d / %v", len(points), maxWeight)
	}
}

func TestHeatLayer_Hints(t *testing.T) {
	layer := englishAdapter().HeatLayer(domain.Dataset{row(2017, domain.House, 1)})
	if layer.MinOpacity != 0.2 || layer.Radius != 30 || layer.Blur != 20 || layer.MaxZoom != 11 {
		t.Errorf("unexpected hints %+v", layer)
	}
}

func TestToTablePreview(t *testing.T) {
	ds := make(domain.Dataset, 150)
	for i := range ds {
		ds[i] = row(2017, domain.House, float64(i))
	}

	preview := englishAdapter().ToTablePreview(ds, 100)
	if len(preview.Rows) != 100 || preview.TotalRows != 150 || preview.Columns != domain.TransactionColumns {
		t.Fatalf("unexpected preview: %d rows of %d", len(preview.Rows), preview.TotalRows)
	}
	for i, r := range preview.Rows {
		if r.PricePerSquareMeter != float64(i) {
			t.Fatalf("row %d out of order", i)
		}
	}

	preview = englishAdapter().ToTablePreview(ds[:5], 0)
	if preview.Limit != 100 || len(preview.Rows) != 5 {
		t.Errorf("expected default limit 100 and 5 rows, got %d/%d", preview.Limit, len(preview.Rows))
	}
}

func TestBuildMapView(t *testing.T) {
	va := englishAdapter()

	view := va.BuildMapView(domain.GeoPoint{}, nil)
	if view.Zoom != 13 || view.Center.Lat != 49.258329 || view.Center.Lon != 4.031696 {
		t.Errorf("unexpected default view %+v", view)
	}
	if view.Highlight != nil || view.Bounds != nil {
		t.Error("expected no highlight or bounds")
	}

	ds := domain.Dataset{
		{Location: domain.GeoPoint{Lat: 49.20, Lon: 4.10}},
		{Location: domain.GeoPoint{Lat: 49.30, Lon: 4.00}},
	}
	poi := domain.GeoPoint{Lat: 49.26, Lon: 4.02}
	view = va.BuildMapView(poi, ds)
	if view.Zoom != 19 || view.Center != poi {
		t.Errorf("expected POI view, got %+v", view)
	}
	if view.Highlight == nil || view.Highlight.TooltipText != "<strong>Your point of interest</strong>" {
		t.Errorf("unexpected highlight %+v", view.Highlight)
	}
	want := domain.Bounds{MinLat: 49.20, MinLon: 4.00, MaxLat: 49.30, MaxLon: 4.10}
	if view.Bounds == nil || *view.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, view.Bounds)
	}
}
