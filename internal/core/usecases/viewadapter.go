package usecases

import (
	"html"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/pkg/geospatial"
)

// DefaultPreviewLimit is the number of rows shown in the table preview.
const DefaultPreviewLimit = 100

// ViewOptions configures how views are shaped for the renderers.
type ViewOptions struct {
	Locale        language.Tag
	DefaultCenter domain.GeoPoint
	DefaultZoom   int
	POIZoom       int
	PreviewLimit  int

	HeatMinOpacity float64
	HeatRadius     int
	HeatBlur       int
	HeatMaxZoom    int
}

// DefaultViewOptions centers the map on Reims.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Locale:         language.French,
		DefaultCenter:  domain.GeoPoint{Lat: 49.258329, Lon: 4.031696},
		DefaultZoom:    13,
		POIZoom:        19,
		PreviewLimit:   DefaultPreviewLimit,
		HeatMinOpacity: 0.2,
		HeatRadius:     30,
		HeatBlur:       20,
		HeatMaxZoom:    11,
	}
}

// ViewAdapter shapes datasets into the records consumed by the map, table
// and chart renderers.
type ViewAdapter struct {
	opts    ViewOptions
	printer *message.Printer
}

// NewViewAdapter creates a new ViewAdapter.
func NewViewAdapter(opts ViewOptions) *ViewAdapter {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	return &ViewAdapter{opts: opts, printer: message.NewPrinter(opts.Locale)}
}

// Options returns the adapter configuration.
func (v *ViewAdapter) Options() ViewOptions { return v.opts }

// FormatTransaction renders a transaction for display.
func (v *ViewAdapter) FormatTransaction(t domain.Transaction) domain.DisplayRecord {
	return domain.DisplayRecord{
		Address:             FormatAddress(t),
		PricePerSquareMeter: v.printer.Sprintf("%.2f €/m²", round2(t.PricePerSquareMeter)),
		PropertyValue:       v.printer.Sprintf("%.2f €", round2(t.PropertyValue)),
		BuiltSurfaceArea:    v.printer.Sprintf("%.2f m²", round2(t.BuiltSurfaceArea)),
		PropertyType:        string(t.PropertyType),
	}
}

// FormatAddress builds "<no>, <street type> <street>, <city> <postal code> <country>",
// leaving out whatever is unknown.
func FormatAddress(t domain.Transaction) string {
	var number string
	if t.StreetNumber != nil {
		number = strconv.Itoa(*t.StreetNumber)
	}
	street := joinNonEmpty(" ", t.StreetType, t.StreetName)
	locality := joinNonEmpty(" ", t.City, t.PostalCode, t.Country)
	return joinNonEmpty(", ", number, street, locality)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// popupHTML lays out a display record as the marker popup body.
func popupHTML(d domain.DisplayRecord) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString("<b>")
		b.WriteString(label)
		b.WriteString(":</b> ")
		b.WriteString(html.EscapeString(value))
		b.WriteString("<br>")
	}
	line("Address", d.Address)
	line("Price/m²", d.PricePerSquareMeter)
	line("Property value", d.PropertyValue)
	line("Surface", d.BuiltSurfaceArea)
	line("Type", d.PropertyType)
	return b.String()
}

// ToMapMarkers builds one marker per transaction. Popup and tooltip are both
// HTML fragments, so dataset text is escaped in each.
func (v *ViewAdapter) ToMapMarkers(ds domain.Dataset) []domain.MapMarker {
	markers := make([]domain.MapMarker, 0, len(ds))
	for _, t := range ds {
		d := v.FormatTransaction(t)
		markers = append(markers, domain.MapMarker{
			Lat:         t.Location.Lat,
			Lon:         t.Location.Lon,
			PopupText:   popupHTML(d),
			TooltipText: html.EscapeString(d.Address),
		})
	}
	return markers
}

// WithDistances returns a copy of markers annotated with their distance in
// meters from poi.
func WithDistances(markers []domain.MapMarker, poi domain.GeoPoint) []domain.MapMarker {
	out := make([]domain.MapMarker, len(markers))
	for i, m := range markers {
		d := round2(geospatial.Haversine(poi.Lat, poi.Lon, m.Lat, m.Lon))
		m.DistanceMeters = &d
		out[i] = m
	}
	return out
}

// ToHeatPoints weights each location by its price per m² and reports the
// maximum weight for intensity normalization.
func (v *ViewAdapter) ToHeatPoints(ds domain.Dataset) ([]domain.HeatPoint, float64) {
	points := make([]domain.HeatPoint, 0, len(ds))
	var maxWeight float64
	for i, t := range ds {
		if i == 0 || t.PricePerSquareMeter > maxWeight {
			maxWeight = t.PricePerSquareMeter
		}
		points = append(points, domain.HeatPoint{
			Lat:    t.Location.Lat,
			Lon:    t.Location.Lon,
			Weight: t.PricePerSquareMeter,
		})
	}
	return points, maxWeight
}

// HeatLayer wraps ToHeatPoints with the configured rendering hints.
func (v *ViewAdapter) HeatLayer(ds domain.Dataset) domain.HeatLayer {
	points, maxWeight := v.ToHeatPoints(ds)
	return domain.HeatLayer{
		Points:     points,
		MaxWeight:  maxWeight,
		MinOpacity: v.opts.HeatMinOpacity,
		Radius:     v.opts.HeatRadius,
		Blur:       v.opts.HeatBlur,
		MaxZoom:    v.opts.HeatMaxZoom,
	}
}

// ToTablePreview keeps the first limit rows of ds in order. A non-positive
// limit falls back to the configured preview size.
func (v *ViewAdapter) ToTablePreview(ds domain.Dataset, limit int) domain.TablePreview {
	if limit <= 0 {
		limit = v.opts.PreviewLimit
	}
	n := len(ds)
	if n > limit {
		n = limit
	}
	rows := make(domain.Dataset, n)
	copy(rows, ds[:n])
	return domain.TablePreview{
		Rows:      rows,
		Limit:     limit,
		TotalRows: len(ds),
		Columns:   domain.TransactionColumns,
	}
}

// BuildMapView centers the map on the point of interest when one is given,
// otherwise on the configured default, and records the bounds of ds.
func (v *ViewAdapter) BuildMapView(poi domain.GeoPoint, ds domain.Dataset) domain.MapView {
	view := domain.MapView{Center: v.opts.DefaultCenter, Zoom: v.opts.DefaultZoom}
	if !poi.IsZero() {
		view.Center = poi
		view.Zoom = v.opts.POIZoom
		view.Highlight = &domain.MapMarker{
			Lat:         poi.Lat,
			Lon:         poi.Lon,
			TooltipText: "<strong>Your point of interest</strong>",
		}
	}
	if len(ds) > 0 {
		first := ds[0].Location
		b := domain.Bounds{MinLat: first.Lat, MaxLat: first.Lat, MinLon: first.Lon, MaxLon: first.Lon}
		for _, t := range ds[1:] {
			b = b.Extend(t.Location)
		}
		view.Bounds = &b
	}
	return view
}
