package domain

import "sort"

// YearType keys counts by year and property type.
type YearType struct {
	Year int
	Type PropertyType
}

// TypeCounts maps (year, type) to the number of transactions.
type TypeCounts map[YearType]int

// TypeCount is one row of the year-over-year count chart.
type TypeCount struct {
	Year         int          `json:"year"`
	PropertyType PropertyType `json:"property_type"`
	Count        int          `json:"count"`
}

// Rows flattens the counts ordered by year, then property type.
func (c TypeCounts) Rows() []TypeCount {
	rows := make([]TypeCount, 0, len(c))
	for k, n := range c {
		rows = append(rows, TypeCount{Year: k.Year, PropertyType: k.Type, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].PropertyType < rows[j].PropertyType
	})
	return rows
}

// YearStats holds price-per-m² statistics for one year.
// All fields but Year are nil when the year has no transactions.
type YearStats struct {
	Year   int      `json:"year"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Mean   *float64 `json:"mean"`
}

// Measures summarized by Distributions.
const (
	MeasurePropertyValue       = "property_value"
	MeasureBuiltSurfaceArea    = "built_surface_area"
	MeasurePricePerSquareMeter = "price_per_square_meter"
)

// FiveNumberSummary is the box-plot summary of a sample.
type FiveNumberSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Distribution is the box-plot summary of one measure for a (year, type) group.
type Distribution struct {
	Year         int               `json:"year"`
	PropertyType PropertyType      `json:"property_type"`
	Measure      string            `json:"measure"`
	Summary      FiveNumberSummary `json:"summary"`
}

// DisplayRecord is the human-readable rendering of a transaction.
type DisplayRecord struct {
	Address             string `json:"address"`
	PricePerSquareMeter string `json:"price_per_square_meter"`
	PropertyValue       string `json:"property_value"`
	BuiltSurfaceArea    string `json:"built_surface_area"`
	PropertyType        string `json:"property_type"`
}

// MapMarker is a clustered marker on the map.
type MapMarker struct {
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	PopupText      string   `json:"popup_text"`
	TooltipText    string   `json:"tooltip_text"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
}

// HeatPoint is a weighted location on the heat map.
type HeatPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// HeatLayer carries heat points with their normalization and rendering hints.
type HeatLayer struct {
	Points     []HeatPoint `json:"points"`
	MaxWeight  float64     `json:"max_weight"`
	MinOpacity float64     `json:"min_opacity"`
	Radius     int         `json:"radius"`
	Blur       int         `json:"blur"`
	MaxZoom    int         `json:"max_zoom"`
}

// MapView positions the map and optionally highlights the point of interest.
type MapView struct {
	Center    GeoPoint   `json:"center"`
	Zoom      int        `json:"zoom"`
	Highlight *MapMarker `json:"highlight,omitempty"`
	Bounds    *Bounds    `json:"bounds,omitempty"`
}

// TablePreview is the truncated tabular view of the filtered dataset.
type TablePreview struct {
	Rows      Dataset `json:"rows"`
	Limit     int     `json:"limit"`
	TotalRows int     `json:"total_rows"`
	Columns   int     `json:"columns"`
}

// ViewModel is everything the dashboard renders for one filter selection.
type ViewModel struct {
	Filters       Filters        `json:"filters"`
	Snapshot      *Snapshot      `json:"snapshot"`
	Map           MapView        `json:"map"`
	Markers       []MapMarker    `json:"markers"`
	Heat          HeatLayer      `json:"heat"`
	Table         TablePreview   `json:"table"`
	Counts        []TypeCount    `json:"counts"`
	Stats         []YearStats    `json:"stats"`
	Distributions []Distribution `json:"distributions"`
}
