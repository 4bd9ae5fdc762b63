package domain

import (
	"strings"
	"time"
)

// PropertyType is the categorical kind of property sold.
type PropertyType string

const (
	Apartment PropertyType = "Apartment"
	House     PropertyType = "House"
)

// DefaultYears is the closed set of years published in the source dataset.
var DefaultYears = []int{2017, 2018, 2019, 2020}

// DefaultPropertyTypes lists every property type the dashboard knows about.
var DefaultPropertyTypes = []PropertyType{Apartment, House}

// ParsePropertyType normalizes a raw value (English or the French labels used
// by the land registry export) to a PropertyType.
func ParsePropertyType(raw string) (PropertyType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "apartment", "appartement":
		return Apartment, true
	case "house", "maison":
		return House, true
	}
	return "", false
}

// UnknownYear marks a transaction whose year cell was empty or unreadable.
// Such rows match no year selection.
const UnknownYear = 0

// Transaction is one real-estate sale.
type Transaction struct {
	Year                int          `json:"year"`
	PropertyType        PropertyType `json:"property_type"`
	StreetNumber        *int         `json:"street_number,omitempty"`
	StreetType          string       `json:"street_type"`
	StreetName          string       `json:"street_name"`
	City                string       `json:"city"`
	PostalCode          string       `json:"postal_code"`
	Country             string       `json:"country"`
	Location            GeoPoint     `json:"location"`
	BuiltSurfaceArea    float64      `json:"built_surface_area"` // m²
	PropertyValue       float64      `json:"property_value"`     // €
	PricePerSquareMeter float64      `json:"price_per_square_meter"`
}

// HasPrice reports whether the price per m² is known. The export leaves it
// empty when the surface is missing, which decodes to 0.
func (t Transaction) HasPrice() bool {
	return t.PricePerSquareMeter > 0
}

// TransactionColumns is the number of attributes exposed per row in tabular views.
const TransactionColumns = 13

// Dataset is an ordered sequence of transactions.
type Dataset []Transaction

// SourceRow is a decoded CSV row before coordinate filtering.
// Latitude and Longitude are nil when the cell was empty.
type SourceRow struct {
	Transaction
	Latitude  *float64
	Longitude *float64
}

// Snapshot is the memoized result of one dataset load.
type Snapshot struct {
	ID          string    `json:"id"`
	SourceKey   string    `json:"source"`
	Dataset     Dataset   `json:"-"`
	RawRows     int       `json:"raw_rows"`
	DroppedRows int       `json:"dropped_rows"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Rows returns the number of transactions kept after coordinate filtering.
func (s *Snapshot) Rows() int {
	if s == nil {
		return 0
	}
	return len(s.Dataset)
}

// Filters is the user selection driving a dashboard render.
type Filters struct {
	Years           []int          `json:"years"`
	PropertyTypes   []PropertyType `json:"property_types"`
	PointOfInterest GeoPoint       `json:"point_of_interest"`
	PreviewLimit    int            `json:"preview_limit"`
}
