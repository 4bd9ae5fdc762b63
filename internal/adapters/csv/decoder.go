package csvdecoder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// Logical column names.
const (
	ColYear                = "Year"
	ColPropertyType        = "PropertyType"
	ColStreetNumber        = "StreetNumber"
	ColStreetType          = "StreetTypeName"
	ColStreetName          = "StreetName"
	ColCity                = "City"
	ColPostalCode          = "PostalCode"
	ColCountry             = "Country"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
	ColBuiltSurfaceArea    = "BuiltSurfaceArea"
	ColPropertyValue       = "PropertyValue"
	ColPricePerSquareMeter = "PricePerSquareMeter"
)

// headerAliases maps each logical column to the headers accepted for it:
// the canonical name first, then the labels of the land registry export.
var headerAliases = map[string][]string{
	ColYear:                {"Year", "Annee", "Année"},
	ColPropertyType:        {"PropertyType", "Type local"},
	ColStreetNumber:        {"StreetNumber", "No voie"},
	ColStreetType:          {"StreetTypeName", "Type de voie"},
	ColStreetName:          {"StreetName", "Voie"},
	ColCity:                {"City", "Commune"},
	ColPostalCode:          {"PostalCode", "Code postal"},
	ColCountry:             {"Country", "Pays"},
	ColLatitude:            {"Latitude"},
	ColLongitude:           {"Longitude"},
	ColBuiltSurfaceArea:    {"BuiltSurfaceArea", "Surface reelle bati"},
	ColPropertyValue:       {"PropertyValue", "Valeur fonciere"},
	ColPricePerSquareMeter: {"PricePerSquareMeter", "Prix metre carre"},
}

// Decoder reads the transaction CSV export.
type Decoder struct {
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// New creates a comma-separated Decoder.
func New() *Decoder {
	return &Decoder{Comma: ','}
}

// Decode reads every row of r. Coordinates are left nil when empty so the
// loader can drop those rows, and an empty or unreadable year decodes as
// domain.UnknownYear. Only a header lacking a required column is rejected,
// with a *domain.SchemaError listing the missing columns.
func (d *Decoder) Decode(r io.Reader) ([]domain.SourceRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	if d.Comma != 0 {
		reader.Comma = d.Comma
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.SchemaError{Missing: requiredColumns()}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []domain.SourceRow
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, decodeRow(record, idx))
	}
	return rows, nil
}

func indexHeader(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := byName[h]; !dup {
			byName[h] = i
		}
	}

	idx := make(map[string]int, len(headerAliases))
	var missing []string
	for col, aliases := range headerAliases {
		found := false
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				idx[col] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &domain.SchemaError{Missing: missing}
	}
	return idx, nil
}

func requiredColumns() []string {
	cols := make([]string, 0, len(headerAliases))
	for col := range headerAliases {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func decodeRow(record []string, idx map[string]int) domain.SourceRow {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(record) {
			return ""
		}
		v := strings.TrimSpace(record[i])
		if isNull(v) {
			return ""
		}
		return v
	}

	var row domain.SourceRow

	if year, ok := parseInt(cell(ColYear)); ok {
		row.Year = year
	} else {
		row.Year = domain.UnknownYear
	}

	typeRaw := cell(ColPropertyType)
	if pt, ok := domain.ParsePropertyType(typeRaw); ok {
		row.PropertyType = pt
	} else {
		row.PropertyType = domain.PropertyType(typeRaw)
	}

	if n, ok := parseInt(cell(ColStreetNumber)); ok {
		row.StreetNumber = &n
	}
	row.StreetType = cell(ColStreetType)
	row.StreetName = cell(ColStreetName)
	row.City = cell(ColCity)
	row.PostalCode = postalCode(cell(ColPostalCode))
	row.Country = cell(ColCountry)

	row.Latitude = parseOptionalFloat(cell(ColLatitude))
	row.Longitude = parseOptionalFloat(cell(ColLongitude))

	row.BuiltSurfaceArea = parseFloatOrZero(cell(ColBuiltSurfaceArea))
	row.PropertyValue = parseFloatOrZero(cell(ColPropertyValue))
	if p := parseOptionalFloat(cell(ColPricePerSquareMeter)); p != nil {
		row.PricePerSquareMeter = *p
	} else if row.BuiltSurfaceArea > 0 {
		row.PricePerSquareMeter = row.PropertyValue / row.BuiltSurfaceArea
	}

	return row
}

func isNull(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "null", "none", "na":
		return true
	}
	return false
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseInt accepts integers written as floats ("2017.0"), as pandas exports
// integer columns holding NaN.
func parseInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseOptionalFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseFloatOrZero(v string) float64 {
	if f := parseOptionalFloat(v); f != nil {
		return *f
	}
	return 0
}

// postalCode drops the ".0" pandas appends to numeric postal codes.
func postalCode(v string) string {
	if n, ok := parseInt(v); ok && strings.Contains(v, ".") {
		return strconv.Itoa(n)
	}
	return v
}
