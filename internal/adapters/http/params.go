package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

const maxPreviewLimit = 5000

// parseFilters reads the selection plus the table preview limit.
func parseFilters(c *fiber.Ctx) (domain.Filters, error) {
	f, err := parseSelection(c)
	if err != nil {
		return f, err
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPreviewLimit {
			return f, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidFilter, maxPreviewLimit)
		}
		f.PreviewLimit = limit
	}
	return f, nil
}

// parseSelection reads years, types, lat and lon from the query string.
// An absent years or types parameter leaves the selection nil (everything);
// a present but empty one selects nothing.
func parseSelection(c *fiber.Ctx) (domain.Filters, error) {
	var f domain.Filters

	years, err := parseYears(c)
	if err != nil {
		return f, err
	}
	f.Years = years

	types, err := parseTypes(c)
	if err != nil {
		return f, err
	}
	f.PropertyTypes = types

	poi, err := parsePointOfInterest(c)
	if err != nil {
		return f, err
	}
	f.PointOfInterest = poi
	return f, nil
}

// parsePage reads offset and limit for paginated listings.
func parsePage(c *fiber.Ctx) (offset, limit int, err error) {
	offset, limit = 0, defaultPageLimit
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrInvalidFilter)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidFilter, maxPageLimit)
		}
	}
	return offset, limit, nil
}

func hasQuery(c *fiber.Ctx, key string) bool {
	return c.Context().QueryArgs().Has(key)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseYears(c *fiber.Ctx) ([]int, error) {
	if !hasQuery(c, "years") {
		return nil, nil
	}
	years := []int{}
	for _, part := range splitList(c.Query("years")) {
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid year %q", domain.ErrInvalidFilter, part)
		}
		years = append(years, y)
	}
	return years, nil
}

func parseTypes(c *fiber.Ctx) ([]domain.PropertyType, error) {
	if !hasQuery(c, "types") {
		return nil, nil
	}
	types := []domain.PropertyType{}
	for _, part := range splitList(c.Query("types")) {
		pt, ok := domain.ParsePropertyType(part)
		if !ok {
			return nil, fmt.Errorf("%w: unknown property type %q", domain.ErrInvalidFilter, part)
		}
		types = append(types, pt)
	}
	return types, nil
}

func parsePointOfInterest(c *fiber.Ctx) (domain.GeoPoint, error) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" && lonRaw == "" {
		return domain.GeoPoint{}, nil
	}
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lon, errLon := strconv.ParseFloat(lonRaw, 64)
	if errLat != nil || errLon != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat and lon must both be numbers", domain.ErrInvalidFilter)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.GeoPoint{}, fmt.Errorf("%w: lat/lon out of range", domain.ErrInvalidFilter)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
