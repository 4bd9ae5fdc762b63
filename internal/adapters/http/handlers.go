package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// DashboardHandler renders the full view model for a filter selection.
func DashboardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilters(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		vm, err := deps.Dashboard.Render(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(vm)
	}
}

// TransactionsHandler returns the filtered rows with offset/limit pagination.
func TransactionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseSelection(c)
		if err != nil {
			return errFromDomain(c, err)
		}
		offset, limit, err := parsePage(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		rows, err := deps.Dashboard.Transactions(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}

		total := len(rows)
		page := domain.Dataset{}
		if offset < total {
			end := offset + limit
			if end > total {
				end = total
			}
			page = rows[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// StatsHandler returns the per-year price-per-m² quantiles of the full dataset.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		years, err := parseYears(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		stats, err := deps.Dashboard.Stats(c.UserContext(), years)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(stats)
	}
}

// CountsHandler returns transaction counts per year and property type.
func CountsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := deps.Dashboard.Counts(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(counts)
	}
}

// DistributionsHandler returns box-plot summaries of the filtered rows.
func DistributionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilters(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		dists, err := deps.Dashboard.Distributions(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(dists)
	}
}

// MapResponse bundles everything a map widget needs.
type MapResponse struct {
	View    domain.MapView     `json:"view"`
	Markers []domain.MapMarker `json:"markers"`
	Heat    domain.HeatLayer   `json:"heat"`
}

// MapHandler returns the map view, markers and heat layer.
func MapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilters(c)
		if err != nil {
			return errFromDomain(c, err)
		}

		view, markers, heat, err := deps.Dashboard.MapLayers(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(MapResponse{View: view, Markers: markers, Heat: heat})
	}
}

// DatasetStatus describes the memoized snapshot.
type DatasetStatus struct {
	Source        string                `json:"source"`
	Loaded        bool                  `json:"loaded"`
	Snapshot      *domain.Snapshot      `json:"snapshot,omitempty"`
	Rows          int                   `json:"rows"`
	Years         []int                 `json:"years"`
	PropertyTypes []domain.PropertyType `json:"property_types"`
}

func datasetStatus(deps *Dependencies, snap *domain.Snapshot) DatasetStatus {
	return DatasetStatus{
		Source:        deps.Datasets.SourceKey(),
		Loaded:        snap != nil,
		Snapshot:      snap,
		Rows:          snap.Rows(),
		Years:         deps.Dashboard.Years(),
		PropertyTypes: deps.Dashboard.PropertyTypes(),
	}
}

// DatasetHandler reports on the current snapshot without triggering a load.
func DatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache")
		return c.JSON(datasetStatus(deps, deps.Datasets.Cached()))
	}
}

// ReloadDatasetHandler drops the snapshot everywhere and loads a fresh one.
func ReloadDatasetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Datasets.Reload(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("dataset reloaded",
			"snapshot", snap.ID,
			"rows", snap.Rows(),
		)
		return c.JSON(datasetStatus(deps, snap))
	}
}
