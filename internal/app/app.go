// Package app assembles the dashboard pipeline from configuration.
package app

import (
	"fmt"
	"time"

	csvdecoder "github.com/samirrijal/immoreims/internal/adapters/csv"
	"github.com/samirrijal/immoreims/internal/adapters/source"
	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/core/usecases"
	"github.com/samirrijal/immoreims/internal/pkg/config"
)

// ViewOptions derives the renderer settings from the dashboard config,
// keeping the defaults for anything left unset.
func ViewOptions(cfg config.DashboardConfig) (usecases.ViewOptions, error) {
	opts := usecases.DefaultViewOptions()
	if cfg.Locale != "" {
		tag, err := cfg.Language()
		if err != nil {
			return opts, fmt.Errorf("dashboard.locale: %w", err)
		}
		opts.Locale = tag
	}
	if cfg.CenterLat != 0 || cfg.CenterLon != 0 {
		opts.DefaultCenter = domain.GeoPoint{Lat: cfg.CenterLat, Lon: cfg.CenterLon}
	}
	if cfg.Zoom > 0 {
		opts.DefaultZoom = cfg.Zoom
	}
	if cfg.POIZoom > 0 {
		opts.POIZoom = cfg.POIZoom
	}
	if cfg.PreviewLimit > 0 {
		opts.PreviewLimit = cfg.PreviewLimit
	}
	return opts, nil
}

// Build wires source, decoder, loader and dashboard service. cache and
// publisher may be nil.
func Build(cfg *config.Config, cache ports.CacheService, publisher ports.EventPublisher) (*usecases.DatasetLoader, *usecases.DashboardService, error) {
	src, err := source.New(cfg.Source.URL, time.Duration(cfg.Source.Timeout)*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("source: %w", err)
	}

	opts, err := ViewOptions(cfg.Dashboard)
	if err != nil {
		return nil, nil, err
	}
	types, err := cfg.Dashboard.Types()
	if err != nil {
		return nil, nil, fmt.Errorf("dashboard.property_types: %w", err)
	}

	loader := usecases.NewDatasetLoader(src, csvdecoder.New(), cache, publisher, cfg.Source.CacheTTL)
	dashboard := usecases.NewDashboardService(loader, usecases.NewViewAdapter(opts), cfg.Dashboard.Years, types)
	return loader, dashboard, nil
}
