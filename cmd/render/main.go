// Command render loads the transactions dataset and prints a dashboard view
// as JSON, without starting the API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/samirrijal/immoreims/internal/adapters/valkey"
	"github.com/samirrijal/immoreims/internal/app"
	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/pkg/config"
	"github.com/samirrijal/immoreims/internal/pkg/logging"
)

func main() {
	var (
		section = pflag.StringP("section", "s", "dashboard", "dashboard | table | map | counts | stats | distributions | dataset")
		years   = pflag.StringSlice("years", nil, "years to select, comma separated (omit for all)")
		types   = pflag.StringSlice("types", nil, "property types to select, comma separated (omit for all)")
		lat     = pflag.Float64("lat", 0, "point of interest latitude")
		lon     = pflag.Float64("lon", 0, "point of interest longitude")
		limit   = pflag.Int("limit", 0, "table preview rows (default from config)")
		src     = pflag.String("source", "", "override source.url")
		compact = pflag.Bool("compact", false, "print compact JSON")
	)
	pflag.Parse()

	cfg, err := config.Load("immoreims-render")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *src != "" {
		cfg.Source.URL = *src
	}

	// stdout carries the JSON, logs go to stderr.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		if c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix); err != nil {
			slog.Warn("valkey unavailable, fetching from source", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	_, dashboard, err := app.Build(cfg, cache, nil)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	f := domain.Filters{
		PointOfInterest: domain.GeoPoint{Lat: *lat, Lon: *lon},
		PreviewLimit:    *limit,
	}
	if pflag.CommandLine.Changed("years") {
		f.Years, err = parseYears(*years)
		if err != nil {
			log.Fatalf("--years: %v", err)
		}
	}
	if pflag.CommandLine.Changed("types") {
		f.PropertyTypes, err = parseTypes(*types)
		if err != nil {
			log.Fatalf("--types: %v", err)
		}
	}

	out, err := render(context.Background(), dashboard, *section, f)
	if err != nil {
		log.Fatalf("render %s: %v", *section, err)
	}

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

type dashboardService interface {
	Render(ctx context.Context, f domain.Filters) (*domain.ViewModel, error)
}

func render(ctx context.Context, svc dashboardService, section string, f domain.Filters) (interface{}, error) {
	vm, err := svc.Render(ctx, f)
	if err != nil {
		return nil, err
	}
	switch section {
	case "dashboard":
		return vm, nil
	case "table":
		return vm.Table, nil
	case "map":
		return map[string]interface{}{"view": vm.Map, "markers": vm.Markers, "heat": vm.Heat}, nil
	case "counts":
		return vm.Counts, nil
	case "stats":
		return vm.Stats, nil
	case "distributions":
		return vm.Distributions, nil
	case "dataset":
		return vm.Snapshot, nil
	}
	return nil, fmt.Errorf("unknown section %q", section)
}

func parseYears(raw []string) ([]int, error) {
	years := []int{}
	for _, r := range raw {
		if r == "" {
			continue
		}
		y, err := strconv.Atoi(r)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", r)
		}
		years = append(years, y)
	}
	return years, nil
}

func parseTypes(raw []string) ([]domain.PropertyType, error) {
	types := []domain.PropertyType{}
	for _, r := range raw {
		if r == "" {
			continue
		}
		pt, ok := domain.ParsePropertyType(r)
		if !ok {
			return nil, fmt.Errorf("unknown property type %q", r)
		}
		types = append(types, pt)
	}
	return types, nil
}
