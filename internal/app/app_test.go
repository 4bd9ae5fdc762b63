package app

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/usecases"
	"github.com/samirrijal/immoreims/internal/pkg/config"
)

func TestViewOptions_Defaults(t *testing.T) {
	opts, err := ViewOptions(config.DashboardConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := usecases.DefaultViewOptions()
	if opts.DefaultCenter != def.DefaultCenter || opts.DefaultZoom != 13 || opts.POIZoom != 19 {
		t.Errorf("expected defaults, got %+v", opts)
	}
	if opts.PreviewLimit != usecases.DefaultPreviewLimit {
		t.Errorf("expected preview limit %d, got %d", usecases.DefaultPreviewLimit, opts.PreviewLimit)
	}
}

func TestViewOptions_Overrides(t *testing.T) {
	opts, err := ViewOptions(config.DashboardConfig{
		Locale:       "en",
		CenterLat:    48.8566,
		CenterLon:    2.3522,
		Zoom:         11,
		POIZoom:      17,
		PreviewLimit: 25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Locale != language.English {
		t.Errorf("expected English locale, got %v", opts.Locale)
	}
	if opts.DefaultCenter != (domain.GeoPoint{Lat: 48.8566, Lon: 2.3522}) {
		t.Errorf("unexpected center %+v", opts.DefaultCenter)
	}
	if opts.DefaultZoom != 11 || opts.POIZoom != 17 || opts.PreviewLimit != 25 {
		t.Errorf("unexpected overrides %+v", opts)
	}
}

func TestViewOptions_BadLocale(t *testing.T) {
	if _, err := ViewOptions(config.DashboardConfig{Locale: "not a tag!"}); err == nil {
		t.Error("expected error for invalid locale")
	}
}

func TestBuild(t *testing.T) {
	cfg := &config.Config{
		Source: config.SourceConfig{URL: "testdata/none.csv", Timeout: 5},
		Dashboard: config.DashboardConfig{
			Years:         []int{2019},
			PropertyTypes: []string{"Apartment"},
			Locale:        "fr",
		},
	}
	loader, dashboard, err := Build(cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader == nil || dashboard == nil {
		t.Fatal("expected loader and dashboard")
	}
	if loader.SourceKey() != "file://testdata/none.csv" {
		t.Errorf("unexpected source key %s", loader.SourceKey())
	}

	cfg.Source.URL = "ftp://example.org/x.csv"
	if _, _, err := Build(cfg, nil, nil); err == nil {
		t.Error("expected error for unsupported source")
	}

	cfg.Source.URL = "data.csv"
	cfg.Dashboard.PropertyTypes = []string{"Castle"}
	if _, _, err := Build(cfg, nil, nil); err == nil {
		t.Error("expected error for unknown property type")
	}
}
