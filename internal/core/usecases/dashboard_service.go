package usecases

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/pkg/metrics"
	"github.com/samirrijal/immoreims/internal/pkg/telemetry"
)

// DashboardService runs the filter → aggregate → shape pipeline against the
// memoized dataset.
type DashboardService struct {
	datasets ports.DatasetProvider
	views    *ViewAdapter
	years    []int
	types    []domain.PropertyType
}

// NewDashboardService creates a new DashboardService. years and types are the
// selectable values; they default to domain.DefaultYears and
// domain.DefaultPropertyTypes.
func NewDashboardService(datasets ports.DatasetProvider, views *ViewAdapter, years []int, types []domain.PropertyType) *DashboardService {
	if len(years) == 0 {
		years = domain.DefaultYears
	}
	if len(types) == 0 {
		types = domain.DefaultPropertyTypes
	}
	return &DashboardService{datasets: datasets, views: views, years: years, types: types}
}

// Years returns the selectable years.
func (s *DashboardService) Years() []int { return s.years }

// PropertyTypes returns the selectable property types.
func (s *DashboardService) PropertyTypes() []domain.PropertyType { return s.types }

// Normalize fills an absent (nil) selection with every selectable value.
// Explicitly empty selections are kept as they are.
func (s *DashboardService) Normalize(f domain.Filters) domain.Filters {
	if f.Years == nil {
		f.Years = append([]int(nil), s.years...)
	}
	if f.PropertyTypes == nil {
		f.PropertyTypes = append([]domain.PropertyType(nil), s.types...)
	}
	if f.PreviewLimit <= 0 {
		f.PreviewLimit = s.views.Options().PreviewLimit
	}
	return f
}

// Snapshot returns the loaded dataset snapshot.
func (s *DashboardService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return snap, nil
}

// Render builds the complete view model for a filter selection.
func (s *DashboardService) Render(ctx context.Context, f domain.Filters) (*domain.ViewModel, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRender)
	defer span.End()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	f = s.Normalize(f)
	selected := Filter(snap.Dataset, f.Years, f.PropertyTypes)
	span.SetAttributes(attribute.Int("dashboard.rows", len(selected)))
	metrics.Renders.Inc()
	metrics.RenderedRows.Observe(float64(len(selected)))

	markers := s.views.ToMapMarkers(selected)
	if !f.PointOfInterest.IsZero() {
		markers = WithDistances(markers, f.PointOfInterest)
	}

	return &domain.ViewModel{
		Filters:       f,
		Snapshot:      snap,
		Map:           s.views.BuildMapView(f.PointOfInterest, selected),
		Markers:       markers,
		Heat:          s.views.HeatLayer(selected),
		Table:         s.views.ToTablePreview(selected, f.PreviewLimit),
		Counts:        CountsByYearAndType(snap.Dataset).Rows(),
		Stats:         QuantileStats(snap.Dataset, s.years),
		Distributions: Distributions(selected),
	}, nil
}

// Transactions returns the filtered dataset.
func (s *DashboardService) Transactions(ctx context.Context, f domain.Filters) (domain.Dataset, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	f = s.Normalize(f)
	return Filter(snap.Dataset, f.Years, f.PropertyTypes), nil
}

// Stats returns the per-year price statistics over the full dataset.
// A nil years slice means every selectable year.
func (s *DashboardService) Stats(ctx context.Context, years []int) ([]domain.YearStats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if years == nil {
		years = s.years
	}
	return QuantileStats(snap.Dataset, years), nil
}

// Counts returns transaction counts per year and type over the full dataset.
func (s *DashboardService) Counts(ctx context.Context) ([]domain.TypeCount, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CountsByYearAndType(snap.Dataset).Rows(), nil
}

// Distributions returns box-plot summaries of the filtered dataset.
func (s *DashboardService) Distributions(ctx context.Context, f domain.Filters) ([]domain.Distribution, error) {
	selected, err := s.Transactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return Distributions(selected), nil
}

// MapLayers returns the map view, markers and heat layer for a selection.
func (s *DashboardService) MapLayers(ctx context.Context, f domain.Filters) (domain.MapView, []domain.MapMarker, domain.HeatLayer, error) {
	selected, err := s.Transactions(ctx, f)
	if err != nil {
		return domain.MapView{}, nil, domain.HeatLayer{}, err
	}
	markers := s.views.ToMapMarkers(selected)
	if !f.PointOfInterest.IsZero() {
		markers = WithDistances(markers, f.PointOfInterest)
	}
	return s.views.BuildMapView(f.PointOfInterest, selected), markers, s.views.HeatLayer(selected), nil
}
