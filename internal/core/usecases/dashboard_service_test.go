package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/usecases"
)

type mockProvider struct {
	loadFn func(ctx context.Context) (*domain.Snapshot, error)
}

func (m *mockProvider) Load(ctx context.Context) (*domain.Snapshot, error) {
	return m.loadFn(ctx)
}

func snapshotOf(ds domain.Dataset) *mockProvider {
	return &mockProvider{loadFn: func(ctx context.Context) (*domain.Snapshot, error) {
		return &domain.Snapshot{ID: "s", Dataset: ds}, nil
	}}
}

func dashboardDataset() domain.Dataset {
	return domain.Dataset{
		row(2019, domain.Apartment, 1000),
		row(2019, domain.Apartment, 1500),
		row(2019, domain.House, 2000),
		row(2019, domain.House, 2500),
		row(2019, domain.House, 3000),
		row(2017, domain.Apartment, 1800),
	}
}

func newDashboard(p *mockProvider) *usecases.DashboardService {
	return usecases.NewDashboardService(p, englishAdapter(), []int{2017, 2018, 2019}, nil)
}

func TestDashboardService_Render(t *testing.T) {
	svc := newDashboard(snapshotOf(dashboardDataset()))

	vm, err := svc.Render(context.Background(), domain.Filters{
		Years:         []int{2019},
		PropertyTypes: []domain.PropertyType{domain.House},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vm.Markers) != 3 || len(vm.Heat.Points) != 3 || vm.Table.TotalRows != 3 {
		t.Errorf("expected 3 selected rows, got markers=%d heat=%d table=%d",
			len(vm.Markers), len(vm.Heat.Points), vm.Table.TotalRows)
	}
	if vm.Heat.MaxWeight != 3000 {
		t.Errorf("expected max weight 3000, got %v", vm.Heat.MaxWeight)
	}
	if vm.Table.Limit != usecases.DefaultPreviewLimit {
		t.Errorf("expected default preview limit, got %d", vm.Table.Limit)
	}

	// statistics cover every type of the year, not just the selection
	if len(vm.Stats) != 3 {
		t.Fatalf("expected a row per configured year, got %d", len(vm.Stats))
	}
	st := vm.Stats[2]
	if st.Year != 2019 || *st.Median != 2000 || *st.Q1 != 1500 || *st.Q3 != 2500 || *st.Mean != 2000 {
		t.Errorf("unexpected 2019 stats %+v", st)
	}
	if vm.Stats[1].Median != nil {
		t.Error("expected null stats for 2018")
	}
	if len(vm.Counts) != 3 {
		t.Errorf("expected counts over the full dataset, got %d rows", len(vm.Counts))
	}
	if len(vm.Distributions) != 3 {
		t.Errorf("expected distributions of the selection only, got %d", len(vm.Distributions))
	}
}

func TestDashboardService_NilSelectionMeansAll(t *testing.T) {
	svc := newDashboard(snapshotOf(dashboardDataset()))

	vm, err := svc.Render(context.Background(), domain.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.Table.TotalRows != 6 {
		t.Errorf("expected every row, got %d", vm.Table.TotalRows)
	}
	if len(vm.Filters.Years) != 3 || len(vm.Filters.PropertyTypes) != 2 {
		t.Errorf("expected normalized filters, got %+v", vm.Filters)
	}
}

func TestDashboardService_EmptySelectionMeansNone(t *testing.T) {
	svc := newDashboard(snapshotOf(dashboardDataset()))

	vm, err := svc.Render(context.Background(), domain.Filters{Years: []int{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vm.Markers) != 0 || vm.Table.TotalRows != 0 || vm.Heat.MaxWeight != 0 {
		t.Errorf("expected empty views, got %d markers", len(vm.Markers))
	}
	if vm.Markers == nil || vm.Table.Rows == nil {
		t.Error("empty views should be non-nil")
	}
}

func TestDashboardService_PointOfInterest(t *testing.T) {
	svc := newDashboard(snapshotOf(dashboardDataset()))

	vm, err := svc.Render(context.Background(), domain.Filters{
		PointOfInterest: domain.GeoPoint{Lat: 49.25, Lon: 4.03},
		PreviewLimit:    2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.Map.Zoom != 19 || vm.Map.Highlight == nil {
		t.Errorf("expected POI view, got %+v", vm.Map)
	}
	for _, m := range vm.Markers {
		if m.DistanceMeters == nil {
			t.Fatal("expected distances with a point of interest")
		}
	}
	if len(vm.Table.Rows) != 2 {
		t.Errorf("expected 2 preview rows, got %d", len(vm.Table.Rows))
	}
}

func TestDashboardService_LoadError(t *testing.T) {
	svc := newDashboard(&mockProvider{loadFn: func(ctx context.Context) (*domain.Snapshot, error) {
		return nil, domain.ErrSourceUnavailable
	}})

	if _, err := svc.Render(context.Background(), domain.Filters{}); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
	if _, err := svc.Counts(context.Background()); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable from Counts, got %v", err)
	}
}

func TestDashboardService_StatsAndMapLayers(t *testing.T) {
	svc := newDashboard(snapshotOf(dashboardDataset()))

	stats, err := svc.Stats(context.Background(), []int{2017})
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || *stats[0].Median != 1800 {
		t.Errorf("unexpected stats %+v", stats)
	}

	view, markers, heat, err := svc.MapLayers(context.Background(), domain.Filters{
		PropertyTypes: []domain.PropertyType{domain.Apartment},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 3 || len(heat.Points) != 3 || view.Bounds == nil {
		t.Errorf("unexpected map layers: %d markers, %d points", len(markers), len(heat.Points))
	}
}
