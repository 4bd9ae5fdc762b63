package main

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

type stubDashboard struct {
	vm  *domain.ViewModel
	err error
	got domain.Filters
}

func (s *stubDashboard) Render(ctx context.Context, f domain.Filters) (*domain.ViewModel, error) {
	s.got = f
	return s.vm, s.err
}

func TestRender_Sections(t *testing.T) {
	vm := &domain.ViewModel{
		Counts: []domain.TypeCount{{Year: 2017, PropertyType: domain.House, Count: 2}},
		Table:  domain.TablePreview{Limit: 100},
	}
	svc := &stubDashboard{vm: vm}

	out, err := render(context.Background(), svc, "counts", domain.Filters{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts, ok := out.([]domain.TypeCount); !ok || len(counts) != 1 {
		t.Errorf("expected counts, got %#v", out)
	}

	out, _ = render(context.Background(), svc, "table", domain.Filters{})
	if table, ok := out.(domain.TablePreview); !ok || table.Limit != 100 {
		t.Errorf("expected table preview, got %#v", out)
	}

	if _, err := render(context.Background(), svc, "pie", domain.Filters{}); err == nil {
		t.Error("expected error for unknown section")
	}
}

func TestRender_PropagatesError(t *testing.T) {
	svc := &stubDashboard{err: domain.ErrSourceUnavailable}
	if _, err := render(context.Background(), svc, "dashboard", domain.Filters{}); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestParseYears(t *testing.T) {
	years, err := parseYears([]string{"2017", "", "2019"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(years) != 2 || years[1] != 2019 {
		t.Errorf("unexpected years %v", years)
	}

	// an explicit empty flag selects nothing
	years, _ = parseYears([]string{})
	if years == nil || len(years) != 0 {
		t.Errorf("expected empty non-nil selection, got %#v", years)
	}

	if _, err := parseYears([]string{"twenty"}); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestParseTypes(t *testing.T) {
	types, err := parseTypes([]string{"Maison", "Apartment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 2 || types[0] != domain.House || types[1] != domain.Apartment {
		t.Errorf("unexpected types %v", types)
	}
	if _, err := parseTypes([]string{"Castle"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
