package usecases_test

import (
	"testing"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/usecases"
)

func row(year int, pt domain.PropertyType, price float64) domain.Transaction {
	return domain.Transaction{
		Year:                year,
		PropertyType:        pt,
		PricePerSquareMeter: price,
		Location:            domain.GeoPoint{Lat: 49.25, Lon: 4.03},
	}
}

func TestFilter_SelectsAndKeepsOrder(t *testing.T) {
	ds := domain.Dataset{
		row(2017, domain.Apartment, 1),
		row(2018, domain.House, 2),
		row(2017, domain.House, 3),
		row(2019, domain.Apartment, 4),
		row(2017, domain.Apartment, 5),
	}

	got := usecases.Filter(ds, []int{2017, 2019}, []domain.PropertyType{domain.Apartment})
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for i, want := range []float64{1, 4, 5} {
		if got[i].PricePerSquareMeter != want {
			t.Errorf("row %d: expected %v, got %v", i, want, got[i].PricePerSquareMeter)
		}
	}
	if len(ds) != 5 || ds[1].Year != 2018 {
		t.Error("input dataset was modified")
	}
}

func TestFilter_EmptySelection(t *testing.T) {
	ds := domain.Dataset{row(2017, domain.Apartment, 1)}

	for name, got := range map[string]domain.Dataset{
		"no years": usecases.Filter(ds, []int{}, domain.DefaultPropertyTypes),
		"no types": usecases.Filter(ds, domain.DefaultYears, nil),
	} {
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty non-nil dataset, got %#v", name, got)
		}
	}
}

func TestFilter_UnknownValuesMatchNothing(t *testing.T) {
	ds := domain.Dataset{row(2017, domain.Apartment, 1)}
	got := usecases.Filter(ds, []int{1999}, []domain.PropertyType{"Castle"})
	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
}

func TestFilter_Idempotent(t *testing.T) {
	ds := domain.Dataset{
		row(2017, domain.Apartment, 1),
		row(2018, domain.House, 2),
	}
	years := []int{2018}
	types := domain.DefaultPropertyTypes

	once := usecases.Filter(ds, years, types)
	twice := usecases.Filter(once, years, types)
	if len(once) != 1 || len(twice) != 1 || twice[0] != once[0] {
		t.Errorf("filter is not idempotent: %v vs %v", once, twice)
	}
}
