package usecases

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// CountsByYearAndType counts transactions per (year, property type). Rows
// with an unknown year are left out.
func CountsByYearAndType(ds domain.Dataset) domain.TypeCounts {
	counts := make(domain.TypeCounts)
	for _, t := range ds {
		if t.Year == domain.UnknownYear {
			continue
		}
		counts[domain.YearType{Year: t.Year, Type: t.PropertyType}]++
	}
	return counts
}

// YearStatistics computes price-per-m² quartiles and mean for one year.
// Rows without a known price are not sampled. It returns an
// *domain.EmptyYearError when the year has no priced transactions.
func YearStatistics(ds domain.Dataset, year int) (domain.YearStats, error) {
	prices := make([]float64, 0)
	for _, t := range ds {
		if t.Year == year && t.HasPrice() {
			prices = append(prices, t.PricePerSquareMeter)
		}
	}
	sorted := sortedFinite(prices)
	if len(sorted) == 0 {
		return domain.YearStats{Year: year}, &domain.EmptyYearError{Year: year}
	}

	q1 := round2(quantile(sorted, 0.25))
	median := round2(quantile(sorted, 0.5))
	q3 := round2(quantile(sorted, 0.75))
	avg := round2(mean(sorted))

	return domain.YearStats{
		Year:   year,
		Q1:     &q1,
		Median: &median,
		Q3:     &q3,
		Mean:   &avg,
	}, nil
}

// QuantileStats returns one statistics row per requested year, in request
// order. Years without transactions get a row with null statistics.
//
// Callers pass the full dataset: the statistics reflect every property type
// of a year regardless of the type selection.
func QuantileStats(ds domain.Dataset, years []int) []domain.YearStats {
	rows := make([]domain.YearStats, 0, len(years))
	for _, y := range years {
		st, err := YearStatistics(ds, y)
		if err != nil {
			if !errors.Is(err, domain.ErrEmptyYear) {
				slog.Warn("year statistics failed", "year", y, "error", err)
			}
			rows = append(rows, domain.YearStats{Year: y})
			continue
		}
		rows = append(rows, st)
	}
	return rows
}

// Distributions summarizes property value, built surface and price per m²
// for every (year, property type) group present in ds. A group whose rows
// all lack a price gets no price summary.
func Distributions(ds domain.Dataset) []domain.Distribution {
	type samples struct {
		value, surface, price []float64
	}
	groups := make(map[domain.YearType]*samples)
	for _, t := range ds {
		if t.Year == domain.UnknownYear {
			continue
		}
		k := domain.YearType{Year: t.Year, Type: t.PropertyType}
		g, ok := groups[k]
		if !ok {
			g = &samples{}
			groups[k] = g
		}
		g.value = append(g.value, t.PropertyValue)
		g.surface = append(g.surface, t.BuiltSurfaceArea)
		if t.HasPrice() {
			g.price = append(g.price, t.PricePerSquareMeter)
		}
	}

	keys := make([]domain.YearType, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Type < keys[j].Type
	})

	out := make([]domain.Distribution, 0, len(keys)*3)
	for _, k := range keys {
		g := groups[k]
		for _, m := range []struct {
			name string
			xs   []float64
		}{
			{domain.MeasurePropertyValue, g.value},
			{domain.MeasureBuiltSurfaceArea, g.surface},
			{domain.MeasurePricePerSquareMeter, g.price},
		} {
			summary, ok := fiveNumber(m.xs)
			if !ok {
				continue
			}
			out = append(out, domain.Distribution{
				Year:         k.Year,
				PropertyType: k.Type,
				Measure:      m.name,
				Summary:      summary,
			})
		}
	}
	return out
}

func fiveNumber(xs []float64) (domain.FiveNumberSummary, bool) {
	sorted := sortedFinite(xs)
	if len(sorted) == 0 {
		return domain.FiveNumberSummary{}, false
	}
	return domain.FiveNumberSummary{
		Min:    round2(sorted[0]),
		Q1:     round2(quantile(sorted, 0.25)),
		Median: round2(quantile(sorted, 0.5)),
		Q3:     round2(quantile(sorted, 0.75)),
		Max:    round2(sorted[len(sorted)-1]),
		Count:  len(sorted),
	}, true
}
