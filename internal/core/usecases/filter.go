package usecases

import "github.com/samirrijal/immoreims/internal/core/domain"

// Filter returns the transactions whose year is in years and whose property
// type is in types, preserving input order. The input is never modified and
// an empty selection yields an empty, non-nil dataset.
func Filter(ds domain.Dataset, years []int, types []domain.PropertyType) domain.Dataset {
	out := domain.Dataset{}
	if len(years) == 0 || len(types) == 0 {
		return out
	}

	yearSet := make(map[int]struct{}, len(years))
	for _, y := range years {
		yearSet[y] = struct{}{}
	}
	typeSet := make(map[domain.PropertyType]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	for _, t := range ds {
		if _, ok := yearSet[t.Year]; !ok {
			continue
		}
		if _, ok := typeSet[t.PropertyType]; !ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

