package usecases

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// quantile returns the p-quantile of an ascending sample using linear
// interpolation between closest ranks: h = (n-1)p.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := decimal.Zero
	for _, x := range xs {
		sum = sum.Add(decimal.NewFromFloat(x))
	}
	return sum.Div(decimal.NewFromInt(int64(len(xs)))).InexactFloat64()
}

// round2 rounds to two decimals, ties to even, as the published stats table does.
func round2(x float64) float64 {
	return decimal.NewFromFloat(x).RoundBank(2).InexactFloat64()
}

// sortedFinite copies the finite values of xs in ascending order.
func sortedFinite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out = append(out, x)
	}
	sort.Float64s(out)
	return out
}
