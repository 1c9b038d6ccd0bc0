package core

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

var baseDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

// Helper: consecutive calendar days starting at baseDate
func generateDates(t *testing.T, n int) []time.Time {
	t.Helper()
	res := make([]time.Time, n)
	for i := range n {
		res[i] = baseDate.AddDate(0, 0, i)
	}
	return res
}

// Helper: prices compounding the given simple returns from a starting price
func pricesFromReturns(t *testing.T, start float64, returns []float64) []float64 {
	t.Helper()
	res := make([]float64, len(returns)+1)
	res[0] = start
	for i, r := range returns {
		res[i+1] = res[i] * (1 + r)
	}
	return res
}

// Helper: seeded normal daily returns so every run sees the same data
func generateMockReturns(t *testing.T, n int, mu, sigma float64, stream uint64) []float64 {
	t.Helper()
	normalDist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rand.NewPCG(42, stream)}
	res := make([]float64, n)
	for i := range n {
		res[i] = normalDist.Rand()
	}
	return res
}

// Helper: a table with a benchmark and symbols whose returns are beta*benchmark + alpha + noise
func generateMockTable(t *testing.T, n int, betas map[string]float64, alpha float64) *AlignedPriceTable {
	t.Helper()
	dates := generateDates(t, n+1)
	market := generateMockReturns(t, n, 0.0004, 0.01, 0)

	series := map[string]PriceSeries{
		"SP500": {Dates: dates, Prices: pricesFromReturns(t, 4000, market)},
	}
	symbols := slices.Sorted(maps.Keys(betas))
	for i, symbol := range symbols {
		beta := betas[symbol]
		noise := generateMockReturns(t, n, 0, 0.002, uint64(i+1))
		returns := make([]float64, n)
		for j := range n {
			returns[j] = beta*market[j] + alpha + noise[j]
		}
		series[symbol] = PriceSeries{Dates: dates, Prices: pricesFromReturns(t, 100, returns)}
	}

	table, err := AlignPriceSeries(symbols, "SP500", series)
	if err != nil {
		t.Fatalf("error aligning mock table: %v", err)
	}
	return table
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
