package core

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	ex "capm.service/data/extensions"
)

// RegressionResult is the least squares fit of asset returns onto benchmark returns
type RegressionResult struct {
	Beta  float64 `json:"beta"`
	Alpha float64 `json:"alpha"`
}

// LinearRegression fits y = beta*x + alpha by ordinary least squares.
// gonum centers both series on their means before summing the products, so the
// result does not drift with the level of the returns.
func LinearRegression(x, y []float64) (RegressionResult, error) {
	if len(x) != len(y) {
		return RegressionResult{}, fmt.Errorf("%w: regression inputs have %d and %d points", ErrMisalignedSeries, len(x), len(y))
	}
	if len(x) < 2 {
		return RegressionResult{}, fmt.Errorf("%w: regression needs at least 2 points, got %d", ErrInsufficientData, len(x))
	}
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return RegressionResult{}, fmt.Errorf("%w: non finite value at index %d", ErrDegenerateSeries, i)
		}
	}

	// a constant benchmark can still leave rounding noise in the variance, so check the values themselves
	meanX, varX := stat.MeanVariance(x, nil)
	if ex.AreAllEqual(x) || varX == 0 {
		return RegressionResult{}, fmt.Errorf("%w: benchmark returns have zero variance", ErrDegenerateRegression)
	}

	meanY := stat.Mean(y, nil)
	beta := stat.Covariance(x, y, nil) / varX
	alpha := meanY - beta*meanX

	return RegressionResult{Beta: beta, Alpha: alpha}, nil
}

// EstimateRisk regresses the asset returns on the benchmark returns over their shared dates.
// Both series have to come from the same aligned table, anything else is a misalignment.
func EstimateRisk(asset, benchmark *ReturnSeries) (RegressionResult, error) {
	if asset.Len() != benchmark.Len() {
		return RegressionResult{}, fmt.Errorf("%w: %s has %d returns, benchmark %s has %d", ErrMisalignedSeries, asset.Symbol, asset.Len(), benchmark.Symbol, benchmark.Len())
	}
	if len(asset.Dates) > 0 && !slices.EqualFunc(asset.Dates, benchmark.Dates, time.Time.Equal) {
		return RegressionResult{}, fmt.Errorf("%w: %s and %s do not share a date index", ErrMisalignedSeries, asset.Symbol, benchmark.Symbol)
	}

	res, err := LinearRegression(benchmark.Returns, asset.Returns)
	if err != nil {
		return RegressionResult{}, fmt.Errorf("%s: %w", asset.Symbol, err)
	}

	return res, nil
}
