package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

type PerformanceMetrics struct {
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	MaxDrawdown          float64
}

// CalculatePerformance summarises a price series, annualizationFactor is the number of price
// periods in a year (252 for daily closes)
func CalculatePerformance(prices []float64, annualizationFactor int) (PerformanceMetrics, error) {
	returns, err := SimpleReturns(prices)
	if err != nil {
		return PerformanceMetrics{}, err
	}

	var peak, maxDrawdown float64
	for _, p := range prices {
		if p > peak {
			peak = p
		}

		drawdown := (peak - p) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	initialValue := prices[0]
	finalValue := prices[len(prices)-1]

	// geometric annualization of the whole period
	numPeriods := float64(len(returns))
	periodsPerYear := float64(annualizationFactor)
	annualizedReturn := math.Pow(finalValue/initialValue, periodsPerYear/numPeriods) - 1.0

	// sample std dev needs two returns, a single return has no volatility to speak of
	volatility := 0.0
	if len(returns) > 1 {
		volatility = stat.StdDev(returns, nil) * math.Sqrt(periodsPerYear)
	}

	if !isFinite(annualizedReturn) {
		return PerformanceMetrics{}, fmt.Errorf("%w: annualized return is not finite", ErrDegenerateSeries)
	}

	return PerformanceMetrics{
		TotalReturn:          (finalValue - initialValue) / initialValue,
		AnnualizedReturn:     annualizedReturn,
		AnnualizedVolatility: volatility,
		MaxDrawdown:          maxDrawdown,
	}, nil
}
