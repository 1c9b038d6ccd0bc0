package core

import (
	"fmt"
	"time"
)

// ReturnSeries is the day over day fractional change of one symbol.
// Returns[i] belongs to Dates[i], which is the later of the two days, so the first price day has no entry.
type ReturnSeries struct {
	Symbol  string
	Dates   []time.Time
	Returns []float64
}

func (rs *ReturnSeries) Len() int {
	return len(rs.Returns)
}

// SimpleReturns computes r[t] = p[t]/p[t-1] - 1 for t >= 1
func SimpleReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: returns need at least 2 prices, got %d", ErrInsufficientData, len(prices))
	}

	res := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 || !isFinite(prices[i-1]) {
			return nil, fmt.Errorf("%w: invalid price at index %d", ErrDegenerateSeries, i-1)
		}
		if !isFinite(prices[i]) {
			return nil, fmt.Errorf("%w: invalid price at index %d", ErrDegenerateSeries, i)
		}
		res[i-1] = prices[i]/prices[i-1] - 1
	}

	return res, nil
}

// BuildReturnSeries produces a return series for every symbol and the benchmark in the table
func BuildReturnSeries(table *AlignedPriceTable) (map[string]*ReturnSeries, error) {
	if table.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrInsufficientData, table.Len())
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	res := make(map[string]*ReturnSeries, len(table.Symbols)+1)
	for _, symbol := range table.Columns() {
		rs, err := table.ReturnSeries(symbol)
		if err != nil {
			return nil, fmt.Errorf("error building returns for %s: %w", symbol, err)
		}
		res[symbol] = rs
	}

	return res, nil
}

// ReturnSeries builds the returns of a single column, used when each symbol has to fail on its own
func (t *AlignedPriceTable) ReturnSeries(symbol string) (*ReturnSeries, error) {
	if t.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrInsufficientData, t.Len())
	}
	if err := t.validateDates(); err != nil {
		return nil, err
	}

	prices, err := t.Column(symbol)
	if err != nil {
		return nil, err
	}

	returns, err := SimpleReturns(prices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	return &ReturnSeries{
		Symbol:  symbol,
		Dates:   t.Dates()[1:],
		Returns: returns,
	}, nil
}
