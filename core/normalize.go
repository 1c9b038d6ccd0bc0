package core

import "fmt"

// NormalizeSeries divides every price by the first one so the series starts at exactly 1.0
func NormalizeSeries(prices []float64) ([]float64, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: cannot normalize an empty series", ErrInsufficientData)
	}

	base := prices[0]
	if base == 0 || !isFinite(base) {
		return nil, fmt.Errorf("%w: base value %v cannot be used to normalize", ErrDegenerateSeries, base)
	}

	res := make([]float64, len(prices))
	for i, p := range prices {
		res[i] = p / base
	}
	res[0] = 1.0

	return res, nil
}

// Normalize rescales every column of the table to its own first value, dates and order are kept
func Normalize(table *AlignedPriceTable) (*AlignedPriceTable, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	rows := make([]PriceRow, table.Len())
	for i, row := range table.Rows {
		rows[i] = PriceRow{Date: row.Date, Prices: make(map[string]float64, len(row.Prices))}
	}

	for _, symbol := range table.Columns() {
		prices, _ := table.Column(symbol) // checked by Validate
		normalized, err := NormalizeSeries(prices)
		if err != nil {
			return nil, fmt.Errorf("error normalizing %s: %w", symbol, err)
		}

		for i, v := range normalized {
			rows[i].Prices[symbol] = v
		}
	}

	return &AlignedPriceTable{
		Benchmark: table.Benchmark,
		Symbols:   table.Symbols,
		Rows:      rows,
	}, nil
}
