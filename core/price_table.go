package core

import (
	"fmt"
	"math"
	"slices"
	"time"

	ex "capm.service/data/extensions"
)

// PriceSeries is a single symbol's dated prices as they come out of the store, oldest first
type PriceSeries struct {
	Dates  []time.Time
	Prices []float64
}

type PriceRow struct {
	Date   time.Time          `json:"date"`
	Prices map[string]float64 `json:"prices"`
}

// AlignedPriceTable holds one row per trading day shared by every symbol and the benchmark.
// Rows are ordered by date, strictly increasing.
type AlignedPriceTable struct {
	Benchmark string
	Symbols   []string
	Rows      []PriceRow
}

// AlignPriceSeries inner joins the symbols and the benchmark on date.
// Dates are compared on the calendar day so a close stamped 16:00 and one stamped 00:00 still match.
func AlignPriceSeries(symbols []string, benchmark string, series map[string]PriceSeries) (*AlignedPriceTable, error) {
	columns := append(slices.Clone(symbols), benchmark)

	var common map[time.Time]bool
	lookup := make(map[string]map[time.Time]float64, len(columns))
	for _, symbol := range columns {
		s, ok := series[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: no price series for %s", ErrInsufficientData, symbol)
		}
		if len(s.Dates) != len(s.Prices) {
			return nil, fmt.Errorf("%w: %s has %d dates and %d prices", ErrMisalignedSeries, symbol, len(s.Dates), len(s.Prices))
		}

		byDate := make(map[time.Time]float64, len(s.Dates))
		for i, d := range s.Dates {
			key := dateKey(d)
			if _, dup := byDate[key]; dup {
				return nil, fmt.Errorf("%w: %s has duplicate date %s", ErrMisalignedSeries, symbol, ex.FmtShort(key))
			}
			byDate[key] = s.Prices[i]
		}
		lookup[symbol] = byDate

		if common == nil {
			common = make(map[time.Time]bool, len(byDate))
			for d := range byDate {
				common[d] = true
			}
			continue
		}
		for d := range common {
			if _, ok := byDate[d]; !ok {
				delete(common, d)
			}
		}
	}

	dates := make([]time.Time, 0, len(common))
	for d := range common {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	rows := make([]PriceRow, len(dates))
	for i, d := range dates {
		prices := make(map[string]float64, len(columns))
		for _, symbol := range columns {
			prices[symbol] = lookup[symbol][d]
		}
		rows[i] = PriceRow{Date: d, Prices: prices}
	}

	return &AlignedPriceTable{
		Benchmark: benchmark,
		Symbols:   slices.Clone(symbols),
		Rows:      rows,
	}, nil
}

// Columns is every tracked symbol followed by the benchmark
func (t *AlignedPriceTable) Columns() []string {
	return append(slices.Clone(t.Symbols), t.Benchmark)
}

func (t *AlignedPriceTable) Len() int {
	return len(t.Rows)
}

func (t *AlignedPriceTable) Dates() []time.Time {
	res := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		res[i] = row.Date
	}
	return res
}

// Column returns the prices of one symbol in date order.
// A row without a value for the symbol means the table was not joined properly.
func (t *AlignedPriceTable) Column(symbol string) ([]float64, error) {
	res := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, ok := row.Prices[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no price on %s", ErrMisalignedSeries, symbol, ex.FmtShort(row.Date))
		}
		res[i] = v
	}
	return res, nil
}

// Validate checks the table invariants, dates strictly increasing and every column present on every row
func (t *AlignedPriceTable) Validate() error {
	if err := t.validateDates(); err != nil {
		return err
	}

	for _, symbol := range t.Columns() {
		if _, err := t.Column(symbol); err != nil {
			return err
		}
	}

	return nil
}

func (t *AlignedPriceTable) validateDates() error {
	for i := 1; i < len(t.Rows); i++ {
		if !t.Rows[i].Date.After(t.Rows[i-1].Date) {
			return fmt.Errorf("%w: date %s does not follow %s", ErrMisalignedSeries, ex.FmtShort(t.Rows[i].Date), ex.FmtShort(t.Rows[i-1].Date))
		}
	}
	return nil
}

// Head returns up to the first n rows
func (t *AlignedPriceTable) Head(n int) []PriceRow {
	return t.Rows[:ex.Min(n, len(t.Rows))]
}

// Tail returns up to the last n rows
func (t *AlignedPriceTable) Tail(n int) []PriceRow {
	return t.Rows[len(t.Rows)-ex.Min(n, len(t.Rows)):]
}

func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
