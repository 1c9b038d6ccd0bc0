package core

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"

	sm "capm.service/models"
)

type CapmFormula int

const (
	// FormulaConventional is the textbook rf + beta*(rm - rf)
	FormulaConventional CapmFormula = iota
	// FormulaReference is rm - rf + beta*(rf - rm), what the original dashboard computed.
	// The risk premium enters with the opposite sign, kept only so old numbers can be reproduced.
	FormulaReference
)

func (f CapmFormula) String() string {
	switch f {
	case FormulaConventional:
		return "conventional"
	case FormulaReference:
		return "reference"
	default:
		return ""
	}
}

// ParseCapmFormula maps the configuration / request value to a formula, empty means conventional
func ParseCapmFormula(inp string) (CapmFormula, error) {
	switch strings.ToLower(strings.TrimSpace(inp)) {
	case "", "conventional":
		return FormulaConventional, nil
	case "reference":
		return FormulaReference, nil
	default:
		return 0, fmt.Errorf("%q is not a recognized capm formula", inp)
	}
}

// ExpectedReturn applies the chosen CAPM formula, no rounding
func ExpectedReturn(formula CapmFormula, beta, riskFreeRate, marketReturn float64) float64 {
	switch formula {
	case FormulaReference:
		return marketReturn - riskFreeRate + beta*(riskFreeRate-marketReturn)
	default:
		return riskFreeRate + beta*(marketReturn-riskFreeRate)
	}
}

// AnnualizedMeanReturn is the mean periodic return scaled by the number of periods in a year
func AnnualizedMeanReturn(returns []float64, annualizationFactor int) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("%w: no returns to annualize", ErrInsufficientData)
	}
	return stat.Mean(returns, nil) * float64(annualizationFactor), nil
}

type CapmSettings struct {
	RiskFreeRate        float64
	AnnualizationFactor int // defaults to daily
	Formula             CapmFormula
}

type CapmEstimate struct {
	RegressionResult
	Symbol         string
	ExpectedReturn float64
}

// SymbolResult is one symbol's outcome, exactly one of Estimate and Err is set
type SymbolResult struct {
	Symbol   string
	Estimate *CapmEstimate
	Err      error
}

func (r SymbolResult) Ok() bool {
	return r.Err == nil
}

type CapmBatch struct {
	Benchmark    string
	RiskFreeRate float64
	MarketReturn float64 // annualized benchmark mean return
	Formula      CapmFormula

	AnnualizationFactor int
	Results             []SymbolResult // same order as the table symbols
}

// Err combines the failures of every symbol, nil when all of them succeeded
func (b *CapmBatch) Err() error {
	var err error
	for _, r := range b.Results {
		if r.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.Symbol, r.Err))
		}
	}
	return err
}

// Succeeded returns the estimates of the symbols that did not fail
func (b *CapmBatch) Succeeded() []*CapmEstimate {
	res := make([]*CapmEstimate, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Ok() {
			res = append(res, r.Estimate)
		}
	}
	return res
}

// RunCapm estimates beta, alpha and the CAPM expected return for every symbol in the table.
// Only a benchmark that cannot be used fails the whole batch, every symbol otherwise gets its own result.
func RunCapm(table *AlignedPriceTable, settings CapmSettings) (*CapmBatch, error) {
	if settings.AnnualizationFactor == 0 {
		settings.AnnualizationFactor = sm.Daily
	}

	benchmark, err := table.ReturnSeries(table.Benchmark)
	if err != nil {
		return nil, fmt.Errorf("error building benchmark returns: %w", err)
	}

	marketReturn, err := AnnualizedMeanReturn(benchmark.Returns, settings.AnnualizationFactor)
	if err != nil {
		return nil, err
	}

	batch := &CapmBatch{
		Benchmark:    table.Benchmark,
		RiskFreeRate: settings.RiskFreeRate,
		MarketReturn: marketReturn,
		Formula:      settings.Formula,
		Results:      make([]SymbolResult, len(table.Symbols)),

		AnnualizationFactor: settings.AnnualizationFactor,
	}

	for i, symbol := range table.Symbols {
		estimate, err := estimateSymbol(table, symbol, benchmark, settings, marketReturn)
		if err != nil {
			log.WithField("symbol", symbol).Warnf("capm estimate failed: %v", err)
		}
		batch.Results[i] = SymbolResult{Symbol: symbol, Estimate: estimate, Err: err}
	}

	return batch, nil
}

func estimateSymbol(table *AlignedPriceTable, symbol string, benchmark *ReturnSeries, settings CapmSettings, marketReturn float64) (*CapmEstimate, error) {
	returns, err := table.ReturnSeries(symbol)
	if err != nil {
		return nil, err
	}

	fit, err := EstimateRisk(returns, benchmark)
	if err != nil {
		return nil, err
	}

	return &CapmEstimate{
		RegressionResult: fit,
		Symbol:           symbol,
		ExpectedReturn:   ExpectedReturn(settings.Formula, fit.Beta, settings.RiskFreeRate, marketReturn),
	}, nil
}
