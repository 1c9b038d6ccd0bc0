package core

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/guregu/null/v6"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	ex "capm.service/data/extensions"
	dm "capm.service/data/models"
	sm "capm.service/models"
)

const (
	Workers       = 8
	PreviewRows   = 5
	MinLookback   = 1
	MaxLookback   = 10
	MinSymbolRows = 2
)

// RunCapmAnalysis loads the closes of the requested symbols and the benchmark, joins them on date and
// estimates beta, alpha and the CAPM expected return of every symbol. A symbol without usable data
// gets an annotated row instead of failing the run.
func (sc *ServiceContext) RunCapmAnalysis(req sm.CapmRequest) (*sm.CapmResponse, error) {
	start := time.Now()

	capmSettings, symbols, benchmark, err := sc.resolveCapmRequest(req)
	if err != nil {
		log.Printf("Error validating capm request: %v", err)
		return nil, err
	}

	lookbackStart := time.Now().AddDate(-req.Years, 0, 0)
	log.Printf("Recieved request to run capm for %v against %v (time: %v)", symbols, benchmark, time.Since(start))

	runId, err := sc.PostgresConnection.InsertCapmRunHistory(sc.Context, dm.CapmRunHistory{
		Benchmark:     benchmark,
		Symbols:       symbols,
		RiskFreeRate:  capmSettings.RiskFreeRate,
		Formula:       capmSettings.Formula.String(),
		LookbackStart: lookbackStart,
	})
	if err != nil {
		log.Printf("Error inserting capm run history: %v", err)
		return nil, err
	}

	log.Printf("Loading price series for run %v (time: %v)", runId, time.Since(start))
	series, err := sc.loadPriceSeries(append(slices.Clone(symbols), benchmark), lookbackStart)
	if err != nil {
		log.Printf("Error loading price series for run %v: %v", runId, err)
		return nil, sc.markCapmRunAsFailure(runId, err)
	}

	if len(series[benchmark].Prices) < MinSymbolRows {
		err := fmt.Errorf("%w: benchmark %s has %d prices since %s", ErrInsufficientData, benchmark, len(series[benchmark].Prices), ex.FmtShort(lookbackStart))
		return nil, sc.markCapmRunAsFailure(runId, err)
	}
	if i := firstNonFinite(series[benchmark].Prices); i >= 0 {
		err := fmt.Errorf("%w: benchmark %s has an invalid close on %s", ErrDegenerateSeries, benchmark, ex.FmtShort(series[benchmark].Dates[i]))
		return nil, sc.markCapmRunAsFailure(runId, err)
	}

	log.Printf("Aligning %d symbols with %v for run %v (time: %v)", len(symbols), benchmark, runId, time.Since(start))
	table, skipped, err := alignUsableSymbols(symbols, benchmark, series, lookbackStart)
	if err != nil {
		return nil, sc.markCapmRunAsFailure(runId, err)
	}

	log.Printf("Estimating capm for run %v over %d rows (time: %v)", runId, table.Len(), time.Since(start))
	batch, err := RunCapm(table, capmSettings)
	if err != nil {
		return nil, sc.markCapmRunAsFailure(runId, err)
	}

	if err := batch.Err(); err != nil {
		log.Printf("Run %v finished with symbol failures: %v", runId, err)
	}

	if err := sc.PostgresConnection.UpdateCapmRunAsSuccess(sc.Context, runId); err != nil {
		log.Printf("Error updating capm run %v as success: %v", runId, err)
		return nil, err // not marking this as failure here, if we cant update it to success, we most likely cant update it to failure either
	}

	response := buildCapmResponse(runId, symbols, table, batch, skipped)
	log.Printf("Capm run %v completed (time: %v)", runId, time.Since(start))
	return response, nil
}

// alignUsableSymbols joins the symbols with the benchmark one at a time. A symbol is left out, with
// the reason in skipped, when it has too few or invalid closes or when adding it would leave fewer
// than MinSymbolRows dates shared by everything already joined. Earlier symbols win over later ones.
func alignUsableSymbols(symbols []string, benchmark string, series map[string]PriceSeries, since time.Time) (*AlignedPriceTable, map[string]error, error) {
	skipped := make(map[string]error)
	skip := func(symbol string, err error) {
		skipped[symbol] = err
		log.WithField("symbol", symbol).Warnf("skipping symbol: %v", err)
	}

	table, err := AlignPriceSeries(nil, benchmark, series)
	if err != nil {
		return nil, nil, err
	}

	joined := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		s := series[symbol]
		if n := len(s.Prices); n < MinSymbolRows {
			skip(symbol, fmt.Errorf("%w: %s has %d prices since %s", ErrInsufficientData, symbol, n, ex.FmtShort(since)))
			continue
		}
		if i := firstNonFinite(s.Prices); i >= 0 {
			skip(symbol, fmt.Errorf("%w: %s has an invalid close on %s", ErrDegenerateSeries, symbol, ex.FmtShort(s.Dates[i])))
			continue
		}

		candidate := append(slices.Clone(joined), symbol)
		trial, err := AlignPriceSeries(candidate, benchmark, series)
		if err != nil {
			skip(symbol, err)
			continue
		}
		if trial.Len() < MinSymbolRows {
			skip(symbol, fmt.Errorf("%w: %s shares %d dates with %s and the other symbols", ErrMisalignedSeries, symbol, trial.Len(), benchmark))
			continue
		}

		joined, table = candidate, trial
	}

	return table, skipped, nil
}

func firstNonFinite(prices []float64) int {
	return slices.IndexFunc(prices, func(p float64) bool { return !isFinite(p) })
}

// resolveCapmRequest fills the request defaults from the settings and validates it
func (sc *ServiceContext) resolveCapmRequest(req sm.CapmRequest) (CapmSettings, []string, string, error) {
	settings := CapmSettings{
		RiskFreeRate:        sc.Settings.RiskFreeRate,
		AnnualizationFactor: sm.Daily,
		Formula:             sc.Settings.Formula,
	}

	if req.RiskFreeRate != nil {
		settings.RiskFreeRate = *req.RiskFreeRate
	}
	if req.Formula != "" {
		formula, err := ParseCapmFormula(req.Formula)
		if err != nil {
			return settings, nil, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		settings.Formula = formula
	}
	if !isFinite(settings.RiskFreeRate) {
		return settings, nil, "", fmt.Errorf("%w: risk free rate must be a number", ErrInvalidRequest)
	}

	benchmark := ex.NormalizeSymbol(req.Benchmark)
	if benchmark == "" {
		benchmark = ex.NormalizeSymbol(sc.Settings.Benchmark)
	}

	if req.Years < MinLookback || req.Years > MaxLookback {
		return settings, nil, "", fmt.Errorf("%w: years must be between %d and %d, got %d", ErrInvalidRequest, MinLookback, MaxLookback, req.Years)
	}

	symbols := ex.Map(req.Symbols, ex.NormalizeSymbol)
	if len(symbols) == 0 {
		return settings, nil, "", fmt.Errorf("%w: at least one symbol is required", ErrInvalidRequest)
	}
	for _, s := range symbols {
		if s == "" {
			return settings, nil, "", fmt.Errorf("%w: empty symbol", ErrInvalidRequest)
		}
		if ex.AreEqual(s, benchmark) {
			return settings, nil, "", fmt.Errorf("%w: %s is the benchmark", ErrInvalidRequest, s)
		}
	}
	if dup, ok := ex.FirstDuplicate(symbols); ok {
		return settings, nil, "", fmt.Errorf("%w: duplicate symbol %s", ErrInvalidRequest, dup)
	}

	return settings, symbols, benchmark, nil
}

// loadPriceSeries reads every symbol concurrently, the first failing query cancels the rest
func (sc *ServiceContext) loadPriceSeries(symbols []string, since time.Time) (map[string]PriceSeries, error) {
	loaded := make([]PriceSeries, len(symbols))

	g, ctx := errgroup.WithContext(sc.Context)
	g.SetLimit(Workers)

	for i, symbol := range symbols {
		g.Go(func() error {
			closes, err := sc.PostgresConnection.GetClosePrices(ctx, symbol, since)
			if err != nil {
				return err
			}

			s := PriceSeries{
				Dates:  make([]time.Time, len(closes)),
				Prices: make([]float64, len(closes)),
			}
			for j, c := range closes {
				s.Dates[j] = c.Timestamp
				s.Prices[j] = c.Close
			}
			loaded[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make(map[string]PriceSeries, len(symbols))
	for i, symbol := range symbols {
		res[symbol] = loaded[i]
	}
	return res, nil
}

func (sc *ServiceContext) markCapmRunAsFailure(runId int32, cause error) error {
	log.Printf("Capm run %v failed: %v", runId, cause)
	if err := sc.PostgresConnection.UpdateCapmRunAsFailure(sc.Context, runId, cause.Error()); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func buildCapmResponse(runId int32, symbols []string, table *AlignedPriceTable, batch *CapmBatch, skipped map[string]error) *sm.CapmResponse {
	results := make(map[string]SymbolResult, len(batch.Results))
	for _, r := range batch.Results {
		results[r.Symbol] = r
	}

	estimates := make([]sm.SymbolEstimatePayload, 0, len(symbols))
	for _, symbol := range symbols {
		if err, ok := skipped[symbol]; ok {
			estimates = append(estimates, failedEstimatePayload(symbol, err))
			continue
		}

		r := results[symbol]
		if !r.Ok() {
			estimates = append(estimates, failedEstimatePayload(symbol, r.Err))
			continue
		}

		payload := sm.SymbolEstimatePayload{
			Symbol:                symbol,
			Beta:                  null.FloatFrom(r.Estimate.Beta),
			Alpha:                 null.FloatFrom(r.Estimate.Alpha),
			ExpectedReturn:        null.FloatFrom(r.Estimate.ExpectedReturn),
			BetaDisplay:           sm.DisplayDecimal(r.Estimate.Beta),
			ExpectedReturnDisplay: sm.DisplayDecimal(r.Estimate.ExpectedReturn),
		}

		prices, _ := table.Column(symbol) // the estimate succeeded so the column is complete
		if perf, err := CalculatePerformance(prices, batch.AnnualizationFactor); err == nil {
			payload.Performance = &sm.PerformancePayload{
				TotalReturn:          perf.TotalReturn,
				AnnualizedReturn:     perf.AnnualizedReturn,
				AnnualizedVolatility: perf.AnnualizedVolatility,
				MaxDrawdown:          perf.MaxDrawdown,
			}
		}

		estimates = append(estimates, payload)
	}

	return &sm.CapmResponse{
		RunId:        runId,
		Benchmark:    batch.Benchmark,
		Formula:      batch.Formula.String(),
		RiskFreeRate: batch.RiskFreeRate,
		MarketReturn: batch.MarketReturn,

		Annualization: sm.ConvertFrequencyToString(batch.AnnualizationFactor),
		Rows:          table.Len(),
		Head:          mapPriceRows(table.Head(PreviewRows)),
		Tail:          mapPriceRows(table.Tail(PreviewRows)),
		Normalized:    mapPriceRows(normalizedRows(table)),
		Estimates:     estimates,
	}
}

func failedEstimatePayload(symbol string, err error) sm.SymbolEstimatePayload {
	return sm.SymbolEstimatePayload{
		Symbol:    symbol,
		ErrorKind: ErrorKind(err),
		Error:     err.Error(),
	}
}

// normalizedRows rebases every column on its first price, a column that cannot be rebased is left out
// of the rows rather than hiding the others
func normalizedRows(table *AlignedPriceTable) []PriceRow {
	rows := make([]PriceRow, table.Len())
	for i, row := range table.Rows {
		rows[i] = PriceRow{Date: row.Date, Prices: make(map[string]float64, len(row.Prices))}
	}

	for _, symbol := range table.Columns() {
		prices, err := table.Column(symbol)
		if err != nil {
			continue
		}
		normalized, err := NormalizeSeries(prices)
		if err != nil {
			log.WithField("symbol", symbol).Warnf("cannot normalize: %v", err)
			continue
		}
		for i, v := range normalized {
			rows[i].Prices[symbol] = v
		}
	}

	return rows
}

func mapPriceRows(rows []PriceRow) []sm.PriceRowPayload {
	return ex.Map(rows, func(r PriceRow) sm.PriceRowPayload {
		return sm.PriceRowPayload{Date: r.Date, Prices: r.Prices}
	})
}
