package models

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// CapmRequest is what the front end sends to run the capital asset pricing analysis
type CapmRequest struct {
	Symbols      []string `json:"symbols"`
	Benchmark    string   `json:"benchmark"`    // empty uses the configured benchmark
	Years        int      `json:"years"`        // 1 to 10
	RiskFreeRate *float64 `json:"riskFreeRate"` // nil uses the configured rate
	Formula      string   `json:"formula"`      // conventional or reference, empty uses the configured one
}

type CapmResponse struct {
	RunId         int32                   `json:"runId"`
	Benchmark     string                  `json:"benchmark"`
	Formula       string                  `json:"formula"`
	RiskFreeRate  float64                 `json:"riskFreeRate"`
	MarketReturn  float64                 `json:"marketReturn"`
	Annualization string                  `json:"annualization"` // period the market return was annualized from
	Rows          int                     `json:"rows"`
	Head          []PriceRowPayload       `json:"head"`
	Tail          []PriceRowPayload       `json:"tail"`
	Normalized    []PriceRowPayload       `json:"normalized"`
	Estimates     []SymbolEstimatePayload `json:"estimates"`
}

type PriceRowPayload struct {
	Date   time.Time          `json:"date"`
	Prices map[string]float64 `json:"prices"`
}

// SymbolEstimatePayload is one row of the beta / expected return tables.
// A symbol that failed keeps its row with null numbers and the reason in Error.
type SymbolEstimatePayload struct {
	Symbol                string              `json:"symbol"`
	Beta                  null.Float          `json:"beta"`
	Alpha                 null.Float          `json:"alpha"`
	ExpectedReturn        null.Float          `json:"expectedReturn"`
	BetaDisplay           decimal.NullDecimal `json:"betaDisplay"`
	ExpectedReturnDisplay decimal.NullDecimal `json:"expectedReturnDisplay"`
	Performance           *PerformancePayload `json:"performance"`
	ErrorKind             string              `json:"errorKind,omitempty"`
	Error                 string              `json:"error,omitempty"`
}

type PerformancePayload struct {
	TotalReturn          float64 `json:"totalReturn"`
	AnnualizedReturn     float64 `json:"annualizedReturn"`
	AnnualizedVolatility float64 `json:"annualizedVolatility"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
}

// DisplayDecimal rounds a value to 2 places for the tables on the page
func DisplayDecimal(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(2))
}
