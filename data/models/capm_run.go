package models

import (
	"time"

	"github.com/guregu/null/v6"
)

const (
	RunStatusPending = "pending"
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// CapmRunHistory records every analysis that was requested and how it ended
type CapmRunHistory struct {
	Id            int32       `db:"id"`
	Benchmark     string      `db:"benchmark"`
	Symbols       []string    `db:"symbols"`
	RiskFreeRate  float64     `db:"risk_free_rate"`
	Formula       string      `db:"formula"`
	LookbackStart time.Time   `db:"lookback_start"`
	Status        string      `db:"status"`
	ErrorMessage  null.String `db:"error_message"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}
