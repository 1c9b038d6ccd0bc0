package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// TimeSeriesMetadata is one row per symbol we hold prices for
type TimeSeriesMetadata struct {
	Id            int32     `db:"id"`
	Symbol        string    `db:"symbol"`
	LastRefreshed time.Time `db:"last_refreshed"`
}

// TimeSeriesData is one daily bar, any column can be missing from the source
type TimeSeriesData struct {
	SourceId      int32      `db:"source_id"`
	Timestamp     time.Time  `db:"timestamp"`
	Close         null.Float `db:"close"`
	AdjustedClose null.Float `db:"adjusted_close"`
	Volume        null.Float `db:"volume"`
}

// ClosePrice is the price used by the analytics, adjusted close when we have it
type ClosePrice struct {
	Timestamp time.Time `db:"timestamp"`
	Close     float64   `db:"close"`
}
