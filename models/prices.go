package models

import (
	"time"

	"github.com/guregu/null/v6"

	dm "capm.service/data/models"
)

type PriceBarPayload struct {
	Timestamp     time.Time  `json:"timestamp"`
	Close         null.Float `json:"close"`
	AdjustedClose null.Float `json:"adjustedClose"`
	Volume        null.Float `json:"volume"`
}

// PriceImportRequest carries bars that were already fetched by whoever calls the api
type PriceImportRequest struct {
	Bars []PriceBarPayload `json:"bars"`
}

type PriceImportResponse struct {
	Symbol        string    `json:"symbol"`
	Received      int       `json:"received"`
	Inserted      int64     `json:"inserted"`
	LastRefreshed time.Time `json:"lastRefreshed"`
}

func MapPriceImportRequestToDataModel(req PriceImportRequest) []*dm.TimeSeriesData {
	res := make([]*dm.TimeSeriesData, len(req.Bars))
	for i, b := range req.Bars {
		res[i] = &dm.TimeSeriesData{
			Timestamp:     b.Timestamp,
			Close:         b.Close,
			AdjustedClose: b.AdjustedClose,
			Volume:        b.Volume,
		}
	}
	return res
}
