package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// PredictionRequest asks for the predicted vs actual closes of one symbol
type PredictionRequest struct {
	Symbol         string  `json:"symbol"`
	Years          int     `json:"years"`        // history to load, defaults to 20
	WindowLength   int     `json:"windowLength"` // defaults to the configured window
	TrainSplit     float64 `json:"trainSplit"`   // defaults to the configured split
	MovingAverages []int   `json:"movingAverages"`
}

type PredictionResponse struct {
	Symbol       string             `json:"symbol"`
	WindowLength int                `json:"windowLength"`
	SplitDate    time.Time          `json:"splitDate"`
	History      []HistoryPoint     `json:"history"`
	Predictions  []PredictionPoint  `json:"predictions"`
	Scaler       ScalerStatePayload `json:"scaler"`
}

// HistoryPoint is one close with the moving averages that were asked for, keyed by period
type HistoryPoint struct {
	Date           time.Time             `json:"date"`
	Close          float64               `json:"close"`
	MovingAverages map[string]null.Float `json:"movingAverages,omitempty"`
}

type PredictionPoint struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

type ScalerStatePayload struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
