package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	log "github.com/sirupsen/logrus"

	ex "capm.service/data/extensions"
	sm "capm.service/models"
)

const DefaultPredictionYears = 20

// RunPricePrediction compares the predicted closes of one symbol with the real ones over the test slice
func (sc *ServiceContext) RunPricePrediction(req sm.PredictionRequest) (*sm.PredictionResponse, error) {
	start := time.Now()

	symbol := ex.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}

	settings := PredictionSettings{
		WindowLength: sc.Settings.WindowLength,
		TrainSplit:   sc.Settings.TrainSplit,
	}
	if req.WindowLength != 0 {
		settings.WindowLength = req.WindowLength
	}
	if req.TrainSplit != 0 {
		settings.TrainSplit = req.TrainSplit
	}
	if settings.WindowLength == 0 {
		settings.WindowLength = DefaultWindowLength
	}
	if settings.WindowLength < 0 || settings.TrainSplit < 0 || settings.TrainSplit >= 1 {
		return nil, fmt.Errorf("%w: window length %d and train split %v are not usable", ErrInvalidRequest, settings.WindowLength, settings.TrainSplit)
	}
	for _, period := range req.MovingAverages {
		if period <= 0 {
			return nil, fmt.Errorf("%w: moving average period must be positive, got %d", ErrInvalidRequest, period)
		}
	}

	years := req.Years
	if years == 0 {
		years = DefaultPredictionYears
	}
	since := time.Now().AddDate(-years, 0, 0)

	log.Printf("Loading closes of %v since %v (time: %v)", symbol, ex.FmtShort(since), time.Since(start))
	series, err := sc.loadPriceSeries([]string{symbol}, since)
	if err != nil {
		log.Printf("Error loading closes of %v: %v", symbol, err)
		return nil, err
	}
	history := series[symbol]

	predictor := sc.Predictor
	if predictor == nil {
		predictor = LinearTrendPredictor{}
	}

	log.Printf("Predicting %v over %d closes (time: %v)", symbol, len(history.Prices), time.Since(start))
	prediction, err := RunPricePrediction(history.Dates, history.Prices, MinMaxScaler{}, predictor, settings)
	if err != nil {
		log.Printf("Error predicting %v: %v", symbol, err)
		return nil, err
	}

	averages := make(map[int][]null.Float, len(req.MovingAverages))
	for _, period := range req.MovingAverages {
		averages[period], _ = MovingAverage(history.Prices, period) // periods checked above
	}

	response := buildPredictionResponse(symbol, settings, history, prediction, averages)
	log.Printf("Prediction of %v completed (time: %v)", symbol, time.Since(start))
	return response, nil
}

func buildPredictionResponse(symbol string, settings PredictionSettings, history PriceSeries, prediction *PricePrediction, averages map[int][]null.Float) *sm.PredictionResponse {
	points := make([]sm.HistoryPoint, len(history.Prices))
	for i := range history.Prices {
		points[i] = sm.HistoryPoint{
			Date:  history.Dates[i],
			Close: history.Prices[i],
		}
		if len(averages) > 0 {
			points[i].MovingAverages = make(map[string]null.Float, len(averages))
			for period, values := range averages {
				points[i].MovingAverages[strconv.Itoa(period)] = values[i]
			}
		}
	}

	predictions := make([]sm.PredictionPoint, len(prediction.Dates))
	for i, d := range prediction.Dates {
		predictions[i] = sm.PredictionPoint{
			Date:      d,
			Actual:    prediction.Actual[i],
			Predicted: prediction.Predicted[i],
		}
	}

	return &sm.PredictionResponse{
		Symbol:       symbol,
		WindowLength: settings.WindowLength,
		SplitDate:    history.Dates[prediction.SplitIndex],
		History:      points,
		Predictions:  predictions,
		Scaler: sm.ScalerStatePayload{
			Min: prediction.Scaler.Min,
			Max: prediction.Scaler.Max,
		},
	}
}
