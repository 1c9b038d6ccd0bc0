package core

import (
	"fmt"
	"time"
)

const DefaultTrainSplit = 0.7

type PredictionSettings struct {
	WindowLength int     // defaults to DefaultWindowLength
	TrainSplit   float64 // share of the history held out from prediction, defaults to DefaultTrainSplit
}

// PricePrediction lines up the real close with the predicted close for every predicted day
type PricePrediction struct {
	SplitIndex int // first index of the test slice in the input series
	Dates      []time.Time
	Actual     []float64
	Predicted  []float64
	Scaler     ScalerState
}

// RunPricePrediction predicts each day of the test slice from the window of days before it.
// The scaler is fit once on the test slice and that same state is used to bring both the
// labels and the predictions back to prices.
func RunPricePrediction(dates []time.Time, closes []float64, scaler Scaler, predictor Predictor, settings PredictionSettings) (*PricePrediction, error) {
	if len(dates) != len(closes) {
		return nil, fmt.Errorf("%w: %d dates for %d closes", ErrMisalignedSeries, len(dates), len(closes))
	}
	if settings.WindowLength == 0 {
		settings.WindowLength = DefaultWindowLength
	}
	if settings.TrainSplit == 0 {
		settings.TrainSplit = DefaultTrainSplit
	}
	if settings.TrainSplit < 0 || settings.TrainSplit >= 1 {
		return nil, fmt.Errorf("train split must be in [0, 1), got %v", settings.TrainSplit)
	}

	split := int(float64(len(closes)) * settings.TrainSplit)
	test := closes[split:]

	state, err := scaler.Fit(test)
	if err != nil {
		return nil, fmt.Errorf("error fitting scaler: %w", err)
	}

	windows, err := BuildPriceWindows(scaler.Transform(test, state), settings.WindowLength)
	if err != nil {
		return nil, err
	}

	predictions := make([]float64, len(windows))
	for i, w := range windows {
		p, err := predictor.Predict(w.Feature)
		if err != nil {
			return nil, fmt.Errorf("error predicting window %d: %w", i, err)
		}
		predictions[i] = p
	}

	first := split + settings.WindowLength
	return &PricePrediction{
		SplitIndex: split,
		Dates:      dates[first:],
		Actual:     scaler.InverseTransform(Labels(windows), state),
		Predicted:  scaler.InverseTransform(predictions, state),
		Scaler:     state,
	}, nil
}
