package core

import (
	"fmt"

	"github.com/sajari/regression"
)

// Predictor maps one window of scaled prices to the predicted scaled price of the next day
type Predictor interface {
	Predict(window []float64) (float64, error)
}

type PredictorFunc func(window []float64) (float64, error)

func (f PredictorFunc) Predict(window []float64) (float64, error) {
	return f(window)
}

// LinearTrendPredictor fits a straight line through the window and extends it one step.
// It stands in for a trained model when none is plugged in.
type LinearTrendPredictor struct{}

func (LinearTrendPredictor) Predict(window []float64) (float64, error) {
	if len(window) < 2 {
		return 0, fmt.Errorf("%w: trend needs at least 2 points, got %d", ErrInsufficientData, len(window))
	}

	r := new(regression.Regression)
	r.SetObserved("scaled close")
	r.SetVar(0, "step")

	var rdp regression.DataPoints
	for i, v := range window {
		rdp = append(rdp, regression.DataPoint(v, []float64{float64(i)}))
	}
	r.Train(rdp...)

	if err := r.Run(); err != nil {
		return 0, fmt.Errorf("error fitting trend: %w", err)
	}

	return r.Predict([]float64{float64(len(window))})
}
