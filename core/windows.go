package core

import (
	"fmt"
	"slices"
)

const DefaultWindowLength = 100

// PriceWindow is one model input, W consecutive scaled prices, and the scaled price of the day after
type PriceWindow struct {
	Feature []float64
	Label   float64
}

// BuildPriceWindows slides a window of length windowLength over the series one step at a time.
// A series of N values gives N-W windows, window i covers [i, i+W) and is labelled with value i+W.
func BuildPriceWindows(scaled []float64, windowLength int) ([]PriceWindow, error) {
	if windowLength <= 0 {
		return nil, fmt.Errorf("window length must be positive, got %d", windowLength)
	}
	if len(scaled) <= windowLength {
		return nil, fmt.Errorf("%w: %d values cannot fill a window of %d plus a label", ErrInsufficientData, len(scaled), windowLength)
	}

	n := len(scaled) - windowLength
	res := make([]PriceWindow, n)
	for i := range n {
		res[i] = PriceWindow{
			// clipped so a consumer appending to a feature cannot write into the next window
			Feature: slices.Clip(scaled[i : i+windowLength]),
			Label:   scaled[i+windowLength],
		}
	}

	return res, nil
}

// Labels returns the label of every window in order
func Labels(windows []PriceWindow) []float64 {
	res := make([]float64, len(windows))
	for i, w := range windows {
		res[i] = w.Label
	}
	return res
}
