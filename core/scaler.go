package core

import (
	"fmt"
	"math"
)

// ScalerState is what a fitted min max scaler remembers about the series it was fit on
type ScalerState struct {
	Min float64
	Max float64
}

// Scaler maps a series onto [0,1] and back. The state from one Fit has to be used for both
// directions, fitting again on the predictions would put them on a different scale.
type Scaler interface {
	Fit(series []float64) (ScalerState, error)
	Transform(series []float64, state ScalerState) []float64
	InverseTransform(values []float64, state ScalerState) []float64
}

type MinMaxScaler struct{}

func (MinMaxScaler) Fit(series []float64) (ScalerState, error) {
	if len(series) == 0 {
		return ScalerState{}, fmt.Errorf("%w: cannot fit a scaler on an empty series", ErrInsufficientData)
	}

	state := ScalerState{Min: math.Inf(1), Max: math.Inf(-1)}
	for i, v := range series {
		if !isFinite(v) {
			return ScalerState{}, fmt.Errorf("%w: non finite value at index %d", ErrDegenerateSeries, i)
		}
		state.Min = math.Min(state.Min, v)
		state.Max = math.Max(state.Max, v)
	}

	return state, nil
}

func (MinMaxScaler) Transform(series []float64, state ScalerState) []float64 {
	span := state.span()
	res := make([]float64, len(series))
	for i, v := range series {
		res[i] = (v - state.Min) / span
	}
	return res
}

func (MinMaxScaler) InverseTransform(values []float64, state ScalerState) []float64 {
	span := state.span()
	res := make([]float64, len(values))
	for i, v := range values {
		res[i] = v*span + state.Min
	}
	return res
}

// a constant series has no range, it scales to all zeros and back to the constant
func (s ScalerState) span() float64 {
	if s.Max == s.Min {
		return 1
	}
	return s.Max - s.Min
}
