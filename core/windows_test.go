package core

import (
	"errors"
	"testing"

	ex "capm.service/data/extensions"
)

func TestBuildPriceWindows(t *testing.T) {
	values := make([]float64, 150)
	for i := range values {
		values[i] = float64(i)
	}

	windows, err := BuildPriceWindows(values, DefaultWindowLength)
	if err != nil {
		t.Fatalf("error building windows: %v", err)
	}

	ex.AssertAreEqual(t, "windows", 50, len(windows))
	for i, w := range windows {
		ex.AssertAreEqual(t, "feature length", DefaultWindowLength, len(w.Feature))
		ex.AssertInDelta(t, "feature start", float64(i), w.Feature[0], 0)
		ex.AssertInDelta(t, "label", float64(i+DefaultWindowLength), w.Label, 0)

		if i == 0 {
			continue
		}
		// consecutive windows share everything but one value at each end
		ex.AssertSliceInDelta(t, "overlap", windows[i-1].Feature[1:], w.Feature[:DefaultWindowLength-1], 0)
	}

	labels := Labels(windows)
	ex.AssertSliceInDelta(t, "labels", values[DefaultWindowLength:], labels, 0)

	// appending to one feature must not overwrite the next window
	_ = append(windows[0].Feature, -1)
	ex.AssertInDelta(t, "next window untouched", float64(DefaultWindowLength), windows[1].Feature[DefaultWindowLength-1], 0)
}

func TestBuildPriceWindowsTooShort(t *testing.T) {
	_, err := BuildPriceWindows(make([]float64, DefaultWindowLength), DefaultWindowLength)
	ex.AssertErrorIs(t, "N == W", ErrInsufficientData, err)

	_, err = BuildPriceWindows(make([]float64, 10), 20)
	ex.AssertErrorIs(t, "N < W", ErrInsufficientData, err)

	if _, err := BuildPriceWindows(make([]float64, 10), 0); err == nil {
		t.Fatalf("zero window length should fail")
	}

	windows, err := BuildPriceWindows(make([]float64, DefaultWindowLength+1), DefaultWindowLength)
	if err != nil {
		t.Fatalf("N == W+1 should give one window: %v", err)
	}
	ex.AssertAreEqual(t, "single window", 1, len(windows))
}

func TestMinMaxScalerRoundTrip(t *testing.T) {
	series := []float64{152.3, 148.9, 160.2, 155.55, 149.1, 171.8}
	scaler := MinMaxScaler{}

	state, err := scaler.Fit(series)
	if err != nil {
		t.Fatalf("error fitting scaler: %v", err)
	}
	ex.AssertInDelta(t, "min", 148.9, state.Min, 0)
	ex.AssertInDelta(t, "max", 171.8, state.Max, 0)

	scaled := scaler.Transform(series, state)
	for i, v := range scaled {
		if v < 0 || v > 1 {
			t.Fatalf("scaled[%d] = %v is outside [0,1]", i, v)
		}
	}
	ex.AssertInDelta(t, "min scales to 0", 0, scaled[1], 0)
	ex.AssertInDelta(t, "max scales to 1", 1, scaled[5], 1e-15)

	ex.AssertSliceInDelta(t, "round trip", series, scaler.InverseTransform(scaled, state), 1e-9)
}

func TestMinMaxScalerConstantSeries(t *testing.T) {
	scaler := MinMaxScaler{}
	series := []float64{42, 42, 42}

	state, err := scaler.Fit(series)
	if err != nil {
		t.Fatalf("error fitting scaler: %v", err)
	}

	scaled := scaler.Transform(series, state)
	ex.AssertSliceInDelta(t, "constant scaled", []float64{0, 0, 0}, scaled, 0)
	ex.AssertSliceInDelta(t, "constant round trip", series, scaler.InverseTransform(scaled, state), 0)
}

func TestMinMaxScalerRejectsBadInput(t *testing.T) {
	_, err := MinMaxScaler{}.Fit(nil)
	ex.AssertErrorIs(t, "empty", ErrInsufficientData, err)
}

func TestLinearTrendPredictor(t *testing.T) {
	window := make([]float64, 30)
	for i := range window {
		window[i] = 0.2 + 0.01*float64(i)
	}

	p, err := LinearTrendPredictor{}.Predict(window)
	if err != nil {
		t.Fatalf("error predicting: %v", err)
	}
	ex.AssertInDelta(t, "next on the line", 0.5, p, 1e-9)

	_, err = LinearTrendPredictor{}.Predict([]float64{0.3})
	ex.AssertErrorIs(t, "single value", ErrInsufficientData, err)
}

// Helper: a predictor that repeats the last scaled value of the window
var lastValuePredictor = PredictorFunc(func(window []float64) (float64, error) {
	return window[len(window)-1], nil
})

func TestRunPricePredictionAlignsDates(t *testing.T) {
	n := 400
	dates := generateDates(t, n)
	closes := pricesFromReturns(t, 50, generateMockReturns(t, n-1, 0.0005, 0.015, 3))

	settings := PredictionSettings{WindowLength: 20, TrainSplit: 0.7}
	prediction, err := RunPricePrediction(dates, closes, MinMaxScaler{}, lastValuePredictor, settings)
	if err != nil {
		t.Fatalf("error running prediction: %v", err)
	}

	split := 280
	ex.AssertAreEqual(t, "split", split, prediction.SplitIndex)
	ex.AssertAreEqual(t, "predicted days", n-split-20, len(prediction.Dates))
	ex.AssertAreEqual(t, "actual", len(prediction.Dates), len(prediction.Actual))
	ex.AssertAreEqual(t, "predicted", len(prediction.Dates), len(prediction.Predicted))

	for i, d := range prediction.Dates {
		day := split + 20 + i
		if !d.Equal(dates[day]) {
			t.Fatalf("prediction %d dated %s, expected %s", i, ex.FmtShort(d), ex.FmtShort(dates[day]))
		}
		// actual comes back to the real close, the stub prediction to the close the day before
		ex.AssertInDelta(t, "actual", closes[day], prediction.Actual[i], 1e-9)
		ex.AssertInDelta(t, "predicted", closes[day-1], prediction.Predicted[i], 1e-9)
	}

	// scaler is fit on the test slice only
	state, _ := MinMaxScaler{}.Fit(closes[split:])
	ex.AssertAreEqual(t, "scaler", state, prediction.Scaler)
}

func TestRunPricePredictionErrors(t *testing.T) {
	dates := generateDates(t, 100)
	closes := pricesFromReturns(t, 50, generateMockReturns(t, 99, 0, 0.01, 4))

	_, err := RunPricePrediction(dates, closes, MinMaxScaler{}, lastValuePredictor, PredictionSettings{WindowLength: 30, TrainSplit: 0.7})
	ex.AssertErrorIs(t, "test slice shorter than window", ErrInsufficientData, err)

	_, err = RunPricePrediction(dates[:10], closes, MinMaxScaler{}, lastValuePredictor, PredictionSettings{})
	ex.AssertErrorIs(t, "dates and closes", ErrMisalignedSeries, err)

	boom := errors.New("model unavailable")
	failing := PredictorFunc(func([]float64) (float64, error) { return 0, boom })
	_, err = RunPricePrediction(dates, closes, MinMaxScaler{}, failing, PredictionSettings{WindowLength: 10, TrainSplit: 0.5})
	ex.AssertErrorIs(t, "predictor error", boom, err)

	if _, err := RunPricePrediction(dates, closes, MinMaxScaler{}, lastValuePredictor, PredictionSettings{TrainSplit: 1}); err == nil {
		t.Fatalf("split of 1 should fail")
	}
}
