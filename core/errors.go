package core

import "errors"

// error kinds returned by the analytics core, callers should match with errors.Is
var (
	ErrInsufficientData     = errors.New("insufficient data")
	ErrDegenerateSeries     = errors.New("degenerate series")
	ErrDegenerateRegression = errors.New("degenerate regression")
	ErrMisalignedSeries     = errors.New("misaligned series")
)

// ErrorKind returns a stable name for the error so it can be sent to the front end per symbol
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrDegenerateSeries):
		return "degenerate_series"
	case errors.Is(err, ErrDegenerateRegression):
		return "degenerate_regression"
	case errors.Is(err, ErrMisalignedSeries):
		return "misaligned_series"
	default:
		return "unknown"
	}
}

// ErrInvalidRequest marks a request the controllers refused before doing any work
var ErrInvalidRequest = errors.New("invalid request")
