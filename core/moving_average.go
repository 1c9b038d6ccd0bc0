package core

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// MovingAverage is the rolling mean over period prices. The first period-1 days have no
// average and are left null so the output lines up with the input dates.
func MovingAverage(prices []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, fmt.Errorf("moving average period must be positive, got %d", period)
	}

	res := make([]null.Float, len(prices))
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			res[i] = null.FloatFrom(sum / float64(period))
		}
	}

	return res, nil
}
