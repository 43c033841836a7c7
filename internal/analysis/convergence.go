package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ConvergenceRate fits ln(movement) = a + rate*step by least squares over
// the positive movements and returns rate. Fewer than two usable samples
// give 0.
func ConvergenceRate(movements []float64) float64 {
	_, rate, ok := fitDecay(movements)
	if !ok {
		return 0
	}
	return rate
}

// StepsToThreshold extrapolates the fitted decay to the step at which
// movement falls below threshold. It returns -1 when movement is not
// decaying, and 0 when the last movement is already below threshold.
func StepsToThreshold(movements []float64, threshold float64) int {
	if len(movements) > 0 && movements[len(movements)-1] < threshold {
		return 0
	}
	a, rate, ok := fitDecay(movements)
	if !ok || rate >= 0 || threshold <= 0 {
		return -1
	}
	step := (math.Log(threshold) - a) / rate
	remaining := int(math.Ceil(step)) - (len(movements) - 1)
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}

func fitDecay(movements []float64) (alpha, beta float64, ok bool) {
	xs := make([]float64, 0, len(movements))
	ys := make([]float64, 0, len(movements))
	for i, m := range movements {
		if m > 0 && !math.IsInf(m, 0) {
			xs = append(xs, float64(i))
			ys = append(ys, math.Log(m))
		}
	}
	if len(xs) < 2 {
		return 0, 0, false
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	return alpha, beta, true
}
