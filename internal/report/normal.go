package report

import "math"

// upperTail is P(Z > z) for a standard normal variable.
func upperTail(z float64) float64 {
	return 0.5 * math.Erfc(z/math.Sqrt2)
}
