package domain

import (
	"fmt"
	"math"
)

// DefaultZ is the z-score for a 90% two-sided interval.
const DefaultZ = 1.645

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// WilsonInterval returns the Wilson score interval for s successes out of n
// trials. Bounds are clamped to [0,1] to absorb rounding at the extremes.
func WilsonInterval(s, n int, z float64) (ConfidenceInterval, error) {
	if n <= 0 {
		return ConfidenceInterval{}, WrapError(ErrDegenerateSample, "wilson interval", fmt.Errorf("sample size must be positive, got %d", n))
	}
	if s < 0 || s > n {
		return ConfidenceInterval{}, WrapError(ErrInvalidInput, "wilson interval", fmt.Errorf("successes %d outside [0, %d]", s, n))
	}
	if math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		return ConfidenceInterval{}, WrapError(ErrInvalidInput, "wilson interval", fmt.Errorf("z must be a positive finite number, got %v", z))
	}

	nf := float64(n)
	p := float64(s) / nf
	z2 := z * z
	denom := 1 + z2/nf
	center := p + z2/(2*nf)
	spread := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))

	return ConfidenceInterval{
		Lower: clampUnit((center - spread) / denom),
		Upper: clampUnit((center + spread) / denom),
	}, nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
