package domain

import (
	"math"
	"testing"
)

func TestWilsonIntervalAllSuccessesIsNotDegenerate(t *testing.T) {
	ci, err := WilsonInterval(30, 30, DefaultZ)
	if err != nil {
		t.Fatalf("WilsonInterval() error = %v", err)
	}
	if ci.Lower >= 1.0 {
		t.Fatalf("expected lower bound < 1, got %v", ci.Lower)
	}
	if ci.Upper > 1.0 {
		t.Fatalf("expected upper bound <= 1, got %v", ci.Upper)
	}
	if math.Abs(ci.Upper-1.0) > 1e-9 {
		t.Fatalf("expected upper bound ~1, got %v", ci.Upper)
	}
}

func TestWilsonIntervalHalfIsCentered(t *testing.T) {
	ci, err := WilsonInterval(15, 30, DefaultZ)
	if err != nil {
		t.Fatalf("WilsonInterval() error = %v", err)
	}
	center := (ci.Lower + ci.Upper) / 2
	if math.Abs(center-0.5) > 1e-9 {
		t.Fatalf("expected center 0.5, got %v", center)
	}
	if !(ci.Lower < 0.5 && 0.5 < ci.Upper) {
		t.Fatalf("expected lower < 0.5 < upper, got %+v", ci)
	}
}

func TestWilsonIntervalKnownValues(t *testing.T) {
	ci, err := WilsonInterval(15, 30, DefaultZ)
	if err != nil {
		t.Fatalf("WilsonInterval() error = %v", err)
	}
	if math.Abs(ci.Lower-0.3562) > 1e-3 || math.Abs(ci.Upper-0.6438) > 1e-3 {
		t.Fatalf("unexpected bounds: %+v", ci)
	}
}

func TestWilsonIntervalBoundsContainObservedRate(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for s := 0; s <= n; s++ {
			ci, err := WilsonInterval(s, n, DefaultZ)
			if err != nil {
				t.Fatalf("WilsonInterval(%d, %d) error = %v", s, n, err)
			}
			p := float64(s) / float64(n)
			if ci.Lower < 0 || ci.Upper > 1 {
				t.Fatalf("bounds outside [0,1] for %d/%d: %+v", s, n, ci)
			}
			if ci.Lower > p+1e-12 || ci.Upper < p-1e-12 {
				t.Fatalf("observed rate %v outside %+v for %d/%d", p, ci, s, n)
			}
		}
	}
}

func TestWilsonIntervalZeroSuccesses(t *testing.T) {
	ci, err := WilsonInterval(0, 30, DefaultZ)
	if err != nil {
		t.Fatalf("WilsonInterval() error = %v", err)
	}
	if ci.Lower > 1e-12 {
		t.Fatalf("expected lower bound ~0, got %v", ci.Lower)
	}
	if ci.Upper <= 0 {
		t.Fatalf("expected positive upper bound, got %v", ci.Upper)
	}
}

func TestWilsonIntervalRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		s, n int
		z    float64
		kind error
	}{
		{name: "empty sample", s: 0, n: 0, z: DefaultZ, kind: ErrDegenerateSample},
		{name: "negative size", s: 0, n: -3, z: DefaultZ, kind: ErrDegenerateSample},
		{name: "too many successes", s: 31, n: 30, z: DefaultZ, kind: ErrInvalidInput},
		{name: "negative successes", s: -1, n: 30, z: DefaultZ, kind: ErrInvalidInput},
		{name: "zero z", s: 10, n: 30, z: 0, kind: ErrInvalidInput},
		{name: "nan z", s: 10, n: 30, z: math.NaN(), kind: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WilsonInterval(tt.s, tt.n, tt.z)
			if !IsKind(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}
