package valuerange

import (
	"fmt"
	"sort"
)

// ArrayRange is a range with explicit, possibly uneven, step boundaries.
type ArrayRange struct {
	bounds []float64
}

var _ ValueRange = ArrayRange{}

// NewArrayRange copies bounds, which must hold at least two strictly
// monotonic values.
func NewArrayRange(bounds ...float64) (ArrayRange, error) {
	if len(bounds) < 2 {
		return ArrayRange{}, fmt.Errorf("%w: need at least two bounds, got %d", ErrInvalidRange, len(bounds))
	}
	inc := bounds[1] > bounds[0]
	for i := 1; i < len(bounds); i++ {
		if err := validate(bounds[i-1], bounds[i], 1); err != nil {
			return ArrayRange{}, err
		}
		if (bounds[i] > bounds[i-1]) != inc || bounds[i] == bounds[i-1] {
			return ArrayRange{}, fmt.Errorf("%w: bounds must be strictly monotonic at index %d", ErrInvalidRange, i)
		}
	}
	return ArrayRange{bounds: append([]float64(nil), bounds...)}, nil
}

func (r ArrayRange) Start() float64 { return r.bounds[0] }
func (r ArrayRange) End() float64   { return r.bounds[len(r.bounds)-1] }
func (r ArrayRange) StepCount() int { return len(r.bounds) - 1 }

func (r ArrayRange) StepSize(i int) float64 {
	i = clamp(i, 0, r.StepCount()-1)
	return r.bounds[i+1] - r.bounds[i]
}

func (r ArrayRange) AtStep(i int) float64 {
	return r.bounds[clamp(i, 0, r.StepCount())]
}

func (r ArrayRange) LastIncludedStepIdx(v float64) int {
	n := r.StepCount()
	inc := r.End() > r.Start()
	// First boundary strictly past v, minus one.
	k := sort.Search(len(r.bounds), func(i int) bool {
		b := r.bounds[i]
		tol := stepTolerance * (1 + abs(b))
		if inc {
			return b > v+tol
		}
		return b < v-tol
	})
	return clamp(k-1, 0, n)
}

func (r ArrayRange) Includes(v float64) bool {
	return includes(r.Start(), r.End(), v)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
