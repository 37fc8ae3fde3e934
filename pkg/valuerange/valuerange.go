// Package valuerange describes stepped intervals used to drive angle sweeps
// and tessellation slice counts.
package valuerange

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned for ranges with no steps or non-finite bounds.
var ErrInvalidRange = errors.New("valuerange: invalid range")

// stepTolerance absorbs floating-point error when mapping a value back to
// the step that produced it.
const stepTolerance = 1e-9

// ValueRange is an interval from Start to End divided into StepCount steps.
// Step i spans [AtStep(i), AtStep(i+1)]; StepSize(i) is its signed width.
type ValueRange interface {
	Start() float64
	End() float64
	StepCount() int
	StepSize(i int) float64
	AtStep(i int) float64
	// LastIncludedStepIdx returns the largest step boundary index k in
	// [0, StepCount] whose value has been reached by v when walking from
	// Start toward End.
	LastIncludedStepIdx(v float64) int
	// Includes reports whether v lies between Start and End.
	Includes(v float64) bool
}

// ConstStepRange divides [Start, End] into equal steps. The zero value is
// not usable; construct with NewConstStepRange.
type ConstStepRange struct {
	start, end float64
	steps      int
}

var _ ValueRange = ConstStepRange{}

// NewConstStepRange returns a range with n equal steps from start to end.
// start may be larger than end for a decreasing sweep.
func NewConstStepRange(start, end float64, n int) (ConstStepRange, error) {
	if err := validate(start, end, n); err != nil {
		return ConstStepRange{}, err
	}
	return ConstStepRange{start: start, end: end, steps: n}, nil
}

// MustConstStepRange is NewConstStepRange for constant arguments; it panics
// on invalid input.
func MustConstStepRange(start, end float64, n int) ConstStepRange {
	r, err := NewConstStepRange(start, end, n)
	if err != nil {
		panic(err)
	}
	return r
}

// RadRangeFromStartEndDegStepCount builds a radian range from degree bounds.
func RadRangeFromStartEndDegStepCount(startDeg, endDeg float64, n int) (ConstStepRange, error) {
	return NewConstStepRange(degToRad(startDeg), degToRad(endDeg), n)
}

// RadRangeFromStartEndDegStepDeg builds a radian range whose step is as
// close to stepDeg as a whole number of steps allows.
func RadRangeFromStartEndDegStepDeg(startDeg, endDeg, stepDeg float64) (ConstStepRange, error) {
	if stepDeg <= 0 || math.IsNaN(stepDeg) || math.IsInf(stepDeg, 0) {
		return ConstStepRange{}, fmt.Errorf("%w: step %v must be positive", ErrInvalidRange, stepDeg)
	}
	n := int(math.Round(math.Abs(endDeg-startDeg) / stepDeg))
	if n < 1 {
		n = 1
	}
	return RadRangeFromStartEndDegStepCount(startDeg, endDeg, n)
}

func (r ConstStepRange) Start() float64 { return r.start }
func (r ConstStepRange) End() float64   { return r.end }
func (r ConstStepRange) StepCount() int { return r.steps }

// StepSize is the same for every step.
func (r ConstStepRange) StepSize(int) float64 {
	return (r.end - r.start) / float64(r.steps)
}

// AtStep is affine in i and returns End exactly at i == StepCount.
func (r ConstStepRange) AtStep(i int) float64 {
	return atStep(r.start, r.end, r.steps, i)
}

func (r ConstStepRange) LastIncludedStepIdx(v float64) int {
	return lastIncluded(r.start, r.end, r.steps, v)
}

func (r ConstStepRange) Includes(v float64) bool {
	return includes(r.start, r.end, v)
}

func (r ConstStepRange) String() string {
	return fmt.Sprintf("[%g, %g]/%d", r.start, r.end, r.steps)
}

// MutableConstStepRange is a ConstStepRange whose bounds can be updated in
// place, so a projected arc can reuse one range across frames.
type MutableConstStepRange struct {
	ConstStepRange
}

var _ ValueRange = (*MutableConstStepRange)(nil)

// NewMutableConstStepRange returns a mutable range with n equal steps.
func NewMutableConstStepRange(start, end float64, n int) (*MutableConstStepRange, error) {
	r, err := NewConstStepRange(start, end, n)
	if err != nil {
		return nil, err
	}
	return &MutableConstStepRange{ConstStepRange: r}, nil
}

// SetStartEnd replaces both bounds, keeping the step count.
func (r *MutableConstStepRange) SetStartEnd(start, end float64) {
	r.start, r.end = start, end
}

// SetStepCount replaces the step count; counts below one are ignored.
func (r *MutableConstStepRange) SetStepCount(n int) {
	if n >= 1 {
		r.steps = n
	}
}

func atStep(start, end float64, n, i int) float64 {
	switch {
	case i <= 0:
		return start
	case i >= n:
		return end
	}
	t := float64(i) / float64(n)
	return start + t*(end-start)
}

func lastIncluded(start, end float64, n int, v float64) int {
	span := end - start
	if span == 0 {
		return n
	}
	k := int(math.Floor((v-start)/span*float64(n) + stepTolerance))
	return clamp(k, 0, n)
}

func includes(start, end, v float64) bool {
	lo, hi := math.Min(start, end), math.Max(start, end)
	tol := stepTolerance * math.Max(1, hi-lo)
	return v >= lo-tol && v <= hi+tol
}

func validate(start, end float64, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: step count %d must be at least 1", ErrInvalidRange, n)
	}
	for _, v := range [2]float64{start, end} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound %v", ErrInvalidRange, v)
		}
	}
	return nil
}

func clamp(k, lo, hi int) int {
	if k < lo {
		return lo
	}
	if k > hi {
		return hi
	}
	return k
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
