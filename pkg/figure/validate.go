package figure

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// ErrInvalidFigure wraps every blocking validation finding.
var ErrInvalidFigure = errors.New("figure: invalid figure")

// Severity indicates whether a finding blocks rendering or is merely
// informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks rendering
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Element  string // element ID, empty for figure-level findings
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Element, e.Message)
}

// Validate checks f without modifying it. An empty result means the figure
// can be rendered as is.
func Validate(f *Figure) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePage(f)...)
	errs = append(errs, validateArcs(f)...)
	errs = append(errs, validateSegments(f)...)
	errs = append(errs, validatePoints(f)...)
	errs = append(errs, validateConstruction(f)...)
	errs = append(errs, validateIDs(f)...)
	return errs
}

// Err joins the blocking findings of Validate into one error wrapping
// ErrInvalidFigure, or returns nil.
func Err(findings []ValidationError) error {
	blocking := lo.Filter(findings, func(e ValidationError, _ int) bool {
		return e.Severity == SeverityError
	})
	if len(blocking) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidFigure, errors.Join(lo.Map(blocking, func(e ValidationError, _ int) error {
		return e
	})...))
}

// Warnings returns the advisory findings.
func Warnings(findings []ValidationError) []ValidationError {
	return lo.Filter(findings, func(e ValidationError, _ int) bool {
		return e.Severity == SeverityWarning
	})
}

func errorf(element, format string, args ...any) ValidationError {
	return ValidationError{Element: element, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(element, format string, args ...any) ValidationError {
	return ValidationError{Element: element, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// ---------------------------------------------------------------------------
// Page and camera
// ---------------------------------------------------------------------------

func validatePage(f *Figure) []ValidationError {
	var errs []ValidationError
	if f.Name == "" {
		errs = append(errs, warnf("", "figure has no name"))
	}
	if !(f.Width > 0) || !(f.Height > 0) {
		errs = append(errs, errorf("", "page size %gx%g must be positive", f.Width, f.Height))
	}
	if !(f.Margin >= 0) {
		errs = append(errs, errorf("", "margin %g must not be negative", f.Margin))
	} else if 2*f.Margin >= math.Min(f.Width, f.Height) {
		errs = append(errs, errorf("", "margin %g leaves no room on a %gx%g page", f.Margin, f.Width, f.Height))
	}
	if f.HasWorldElements() && f.Camera == nil {
		errs = append(errs, errorf("", "world elements need a camera"))
	}
	if len(f.Arcs3) == 0 && len(f.Arcs2) == 0 && len(f.Segments) == 0 && len(f.Points) == 0 && f.Construction == nil {
		errs = append(errs, warnf("", "figure is empty"))
	}
	return errs
}

// ---------------------------------------------------------------------------
// Elements
// ---------------------------------------------------------------------------

func validateArcs(f *Figure) []ValidationError {
	var errs []ValidationError
	for _, a := range f.Arcs3 {
		errs = append(errs, validateSemiAxes(a.ID, a.Arc.SemiXAxis, a.Arc.SemiYAxis)...)
		if !linalg.IsFinite(a.Arc.Origin) {
			errs = append(errs, errorf(a.ID, "origin %v is not finite", a.Arc.Origin))
		}
		if err := a.Arc.Plane.Validate(linalg.DefaultEps); err != nil {
			errs = append(errs, errorf(a.ID, "plane: %v", err))
		}
		errs = append(errs, validateRange(a.ID, &a.Arc)...)
		errs = append(errs, validateStyle(a.ID, a.Style)...)
	}
	for _, a := range f.Arcs2 {
		errs = append(errs, validateSemiAxes(a.ID, a.Arc.SemiXAxis, a.Arc.SemiYAxis)...)
		p := a.Arc.Plane
		if math.Abs(linalg.Cross2(p.XHat, p.YHat)) <= linalg.DefaultEps*p.XHat.Len()*p.YHat.Len() {
			errs = append(errs, errorf(a.ID, "plane: %v", linalg.ErrDegenerateBasis))
		}
		r := a.Arc.Range()
		if r.StepCount() < 1 {
			errs = append(errs, errorf(a.ID, "range has %d steps", r.StepCount()))
		}
		errs = append(errs, validateStyle(a.ID, a.Style)...)
	}
	return errs
}

func validateSemiAxes(id string, a, b float64) []ValidationError {
	var errs []ValidationError
	for _, ax := range []struct {
		name string
		v    float64
	}{{"x", a}, {"y", b}} {
		switch {
		case math.IsNaN(ax.v) || math.IsInf(ax.v, 0) || ax.v < 0:
			errs = append(errs, errorf(id, "semi-%s axis %g must be a non-negative number", ax.name, ax.v))
		case ax.v == 0:
			errs = append(errs, warnf(id, "semi-%s axis is zero, the arc is drawn as a segment", ax.name))
		}
	}
	return errs
}

func validateRange(id string, a *ellipse.Arc3) []ValidationError {
	r := a.Range()
	if r.StepCount() < 1 {
		return []ValidationError{errorf(id, "range has %d steps", r.StepCount())}
	}
	if r.Start() == r.End() {
		return []ValidationError{warnf(id, "range is empty")}
	}
	return nil
}

func validateSegments(f *Figure) []ValidationError {
	var errs []ValidationError
	for _, s := range f.Segments {
		if !linalg.IsFinite(s.From) || !linalg.IsFinite(s.To) {
			errs = append(errs, errorf(s.ID, "endpoints %v, %v must be finite", s.From, s.To))
		} else if s.From.ApproxEqual(s.To) {
			errs = append(errs, warnf(s.ID, "segment has zero length"))
		}
		errs = append(errs, validateStyle(s.ID, s.Style)...)
	}
	return errs
}

func validatePoints(f *Figure) []ValidationError {
	var errs []ValidationError
	for _, p := range f.Points {
		if !linalg.IsFinite(p.At) {
			errs = append(errs, errorf(p.ID, "position %v must be finite", p.At))
		}
		errs = append(errs, validateStyle(p.ID, p.Style)...)
	}
	return errs
}

func validateStyle(id string, s Style) []ValidationError {
	var errs []ValidationError
	if s.Color != "" {
		if _, err := color.FromCSSColor(s.Color); err != nil {
			errs = append(errs, errorf(id, "%v", err))
		}
	}
	if !(s.Width >= 0) {
		errs = append(errs, errorf(id, "stroke width %g must not be negative", s.Width))
	}
	return errs
}

// ---------------------------------------------------------------------------
// Construction and naming
// ---------------------------------------------------------------------------

func validateConstruction(f *Figure) []ValidationError {
	c := f.Construction
	if c == nil {
		return nil
	}
	var errs []ValidationError
	if !(c.AngleOAPDeg >= 0 && c.AngleOAPDeg <= 90) {
		errs = append(errs, errorf("construction", "angleOAP %g° must be in [0°, 90°]", c.AngleOAPDeg))
	}
	if err := c.Config.Validate(); err != nil {
		errs = append(errs, errorf("construction", "%v", err))
	}
	return errs
}

// validateIDs warns about element IDs used more than once; renderers key
// SVG ids on them.
func validateIDs(f *Figure) []ValidationError {
	ids := lo.Flatten([][]string{
		lo.Map(f.Arcs3, func(a Arc3, _ int) string { return a.ID }),
		lo.Map(f.Arcs2, func(a Arc2, _ int) string { return a.ID }),
		lo.Map(f.Segments, func(s Segment, _ int) string { return s.ID }),
		lo.Map(f.Points, func(p Point, _ int) string { return p.ID }),
	})
	return lo.Map(lo.FindDuplicates(lo.Compact(ids)), func(id string, _ int) ValidationError {
		return warnf(id, "element ID is used more than once")
	})
}
