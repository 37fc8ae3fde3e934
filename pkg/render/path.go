package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
)

// flatRatio is the minor/major ratio below which an arc is drawn as a
// polyline through its range steps instead of an elliptical arc command.
const flatRatio = 1e-6

// num formats a coordinate with at most three decimals and no trailing
// zeros.
func num(v float64) string {
	if math.Abs(v) < 5e-4 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func moveTo(b *strings.Builder, p mgl64.Vec2) {
	b.WriteString("M")
	b.WriteString(num(p[0]))
	b.WriteString(" ")
	b.WriteString(num(p[1]))
}

func lineTo(b *strings.Builder, p mgl64.Vec2) {
	b.WriteString("L")
	b.WriteString(num(p[0]))
	b.WriteString(" ")
	b.WriteString(num(p[1]))
}

func arcTo(b *strings.Builder, ax ellipse.Axes, large, sweep bool, p mgl64.Vec2) {
	b.WriteString("A")
	b.WriteString(num(ax.Major))
	b.WriteString(" ")
	b.WriteString(num(ax.Minor))
	b.WriteString(" ")
	b.WriteString(num(mgl64.RadToDeg(ax.Rotation)))
	b.WriteString(" ")
	b.WriteString(flag(large))
	b.WriteString(" ")
	b.WriteString(flag(sweep))
	b.WriteString(" ")
	b.WriteString(num(p[0]))
	b.WriteString(" ")
	b.WriteString(num(p[1]))
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// ArcPath returns SVG path data for a planar arc in page coordinates.
//
// A single arc command cannot draw a closed ellipse, so full turns are
// split in two halves. Arcs that have collapsed to a segment or a point
// are drawn through their sample points.
func ArcPath(arc *ellipse.Arc2) string {
	var b strings.Builder
	r := arc.Range()
	ax := ellipse.PrincipalAxes(arc)
	if ax.Major == 0 || ax.Minor <= flatRatio*ax.Major {
		moveTo(&b, arc.PointAt(r.AtStep(0)))
		for i := 1; i <= r.StepCount(); i++ {
			lineTo(&b, arc.PointAt(r.AtStep(i)))
		}
		return b.String()
	}

	// Increasing the circular angle turns the same way as the basis
	// a·XHat, b·YHat. SVG's sweep flag 1 is the direction from +x
	// toward +y.
	orient := linalg.Cross2(arc.Plane.XHat, arc.Plane.YHat)
	s, e := r.Start(), r.End()
	sweep := (orient > 0) == (e > s)

	moveTo(&b, arc.PointAt(s))
	if arc.IsFull() {
		mid := s + (e-s)/2
		arcTo(&b, ax, false, sweep, arc.PointAt(mid))
		arcTo(&b, ax, false, sweep, arc.PointAt(e))
		return b.String()
	}
	arcTo(&b, ax, math.Abs(e-s) > math.Pi, sweep, arc.PointAt(e))
	return b.String()
}

// SegmentPath returns SVG path data for a straight line.
func SegmentPath(from, to mgl64.Vec2) string {
	var b strings.Builder
	moveTo(&b, from)
	lineTo(&b, to)
	return b.String()
}

// DotPath returns SVG path data for a filled circle of radius r.
func DotPath(at mgl64.Vec2, r float64) string {
	var b strings.Builder
	moveTo(&b, mgl64.Vec2{at[0] - r, at[1]})
	d := r * 2
	for _, dx := range [2]float64{d, -d} {
		b.WriteString("a")
		b.WriteString(num(r))
		b.WriteString(" ")
		b.WriteString(num(r))
		b.WriteString(" 0 1 0 ")
		b.WriteString(num(dx))
		b.WriteString(" 0")
	}
	b.WriteString("Z")
	return b.String()
}
