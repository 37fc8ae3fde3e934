// Package figure describes a vector diagram: the camera it is seen
// through, the arcs, segments and points drawn in it, and optionally the
// Archytas construction at a given angle.
package figure

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
)

// DefaultMargin is the blank border, in output units, around the fitted
// drawing.
const DefaultMargin = 10

// ---------------------------------------------------------------------------
// Elements
// ---------------------------------------------------------------------------

// Style selects how an element is stroked. Color, when set, overrides the
// theme color looked up by Role.
type Style struct {
	Role   string  `json:"role,omitempty"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Dashed bool    `json:"dashed,omitempty"`
}

// Arc3 is an elliptical arc in world space.
type Arc3 struct {
	ID    string       `json:"id"`
	Arc   ellipse.Arc3 `json:"arc"`
	Style Style        `json:"style"`
}

// Arc2 is an elliptical arc already in the figure plane.
type Arc2 struct {
	ID    string       `json:"id"`
	Arc   ellipse.Arc2 `json:"arc"`
	Style Style        `json:"style"`
}

// Segment is a straight line between two world points.
type Segment struct {
	ID    string     `json:"id"`
	From  mgl64.Vec3 `json:"from"`
	To    mgl64.Vec3 `json:"to"`
	Style Style      `json:"style"`
}

// Point is a labeled world point.
type Point struct {
	ID    string     `json:"id"`
	At    mgl64.Vec3 `json:"at"`
	Label string     `json:"label,omitempty"`
	Style Style      `json:"style"`
}

// ---------------------------------------------------------------------------
// Figure
// ---------------------------------------------------------------------------

// Figure is everything needed to draw one diagram. World elements (Arcs3,
// Segments, Points and the construction) go through Camera; Arcs2 go
// through Camera2, or straight to the page when it is nil.
type Figure struct {
	Name         string               `json:"name"`
	Width        float64              `json:"width"`
	Height       float64              `json:"height"`
	Margin       float64              `json:"margin"`
	Camera       camera.Camera3       `json:"-"`
	Camera2      *camera.PlaneCamera2 `json:"-"`
	Arcs3        []Arc3               `json:"arcs3,omitempty"`
	Arcs2        []Arc2               `json:"arcs2,omitempty"`
	Segments     []Segment            `json:"segments,omitempty"`
	Points       []Point              `json:"points,omitempty"`
	Construction *Construction        `json:"construction,omitempty"`
}

// New returns an empty figure of the given page size with the default
// margin.
func New(name string, width, height float64) *Figure {
	return &Figure{Name: name, Width: width, Height: height, Margin: DefaultMargin}
}

// AddArc3 appends a world arc, naming it after its position if id is
// empty.
func (f *Figure) AddArc3(id string, arc ellipse.Arc3, style Style) {
	f.Arcs3 = append(f.Arcs3, Arc3{ID: orDefault(id, "arc", len(f.Arcs3)), Arc: arc, Style: style})
}

// AddArc2 appends a plane arc.
func (f *Figure) AddArc2(id string, arc ellipse.Arc2, style Style) {
	f.Arcs2 = append(f.Arcs2, Arc2{ID: orDefault(id, "arc2", len(f.Arcs2)), Arc: arc, Style: style})
}

// AddSegment appends a world segment.
func (f *Figure) AddSegment(id string, from, to mgl64.Vec3, style Style) {
	f.Segments = append(f.Segments, Segment{ID: orDefault(id, "segment", len(f.Segments)), From: from, To: to, Style: style})
}

// AddPoint appends a labeled world point.
func (f *Figure) AddPoint(id string, at mgl64.Vec3, label string, style Style) {
	f.Points = append(f.Points, Point{ID: orDefault(id, "point", len(f.Points)), At: at, Label: label, Style: style})
}

// HasWorldElements reports whether anything needs the 3-D camera.
func (f *Figure) HasWorldElements() bool {
	return len(f.Arcs3) > 0 || len(f.Segments) > 0 || len(f.Points) > 0 || f.Construction != nil
}

func orDefault(id, kind string, n int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("%s[%d]", kind, n)
}
