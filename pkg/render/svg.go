// Package render draws figures as SVG. World elements are projected with
// the exact conic projector, the result is fitted into the page, and arcs
// are written as elliptical arc commands.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/figure"
)

// ErrRender wraps failures that are not validation findings.
var ErrRender = errors.New("render: failed")

const (
	defaultStrokeWidth = 1.5
	defaultPointRadius = 3
	defaultFontSize    = 14
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme selects the palette source. The renderer reads the active
// palette once per figure.
func WithTheme(t *color.Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithLogger sets the logger used for projection and expansion.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEps sets the projector's degeneracy tolerance.
func WithEps(eps float64) Option {
	return func(r *Renderer) { r.eps = eps }
}

// WithPointRadius sets the radius of point dots, in page units.
func WithPointRadius(radius float64) Option {
	return func(r *Renderer) { r.pointRadius = radius }
}

// Renderer turns figures into SVG documents. A Renderer reuses its
// projector, so SVG must not be called concurrently; theme changes may
// arrive from any goroutine.
type Renderer struct {
	theme       *color.Theme
	logger      *slog.Logger
	eps         float64
	pointRadius float64
	proj        *ellipse.Projector

	mu          sync.Mutex
	palette     color.Palette
	unsubscribe func()
}

// NewRenderer returns a renderer with the light default theme. The
// renderer follows the theme until Close.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: slog.Default(), pointRadius: defaultPointRadius}
	for _, o := range opts {
		o(r)
	}
	if r.theme == nil {
		r.theme = color.NewTheme(nil, nil)
	}
	popts := []ellipse.Option{ellipse.WithLogger(r.logger)}
	if r.eps > 0 {
		popts = append(popts, ellipse.WithEps(r.eps))
	}
	r.proj = ellipse.NewProjector(popts...)
	r.palette = r.theme.Palette()
	r.unsubscribe = r.theme.Subscribe(func(p color.Palette) {
		r.mu.Lock()
		r.palette = p
		r.mu.Unlock()
	})
	return r
}

// Close stops following the theme.
func (r *Renderer) Close() {
	r.unsubscribe()
}

func (r *Renderer) currentPalette() color.Palette {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.palette
}

// SVG renders fig to w with a fresh Renderer.
func SVG(w io.Writer, fig *figure.Figure, opts ...Option) error {
	r := NewRenderer(opts...)
	defer r.Close()
	return r.SVG(w, fig)
}

// ---------------------------------------------------------------------------
// Scene
// ---------------------------------------------------------------------------

// scene is a figure with every element in the same plane, before fitting.
type scene struct {
	arcs     []sceneArc
	segments []sceneSegment
	points   []scenePoint
}

type sceneArc struct {
	id    string
	arc   ellipse.Arc2
	style figure.Style
}

type sceneSegment struct {
	id       string
	from, to mgl64.Vec2
	style    figure.Style
}

type scenePoint struct {
	id    string
	at    mgl64.Vec2
	label string
	style figure.Style
}

func (r *Renderer) project(f *figure.Figure) *scene {
	s := &scene{}
	for _, a := range f.Arcs3 {
		var out ellipse.Arc2
		r.proj.Project(&out, &a.Arc, f.Camera)
		s.arcs = append(s.arcs, sceneArc{id: a.ID, arc: out, style: a.Style})
	}
	cam2 := f.Camera2
	if cam2 == nil {
		cam2 = camera.IdentityCamera2()
	}
	for _, a := range f.Arcs2 {
		var out ellipse.Arc2
		r.proj.Project2(&out, &a.Arc, cam2)
		s.arcs = append(s.arcs, sceneArc{id: a.ID, arc: out, style: a.Style})
	}
	for _, g := range f.Segments {
		s.segments = append(s.segments, sceneSegment{
			id: g.ID, from: f.Camera.Project(g.From), to: f.Camera.Project(g.To), style: g.Style,
		})
	}
	for _, p := range f.Points {
		s.points = append(s.points, scenePoint{id: p.ID, at: f.Camera.Project(p.At), label: p.Label, style: p.Style})
	}
	return s
}

// skeleton is the set of points the page is fitted around: every arc's
// range steps, segment ends and points.
func (s *scene) skeleton() []mgl64.Vec2 {
	var pts []mgl64.Vec2
	for i := range s.arcs {
		a := &s.arcs[i].arc
		r := a.Range()
		for k := 0; k <= r.StepCount(); k++ {
			pts = append(pts, a.PointAt(r.AtStep(k)))
		}
	}
	for _, g := range s.segments {
		pts = append(pts, g.from, g.to)
	}
	for _, p := range s.points {
		pts = append(pts, p.at)
	}
	return pts
}

func (s *scene) transform(r *Renderer, cam *camera.PlaneCamera2) {
	for i := range s.arcs {
		in := s.arcs[i].arc
		r.proj.Project2(&s.arcs[i].arc, &in, cam)
	}
	for i := range s.segments {
		s.segments[i].from = cam.Project(s.segments[i].from)
		s.segments[i].to = cam.Project(s.segments[i].to)
	}
	for i := range s.points {
		s.points[i].at = cam.Project(s.points[i].at)
	}
}

// Fit returns the uniform scale and translation that maps the bounding box
// of pts into a width×height page with margin on every side, centered.
// A box that is flat in one direction is scaled by the other; a single
// point is centered at unit scale.
func Fit(pts []mgl64.Vec2, width, height, margin float64) (*camera.PlaneCamera2, error) {
	if len(pts) == 0 {
		return camera.IdentityCamera2(), nil
	}
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		for k := range 2 {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	size := hi.Sub(lo)
	room := mgl64.Vec2{width - 2*margin, height - 2*margin}
	if room[0] <= 0 || room[1] <= 0 {
		return nil, fmt.Errorf("%w: page %gx%g leaves no room inside margin %g", ErrRender, width, height, margin)
	}

	scale := math.Inf(1)
	for k := range 2 {
		if size[k] > 0 {
			scale = math.Min(scale, room[k]/size[k])
		}
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	tx := margin + (room[0]-size[0]*scale)/2 - lo[0]*scale
	ty := margin + (room[1]-size[1]*scale)/2 - lo[1]*scale
	return camera.ScaleTranslateCamera2(scale, scale, tx, ty)
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// SVG expands, validates, projects and fits fig, then writes it to w.
// Figures with validation errors are not drawn.
func (r *Renderer) SVG(w io.Writer, fig *figure.Figure) error {
	f, err := fig.Expand(r.logger)
	if err != nil {
		return err
	}
	findings := figure.Validate(f)
	if err := figure.Err(findings); err != nil {
		return err
	}
	for _, wn := range figure.Warnings(findings) {
		r.logger.Warn("figure warning", slog.String("figure", f.Name), slog.String("finding", wn.Error()))
	}

	s := r.project(f)
	cam, err := Fit(s.skeleton(), f.Width, f.Height, f.Margin)
	if err != nil {
		return fmt.Errorf("figure %s: %w", f.Name, err)
	}
	s.transform(r, cam)

	pal := r.currentPalette()
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width, height := int(math.Round(f.Width)), int(math.Round(f.Height))
	canvas.Start(width, height)
	canvas.Title(f.Name)
	canvas.Rect(0, 0, width, height, `id="background"`, "fill:"+hexRGB(roleColor(pal, color.RoleBackground)))

	canvas.Gid("arcs")
	for _, a := range s.arcs {
		canvas.Path(ArcPath(&a.arc), idAttr(a.id), r.strokeStyle(pal, a.style))
	}
	canvas.Gend()

	canvas.Gid("segments")
	for _, g := range s.segments {
		canvas.Path(SegmentPath(g.from, g.to), idAttr(g.id), r.strokeStyle(pal, g.style))
	}
	canvas.Gend()

	canvas.Gid("points")
	label := roleColor(pal, color.RoleLabel)
	for _, p := range s.points {
		canvas.Path(DotPath(p.at, r.pointRadius), idAttr(p.id), fillStyle(pal, p.style, color.RolePoint))
		if p.label != "" {
			canvas.Text(int(math.Round(p.at[0]+r.pointRadius+2)), int(math.Round(p.at[1]-r.pointRadius-2)), p.label,
				fmt.Sprintf("font-family:serif;font-style:italic;font-size:%dpx;fill:%s", defaultFontSize, label.ToCSSHex()))
		}
	}
	canvas.Gend()
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("%w: figure %s: %w", ErrRender, f.Name, ew.err)
	}
	r.logger.Debug("rendered figure", slog.String("figure", f.Name),
		slog.Int("arcs", len(s.arcs)), slog.Int("segments", len(s.segments)), slog.Int("points", len(s.points)))
	return nil
}

func idAttr(id string) string {
	var b strings.Builder
	b.WriteString(`id="`)
	for _, r := range id {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(`"`)
	return b.String()
}

func roleColor(pal color.Palette, role string) color.Color {
	if c, ok := pal[role]; ok {
		return c
	}
	return pal[color.RoleStroke]
}

// elementColor is the style's own color when it parses, else the role's.
func elementColor(pal color.Palette, st figure.Style, fallbackRole string) color.Color {
	if st.Color != "" {
		if c, err := color.FromCSSColor(st.Color); err == nil {
			return c
		}
	}
	role := st.Role
	if role == "" {
		role = fallbackRole
	}
	return roleColor(pal, role)
}

func (r *Renderer) strokeStyle(pal color.Palette, st figure.Style) string {
	c := elementColor(pal, st, color.RoleStroke)
	w := st.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	out := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-linecap:round", hexRGB(c), num(w))
	if c.A < 255 {
		out += ";stroke-opacity:" + num(c.Opacity())
	}
	if st.Dashed {
		out += fmt.Sprintf(";stroke-dasharray:%s %s", num(4*w), num(3*w))
	}
	return out
}

func fillStyle(pal color.Palette, st figure.Style, fallbackRole string) string {
	c := elementColor(pal, st, fallbackRole)
	out := "stroke:none;fill:" + hexRGB(c)
	if c.A < 255 {
		out += ";fill-opacity:" + num(c.Opacity())
	}
	return out
}

// hexRGB drops alpha; opacity is written as its own property for viewers
// without 8-digit hex support.
func hexRGB(c color.Color) string {
	c.A = 255
	return c.ToCSSHex()
}
