package render

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/figure"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// command is one path command with its numeric arguments.
type command struct {
	op   byte
	args []float64
}

func parsePath(t *testing.T, d string) []command {
	t.Helper()
	var cmds []command
	for _, tok := range strings.FieldsFunc(d, func(r rune) bool { return r == ' ' }) {
		for len(tok) > 0 {
			if c := tok[0]; c >= 'A' && c <= 'z' && c != 'e' {
				cmds = append(cmds, command{op: c})
				tok = tok[1:]
				continue
			}
			end := strings.IndexFunc(tok, func(r rune) bool { return r >= 'A' && r <= 'z' && r != 'e' })
			if end < 0 {
				end = len(tok)
			}
			v, err := strconv.ParseFloat(tok[:end], 64)
			require.NoError(t, err, "path %q", d)
			last := &cmds[len(cmds)-1]
			last.args = append(last.args, v)
			tok = tok[end:]
		}
	}
	return cmds
}

func unitArc(start, end float64, plane linalg.Plane2) *ellipse.Arc2 {
	return &ellipse.Arc2{
		Plane:         plane,
		SemiXAxis:     1,
		SemiYAxis:     1,
		CircularAngle: valuerange.MustConstStepRange(start, end, 8),
	}
}

func TestArcPathFlags(t *testing.T) {
	flipped := linalg.Plane2{XHat: mgl64.Vec2{1, 0}, YHat: mgl64.Vec2{0, -1}}
	tests := []struct {
		name         string
		arc          *ellipse.Arc2
		start, end   mgl64.Vec2
		large, sweep float64
	}{
		{"quarter", unitArc(0, math.Pi/2, linalg.StandardPlane2), mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}, 0, 1},
		{"reversed", unitArc(math.Pi/2, 0, linalg.StandardPlane2), mgl64.Vec2{0, 1}, mgl64.Vec2{1, 0}, 0, 0},
		{"flipped basis", unitArc(0, math.Pi/2, flipped), mgl64.Vec2{1, 0}, mgl64.Vec2{0, -1}, 0, 0},
		{"three quarters", unitArc(0, 3*math.Pi/2, linalg.StandardPlane2), mgl64.Vec2{1, 0}, mgl64.Vec2{0, -1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := parsePath(t, ArcPath(tt.arc))
			require.Len(t, cmds, 2)
			assert.Equal(t, byte('M'), cmds[0].op)
			assert.InDeltaSlice(t, tt.start[:], cmds[0].args, 1e-3)
			a := cmds[1]
			require.Equal(t, byte('A'), a.op)
			require.Len(t, a.args, 7)
			assert.InDelta(t, 1, a.args[0], 1e-3)
			assert.InDelta(t, 1, a.args[1], 1e-3)
			assert.Equal(t, tt.large, a.args[3])
			assert.Equal(t, tt.sweep, a.args[4])
			assert.InDeltaSlice(t, tt.end[:], a.args[5:], 1e-3)
		})
	}
}

func TestArcPathPrincipalAxes(t *testing.T) {
	// A sheared circle: the arc command must carry the true semi-axes.
	arc := &ellipse.Arc2{
		Plane:         linalg.Plane2{XHat: mgl64.Vec2{1, 0}, YHat: mgl64.Vec2{1, 1}.Normalize()},
		SemiXAxis:     2,
		SemiYAxis:     2,
		CircularAngle: valuerange.MustConstStepRange(0, math.Pi/3, 4),
	}
	ax := ellipse.PrincipalAxes(arc)
	cmds := parsePath(t, ArcPath(arc))
	require.Len(t, cmds, 2)
	assert.InDelta(t, ax.Major, cmds[1].args[0], 1e-3)
	assert.InDelta(t, ax.Minor, cmds[1].args[1], 1e-3)
	assert.Greater(t, ax.Major, ax.Minor)
	end := arc.End()
	assert.InDeltaSlice(t, end[:], cmds[1].args[5:], 1e-3)
}

func TestArcPathFullTurn(t *testing.T) {
	cmds := parsePath(t, ArcPath(unitArc(0, 2*math.Pi, linalg.StandardPlane2)))
	require.Len(t, cmds, 3)
	assert.Equal(t, byte('A'), cmds[1].op)
	assert.Equal(t, byte('A'), cmds[2].op)
	assert.InDeltaSlice(t, []float64{-1, 0}, cmds[1].args[5:], 1e-3)
	assert.InDeltaSlice(t, []float64{1, 0}, cmds[2].args[5:], 1e-3)
}

func TestArcPathFlatArcIsPolyline(t *testing.T) {
	arc := unitArc(0, math.Pi, linalg.StandardPlane2)
	arc.SemiYAxis = 0
	cmds := parsePath(t, ArcPath(arc))
	require.Len(t, cmds, 9)
	for _, c := range cmds[1:] {
		assert.Equal(t, byte('L'), c.op)
		assert.InDelta(t, 0, c.args[1], 1e-3)
	}
	assert.InDeltaSlice(t, []float64{-1, 0}, cmds[8].args, 1e-3)
}

func TestDotAndSegmentPaths(t *testing.T) {
	assert.Equal(t, "M7 20a3 3 0 1 0 6 0a3 3 0 1 0 -6 0Z", DotPath(mgl64.Vec2{10, 20}, 3))
	assert.Equal(t, "M0 1.5L2.25 -4", SegmentPath(mgl64.Vec2{0, 1.5}, mgl64.Vec2{2.25, -4}))
}

func TestNum(t *testing.T) {
	for in, want := range map[float64]string{
		1.5: "1.5", 2: "2", -0.0001: "0", 1.23456: "1.235", -12.1: "-12.1",
	} {
		assert.Equal(t, want, num(in), "num(%v)", in)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		pts  []mgl64.Vec2
		want []mgl64.Vec2
	}{
		{"box", []mgl64.Vec2{{0, 0}, {2, 1}}, []mgl64.Vec2{{10, 30}, {90, 70}}},
		{"flat", []mgl64.Vec2{{0, 0}, {4, 0}}, []mgl64.Vec2{{10, 50}, {90, 50}}},
		{"point", []mgl64.Vec2{{5, 5}}, []mgl64.Vec2{{50, 50}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, err := Fit(tt.pts, 100, 100, 10)
			require.NoError(t, err)
			for i, p := range tt.pts {
				got := cam.Project(p)
				assert.InDeltaSlice(t, tt.want[i][:], got[:], 1e-9)
			}
		})
	}

	_, err := Fit([]mgl64.Vec2{{0, 0}, {1, 1}}, 20, 100, 10)
	assert.ErrorIs(t, err, ErrRender)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func topCamera(t *testing.T) camera.Camera3 {
	t.Helper()
	cam, err := camera.NewPlaneCamera(mgl64.Vec3{}, linalg.XYPlane3, 1, -1)
	require.NoError(t, err)
	return cam
}

func TestSVGConstruction(t *testing.T) {
	f := figure.New("archytas", 400, 300)
	f.Camera = topCamera(t)
	f.Construction = figure.NewConstruction(30)

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, f))
	out := buf.String()

	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `width="400"`)
	assert.Contains(t, out, "<title>archytas</title>")
	assert.Contains(t, out, `id="base-circle"`)
	assert.Contains(t, out, `id="transverse-circle"`)
	assert.Contains(t, out, `id="OA&apos;"`)
	assert.Contains(t, out, "stroke-dasharray")
	assert.Contains(t, out, "fill:#ffffff")
	assert.Contains(t, out, "P</text>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
	assert.Nil(t, f.Arcs3, "rendering must not expand the caller's figure")
}

func TestSVGDarkTheme(t *testing.T) {
	theme := color.NewTheme(nil, nil)
	theme.SetDark(true)
	f := figure.New("dark", 200, 200)
	f.AddArc2("c", *unitArc(0, 2*math.Pi, linalg.StandardPlane2), figure.Style{Color: "#ff0000", Dashed: true})

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, f, WithTheme(theme)))
	out := buf.String()
	assert.NotContains(t, out, "fill:#ffffff")
	assert.Contains(t, out, "stroke:#ff0000")
	assert.Contains(t, out, `id="c"`)
}

func TestSVGRejectsInvalidFigure(t *testing.T) {
	f := figure.New("broken", 200, 200)
	f.AddSegment("s", mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, figure.Style{})

	var buf bytes.Buffer
	err := SVG(&buf, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, figure.ErrInvalidFigure)
	assert.Zero(t, buf.Len())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGReportsWriteErrors(t *testing.T) {
	f := figure.New("w", 200, 200)
	f.AddArc2("c", *unitArc(0, math.Pi, linalg.StandardPlane2), figure.Style{})
	err := SVG(failWriter{}, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSVGFitsPerspectiveArcInsidePage(t *testing.T) {
	cam, err := camera.LookAt(mgl64.Vec3{3, -4, 5}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 1)
	require.NoError(t, err)
	f := figure.New("persp", 300, 200)
	f.Camera = cam
	f.AddArc3("ring", ellipse.Arc3{Plane: linalg.XYPlane3, SemiXAxis: 1, SemiYAxis: 1}, figure.Style{})

	r := NewRenderer()
	s := r.project(f)
	fit, err := Fit(s.skeleton(), f.Width, f.Height, f.Margin)
	require.NoError(t, err)
	s.transform(r, fit)
	for _, p := range s.skeleton() {
		assert.GreaterOrEqual(t, p[0], f.Margin-1e-6)
		assert.LessOrEqual(t, p[0], f.Width-f.Margin+1e-6)
		assert.GreaterOrEqual(t, p[1], f.Margin-1e-6)
		assert.LessOrEqual(t, p[1], f.Height-f.Margin+1e-6)
	}
}

func TestRendererFollowsTheme(t *testing.T) {
	theme := color.NewTheme(nil, nil)
	r := NewRenderer(WithTheme(theme))
	require.Equal(t, 1, theme.Subscribers())

	light := r.currentPalette()[color.RoleBackground]
	theme.SetDark(true)
	dark := r.currentPalette()[color.RoleBackground]
	assert.NotEqual(t, light, dark)
	assert.Equal(t, theme.Color(color.RoleBackground), dark)

	r.Close()
	assert.Zero(t, theme.Subscribers())
	theme.SetDark(false)
	assert.Equal(t, dark, r.currentPalette()[color.RoleBackground], "closed renderers stop following")
}
