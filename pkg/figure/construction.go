package figure

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/archytas"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
)

// Construction draws the Archytas construction at one control angle.
type Construction struct {
	AngleOAPDeg float64         `json:"angle_oap_deg"`
	Config      archytas.Config `json:"config"`
	Labels      bool            `json:"labels"`
}

// NewConstruction returns the default construction at angleOAP = deg,
// with labels.
func NewConstruction(deg float64) *Construction {
	return &Construction{AngleOAPDeg: deg, Config: archytas.DefaultConfig(), Labels: true}
}

// Expand returns a copy of f with its construction replaced by the arcs,
// segments and points it stands for. Figures without a construction are
// returned as they are.
func (f *Figure) Expand(logger *slog.Logger) (*Figure, error) {
	if f.Construction == nil {
		return f, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := f.Construction
	m, err := archytas.NewModel(c.Config, archytas.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("figure %s: %w", f.Name, err)
	}
	if tau := mgl64.DegToRad(c.AngleOAPDeg); tau != m.AngleOAP() && !m.SetAngleOAP(tau) {
		return nil, fmt.Errorf("%w: figure %s: angleOAP %g° outside [0°, 90°]", ErrInvalidFigure, f.Name, c.AngleOAPDeg)
	}

	out := *f
	out.Construction = nil
	out.Arcs3 = append([]Arc3(nil), f.Arcs3...)
	out.Segments = append([]Segment(nil), f.Segments...)
	out.Points = append([]Point(nil), f.Points...)

	circle := Style{Role: color.RoleCircle}
	arcs := m.Arcs()
	out.AddArc3("base-circle", arcs[0], circle)
	out.AddArc3("transverse-circle", arcs[1], circle)

	p := m.Points()
	stroke := Style{Role: color.RoleStroke}
	dashed := Style{Role: color.RoleStroke, Dashed: true}
	out.AddSegment("OA", p.O, p.A, stroke)
	out.AddSegment("OA'", p.O, p.APrime, stroke)
	out.AddSegment("OP", p.O, p.P, stroke)
	out.AddSegment("OM", p.O, p.M, dashed)
	out.AddSegment("MP", p.M, p.P, dashed)

	pt := Style{Role: color.RolePoint}
	for _, np := range []struct {
		name string
		at   mgl64.Vec3
	}{{"O", p.O}, {"A", p.A}, {"A'", p.APrime}, {"M", p.M}, {"P", p.P}} {
		label := ""
		if c.Labels {
			label = np.name
		}
		out.AddPoint(np.name, np.at, label, pt)
	}
	return &out, nil
}
