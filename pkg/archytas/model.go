package archytas

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger shared by the model and its solids.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// Model is the whole construction driven by angleOAP.
//
// A Model is not safe for concurrent use.
type Model struct {
	cfg    Config
	logger *slog.Logger
	angle  float64

	Torus            *Torus
	Cylinder         *Cylinder
	Cone             *Cone
	BaseCircle       *BaseCircle
	TransverseCircle *TransverseCircle
}

// NewModel builds every solid and sets angleOAP to 0.
func NewModel(cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	if m.Torus, err = newTorus(cfg, m.logger); err != nil {
		return nil, fmt.Errorf("archytas: torus: %w", err)
	}
	if m.Cylinder, err = newCylinder(cfg, m.logger); err != nil {
		return nil, fmt.Errorf("archytas: cylinder: %w", err)
	}
	if m.Cone, err = newCone(cfg, m.logger); err != nil {
		return nil, fmt.Errorf("archytas: cone: %w", err)
	}
	if m.BaseCircle, err = newBaseCircle(cfg, m.logger); err != nil {
		return nil, fmt.Errorf("archytas: base circle: %w", err)
	}
	if m.TransverseCircle, err = newTransverseCircle(cfg, m.logger); err != nil {
		return nil, fmt.Errorf("archytas: transverse circle: %w", err)
	}
	m.apply(0)
	return m, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// AngleOAP is the current control angle τ.
func (m *Model) AngleOAP() float64 { return m.angle }

// SetAngleOAP moves the construction to control angle τ ∈ [0, π/2] and
// reports whether it changed. Values outside the range are logged and
// ignored.
func (m *Model) SetAngleOAP(tau float64) bool {
	if tau == m.angle {
		return false
	}
	if !(tau >= 0 && tau <= math.Pi/2) {
		m.logger.Error("angleOAP out of range", slog.Float64("value", tau),
			slog.Float64("min", 0), slog.Float64("max", math.Pi/2))
		return false
	}
	m.apply(tau)
	return true
}

// apply fans the control angle out to the five solids. They do not depend
// on each other, and each updates its labels after its geometry.
func (m *Model) apply(tau float64) {
	m.angle = tau
	phi := complement(tau)
	m.Torus.SetToroidalAngle(tau)
	m.Cylinder.SetSecantAngle(tau)
	m.Cone.SetOAPAngleCompliment(phi)
	m.BaseCircle.SetAngleOAPCompliment(phi)
	m.TransverseCircle.SetAngleOAPCompliment(phi)
}

// Points returns the named points at the current angle.
func (m *Model) Points() Points { return PointsAt(m.cfg.Diameter, m.angle) }

// Solution returns where the cone meets the torus-cylinder curve.
func (m *Model) Solution() Solution { return Solve(m.cfg.Diameter, m.cfg.Ratio) }

// Groups returns the renderable groups of every solid.
func (m *Model) Groups() []*kernel.Group {
	return []*kernel.Group{
		m.Torus.Group(),
		m.Cylinder.Group(),
		m.Cone.Group(),
		m.BaseCircle.Group(),
		m.TransverseCircle.Group(),
	}
}

// Anchors returns every label anchor at the current angle.
func (m *Model) Anchors() []Anchor {
	var out []Anchor
	for _, s := range []*solid{m.Torus.solid, m.Cylinder.solid, m.Cone.solid, m.BaseCircle.solid, m.TransverseCircle.solid} {
		out = append(out, s.Anchors()...)
	}
	return out
}

// Arcs returns the base and transverse circle arcs for export.
func (m *Model) Arcs() []ellipse.Arc3 {
	return []ellipse.Arc3{m.BaseCircle.Arc(), m.TransverseCircle.Arc()}
}

// Reference builds the torus, cylinder and cone as exact solids with k.
func (m *Model) Reference(k kernel.Kernel) (torus, cylinder, cone kernel.Solid) {
	d := m.cfg.Diameter
	torus = k.HornTorus(d / 2)
	cylinder = k.Translate(k.Cylinder(m.cfg.CylinderHeight, d/2), d/2, 0, 0)
	halfAngle := math.Acos(m.cfg.Ratio)
	cone = k.Rotate(k.Cone(halfAngle, m.cfg.ConeLength*m.cfg.Ratio), 0, 90, 0)
	return torus, cylinder, cone
}

// BoundingBox returns the bounds of the three solids built with k.
func (m *Model) BoundingBox(k kernel.Kernel) (min, max [3]float64) {
	torus, cylinder, cone := m.Reference(k)
	return k.Union(k.Union(torus, cylinder), cone).BoundingBox()
}

// IntersectionResidual returns the distance of the current P from the
// common surface of the three reference solids. It vanishes at the
// solution angle.
func (m *Model) IntersectionResidual(k kernel.Kernel) float64 {
	torus, cylinder, cone := m.Reference(k)
	p := m.Points().P
	at := [3]float64{p[0], p[1], p[2]}
	return math.Max(math.Abs(torus.Distance(at)),
		math.Max(math.Abs(cylinder.Distance(at)), math.Abs(cone.Distance(at))))
}

// Common returns the region inside all three reference solids. Its
// boundary passes through the solution point.
func (m *Model) Common(k kernel.Kernel) kernel.Solid {
	torus, cylinder, cone := m.Reference(k)
	return k.Intersection(k.Intersection(torus, cylinder), cone)
}
