package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/archytas"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/config"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/engine"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/kernel/sdfx"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/render"
)

// App ties the figure engine, the construction model and the reference
// kernel together. Every CLI command goes through it.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	engine   *engine.Engine
	kernel   kernel.Kernel
	model    *archytas.Model
	theme    *color.Theme
	renderer *render.Renderer
}

// MeshData is the JSON mesh format: the drawn part of one kernel mesh with
// its theme color.
type MeshData struct {
	Group     string     `json:"group"`
	Name      string     `json:"name"`
	Mode      string     `json:"mode"`
	Vertices  []float32  `json:"vertices"`
	Normals   []float32  `json:"normals"`
	Indices   []uint32   `json:"indices"`
	Transform mgl64.Mat4 `json:"transform"`
	Color     string     `json:"color"`
}

// SolutionData reports where the cone meets the torus-cylinder curve.
type SolutionData struct {
	AngleOAPDeg float64 `json:"angleOAPDeg"`
	OP          float64 `json:"op"`
	OM          float64 `json:"om"`
}

// SceneData is the construction at the current angle.
type SceneData struct {
	AngleOAPDeg float64           `json:"angleOAPDeg"`
	Meshes      []MeshData        `json:"meshes"`
	Anchors     []archytas.Anchor `json:"anchors"`
	Solution    SolutionData      `json:"solution"`
	Reference   []MeshData        `json:"reference,omitempty"`
}

// EvalErrorData is a script error with its source position.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalWarningData is a validation warning for one figure element.
type EvalWarningData struct {
	Figure  string `json:"figure"`
	Element string `json:"element,omitempty"`
	Message string `json:"message"`
}

// FigureData is one rendered figure.
type FigureData struct {
	Name string `json:"name"`
	SVG  string `json:"svg"`
}

// EvalResult is everything Evaluate produced.
type EvalResult struct {
	Figures  []FigureData      `json:"figures"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalWarningData `json:"warnings"`
}

// NewApp creates an App from validated settings, with the sdfx reference
// kernel.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	theme, err := cfg.Theme.Build()
	if err != nil {
		return nil, err
	}
	model, err := archytas.NewModel(cfg.Model, archytas.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		engine: engine.NewEngine(
			engine.WithLogger(logger),
			engine.WithTimeout(time.Duration(cfg.Engine.Timeout)),
			engine.WithPage(engine.Page{Width: cfg.Render.Width, Height: cfg.Render.Height, Margin: cfg.Render.Margin}),
		),
		kernel: sdfx.New(),
		model:  model,
		theme:  theme,
		renderer: render.NewRenderer(
			render.WithTheme(theme),
			render.WithLogger(logger),
			render.WithEps(cfg.Projector.Eps),
			render.WithPointRadius(cfg.Render.PointRadius),
		),
	}, nil
}

// Close releases the renderer's theme subscription.
func (a *App) Close() { a.renderer.Close() }

// Theme returns the theme figures and meshes are colored with.
func (a *App) Theme() *color.Theme { return a.theme }

// Evaluate runs a figure script and renders every figure it defines.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Figures:  []FigureData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalWarningData{},
	}

	res, err := a.engine.Evaluate(source)
	if err != nil {
		// Timeouts, panics and superseded evaluations.
		a.logger.Error("evaluate failed", slog.String("error", err.Error()))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	result.Warnings = lo.Map(res.Warnings, func(w engine.EvalWarning, _ int) EvalWarningData {
		return EvalWarningData{Figure: w.Figure, Element: w.Element, Message: w.Message}
	})
	if len(res.Errors) > 0 {
		result.Errors = lo.Map(res.Errors, func(e engine.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})
		return result
	}

	for _, f := range res.Figures {
		var buf bytes.Buffer
		if err := a.renderer.SVG(&buf, f); err != nil {
			a.logger.Error("render failed", slog.String("figure", f.Name), slog.String("error", err.Error()))
			result.Errors = append(result.Errors, EvalErrorData{Message: fmt.Sprintf("figure %s: %v", f.Name, err)})
			continue
		}
		result.Figures = append(result.Figures, FigureData{Name: f.Name, SVG: buf.String()})
	}
	return result
}

// SetAngleOAP moves the construction to deg degrees and reports whether
// it changed. Angles outside [0°, 90°] are logged and ignored.
func (a *App) SetAngleOAP(deg float64) bool {
	return a.model.SetAngleOAP(mgl64.DegToRad(deg))
}

// AngleOAP is the current control angle in degrees.
func (a *App) AngleOAP() float64 { return mgl64.RadToDeg(a.model.AngleOAP()) }

// Solution returns the solving angle and the two mean proportionals.
func (a *App) Solution() SolutionData {
	s := a.model.Solution()
	return SolutionData{AngleOAPDeg: mgl64.RadToDeg(s.AngleOAP), OP: s.OP, OM: s.OM}
}

// Scene returns the tessellated construction at the current angle.
func (a *App) Scene() SceneData {
	var meshes []MeshData
	for _, g := range a.model.Groups() {
		for _, m := range g.Meshes {
			if d, ok := a.meshData(g.Name, m); ok {
				meshes = append(meshes, d)
			}
		}
	}
	return SceneData{
		AngleOAPDeg: a.AngleOAP(),
		Meshes:      meshes,
		Anchors:     a.model.Anchors(),
		Solution:    a.Solution(),
	}
}

// ReferenceMeshes builds the torus, cylinder, cone and their common
// region as exact solids and meshes them by marching cubes.
func (a *App) ReferenceMeshes(cells int) ([]MeshData, error) {
	torus, cylinder, cone := a.model.Reference(a.kernel)
	solids := []struct {
		name     string
		material string
		solid    kernel.Solid
	}{
		{"torus", archytas.MaterialTorus, torus},
		{"cylinder", archytas.MaterialCylinder, cylinder},
		{"cone", archytas.MaterialCone, cone},
		{"common", color.RoleStroke, a.model.Common(a.kernel)},
	}
	var out []MeshData
	for _, s := range solids {
		start := time.Now()
		m, err := a.kernel.ToMesh(s.solid, cells)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", s.name, err)
		}
		m.Name = s.name
		m.Material = s.material
		a.logger.Debug("meshed reference solid", slog.String("solid", s.name),
			slog.Int("triangles", m.TriangleCount()), slog.Duration("elapsed", time.Since(start)))
		if d, ok := a.meshData("reference", m); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Residual is the distance of the current P from the surface common to
// the reference solids.
func (a *App) Residual() float64 {
	r := a.model.IntersectionResidual(a.kernel)
	if math.IsNaN(r) {
		return math.Inf(1)
	}
	return r
}

// meshData converts the drawn part of m. Hidden and empty meshes are
// skipped.
func (a *App) meshData(group string, m *kernel.Mesh) (MeshData, bool) {
	if m == nil || m.IsEmpty() {
		return MeshData{}, false
	}
	idx := m.DrawnIndices()
	if len(idx) == 0 {
		return MeshData{}, false
	}
	return MeshData{
		Group:     group,
		Name:      m.Name,
		Mode:      m.Mode.String(),
		Vertices:  m.Vertices,
		Normals:   m.Normals,
		Indices:   append([]uint32(nil), idx...),
		Transform: m.Transform,
		Color:     a.theme.Color(m.Material).ToCSSHex(),
	}, true
}
