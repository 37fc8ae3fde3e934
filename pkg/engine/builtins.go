package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/color"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/ellipse"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/figure"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/linalg"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/valuerange"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms figure scripts before passing them to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: plane-camera -> plane_camera
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec2 struct{ vec mgl64.Vec2 }

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec[0], v.vec[1])
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct{ vec mgl64.Vec3 }

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpPlane3 struct{ plane linalg.Plane3 }

func (p *sexpPlane3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane %v %v)", p.plane.XHat, p.plane.YHat)
}
func (p *sexpPlane3) Type() *zygo.RegisteredType { return nil }

type sexpPlane2 struct{ plane linalg.Plane2 }

func (p *sexpPlane2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane %v %v)", p.plane.XHat, p.plane.YHat)
}
func (p *sexpPlane2) Type() *zygo.RegisteredType { return nil }

// sexpCamera3 wraps either kind of 3-D camera.
type sexpCamera3 struct {
	cam  camera.Camera3
	kind string
}

func (c *sexpCamera3) SexpString(ps *zygo.PrintState) string { return "(" + c.kind + ")" }
func (c *sexpCamera3) Type() *zygo.RegisteredType           { return nil }

type sexpCamera2 struct{ cam *camera.PlaneCamera2 }

func (c *sexpCamera2) SexpString(ps *zygo.PrintState) string { return "(plane-camera2)" }
func (c *sexpCamera2) Type() *zygo.RegisteredType           { return nil }

type sexpArc3 struct{ arc figure.Arc3 }

func (a *sexpArc3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(arc %q %gx%g)", a.arc.ID, a.arc.Arc.SemiXAxis, a.arc.Arc.SemiYAxis)
}
func (a *sexpArc3) Type() *zygo.RegisteredType { return nil }

type sexpArc2 struct{ arc figure.Arc2 }

func (a *sexpArc2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(arc2 %q %gx%g)", a.arc.ID, a.arc.Arc.SemiXAxis, a.arc.Arc.SemiYAxis)
}
func (a *sexpArc2) Type() *zygo.RegisteredType { return nil }

type sexpSegment struct{ seg figure.Segment }

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment %v %v)", s.seg.From, s.seg.To)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

type sexpPoint struct{ pt figure.Point }

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %v :label %q)", p.pt.At, p.pt.Label)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

type sexpConstruction struct{ c *figure.Construction }

func (c *sexpConstruction) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(construction :angle %g)", c.c.AngleOAPDeg)
}
func (c *sexpConstruction) Type() *zygo.RegisteredType { return nil }

type sexpFigure struct{ fig *figure.Figure }

func (f *sexpFigure) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(figure %q)", f.fig.Name)
}
func (f *sexpFigure) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// argReader reads keyword values with defaults. The first conversion error
// sticks; later reads return their defaults.
type argReader struct {
	kwArgs
	err error
}

func readArgs(args []zygo.Sexp) *argReader {
	return &argReader{kwArgs: parseArgs(args)}
}

func (r *argReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (r *argReader) has(key string) bool {
	_, ok := r.kw[key]
	return ok
}

func (r *argReader) float(key string, def float64) float64 {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	f, err := toFloat64(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return f
}

func (r *argReader) int(key string, def int) int {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	i, ok := v.(*zygo.SexpInt)
	if !ok {
		r.fail(key, fmt.Errorf("expected integer, got %T (%s)", v, v.SexpString(nil)))
		return def
	}
	return int(i.Val)
}

func (r *argReader) str(key, def string) string {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	s, err := toKeywordString(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return s
}

// bool treats a trailing flag keyword as true.
func (r *argReader) bool(key string, def bool) bool {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	if v == zygo.SexpNull {
		return true
	}
	b, ok := v.(*zygo.SexpBool)
	if !ok {
		r.fail(key, fmt.Errorf("expected boolean, got %T (%s)", v, v.SexpString(nil)))
		return def
	}
	return b.Val
}

func (r *argReader) vec3(key string, def mgl64.Vec3) mgl64.Vec3 {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	vec, err := toVec3(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return vec
}

func (r *argReader) vec2(key string, def mgl64.Vec2) mgl64.Vec2 {
	v, ok := r.kw[key]
	if !ok {
		return def
	}
	vec, err := toVec2(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return vec
}

// style reads the stroke keywords shared by every element.
func (r *argReader) style() figure.Style {
	s := figure.Style{
		Role:   r.str("role", ""),
		Color:  r.str("color", ""),
		Width:  r.float("width", 0),
		Dashed: r.bool("dashed", false),
	}
	if s.Color != "" {
		if _, err := color.FromCSSColor(s.Color); err != nil {
			r.fail("color", err)
		}
	}
	return s
}

// degRange reads :from and :to in degrees with either :steps or
// :step-deg.
func (r *argReader) degRange(from, to float64) valuerange.ValueRange {
	from, to = r.float("from", from), r.float("to", to)
	var (
		rng valuerange.ConstStepRange
		err error
	)
	if r.has("step-deg") {
		rng, err = valuerange.RadRangeFromStartEndDegStepDeg(from, to, r.float("step-deg", 0))
	} else {
		rng, err = valuerange.RadRangeFromStartEndDegStepCount(from, to, r.int("steps", 64))
	}
	if err != nil {
		r.fail("range", err)
		return nil
	}
	return rng
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_circle) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toVec2(s zygo.Sexp) (mgl64.Vec2, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return mgl64.Vec2{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

func numbers(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// collector receives the figures a script defines, in order.
type collector struct {
	figures []*figure.Figure
	names   map[string]bool
	page    Page
	opts    []camera.Option
}

// registerBuiltins installs the figure DSL builtins into a zygomys
// environment. Every (figure ...) form appends to c.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// -----------------------------------------------------------------------
	// (vec2 1 2) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := numbers("vec2", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{vec: mgl64.Vec2{v[0], v[1]}}, nil
	})
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := numbers("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: mgl64.Vec3{v[0], v[1], v[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane (vec3 1 0 0) (vec3 0 1 0) :rotate-deg 30)
	// (plane (vec2 1 0) (vec2 0 1))
	//
	// A 3-D plane may be turned about its own normal by :rotate-deg.
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		if len(r.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("plane requires two direction vectors, got %d", len(r.positional))
		}
		rotate := mgl64.DegToRad(r.float("rotate-deg", 0))
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", r.err)
		}
		if x, err := toVec2(r.positional[0]); err == nil {
			y, err := toVec2(r.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: y: %w", err)
			}
			if math.Abs(linalg.Cross2(x, y)) <= linalg.DefaultEps*x.Len()*y.Len() {
				return zygo.SexpNull, fmt.Errorf("plane: %w", linalg.ErrDegenerateBasis)
			}
			p := linalg.Plane2{XHat: x, YHat: y}
			p.Rotate(rotate)
			return &sexpPlane2{plane: p}, nil
		}
		x, err := toVec3(r.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: x: %w", err)
		}
		y, err := toVec3(r.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: y: %w", err)
		}
		p, err := linalg.NewPlane3(x, y)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		if rotate != 0 {
			p.Rotate(p.ZHat(), rotate)
		}
		return &sexpPlane3{plane: p}, nil
	})

	// -----------------------------------------------------------------------
	// (arc :center (vec3 0 0 0) :plane p :rx 1 :ry 1 :from 0 :to 180
	//      :steps 32 :id "base" :role :circle :dashed true)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		plane := linalg.XYPlane3
		if v, ok := r.kw["plane"]; ok {
			p, ok := v.(*sexpPlane3)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("arc: plane: expected 3-D plane, got %s", v.SexpString(nil))
			}
			plane = p.plane
		}
		a := figure.Arc3{
			ID: r.str("id", ""),
			Arc: ellipse.Arc3{
				Origin:        r.vec3("center", mgl64.Vec3{}),
				Plane:         plane,
				CircularAngle: r.degRange(0, 360),
				SemiXAxis:     r.float("rx", 1),
				SemiYAxis:     r.float("ry", r.float("rx", 1)),
			},
			Style: r.style(),
		}
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", r.err)
		}
		return &sexpArc3{arc: a}, nil
	})

	// -----------------------------------------------------------------------
	// (arc2 :center (vec2 0 0) :plane p2 :rx 2 :ry 1 :from 0 :to 90)
	// -----------------------------------------------------------------------
	env.AddFunction("arc2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		plane := linalg.StandardPlane2
		if v, ok := r.kw["plane"]; ok {
			p, ok := v.(*sexpPlane2)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("arc2: plane: expected 2-D plane, got %s", v.SexpString(nil))
			}
			plane = p.plane
		}
		a := figure.Arc2{
			ID: r.str("id", ""),
			Arc: ellipse.Arc2{
				Origin:        r.vec2("center", mgl64.Vec2{}),
				Plane:         plane,
				CircularAngle: r.degRange(0, 360),
				SemiXAxis:     r.float("rx", 1),
				SemiYAxis:     r.float("ry", r.float("rx", 1)),
			},
			Style: r.style(),
		}
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("arc2: %w", r.err)
		}
		return &sexpArc2{arc: a}, nil
	})

	// -----------------------------------------------------------------------
	// (segment (vec3 0 0 0) (vec3 1 0 0) :id "OA")
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		if len(r.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("segment requires two endpoints, got %d", len(r.positional))
		}
		from, err := toVec3(r.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: from: %w", err)
		}
		to, err := toVec3(r.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: to: %w", err)
		}
		s := figure.Segment{ID: r.str("id", ""), From: from, To: to, Style: r.style()}
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("segment: %w", r.err)
		}
		return &sexpSegment{seg: s}, nil
	})

	// -----------------------------------------------------------------------
	// (point (vec3 1 0 0) :label "A")
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		if len(r.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("point requires one position, got %d", len(r.positional))
		}
		at, err := toVec3(r.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		label := r.str("label", "")
		p := figure.Point{ID: r.str("id", label), At: at, Label: label, Style: r.style()}
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", r.err)
		}
		return &sexpPoint{pt: p}, nil
	})

	// -----------------------------------------------------------------------
	// (perspective-camera :eye (vec3 4 -12 9) :target (vec3 0 0 0)
	//                     :up (vec3 0 0 1) :focal 3)
	// -----------------------------------------------------------------------
	env.AddFunction("perspective_camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		eye := r.vec3("eye", mgl64.Vec3{0, 0, 10})
		target := r.vec3("target", mgl64.Vec3{})
		up := r.vec3("up", mgl64.Vec3{0, 0, 1})
		focal := r.float("focal", 1)
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("perspective-camera: %w", r.err)
		}
		cam, err := camera.LookAt(eye, target, up, focal, c.opts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("perspective-camera: %w", err)
		}
		return &sexpCamera3{cam: cam, kind: "perspective-camera"}, nil
	})

	// -----------------------------------------------------------------------
	// (plane-camera :center (vec3 0 0 0) :plane p :scale 100)
	// (plane-camera :plane p :sx 100 :sy 50)
	// -----------------------------------------------------------------------
	env.AddFunction("plane_camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		plane := linalg.XYPlane3
		if v, ok := r.kw["plane"]; ok {
			p, ok := v.(*sexpPlane3)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("plane-camera: plane: expected 3-D plane, got %s", v.SexpString(nil))
			}
			plane = p.plane
		}
		center := r.vec3("center", mgl64.Vec3{})
		scale := r.float("scale", 1)
		sx, sy := r.float("sx", scale), r.float("sy", scale)
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-camera: %w", r.err)
		}
		cam, err := camera.NewPlaneCamera(center, plane, sx, sy, c.opts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-camera: %w", err)
		}
		return &sexpCamera3{cam: cam, kind: "plane-camera"}, nil
	})

	// -----------------------------------------------------------------------
	// (plane-camera2 :sx 100 :sy -100 :tx 200 :ty 150)
	// -----------------------------------------------------------------------
	env.AddFunction("plane_camera2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		scale := r.float("scale", 1)
		sx, sy := r.float("sx", scale), r.float("sy", scale)
		tx, ty := r.float("tx", 0), r.float("ty", 0)
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-camera2: %w", r.err)
		}
		cam, err := camera.ScaleTranslateCamera2(sx, sy, tx, ty)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane-camera2: %w", err)
		}
		return &sexpCamera2{cam: cam}, nil
	})

	// -----------------------------------------------------------------------
	// (construction :angle 30 :ratio 0.5 :diameter 1 :labels false)
	// -----------------------------------------------------------------------
	env.AddFunction("construction", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		cons := figure.NewConstruction(r.float("angle", 0))
		cfg := &cons.Config
		cfg.Diameter = r.float("diameter", cfg.Diameter)
		cfg.Ratio = r.float("ratio", cfg.Ratio)
		cfg.CylinderHeight = r.float("cylinder-height", cfg.CylinderHeight)
		cfg.ConeLength = r.float("cone-length", cfg.ConeLength)
		cfg.CircleSteps = r.int("circle-steps", cfg.CircleSteps)
		cons.Labels = r.bool("labels", true)
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("construction: %w", r.err)
		}
		if err := cfg.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("construction: %w", err)
		}
		if !(cons.AngleOAPDeg >= 0 && cons.AngleOAPDeg <= 90) {
			return zygo.SexpNull, fmt.Errorf("construction: angle %g outside [0, 90]", cons.AngleOAPDeg)
		}
		return &sexpConstruction{c: cons}, nil
	})

	// -----------------------------------------------------------------------
	// (figure "name" :width 400 :height 300 :camera cam elem...)
	//
	// The page size defaults to the engine's Page.
	//
	// Elements may also be passed as lists.
	// -----------------------------------------------------------------------
	env.AddFunction("figure", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := readArgs(args)
		if len(r.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("figure requires a name argument")
		}
		figName, err := toString(r.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("figure: name: %w", err)
		}
		if c.names[figName] {
			return zygo.SexpNull, fmt.Errorf("figure: duplicate figure name %q", figName)
		}

		f := figure.New(figName, r.float("width", c.page.Width), r.float("height", c.page.Height))
		f.Margin = r.float("margin", c.page.Margin)
		if r.err != nil {
			return zygo.SexpNull, fmt.Errorf("figure: %w", r.err)
		}
		if v, ok := r.kw["camera"]; ok {
			cam, ok := v.(*sexpCamera3)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("figure: camera: expected 3-D camera, got %s", v.SexpString(nil))
			}
			f.Camera = cam.cam
		}
		if v, ok := r.kw["camera2"]; ok {
			cam, ok := v.(*sexpCamera2)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("figure: camera2: expected plane-camera2, got %s", v.SexpString(nil))
			}
			f.Camera2 = cam.cam
		}

		for i, item := range r.positional[1:] {
			if err := addElement(f, item); err != nil {
				return zygo.SexpNull, fmt.Errorf("figure %s: element %d: %w", figName, i+1, err)
			}
		}

		c.names[figName] = true
		c.figures = append(c.figures, f)
		return &sexpFigure{fig: f}, nil
	})
}

// addElement appends one element, or every element of a list, to f.
func addElement(f *figure.Figure, item zygo.Sexp) error {
	switch v := item.(type) {
	case *sexpArc3:
		f.AddArc3(v.arc.ID, v.arc.Arc, v.arc.Style)
	case *sexpArc2:
		f.AddArc2(v.arc.ID, v.arc.Arc, v.arc.Style)
	case *sexpSegment:
		f.AddSegment(v.seg.ID, v.seg.From, v.seg.To, v.seg.Style)
	case *sexpPoint:
		f.AddPoint(v.pt.ID, v.pt.At, v.pt.Label, v.pt.Style)
	case *sexpConstruction:
		if f.Construction != nil {
			return fmt.Errorf("more than one construction")
		}
		f.Construction = v.c
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(item)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := addElement(f, it); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("expected figure element, got %T (%s)", item, item.SexpString(nil))
	}
	return nil
}
