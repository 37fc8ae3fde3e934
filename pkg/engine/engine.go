// Package engine evaluates figure scripts. It wraps zygomys in a
// sandboxed environment whose builtins describe cameras, arcs, segments,
// points and the Archytas construction, and collects the figures a script
// defines.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/pavpen/archytas-and-the-delian-problem/pkg/camera"
	"github.com/pavpen/archytas-and-the-delian-problem/pkg/figure"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a figure that
// fails validation.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Figure  string
	Element string
	Message string
}

// EvalResult bundles the full output of an evaluation. Figures is nil
// whenever Errors is not empty.
type EvalResult struct {
	Figures  []*figure.Figure
	Errors   []EvalError
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to the cameras a script builds.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Page is the page size figures get when a script does not set one.
type Page struct {
	Width, Height, Margin float64
}

// DefaultPage is used unless WithPage overrides it.
var DefaultPage = Page{Width: 400, Height: 300, Margin: figure.DefaultMargin}

// WithPage sets the default page size. Non-positive sizes are ignored.
func WithPage(p Page) Option {
	return func(e *Engine) {
		if p.Width > 0 && p.Height > 0 && p.Margin >= 0 {
			e.page = p
		}
	}
}

// Engine wraps the zygomys interpreter for figure evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	page       Page
	logger     *slog.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout, page: DefaultPage, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a figure script and returns the figures it defines.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns a result with figures and no errors, nil error
//   - On parse/eval/validation failure: returns a result with errors, nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + error
func (e *Engine) Evaluate(source string) (*EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, err := e.evaluate(source)
		ch <- evalResult{result: res, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*EvalResult, error) {
	// Empty source is a valid program that defines no figures.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{Figures: []*figure.Figure{}}, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	c := &collector{names: map[string]bool{}, page: e.page, opts: []camera.Option{camera.WithLogger(e.logger)}}
	registerBuiltins(env, c)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}, nil
	}
	if _, err := env.Run(); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}, nil
	}

	res := &EvalResult{Figures: c.figures}
	if res.Figures == nil {
		res.Figures = []*figure.Figure{}
	}
	for _, f := range c.figures {
		findings := figure.Validate(f)
		for _, w := range figure.Warnings(findings) {
			res.Warnings = append(res.Warnings, EvalWarning{Figure: f.Name, Element: w.Element, Message: w.Message})
		}
		if err := figure.Err(findings); err != nil {
			res.Errors = append(res.Errors, EvalError{Message: fmt.Sprintf("figure %s: %v", f.Name, err)})
		}
	}
	if len(res.Errors) > 0 {
		res.Figures = nil
	}
	return res, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
