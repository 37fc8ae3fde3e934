package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func mustEvaluate(t *testing.T, source string) *EvalResult {
	t.Helper()
	res, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
	return res
}

func TestEvaluateEmptyString(t *testing.T) {
	res := mustEvaluate(t, "")
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if res.Figures == nil {
		t.Fatal("expected non-nil figure list")
	}
	if len(res.Figures) != 0 {
		t.Errorf("expected no figures, got %d", len(res.Figures))
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	res := mustEvaluate(t, "   \n\t  \n  ")
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if res.Figures == nil || len(res.Figures) != 0 {
		t.Errorf("expected an empty figure list, got %v", res.Figures)
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	// Plain arithmetic is a valid script that defines no figures.
	res := mustEvaluate(t, "(+ 1 2)")
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if len(res.Figures) != 0 {
		t.Errorf("expected no figures, got %d", len(res.Figures))
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	res := mustEvaluate(t, "(+ 1 2)\n(* 3 4)\n(- 10 5)")
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	// Unmatched paren is a parse error.
	res := mustEvaluate(t, "(+ 1 2")
	if res.Figures != nil {
		t.Fatal("expected nil figures on syntax error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if res.Errors[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	res := mustEvaluate(t, "(+ 1 undefined-symbol)")
	if res.Figures != nil {
		t.Fatal("expected nil figures on eval error")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	// Put the error on line 2.
	res := mustEvaluate(t, "(+ 1 2)\n(+ 3")
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info may or may not be available depending on the error format;
	// we just check the error is populated.
	e := res.Errors[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	if s2 := e2.Error(); strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `(figure "f" (arc2 :rx 2 :ry 1 :from 0 :to 90 :steps 3))`

	for i := 0; i < 5; i++ {
		res, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(res.Errors) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, res.Errors)
		}
		if len(res.Figures) != 1 || len(res.Figures[0].Arcs2) != 1 {
			t.Fatalf("iteration %d: expected one figure with one arc, got %+v", i, res.Figures)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never sends stands in for a runaway script.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	start := time.Now()
	_, err := waitWithTimeout(ch, 1, &mu, &gen, 20*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestWithTimeout(t *testing.T) {
	if got := NewEngine().timeout; got != EvalTimeout {
		t.Errorf("default timeout = %s", got)
	}
	if got := NewEngine(WithTimeout(time.Second)).timeout; got != time.Second {
		t.Errorf("timeout = %s", got)
	}
	if got := NewEngine(WithTimeout(-1)).timeout; got != EvalTimeout {
		t.Errorf("negative timeout should be ignored, got %s", got)
	}
}

func TestWithPage(t *testing.T) {
	e := NewEngine(WithPage(Page{Width: 800, Height: 600, Margin: 20}))
	res, err := e.Evaluate(`(figure "a" (arc2 :rx 1)) (figure "b" :width 100 (arc2 :rx 1))`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	a, b := res.Figures[0], res.Figures[1]
	if a.Width != 800 || a.Height != 600 || a.Margin != 20 {
		t.Errorf("a = %gx%g margin %g", a.Width, a.Height, a.Margin)
	}
	if b.Width != 100 || b.Height != 600 {
		t.Errorf("b = %gx%g", b.Width, b.Height)
	}
	if got := NewEngine(WithPage(Page{Width: -1, Height: 1})).page; got != DefaultPage {
		t.Errorf("invalid page should be ignored, got %+v", got)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, err := waitWithTimeout(ch, 1, &mu, &gen, EvalTimeout)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: figure: duplicate figure name",
			wantLine: 3,
			wantMsg:  "duplicate figure name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
