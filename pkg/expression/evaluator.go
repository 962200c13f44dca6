package expression

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/scope"
)

// Result is the outcome of a raw evaluation: either a value or a failure.
type Result struct {
	Value any
	Err   error
}

// OK reports whether the evaluation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Evaluator applies the collapse policy on top of an Engine.
type Evaluator struct {
	engine Engine
	sink   Sink
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSink routes warnings to sink.
func WithSink(sink Sink) Option {
	return func(e *Evaluator) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// NewEvaluator wraps engine. Warnings go to slog.Default unless WithSink is
// supplied.
func NewEvaluator(engine Engine, options ...Option) *Evaluator {
	e := &Evaluator{engine: engine, sink: NewLogSink(nil)}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Engine returns the wrapped engine.
func (e *Evaluator) Engine() Engine {
	return e.engine
}

// Evaluate runs expression and never panics: engine panics are recovered
// into failures.
func (e *Evaluator) Evaluate(expression string, ctx scope.Context) (result Result) {
	if e == nil || e.engine == nil {
		return Result{Err: errors.New("expression: no engine configured")}
	}
	if strings.TrimSpace(expression) == "" {
		return Result{Err: errors.New("expression: empty expression")}
	}
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: fmt.Errorf("expression: engine panic: %v", r)}
		}
	}()
	value, err := e.engine.Evaluate(expression, ctx.Vars())
	if err != nil {
		return Result{Err: err}
	}
	return Result{Value: value}
}

// EvaluateTri evaluates a boolean expression without collapsing it.
// Failures and wrong-kind results are reported and map to False; Unknown is
// returned without a warning.
func (e *Evaluator) EvaluateTri(expression string, ctx scope.Context) Tri {
	return e.tri(expression, ctx, false)
}

// EvaluateBoolean evaluates and narrows through Tri.Collapse, warning when
// an unknown result is collapsed to false.
func (e *Evaluator) EvaluateBoolean(expression string, ctx scope.Context) bool {
	return e.tri(expression, ctx, true).Collapse()
}

func (e *Evaluator) tri(expression string, ctx scope.Context, warnUnknown bool) Tri {
	res := e.Evaluate(expression, ctx)
	if !res.OK() {
		e.warnFailure(expression, res.Err)
		return False
	}
	tri, ok := TriOf(res.Value)
	if !ok {
		e.warnWrongKind(expression, res.Value, "boolean")
		return False
	}
	if tri == Unknown && warnUnknown {
		e.emit(Warning{
			Kind:       WarningUnknown,
			Expression: expression,
			Message: fmt.Sprintf("expression %q returned null (unknown); treating as false. "+
				"Guard optional values with null-safe checks such as `x != nil and ...` or `x ?? default`", expression),
		})
	}
	return tri
}

// EvaluateNumber narrows a successful numeric result. nil means null.
func (e *Evaluator) EvaluateNumber(expression string, ctx scope.Context) *float64 {
	res := e.Evaluate(expression, ctx)
	if !res.OK() {
		e.warnFailure(expression, res.Err)
		return nil
	}
	if res.Value == nil {
		return nil
	}
	n, ok := toFloat(res.Value)
	if !ok {
		e.warnWrongKind(expression, res.Value, "number")
		return nil
	}
	return &n
}

// EvaluateString narrows a successful string result. nil means null.
func (e *Evaluator) EvaluateString(expression string, ctx scope.Context) *string {
	res := e.Evaluate(expression, ctx)
	if !res.OK() {
		e.warnFailure(expression, res.Err)
		return nil
	}
	if res.Value == nil {
		return nil
	}
	s, ok := res.Value.(string)
	if !ok {
		e.warnWrongKind(expression, res.Value, "string")
		return nil
	}
	return &s
}

// EvaluateValue returns the raw result, collapsing failures to nil with a
// warning. Unknown results are returned as nil without a warning.
func (e *Evaluator) EvaluateValue(expression string, ctx scope.Context) any {
	res := e.Evaluate(expression, ctx)
	if !res.OK() {
		e.warnFailure(expression, res.Err)
		return nil
	}
	return res.Value
}

// EvaluateBooleanBatch applies EvaluateBoolean to every entry. Entries are
// evaluated in key order so warning emission is deterministic.
func (e *Evaluator) EvaluateBooleanBatch(expressions map[string]string, ctx scope.Context) map[string]bool {
	out := make(map[string]bool, len(expressions))
	keys := make([]string, 0, len(expressions))
	for key := range expressions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out[key] = e.EvaluateBoolean(expressions[key], ctx)
	}
	return out
}

// ValidateExpression returns a *SyntaxError for unparsable expressions and
// nil otherwise, including for expressions that would only fail at runtime.
func (e *Evaluator) ValidateExpression(expression string) error {
	if e == nil || e.engine == nil {
		return errors.New("expression: no engine configured")
	}
	if strings.TrimSpace(expression) == "" {
		return &SyntaxError{Expression: expression, Err: errors.New("empty expression")}
	}
	err := e.engine.Check(expression)
	if err == nil {
		return nil
	}
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr
	}
	return nil
}

// IsValidExpression reports whether expression parses.
func (e *Evaluator) IsValidExpression(expression string) bool {
	return e.ValidateExpression(expression) == nil
}

func (e *Evaluator) warnFailure(expression string, err error) {
	e.emit(Warning{
		Kind:       WarningFailure,
		Expression: expression,
		Message:    fmt.Sprintf("expression %q failed to evaluate: %v", expression, err),
	})
}

func (e *Evaluator) warnWrongKind(expression string, value any, want string) {
	e.emit(Warning{
		Kind:       WarningWrongKind,
		Expression: expression,
		Message:    fmt.Sprintf("expression %q returned %T (%v), expected %s", expression, value, value, want),
	})
}

func (e *Evaluator) emit(w Warning) {
	if e.sink == nil {
		return
	}
	defer func() { _ = recover() }()
	e.sink.Warn(w)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
