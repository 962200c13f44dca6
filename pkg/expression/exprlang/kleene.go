package exprlang

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

const (
	fnAnd     = "__kleene_and"
	fnOr      = "__kleene_or"
	fnNot     = "__kleene_not"
	fnCompare = "__kleene_cmp"
	fnUnknown = "__kleene_unknown"
)

// nilPropagating lists operators and built-ins that yield nil when any
// operand is nil instead of failing.
var (
	nilPropagatingOperators = map[string]struct{}{
		"+": {}, "-": {}, "*": {}, "/": {}, "%": {}, "**": {}, "^": {},
		"contains": {}, "startsWith": {}, "endsWith": {}, "matches": {},
	}
	nilPropagatingBuiltins = map[string]struct{}{
		"len": {}, "abs": {}, "ceil": {}, "floor": {}, "round": {},
		"upper": {}, "lower": {}, "trim": {}, "trimPrefix": {}, "trimSuffix": {},
		"hasPrefix": {}, "hasSuffix": {}, "split": {}, "int": {}, "float": {},
		"string": {}, "max": {}, "min": {}, "sum": {}, "mean": {}, "median": {},
	}
)

type kleenePatcher struct{}

func (kleenePatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.BinaryNode:
		switch n.Operator {
		case "<", ">", "<=", ">=":
			ast.Patch(node, call(fnCompare, &ast.StringNode{Value: n.Operator}, n.Left, n.Right))
		case "and", "&&":
			ast.Patch(node, &ast.ConditionalNode{
				Cond: equals(n.Left, &ast.BoolNode{Value: false}),
				Exp1: &ast.BoolNode{Value: false},
				Exp2: call(fnAnd, n.Left, n.Right),
			})
		case "or", "||":
			ast.Patch(node, &ast.ConditionalNode{
				Cond: equals(n.Left, &ast.BoolNode{Value: true}),
				Exp1: &ast.BoolNode{Value: true},
				Exp2: call(fnOr, n.Left, n.Right),
			})
		default:
			if _, ok := nilPropagatingOperators[n.Operator]; ok {
				ast.Patch(node, nilGuard(n, n.Left, n.Right))
			}
		}
	case *ast.UnaryNode:
		switch n.Operator {
		case "not", "!":
			ast.Patch(node, call(fnNot, n.Node))
		case "-", "+":
			ast.Patch(node, nilGuard(n, n.Node))
		}
	case *ast.BuiltinNode:
		if _, ok := nilPropagatingBuiltins[n.Name]; !ok {
			return
		}
		for _, arg := range n.Arguments {
			if _, predicate := arg.(*ast.PredicateNode); predicate {
				return
			}
		}
		if len(n.Arguments) > 0 {
			ast.Patch(node, nilGuard(n, n.Arguments...))
		}
	}
}

func call(name string, args ...ast.Node) ast.Node {
	return &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: name},
		Arguments: args,
	}
}

func equals(left, right ast.Node) ast.Node {
	return &ast.BinaryNode{Operator: "==", Left: left, Right: right}
}

// nilGuard wraps target as `(a == nil || b == nil ...) ? unknown : target`.
// The unknown branch is typed any so `==` never compiles to a typed
// comparison that would assert on the nil result.
func nilGuard(target ast.Node, operands ...ast.Node) ast.Node {
	var cond ast.Node
	for _, operand := range operands {
		check := equals(operand, &ast.NilNode{})
		if cond == nil {
			cond = check
			continue
		}
		cond = &ast.BinaryNode{Operator: "||", Left: cond, Right: check}
	}
	return &ast.ConditionalNode{
		Cond: cond,
		Exp1: call(fnUnknown),
		Exp2: target,
	}
}

func kleeneFunctions() []expr.Option {
	return []expr.Option{
		expr.Function(fnAnd, kleeneAnd),
		expr.Function(fnOr, kleeneOr),
		expr.Function(fnNot, kleeneNot),
		expr.Function(fnCompare, kleeneCompare),
		expr.Function(fnUnknown, kleeneUnknown),
	}
}

type truth int8

const (
	truthUnknown truth = iota
	truthFalse
	truthTrue
)

func truthOf(op string, value any) (truth, error) {
	switch v := value.(type) {
	case nil:
		return truthUnknown, nil
	case bool:
		if v {
			return truthTrue, nil
		}
		return truthFalse, nil
	default:
		return truthUnknown, fmt.Errorf("invalid operation: %s on %T (boolean expected)", op, value)
	}
}

func (t truth) value() any {
	switch t {
	case truthTrue:
		return true
	case truthFalse:
		return false
	default:
		return nil
	}
}

func binaryTruths(op string, params []any) (truth, truth, error) {
	if len(params) != 2 {
		return truthUnknown, truthUnknown, fmt.Errorf("%s expects 2 operands, got %d", op, len(params))
	}
	left, err := truthOf(op, params[0])
	if err != nil {
		return truthUnknown, truthUnknown, err
	}
	right, err := truthOf(op, params[1])
	if err != nil {
		return truthUnknown, truthUnknown, err
	}
	return left, right, nil
}

func kleeneAnd(params ...any) (any, error) {
	left, right, err := binaryTruths("and", params)
	if err != nil {
		return nil, err
	}
	switch {
	case left == truthFalse || right == truthFalse:
		return false, nil
	case left == truthUnknown || right == truthUnknown:
		return nil, nil
	default:
		return true, nil
	}
}

func kleeneOr(params ...any) (any, error) {
	left, right, err := binaryTruths("or", params)
	if err != nil {
		return nil, err
	}
	switch {
	case left == truthTrue || right == truthTrue:
		return true, nil
	case left == truthUnknown || right == truthUnknown:
		return nil, nil
	default:
		return false, nil
	}
}

func kleeneUnknown(...any) (any, error) {
	return nil, nil
}

func kleeneNot(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("not expects 1 operand, got %d", len(params))
	}
	t, err := truthOf("not", params[0])
	if err != nil {
		return nil, err
	}
	switch t {
	case truthTrue:
		return false, nil
	case truthFalse:
		return true, nil
	default:
		return nil, nil
	}
}

func kleeneCompare(params ...any) (any, error) {
	if len(params) != 3 {
		return nil, fmt.Errorf("comparison expects 2 operands, got %d", len(params)-1)
	}
	op, _ := params[0].(string)
	left, right := params[1], params[2]
	if left == nil || right == nil {
		return nil, nil
	}

	cmp, err := order(left, right)
	if err != nil {
		return nil, fmt.Errorf("invalid operation: %T %s %T", left, op, right)
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return nil, fmt.Errorf("unsupported comparison operator %q", op)
	}
}

// order returns -1, 0 or 1 for comparable operand pairs.
func order(left, right any) (int, error) {
	if l, ok := coerceNumber(left); ok {
		r, ok := coerceNumber(right)
		if !ok {
			return 0, errIncomparable
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		if !ok {
			return 0, errIncomparable
		}
		return strings.Compare(l, r), nil
	}
	if l, ok := left.(time.Time); ok {
		r, ok := right.(time.Time)
		if !ok {
			return 0, errIncomparable
		}
		return l.Compare(r), nil
	}
	return 0, errIncomparable
}
