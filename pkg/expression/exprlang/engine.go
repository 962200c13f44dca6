// Package exprlang adapts github.com/expr-lang/expr to the expression.Engine
// contract.
//
// Programs are compiled with undefined variables allowed and a patcher that
// layers three-valued (Kleene) semantics over the language:
//
//   - relational operators (<, >, <=, >=) return nil when an operand is nil;
//   - and/or/not follow Kleene tables, short-circuiting on a definite left
//     operand;
//   - arithmetic, string operators and simple built-ins propagate nil.
//
// Equality is left untouched, so `x == true` with x unbound is a definite
// false rather than unknown.
package exprlang

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formstate/pkg/expression"
)

// Engine evaluates expr-lang expressions. It caches compiled programs and is
// safe for concurrent use.
type Engine struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

var (
	_ expression.Engine          = (*Engine)(nil)
	_ expression.ReferenceFinder = (*Engine)(nil)
)

// New creates an engine.
func New() *Engine {
	return &Engine{cache: make(map[string]*vm.Program)}
}

// Evaluate compiles (or reuses) expression and runs it against vars.
func (e *Engine) Evaluate(expression string, vars map[string]any) (any, error) {
	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(program, vars)
	if err != nil {
		return nil, fmt.Errorf("exprlang: %w", err)
	}
	return out, nil
}

// Check compiles expression without running it.
func (e *Engine) Check(expression string) error {
	_, err := e.compile(expression)
	return err
}

// References lists the member names read from root, in first-use order.
func (e *Engine) References(input, root string) ([]string, error) {
	tree, err := parser.Parse(input)
	if err != nil {
		return nil, &expression.SyntaxError{Expression: input, Err: err}
	}
	collector := &memberCollector{root: root, seen: map[string]struct{}{}}
	ast.Walk(&tree.Node, collector)
	return collector.names, nil
}

// CacheSize returns the number of cached programs.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Engine) compile(input string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[input]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	options := []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Patch(kleenePatcher{}),
	}
	options = append(options, kleeneFunctions()...)

	prog, err := expr.Compile(input, options...)
	if err != nil {
		return nil, &expression.SyntaxError{Expression: input, Err: err}
	}

	e.mu.Lock()
	e.cache[input] = prog
	e.mu.Unlock()
	return prog, nil
}

type memberCollector struct {
	root  string
	seen  map[string]struct{}
	names []string
}

func (c *memberCollector) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}
	ident, ok := member.Node.(*ast.IdentifierNode)
	if !ok || ident.Value != c.root {
		return
	}
	prop, ok := member.Property.(*ast.StringNode)
	if !ok {
		return
	}
	if _, dup := c.seen[prop.Value]; dup {
		return
	}
	c.seen[prop.Value] = struct{}{}
	c.names = append(c.names, prop.Value)
}
