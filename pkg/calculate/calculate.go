// Package calculate evaluates the computed fields of a specification.
//
// Entries are ordered by their `computed.<name>` references before
// evaluation, so an entry may read a value declared after it. Independent
// entries keep declaration order and each expression runs exactly once per
// call against a context holding the entries evaluated before it. A cycle is
// reported as a *CycleError; its members run in declaration order.
//
// OrderDeclaration selects the plain single pass in declaration order, in
// which a forward reference observes an absent value.
package calculate

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/scope"
)

// Order selects how computed entries are sequenced.
type Order int

const (
	// OrderDependency topologically sorts entries by computed.* references.
	OrderDependency Order = iota
	// OrderDeclaration evaluates entries strictly in declaration order.
	OrderDeclaration
)

// CycleError lists computed names that depend on each other.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("calculate: computed fields form a cycle: %s", strings.Join(e.Names, ", "))
}

// Option configures a calculation.
type Option func(*config)

type config struct {
	order  Order
	logger *slog.Logger
}

// WithOrder selects the evaluation order.
func WithOrder(order Order) Option {
	return func(c *config) {
		c.order = order
	}
}

// WithLogger reports degraded evaluation (cycles) on logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Calculate evaluates every computed field once and returns name→value.
// Indeterminate and failed results are stored as nil.
func Calculate(eval *expression.Evaluator, data map[string]any, spec *form.Specification, options ...Option) map[string]any {
	cfg := config{order: OrderDependency, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if spec == nil || len(spec.Computed) == 0 {
		return map[string]any{}
	}

	order := spec.Computed
	if cfg.order == OrderDependency {
		planned, err := Plan(spec, eval.Engine())
		if err != nil {
			cfg.logger.Warn("computed fields evaluated with unresolved dependencies", slog.String("error", err.Error()))
		}
		order = planned
	}

	results := make(map[string]any, len(order))
	collisions := scope.WithLogger(cfg.logger)
	for _, entry := range order {
		ctx := scope.New(data, results, spec.Reference, collisions)
		collisions = scope.WithCollisionHandler(func(string) {})
		results[entry.Name] = eval.EvaluateValue(entry.Expression, ctx)
	}
	return results
}

var computedRefPattern = regexp.MustCompile(`\bcomputed\.([a-zA-Z_][a-zA-Z0-9_]*)`)

// References lists the computed names expression reads. Engines that
// implement expression.ReferenceFinder are asked first; otherwise a textual
// scan is used.
func References(engine expression.Engine, expr string) []string {
	if finder, ok := engine.(expression.ReferenceFinder); ok {
		if names, err := finder.References(expr, scope.Computed); err == nil {
			return names
		}
	}
	seen := make(map[string]struct{})
	var names []string
	for _, match := range computedRefPattern.FindAllStringSubmatch(expr, -1) {
		if _, dup := seen[match[1]]; dup {
			continue
		}
		seen[match[1]] = struct{}{}
		names = append(names, match[1])
	}
	return names
}

// Plan orders the computed fields so every entry follows the entries it
// references. Independent entries keep declaration order. References to
// undeclared names are ignored. On a cycle the acyclic prefix is returned
// followed by the remaining entries in declaration order, together with a
// *CycleError naming them.
func Plan(spec *form.Specification, engine expression.Engine) (form.Computed, error) {
	if spec == nil || len(spec.Computed) == 0 {
		return nil, nil
	}
	entries := spec.Computed
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		if _, dup := index[entry.Name]; !dup {
			index[entry.Name] = i
		}
	}

	indegree := make([]int, len(entries))
	dependents := make([][]int, len(entries))
	for i, entry := range entries {
		for _, ref := range References(engine, entry.Expression) {
			dep, ok := index[ref]
			if !ok {
				continue
			}
			indegree[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	var ready []int
	for i := range entries {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	planned := make(form.Computed, 0, len(entries))
	done := make([]bool, len(entries))
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		planned = append(planned, entries[next])
		done[next] = true
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(planned) == len(entries) {
		return planned, nil
	}
	cycle := &CycleError{}
	for i, entry := range entries {
		if !done[i] {
			planned = append(planned, entry)
			cycle.Names = append(cycle.Names, entry.Name)
		}
	}
	return planned, cycle
}
