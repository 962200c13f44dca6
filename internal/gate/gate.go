// Package gate implements the field walk shared by the visibility, required,
// enabled and readonly resolvers: one boolean per field path, extended into
// array items through item-scoped contexts.
package gate

import (
	"sort"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/scope"
)

// Pass describes one gating resolver.
type Pass struct {
	Evaluator *expression.Evaluator
	// Condition returns the expression gating def, or "" when absent.
	Condition func(def form.FieldDefinition) string
	// Default applies when there is no condition.
	Default bool
	// Static is OR-combined with the evaluated result when set.
	Static func(path string) bool
	// Skip resolves matching kinds to Default without evaluation.
	Skip func(def form.FieldDefinition) bool
	// ShortCircuit stops descent into array items of fields resolving false.
	ShortCircuit bool
}

// Run resolves every field in field order plus the items of array fields.
func (p Pass) Run(spec *form.Specification, data map[string]any, base scope.Context) map[string]bool {
	if spec == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(spec.FieldOrder))
	for _, path := range spec.FieldOrder {
		def, ok := spec.Field(path)
		if !ok {
			continue
		}
		result := p.Resolve(path, def, ContextFor(base, data, path))
		out[path] = result
		if array, ok := def.(*form.ArrayField); ok && (result || !p.ShortCircuit) {
			p.items(out, path, array, data, base)
		}
	}
	return out
}

func (p Pass) items(out map[string]bool, arrayPath string, array *form.ArrayField, data map[string]any, base scope.Context) {
	ForEachItem(arrayPath, array, data, base, func(key string, def form.FieldDefinition, ctx scope.Context) {
		result := p.Resolve(key, def, ctx)
		out[key] = result
		if nested, ok := def.(*form.ArrayField); ok && (result || !p.ShortCircuit) {
			p.items(out, key, nested, data, base)
		}
	})
}

// Resolve evaluates the pass for a single definition.
func (p Pass) Resolve(path string, def form.FieldDefinition, ctx scope.Context) bool {
	if p.Skip != nil && p.Skip(def) {
		return p.Default
	}
	result := p.Default
	if p.Condition != nil {
		if cond := p.Condition(def); cond != "" {
			result = p.Evaluator.EvaluateBoolean(cond, ctx)
		}
	}
	if p.Static != nil && p.Static(path) {
		return true
	}
	return result
}

// ForEachItem calls fn for every element of the array at arrayPath and every
// item field, in element order and item field name order.
func ForEachItem(arrayPath string, array *form.ArrayField, data map[string]any, base scope.Context, fn func(key string, def form.FieldDefinition, ctx scope.Context)) {
	raw, ok := datapath.Lookup(data, arrayPath)
	if !ok {
		return
	}
	list, ok := datapath.AsList(raw)
	if !ok {
		return
	}
	names := make([]string, 0, len(array.ItemFields))
	for name := range array.ItemFields {
		names = append(names, name)
	}
	sort.Strings(names)

	for idx, item := range list {
		ctx := base.ForItem(item, idx)
		for _, name := range names {
			def := array.ItemFields[name]
			if def == nil {
				continue
			}
			fn(datapath.ItemPath(arrayPath, idx, name), def, ctx)
		}
	}
}

// ContextFor returns base, or an item overlay when path addresses an array
// element field.
func ContextFor(base scope.Context, data map[string]any, path string) scope.Context {
	arrayPath, idx, _, ok := datapath.SplitItem(path)
	if !ok {
		return base
	}
	raw, ok := datapath.Lookup(data, arrayPath)
	if !ok {
		return base.ForItem(nil, idx)
	}
	list, ok := datapath.AsList(raw)
	if !ok || idx >= len(list) {
		return base.ForItem(nil, idx)
	}
	return base.ForItem(list[idx], idx)
}

// Base builds the top-level context for a resolver call, running Calculate
// when the caller did not supply computed values.
func Base(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) scope.Context {
	if computed == nil {
		computed = calculate.Calculate(eval, data, spec)
	}
	var ref map[string]any
	if spec != nil {
		ref = spec.Reference
	}
	return scope.New(data, computed, ref)
}
