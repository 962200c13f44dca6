// Package visibility resolves which fields, pages and selection options of a
// form specification are currently shown.
package visibility

import (
	"github.com/goliatone/go-formstate/internal/gate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/scope"
)

// GetVisibility maps every field path to its visibility. Fields without a
// visibleWhen expression are visible. Items of hidden array fields are not
// evaluated and are absent from the result. Pass nil computed to have the
// computed values derived from data.
func GetVisibility(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string]bool {
	return fields(eval).Run(spec, data, gate.Base(eval, data, spec, computed))
}

// IsVisible resolves a single field path, including indexed item paths.
// Unknown paths are reported hidden.
func IsVisible(eval *expression.Evaluator, path string, data map[string]any, spec *form.Specification, computed map[string]any) bool {
	def, ok := spec.Field(path)
	if !ok {
		return false
	}
	base := gate.Base(eval, data, spec, computed)
	return fields(eval).Resolve(path, def, gate.ContextFor(base, data, path))
}

func fields(eval *expression.Evaluator) gate.Pass {
	return gate.Pass{
		Evaluator:    eval,
		Condition:    func(def form.FieldDefinition) string { return def.Common().VisibleWhen },
		Default:      true,
		ShortCircuit: true,
	}
}

// GetPageVisibility maps every page id to its visibility.
func GetPageVisibility(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string]bool {
	if spec == nil {
		return map[string]bool{}
	}
	base := gate.Base(eval, data, spec, computed)
	out := make(map[string]bool, len(spec.Pages))
	for _, page := range spec.Pages {
		if page.VisibleWhen == "" {
			out[page.ID] = true
			continue
		}
		out[page.ID] = eval.EvaluateBoolean(page.VisibleWhen, base)
	}
	return out
}

// GetOptionsVisibility returns the currently available options of every
// selection field, keyed by field path. Item selection fields are keyed by
// their indexed path. Options whose expression cannot be evaluated are
// dropped.
func GetOptionsVisibility(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string][]form.Option {
	out := make(map[string][]form.Option)
	if spec == nil {
		return out
	}
	base := gate.Base(eval, data, spec, computed)
	for _, path := range spec.FieldOrder {
		def, ok := spec.Field(path)
		if !ok {
			continue
		}
		collectOptions(eval, out, path, def, data, gate.ContextFor(base, data, path), base)
	}
	return out
}

func collectOptions(eval *expression.Evaluator, out map[string][]form.Option, path string, def form.FieldDefinition, data map[string]any, ctx, base scope.Context) {
	switch field := def.(type) {
	case *form.SelectField:
		out[path] = filterOptions(eval, field.Options, ctx)
	case *form.ArrayField:
		gate.ForEachItem(path, field, data, base, func(key string, item form.FieldDefinition, itemCtx scope.Context) {
			collectOptions(eval, out, key, item, data, itemCtx, base)
		})
	}
}

func filterOptions(eval *expression.Evaluator, options []form.Option, ctx scope.Context) []form.Option {
	kept := make([]form.Option, 0, len(options))
	for _, opt := range options {
		if opt.VisibleWhen == "" || eval.EvaluateBoolean(opt.VisibleWhen, ctx) {
			kept = append(kept, opt)
		}
	}
	return kept
}
