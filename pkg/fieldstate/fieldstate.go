// Package fieldstate resolves the required, enabled and readonly flags of
// every field in a form specification. Each resolver walks fields in field
// order and extends into array items with item-scoped contexts.
package fieldstate

import (
	"github.com/goliatone/go-formstate/internal/gate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/form"
)

// GetRequired maps every field path to whether a value is required. A field
// is required when the schema lists it or its requiredWhen expression holds.
// Display-only fields are never required.
func GetRequired(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string]bool {
	return Required(eval, spec).Run(spec, data, gate.Base(eval, data, spec, computed))
}

// GetEnabled maps every field path to whether it accepts input. Fields
// without enabledWhen are enabled.
func GetEnabled(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string]bool {
	return Enabled(eval).Run(spec, data, gate.Base(eval, data, spec, computed))
}

// GetReadonly maps every field path to whether it is readonly. Fields
// without readonlyWhen, and display-only fields, are writable.
func GetReadonly(eval *expression.Evaluator, data map[string]any, spec *form.Specification, computed map[string]any) map[string]bool {
	return Readonly(eval).Run(spec, data, gate.Base(eval, data, spec, computed))
}

// Required returns the pass used by GetRequired, for callers resolving
// single fields against a prepared context.
func Required(eval *expression.Evaluator, spec *form.Specification) gate.Pass {
	return gate.Pass{
		Evaluator: eval,
		Condition: func(def form.FieldDefinition) string {
			state, _ := form.StateOf(def)
			return state.RequiredWhen
		},
		Static: spec.SchemaRequired,
		Skip:   form.IsDisplayOnly,
	}
}

// Enabled returns the pass used by GetEnabled.
func Enabled(eval *expression.Evaluator) gate.Pass {
	return gate.Pass{
		Evaluator: eval,
		Condition: func(def form.FieldDefinition) string {
			state, _ := form.StateOf(def)
			return state.EnabledWhen
		},
		Default: true,
	}
}

// Readonly returns the pass used by GetReadonly.
func Readonly(eval *expression.Evaluator) gate.Pass {
	return gate.Pass{
		Evaluator: eval,
		Condition: func(def form.FieldDefinition) string {
			state, _ := form.StateOf(def)
			return state.ReadonlyWhen
		},
		Skip: form.IsDisplayOnly,
	}
}
