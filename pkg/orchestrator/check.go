package orchestrator

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/form"
)

// Check extends form.Check with the problems that need the expression
// engine: syntax errors in any expression, computed placeholders naming an
// undeclared computed field, and computed dependency cycles.
func (o *Orchestrator) Check(spec *form.Specification) error {
	var result *multierror.Error
	if err := form.Check(spec); err != nil {
		result = multierror.Append(result, err)
	}
	if spec == nil {
		return fmt.Errorf("orchestrator: check specification: %w", result.ErrorOrNil())
	}

	for _, expr := range expressionsOf(spec) {
		if err := o.evaluator.ValidateExpression(expr.text); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", expr.where, err))
		}
	}

	for _, path := range spec.Fields.SortedPaths() {
		placeholder, ok := spec.Fields[path].(*form.ComputedPlaceholder)
		if !ok || placeholder.Source == "" {
			continue
		}
		if _, ok := spec.Computed.Lookup(placeholder.Source); !ok {
			result = multierror.Append(result, fmt.Errorf("fields: %q shows undeclared computed field %q", path, placeholder.Source))
		}
	}

	if o.order == calculate.OrderDependency {
		if _, err := calculate.Plan(spec, o.engine); err != nil {
			var cycle *calculate.CycleError
			if errors.As(err, &cycle) {
				result = multierror.Append(result, err)
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("orchestrator: check specification: %w", err)
	}
	return nil
}

type located struct {
	where string
	text  string
}

// expressionsOf lists every expression of spec with a readable location.
func expressionsOf(spec *form.Specification) []located {
	var out []located
	add := func(where, text string) {
		if text != "" {
			out = append(out, located{where: where, text: text})
		}
	}
	var walk func(prefix string, fields form.FieldMap)
	walk = func(prefix string, fields form.FieldMap) {
		for _, path := range fields.SortedPaths() {
			def := fields[path]
			where := "fields." + prefix + path
			common := def.Common()
			add(where+".visibleWhen", common.VisibleWhen)
			if state, ok := form.StateOf(def); ok {
				add(where+".requiredWhen", state.RequiredWhen)
				add(where+".enabledWhen", state.EnabledWhen)
				add(where+".readonlyWhen", state.ReadonlyWhen)
			}
			for idx, rule := range common.Rules {
				add(fmt.Sprintf("%s.rules[%d]", where, idx), rule.Expression)
			}
			switch typed := def.(type) {
			case *form.SelectField:
				for idx, opt := range typed.Options {
					add(fmt.Sprintf("%s.options[%d].visibleWhen", where, idx), opt.VisibleWhen)
				}
			case *form.ArrayField:
				walk(prefix+path+".itemFields.", typed.ItemFields)
			}
		}
	}
	walk("", spec.Fields)

	for _, page := range spec.Pages {
		add("pages."+page.ID+".visibleWhen", page.VisibleWhen)
	}
	for _, entry := range spec.Computed {
		add("computed."+entry.Name, entry.Expression)
	}
	return out
}
