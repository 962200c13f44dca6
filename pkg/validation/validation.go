// Package validation checks submitted form data against a specification:
// required fields, schema type and constraint keywords, custom rule
// expressions and array item fields.
package validation

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/internal/gate"
	"github.com/goliatone/go-formstate/internal/labels"
	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/fieldstate"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/scope"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

// FieldError is a single finding for a field path.
type FieldError struct {
	Path     string        `json:"path"`
	Message  string        `json:"message"`
	Severity form.Severity `json:"severity"`
}

// Result aggregates the findings of one validation call. Valid is false only
// when at least one finding has error severity.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ErrorsFor returns the findings recorded for path.
func (r Result) ErrorsFor(path string) []FieldError {
	var out []FieldError
	for _, fe := range r.Errors {
		if fe.Path == path {
			out = append(out, fe)
		}
	}
	return out
}

// Option configures a validation call.
type Option func(*config)

type config struct {
	allFields  bool
	computed   map[string]any
	visibility map[string]bool
	logger     *slog.Logger
}

// WithAllFields validates hidden fields too. By default only visible fields
// are validated.
func WithAllFields() Option {
	return func(c *config) {
		c.allFields = true
	}
}

// WithComputed supplies precomputed computed values.
func WithComputed(computed map[string]any) Option {
	return func(c *config) {
		c.computed = computed
	}
}

// WithVisibility supplies a precomputed visibility map.
func WithVisibility(vis map[string]bool) Option {
	return func(c *config) {
		c.visibility = vis
	}
}

// WithLogger routes diagnostics such as unusable patterns to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type validator struct {
	cfg      config
	eval     *expression.Evaluator
	spec     *form.Specification
	data     map[string]any
	base     scope.Context
	required gate.Pass
	seen     map[string]struct{}
	errors   []FieldError
}

func newValidator(eval *expression.Evaluator, data map[string]any, spec *form.Specification, options []Option) *validator {
	cfg := config{logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.computed == nil {
		cfg.computed = calculate.Calculate(eval, data, spec, calculate.WithLogger(cfg.logger))
	}
	if !cfg.allFields && cfg.visibility == nil {
		cfg.visibility = visibility.GetVisibility(eval, data, spec, cfg.computed)
	}
	return &validator{
		cfg:      cfg,
		eval:     eval,
		spec:     spec,
		data:     data,
		base:     gate.Base(eval, data, spec, cfg.computed),
		required: fieldstate.Required(eval, spec),
		seen:     make(map[string]struct{}),
	}
}

// Validate checks every field in field order. Hidden fields are skipped
// unless WithAllFields is set.
func Validate(eval *expression.Evaluator, data map[string]any, spec *form.Specification, options ...Option) Result {
	if spec == nil {
		return Result{Valid: true}
	}
	v := newValidator(eval, data, spec, options)
	for _, path := range spec.FieldOrder {
		def, ok := spec.Field(path)
		if !ok {
			continue
		}
		v.field(path, def, gate.ContextFor(v.base, data, path))
	}
	return v.result()
}

// ValidateSingleField checks one field path, including indexed item paths
// and, for array fields, their items.
func ValidateSingleField(eval *expression.Evaluator, path string, data map[string]any, spec *form.Specification, options ...Option) Result {
	def, ok := spec.Field(path)
	if !ok {
		return Result{Valid: true}
	}
	v := newValidator(eval, data, spec, options)
	v.field(path, def, gate.ContextFor(v.base, data, path))
	return v.result()
}

func (v *validator) result() Result {
	res := Result{Valid: true, Errors: v.errors}
	for _, fe := range v.errors {
		if fe.Severity == form.SeverityError {
			res.Valid = false
			break
		}
	}
	return res
}

func (v *validator) visible(path string) bool {
	if v.cfg.allFields {
		return true
	}
	if visible, ok := v.cfg.visibility[path]; ok {
		return visible
	}
	if arrayPath, _, _, ok := datapath.SplitItem(path); ok {
		if !v.visible(arrayPath) {
			return false
		}
	}
	def, ok := v.spec.Field(path)
	if !ok {
		return false
	}
	cond := def.Common().VisibleWhen
	return cond == "" || v.eval.EvaluateBoolean(cond, gate.ContextFor(v.base, v.data, path))
}

func (v *validator) add(path, message string, severity form.Severity) {
	v.errors = append(v.errors, FieldError{Path: path, Message: message, Severity: severity})
}

// field runs the required, constraint and rule checks for one path. ctx is
// the scope the field's own expressions see.
func (v *validator) field(path string, def form.FieldDefinition, ctx scope.Context) {
	if _, dup := v.seen[path]; dup {
		return
	}
	v.seen[path] = struct{}{}
	if form.IsDisplayOnly(def) || !v.visible(path) {
		return
	}

	value, _ := datapath.Lookup(v.data, path)
	prop := effectiveProperty(def, v.spec.Property(path))
	label := v.label(path, def, prop)

	empty := isEmpty(value)
	if empty && v.required.Resolve(path, def, ctx) {
		v.add(path, label+" is required", form.SeverityError)
	}
	if !empty {
		for _, msg := range v.constraints(label, value, def, prop) {
			v.add(path, msg, form.SeverityError)
		}
	}
	for _, msg := range itemConstraints(label, value, def, prop) {
		v.add(path, msg, form.SeverityError)
	}
	v.rules(path, def, label, ctx.WithValue(value))

	if array, ok := def.(*form.ArrayField); ok {
		v.items(path, array, value)
	}
}

func (v *validator) items(path string, array *form.ArrayField, value any) {
	list, ok := datapath.AsList(value)
	if !ok {
		return
	}
	names := make([]string, 0, len(array.ItemFields))
	for name := range array.ItemFields {
		names = append(names, name)
	}
	sort.Strings(names)

	for idx, item := range list {
		ctx := v.base.ForItem(item, idx)
		for _, name := range names {
			def := array.ItemFields[name]
			if def == nil {
				continue
			}
			v.field(datapath.ItemPath(path, idx, name), def, ctx)
		}
	}
}

func (v *validator) rules(path string, def form.FieldDefinition, label string, ctx scope.Context) {
	for _, rule := range def.Common().Rules {
		if rule.Expression == "" || v.eval.EvaluateBoolean(rule.Expression, ctx) {
			continue
		}
		msg := rule.Message
		if msg == "" {
			msg = label + " is invalid"
		}
		v.add(path, msg, rule.EffectiveSeverity())
	}
}

func (v *validator) label(path string, def form.FieldDefinition, prop *form.Property) string {
	if def.Common().Label == "" && prop != nil && prop.Title != "" {
		return labels.Plain(prop.Title)
	}
	return labels.For(path, def)
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		if list, ok := datapath.AsList(value); ok {
			return len(list) == 0
		}
	}
	return false
}
