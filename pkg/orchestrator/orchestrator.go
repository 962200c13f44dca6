package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/calculate"
	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/expression/exprlang"
	"github.com/goliatone/go-formstate/pkg/fieldstate"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithEngine injects the expression engine. Defaults to the expr-lang engine.
func WithEngine(engine expression.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithSink routes evaluation warnings to sink instead of the logger.
func WithSink(sink expression.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithCalculationOrder selects how computed fields are ordered. The default
// is calculate.OrderDependency; calculate.OrderDeclaration evaluates entries
// in a single declaration-order pass.
func WithCalculationOrder(order calculate.Order) Option {
	return func(o *Orchestrator) {
		o.order = order
	}
}

// WithAllFields makes Validate and Resolve validate hidden fields too.
func WithAllFields() Option {
	return func(o *Orchestrator) {
		o.allFields = true
	}
}

// WithLoader injects the specification loader used by Load.
func WithLoader(loader *form.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithSpecTransformer registers a Transformer applied to specifications
// after loading and before they are checked.
func WithSpecTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator resolves form state for loaded specifications. It applies
// sensible defaults (expr-lang engine, slog diagnostics, dependency ordered
// computed fields) while remaining open to dependency injection.
type Orchestrator struct {
	engine      expression.Engine
	sink        expression.Sink
	logger      *slog.Logger
	evaluator   *expression.Evaluator
	order       calculate.Order
	allFields   bool
	loader      *form.Loader
	transformer Transformer
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{order: calculate.OrderDependency}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.engine == nil {
		o.engine = exprlang.New()
	}
	if o.sink == nil {
		o.sink = expression.NewLogSink(logging.WithComponent(o.logger, "expression"))
	}
	if o.loader == nil {
		o.loader = form.NewLoader(form.WithoutCheck())
	}
	o.evaluator = expression.NewEvaluator(o.engine, expression.WithSink(o.sink))
}

// Evaluator exposes the configured evaluator.
func (o *Orchestrator) Evaluator() *expression.Evaluator {
	return o.evaluator
}

// Load reads a specification, applies the configured transformer and
// rejects it when Check reports structural problems.
func (o *Orchestrator) Load(ctx context.Context, src form.Source) (*form.Specification, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	spec, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load specification: %w", err)
	}
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, spec); err != nil {
			return nil, fmt.Errorf("orchestrator: transform specification: %w", err)
		}
	}
	if err := o.Check(spec); err != nil {
		return nil, err
	}
	o.logger.Debug("specification loaded",
		slog.String(logging.FormKey, spec.Metadata.ID),
		slog.Int("fields", len(spec.FieldOrder)),
		slog.Int("computed", len(spec.Computed)),
	)
	return spec, nil
}

// Calculate evaluates the computed fields of spec against data.
func (o *Orchestrator) Calculate(data map[string]any, spec *form.Specification) map[string]any {
	return calculate.Calculate(o.evaluator, data, spec, calculate.WithOrder(o.order), calculate.WithLogger(o.logger))
}

// GetVisibility maps field paths to visibility.
func (o *Orchestrator) GetVisibility(data map[string]any, spec *form.Specification) map[string]bool {
	return visibility.GetVisibility(o.evaluator, data, spec, o.Calculate(data, spec))
}

// GetPageVisibility maps page ids to visibility.
func (o *Orchestrator) GetPageVisibility(data map[string]any, spec *form.Specification) map[string]bool {
	return visibility.GetPageVisibility(o.evaluator, data, spec, o.Calculate(data, spec))
}

// GetOptionsVisibility returns the available options of every selection field.
func (o *Orchestrator) GetOptionsVisibility(data map[string]any, spec *form.Specification) map[string][]form.Option {
	return visibility.GetOptionsVisibility(o.evaluator, data, spec, o.Calculate(data, spec))
}

// GetRequired maps field paths to the required flag.
func (o *Orchestrator) GetRequired(data map[string]any, spec *form.Specification) map[string]bool {
	return fieldstate.GetRequired(o.evaluator, data, spec, o.Calculate(data, spec))
}

// GetEnabled maps field paths to the enabled flag.
func (o *Orchestrator) GetEnabled(data map[string]any, spec *form.Specification) map[string]bool {
	return fieldstate.GetEnabled(o.evaluator, data, spec, o.Calculate(data, spec))
}

// GetReadonly maps field paths to the readonly flag.
func (o *Orchestrator) GetReadonly(data map[string]any, spec *form.Specification) map[string]bool {
	return fieldstate.GetReadonly(o.evaluator, data, spec, o.Calculate(data, spec))
}

// Validate checks data against spec. Extra options are applied after the
// orchestrator's own configuration.
func (o *Orchestrator) Validate(data map[string]any, spec *form.Specification, options ...validation.Option) validation.Result {
	return validation.Validate(o.evaluator, data, spec, o.validationOptions(data, spec, options)...)
}

// ValidateSingleField checks one field path.
func (o *Orchestrator) ValidateSingleField(path string, data map[string]any, spec *form.Specification, options ...validation.Option) validation.Result {
	return validation.ValidateSingleField(o.evaluator, path, data, spec, o.validationOptions(data, spec, options)...)
}

func (o *Orchestrator) validationOptions(data map[string]any, spec *form.Specification, extra []validation.Option) []validation.Option {
	opts := []validation.Option{
		validation.WithLogger(o.logger),
		validation.WithComputed(o.Calculate(data, spec)),
	}
	if o.allFields {
		opts = append(opts, validation.WithAllFields())
	}
	return append(opts, extra...)
}
