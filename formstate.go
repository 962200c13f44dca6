// Package formstate resolves the dynamic state of declaratively specified
// forms: computed values, visibility, required/enabled/readonly flags and
// validation. The functions here wrap a default orchestrator for callers that
// do not need custom wiring.
package formstate

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Specification aliases form.Specification.
type Specification = form.Specification

// Snapshot aliases orchestrator.Snapshot.
type Snapshot = orchestrator.Snapshot

// ValidationResult aliases validation.Result.
type ValidationResult = validation.Result

// FieldError aliases validation.FieldError.
type FieldError = validation.FieldError

// ValuesOptions aliases orchestrator.ValuesOptions.
type ValuesOptions = orchestrator.ValuesOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// LoadFile reads and checks a JSON or YAML specification from disk.
func LoadFile(ctx context.Context, path string, options ...orchestrator.Option) (*Specification, error) {
	return orchestrator.New(options...).Load(ctx, form.SourceFromFile(path))
}

// Resolve computes the full state snapshot for data.
func Resolve(data map[string]any, spec *Specification, options ...orchestrator.Option) Snapshot {
	return orchestrator.New(options...).Resolve(data, spec)
}

// Validate checks data against spec.
func Validate(data map[string]any, spec *Specification, options ...orchestrator.Option) ValidationResult {
	return orchestrator.New(options...).Validate(data, spec)
}

// ValidateSingleField checks one field path.
func ValidateSingleField(path string, data map[string]any, spec *Specification, options ...orchestrator.Option) ValidationResult {
	return orchestrator.New(options...).ValidateSingleField(path, data, spec)
}

// Calculate evaluates the computed fields of spec.
func Calculate(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]any {
	return orchestrator.New(options...).Calculate(data, spec)
}

// GetVisibility maps field paths to visibility.
func GetVisibility(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]bool {
	return orchestrator.New(options...).GetVisibility(data, spec)
}

// GetPageVisibility maps page ids to visibility.
func GetPageVisibility(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]bool {
	return orchestrator.New(options...).GetPageVisibility(data, spec)
}

// GetOptionsVisibility returns the available options of selection fields.
func GetOptionsVisibility(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string][]form.Option {
	return orchestrator.New(options...).GetOptionsVisibility(data, spec)
}

// GetRequired maps field paths to the required flag.
func GetRequired(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]bool {
	return orchestrator.New(options...).GetRequired(data, spec)
}

// GetEnabled maps field paths to the enabled flag.
func GetEnabled(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]bool {
	return orchestrator.New(options...).GetEnabled(data, spec)
}

// GetReadonly maps field paths to the readonly flag.
func GetReadonly(data map[string]any, spec *Specification, options ...orchestrator.Option) map[string]bool {
	return orchestrator.New(options...).GetReadonly(data, spec)
}

// CurrentValues returns a submission-shaped copy of data.
func CurrentValues(data map[string]any, spec *Specification, opts ValuesOptions, options ...orchestrator.Option) map[string]any {
	return orchestrator.New(options...).CurrentValues(data, spec, opts)
}
