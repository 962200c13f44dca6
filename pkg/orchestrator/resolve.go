package orchestrator

import (
	"sort"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/pkg/fieldstate"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/visibility"
)

// Snapshot is the complete dynamic state of a form for one data snapshot.
// All maps are derived from a single Calculate pass.
type Snapshot struct {
	Computed   map[string]any           `json:"computed"`
	Visibility map[string]bool          `json:"visibility"`
	Pages      map[string]bool          `json:"pages,omitempty"`
	Options    map[string][]form.Option `json:"options,omitempty"`
	Required   map[string]bool          `json:"required"`
	Enabled    map[string]bool          `json:"enabled"`
	Readonly   map[string]bool          `json:"readonly"`
	Validation validation.Result        `json:"validation"`
}

// Resolve computes every state map and validates data in one call.
func (o *Orchestrator) Resolve(data map[string]any, spec *form.Specification) Snapshot {
	computed := o.Calculate(data, spec)
	vis := visibility.GetVisibility(o.evaluator, data, spec, computed)

	opts := []validation.Option{
		validation.WithLogger(o.logger),
		validation.WithComputed(computed),
		validation.WithVisibility(vis),
	}
	if o.allFields {
		opts = append(opts, validation.WithAllFields())
	}

	return Snapshot{
		Computed:   computed,
		Visibility: vis,
		Pages:      visibility.GetPageVisibility(o.evaluator, data, spec, computed),
		Options:    visibility.GetOptionsVisibility(o.evaluator, data, spec, computed),
		Required:   fieldstate.GetRequired(o.evaluator, data, spec, computed),
		Enabled:    fieldstate.GetEnabled(o.evaluator, data, spec, computed),
		Readonly:   fieldstate.GetReadonly(o.evaluator, data, spec, computed),
		Validation: validation.Validate(o.evaluator, data, spec, opts...),
	}
}

// ValuesOptions controls CurrentValues.
type ValuesOptions struct {
	// IncludeHidden keeps the values of hidden fields. When false, values at
	// hidden field paths (and every item of hidden array fields) are dropped.
	IncludeHidden bool
	// IncludeComputed adds the computed values under the "computed" key.
	IncludeComputed bool
}

// CurrentValues returns a copy of data shaped for submission. The caller's
// data is never modified.
func (o *Orchestrator) CurrentValues(data map[string]any, spec *form.Specification, opts ValuesOptions) map[string]any {
	out, _ := datapath.Clone(data).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	computed := o.Calculate(data, spec)

	if !opts.IncludeHidden {
		vis := visibility.GetVisibility(o.evaluator, data, spec, computed)
		hidden := make([]string, 0)
		for path, visible := range vis {
			if !visible {
				hidden = append(hidden, path)
			}
		}
		// Deeper paths first so item fields go before their arrays.
		sort.Slice(hidden, func(i, j int) bool {
			if len(hidden[i]) != len(hidden[j]) {
				return len(hidden[i]) > len(hidden[j])
			}
			return hidden[i] < hidden[j]
		})
		for _, path := range hidden {
			datapath.Delete(out, path)
		}
	}
	if opts.IncludeComputed {
		out["computed"] = computed
	}
	return out
}
