// Package prompt fills a form interactively. After every answer the form
// state is resolved again, so only fields that are currently visible,
// enabled and editable are asked, and validation findings are shown inline.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/internal/labels"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/orchestrator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Theme captures the message prefixes used for inline findings.
type Theme struct {
	ErrorPrefix   string
	WarningPrefix string
	InfoPrefix    string
}

// DefaultTheme is applied when WithTheme is not used.
var DefaultTheme = Theme{ErrorPrefix: "! ", WarningPrefix: "~ ", InfoPrefix: ""}

// Option configures a Filler.
type Option func(*Filler)

// WithPrompter overrides the prompter used to ask questions.
func WithPrompter(p Prompter) Option {
	return func(f *Filler) {
		if p != nil {
			f.prompter = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMaxAttempts bounds how often a field with blocking findings is asked
// again before the flow moves on.
func WithMaxAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// Filler drives an interactive session over a specification.
type Filler struct {
	orch        *orchestrator.Orchestrator
	prompter    Prompter
	logger      *slog.Logger
	maxAttempts int
	theme       Theme
}

// Result is the outcome of a fill session.
type Result struct {
	Values   map[string]any
	Snapshot orchestrator.Snapshot
}

// New constructs a Filler. The orchestrator is required; the prompter
// defaults to a survey-backed terminal prompter.
func New(orch *orchestrator.Orchestrator, options ...Option) (*Filler, error) {
	if orch == nil {
		return nil, errors.New("prompt: orchestrator is required")
	}
	f := &Filler{
		orch:        orch,
		logger:      logging.Discard(),
		maxAttempts: 3,
		theme:       DefaultTheme,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.prompter == nil {
		f.prompter = NewSurveyPrompter(nil)
	}
	f.logger = logging.WithComponent(f.logger, "prompt")
	return f, nil
}

type session struct {
	spec   *form.Specification
	values map[string]any
}

func (s *session) set(path string, value any, ok bool) {
	if !ok {
		datapath.Delete(s.values, path)
		return
	}
	datapath.Set(s.values, path, value)
}

// Fill asks for every field in order, starting from initial (which is not
// modified), and returns the collected values with their final snapshot.
func (f *Filler) Fill(ctx context.Context, spec *form.Specification, initial map[string]any) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("prompt: context is required")
	}
	if spec == nil {
		return Result{}, errors.New("prompt: specification is required")
	}
	values, _ := datapath.Clone(initial).(map[string]any)
	if values == nil {
		values = make(map[string]any)
	}
	s := &session{spec: spec, values: values}

	if title := labels.Plain(spec.Metadata.Title); title != "" {
		if err := f.info(ctx, title); err != nil {
			return Result{}, err
		}
	}
	for _, path := range fillOrder(spec) {
		def, ok := spec.Field(path)
		if !ok {
			continue
		}
		if err := f.field(ctx, s, path, def); err != nil {
			return Result{}, err
		}
	}

	return Result{Values: s.values, Snapshot: f.orch.Resolve(s.values, spec)}, nil
}

// fillOrder lists the top-level paths of the field order. Item paths are
// reached through their arrays.
func fillOrder(spec *form.Specification) []string {
	out := make([]string, 0, len(spec.FieldOrder))
	for _, path := range spec.FieldOrder {
		if !strings.Contains(path, "[") {
			out = append(out, path)
		}
	}
	return out
}

func (f *Filler) field(ctx context.Context, s *session, path string, def form.FieldDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := f.orch.Resolve(s.values, s.spec)
	if visible, ok := snap.Visibility[path]; ok && !visible {
		f.logger.Debug("skip hidden field", logging.FieldKey, path)
		return nil
	}

	switch typed := def.(type) {
	case *form.DisplayField:
		text := labels.Plain(typed.Content)
		if text == "" {
			text = labels.Plain(typed.Label)
		}
		if text == "" {
			return nil
		}
		return f.info(ctx, text)
	case *form.ComputedPlaceholder:
		value, ok := snap.Computed[typed.Source]
		if !ok || value == nil {
			return nil
		}
		return f.info(ctx, fmt.Sprintf("%s: %v", labels.For(path, def), value))
	case *form.ObjectField:
		return nil
	}

	if enabled, ok := snap.Enabled[path]; ok && !enabled {
		f.logger.Debug("skip disabled field", logging.FieldKey, path)
		return nil
	}
	if snap.Readonly[path] {
		f.logger.Debug("skip readonly field", logging.FieldKey, path)
		return nil
	}

	if array, ok := def.(*form.ArrayField); ok {
		return f.array(ctx, s, path, array)
	}
	return f.ask(ctx, s, path, def, snap.Options[path])
}

func (f *Filler) ask(ctx context.Context, s *session, path string, def form.FieldDefinition, options []form.Option) error {
	for attempt := 1; ; attempt++ {
		value, ok, err := f.answer(ctx, s, path, def, options)
		switch {
		case errors.Is(err, ErrNoOptions):
			return f.info(ctx, fmt.Sprintf("%s: no options available", labels.For(path, def)))
		case errors.As(err, new(*inputError)):
			if infoErr := f.finding(ctx, err.Error(), form.SeverityError); infoErr != nil {
				return infoErr
			}
			if attempt >= f.maxAttempts {
				return nil
			}
			continue
		case err != nil:
			return err
		}

		s.set(path, value, ok)
		res := f.orch.ValidateSingleField(path, s.values, s.spec)
		if err := f.report(ctx, res); err != nil {
			return err
		}
		if res.Valid || attempt >= f.maxAttempts {
			return nil
		}
	}
}

// array edits existing items and then offers to add more, honouring the
// field's maximum item count.
func (f *Filler) array(ctx context.Context, s *session, path string, array *form.ArrayField) error {
	label := labels.For(path, array)
	current, _ := datapath.Lookup(s.values, path)
	list, _ := datapath.AsList(current)
	existing := len(list)

	names := make([]string, 0, len(array.ItemFields))
	for name := range array.ItemFields {
		names = append(names, name)
	}
	sort.Strings(names)

	maxItems := array.MaxItems
	if maxItems == nil {
		if prop := s.spec.Property(path); prop != nil {
			maxItems = prop.MaxItems
		}
	}

	for idx := 0; ; idx++ {
		if idx >= existing {
			if maxItems != nil && idx >= *maxItems {
				break
			}
			add, err := f.prompter.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add an item to %s?", label)})
			if err != nil {
				return err
			}
			if !add {
				break
			}
			datapath.Set(s.values, fmt.Sprintf("%s[%d]", path, idx), map[string]any{})
		}
		for _, name := range names {
			def := array.ItemFields[name]
			if def == nil {
				continue
			}
			if err := f.field(ctx, s, datapath.ItemPath(path, idx, name), def); err != nil {
				return err
			}
		}
	}

	return f.report(ctx, f.orch.ValidateSingleField(path, s.values, s.spec))
}

type inputError struct {
	label string
	err   error
}

func (e *inputError) Error() string {
	return fmt.Sprintf("%s: %v", e.label, e.err)
}

func (e *inputError) Unwrap() error { return e.err }

// answer asks one question and converts the reply. ok is false when the
// reply leaves the field empty.
func (f *Filler) answer(ctx context.Context, s *session, path string, def form.FieldDefinition, options []form.Option) (any, bool, error) {
	label := labels.For(path, def)
	help := labels.Plain(def.Common().Description)
	current, _ := datapath.Lookup(s.values, path)

	switch typed := def.(type) {
	case *form.SelectField:
		if options == nil {
			options = typed.Options
		}
		if len(options) == 0 {
			return nil, false, ErrNoOptions
		}
		names := make([]string, len(options))
		for i, opt := range options {
			names[i] = optionLabel(opt)
		}
		if typed.Kind() == form.KindMultiSelect {
			picked, err := f.prompter.MultiSelect(ctx, SelectConfig{Message: label, Options: names, Help: help, Defaults: selectedIndices(options, current)})
			if err != nil {
				return nil, false, err
			}
			out := make([]any, 0, len(picked))
			for _, idx := range picked {
				if idx >= 0 && idx < len(options) {
					out = append(out, options[idx].Value)
				}
			}
			return out, len(out) > 0, nil
		}
		idx, err := f.prompter.Select(ctx, SelectConfig{Message: label, Options: names, Help: help, DefaultIndex: selectedIndex(options, current)})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, false, nil
		}
		return options[idx].Value, true, nil

	case *form.BasicField:
		if typed.Type == form.KindBoolean || typed.Type == form.KindCheckbox {
			initial, _ := current.(bool)
			answer, err := f.prompter.Confirm(ctx, ConfirmConfig{Message: label, Help: help, Default: initial})
			if err != nil {
				return nil, false, err
			}
			return answer, true, nil
		}
	}

	cfg := InputConfig{Message: label, Help: help, Default: formatDefault(current)}
	var (
		text string
		err  error
	)
	switch def.Kind() {
	case form.KindPassword:
		text, err = f.prompter.Password(ctx, cfg)
	case form.KindTextarea:
		text, err = f.prompter.TextArea(ctx, cfg)
	case form.KindNumber, form.KindInteger:
		cfg.Validator = func(raw string) error {
			_, _, err := parseNumber(def.Kind(), raw)
			return err
		}
		text, err = f.prompter.Input(ctx, cfg)
	default:
		text, err = f.prompter.Input(ctx, cfg)
	}
	if err != nil {
		return nil, false, err
	}

	switch def.Kind() {
	case form.KindNumber, form.KindInteger:
		value, ok, err := parseNumber(def.Kind(), text)
		if err != nil {
			return nil, false, &inputError{label: label, err: err}
		}
		return value, ok, nil
	default:
		if strings.TrimSpace(text) == "" {
			return nil, false, nil
		}
		return text, true, nil
	}
}

func parseNumber(kind form.FieldKind, raw string) (any, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false, nil
	}
	if kind == form.KindInteger {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false, errors.New("enter a whole number")
		}
		return float64(n), true, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false, errors.New("enter a number")
	}
	return n, true, nil
}

func (f *Filler) report(ctx context.Context, res validation.Result) error {
	for _, fe := range res.Errors {
		if err := f.finding(ctx, fe.Message, fe.Severity); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) finding(ctx context.Context, msg string, severity form.Severity) error {
	prefix := f.theme.ErrorPrefix
	if severity == form.SeverityWarning {
		prefix = f.theme.WarningPrefix
	}
	return f.prompter.Info(ctx, prefix+msg)
}

func (f *Filler) info(ctx context.Context, msg string) error {
	return f.prompter.Info(ctx, f.theme.InfoPrefix+msg)
}

func optionLabel(opt form.Option) string {
	if label := labels.Plain(opt.Label); label != "" {
		return label
	}
	return fmt.Sprint(opt.Value)
}

func selectedIndex(options []form.Option, current any) int {
	if current == nil {
		return -1
	}
	for i, opt := range options {
		if fmt.Sprint(opt.Value) == fmt.Sprint(current) {
			return i
		}
	}
	return -1
}

func selectedIndices(options []form.Option, current any) []int {
	list, ok := datapath.AsList(current)
	if !ok {
		return nil
	}
	var out []int
	for _, value := range list {
		if idx := selectedIndex(options, value); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

func formatDefault(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
