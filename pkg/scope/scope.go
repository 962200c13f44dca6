// Package scope builds the variable namespace an expression sees.
//
// Data keys are bare identifiers. Computed values live under `computed`,
// reference data under `ref`. Array item evaluation adds `item` and
// `itemIndex`; single-value validation adds `value`. Contexts are immutable:
// ForItem and WithValue return overlays and leave the receiver untouched.
package scope

import (
	"log/slog"
	"sort"
)

// Reserved namespace names.
const (
	Computed  = "computed"
	Ref       = "ref"
	Item      = "item"
	ItemIndex = "itemIndex"
	Value     = "value"
)

var reserved = map[string]struct{}{
	Computed:  {},
	Ref:       {},
	Item:      {},
	ItemIndex: {},
	Value:     {},
}

// IsReserved reports whether name is a namespace name data keys cannot use.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// CollisionFunc is called for every data key shadowed by a reserved name.
type CollisionFunc func(key string)

// Option configures New.
type Option func(*builder)

type builder struct {
	onCollision CollisionFunc
}

// WithCollisionHandler overrides how data/namespace collisions are reported.
func WithCollisionHandler(fn CollisionFunc) Option {
	return func(b *builder) {
		b.onCollision = fn
	}
}

// WithLogger reports collisions on logger at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger == nil {
			return
		}
		b.onCollision = func(key string) {
			logger.Warn("data key shadowed by reserved expression namespace", slog.String("key", key))
		}
	}
}

// Context is an immutable expression namespace.
type Context struct {
	vars map[string]any
}

// New merges data, computed values and reference data into one namespace.
// Reserved names always win over data keys; each shadowed key is reported
// once through the collision handler (slog.Default when none is set).
func New(data, computed, ref map[string]any, options ...Option) Context {
	b := builder{}
	for _, opt := range options {
		if opt != nil {
			opt(&b)
		}
	}
	if b.onCollision == nil {
		WithLogger(slog.Default())(&b)
	}

	vars := make(map[string]any, len(data)+2)
	var shadowed []string
	for key, value := range data {
		if IsReserved(key) {
			shadowed = append(shadowed, key)
			continue
		}
		vars[key] = value
	}
	sort.Strings(shadowed)
	for _, key := range shadowed {
		b.onCollision(key)
	}

	vars[Computed] = cloneOrEmpty(computed)
	vars[Ref] = cloneOrEmpty(ref)
	return Context{vars: vars}
}

func cloneOrEmpty(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ForItem returns an overlay exposing an array element and its index.
func (c Context) ForItem(item any, index int) Context {
	return c.overlay(map[string]any{Item: item, ItemIndex: index})
}

// WithValue returns an overlay exposing the value under validation.
func (c Context) WithValue(value any) Context {
	return c.overlay(map[string]any{Value: value})
}

func (c Context) overlay(extra map[string]any) Context {
	vars := make(map[string]any, len(c.vars)+len(extra))
	for k, v := range c.vars {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}
	return Context{vars: vars}
}

// Vars exposes the namespace to an engine. Callers must treat the map as
// read-only.
func (c Context) Vars() map[string]any {
	if c.vars == nil {
		return map[string]any{}
	}
	return c.vars
}

// Lookup returns a single namespace entry.
func (c Context) Lookup(name string) (any, bool) {
	v, ok := c.vars[name]
	return v, ok
}
