package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Transformer mutates a Specification after loading and before it is
// checked. Implementations can relabel fields or tighten conditions for a
// deployment without editing the shared document.
type Transformer interface {
	Transform(ctx context.Context, spec *form.Specification) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, spec *form.Specification) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, spec *form.Specification) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, spec)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports metadata and per-field patches:
//
//	{
//	  "metadata": {"title": "Partner signup"},
//	  "reference": {"minimumIncome": 15000},
//	  "fields": {
//	    "email": {"label": "Work email", "requiredWhen": "true"},
//	    "contacts[].phone": {"visibleWhen": "item.kind == \"phone\""}
//	  }
//	}
//
// Item fields are addressed as "arrayPath[].name".
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Metadata  jsonMetadataPatch         `json:"metadata"`
	Reference map[string]any            `json:"reference"`
	Fields    map[string]jsonFieldPatch `json:"fields"`
}

type jsonMetadataPatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type jsonFieldPatch struct {
	Label        string  `json:"label"`
	Description  string  `json:"description"`
	Placeholder  string  `json:"placeholder"`
	VisibleWhen  *string `json:"visibleWhen"`
	RequiredWhen *string `json:"requiredWhen"`
	EnabledWhen  *string `json:"enabledWhen"`
	ReadonlyWhen *string `json:"readonlyWhen"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied specification.
func (t *JSONPresetTransformer) Transform(ctx context.Context, spec *form.Specification) error {
	if spec == nil {
		return errors.New("json preset transformer: specification is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta := t.document.Metadata
	if meta.Title != "" {
		spec.Metadata.Title = meta.Title
	}
	if meta.Description != "" {
		spec.Metadata.Description = meta.Description
	}
	if meta.Version != "" {
		spec.Metadata.Version = meta.Version
	}
	if len(t.document.Reference) > 0 {
		merged := make(map[string]any, len(spec.Reference)+len(t.document.Reference))
		for k, v := range spec.Reference {
			merged[k] = v
		}
		for k, v := range t.document.Reference {
			merged[k] = v
		}
		spec.Reference = merged
	}

	paths := make([]string, 0, len(t.document.Fields))
	for path := range t.document.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		def := findField(spec, path)
		if def == nil {
			return fmt.Errorf("json preset transformer: field %q not found", path)
		}
		if err := applyFieldPatch(def, t.document.Fields[path]); err != nil {
			return fmt.Errorf("json preset transformer: field %q: %w", path, err)
		}
	}
	return nil
}

func applyFieldPatch(def form.FieldDefinition, patch jsonFieldPatch) error {
	common := form.CommonOf(def)
	if common == nil {
		return errors.New("unsupported field definition")
	}
	if patch.Label != "" {
		common.Label = patch.Label
	}
	if patch.Description != "" {
		common.Description = patch.Description
	}
	if patch.VisibleWhen != nil {
		common.VisibleWhen = *patch.VisibleWhen
	}
	if input, ok := def.(*form.InputField); ok && patch.Placeholder != "" {
		input.Placeholder = patch.Placeholder
	}

	if patch.RequiredWhen == nil && patch.EnabledWhen == nil && patch.ReadonlyWhen == nil {
		return nil
	}
	state := form.StateConditionsOf(def)
	if state == nil {
		return fmt.Errorf("%s fields cannot declare requiredWhen, enabledWhen or readonlyWhen", def.Kind())
	}
	if patch.RequiredWhen != nil {
		state.RequiredWhen = *patch.RequiredWhen
	}
	if patch.EnabledWhen != nil {
		state.EnabledWhen = *patch.EnabledWhen
	}
	if patch.ReadonlyWhen != nil {
		state.ReadonlyWhen = *patch.ReadonlyWhen
	}
	return nil
}

// findField resolves "a", "a.b" and "arr[].name" preset paths.
func findField(spec *form.Specification, path string) form.FieldDefinition {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if def, ok := spec.Fields[path]; ok {
		return def
	}
	head, rest, ok := strings.Cut(path, "[].")
	if !ok {
		return nil
	}
	parent := findField(spec, head)
	array, ok := parent.(*form.ArrayField)
	if !ok {
		return nil
	}
	return findItemField(array, rest)
}

func findItemField(array *form.ArrayField, path string) form.FieldDefinition {
	if def, ok := array.ItemFields[path]; ok {
		return def
	}
	head, rest, ok := strings.Cut(path, "[].")
	if !ok {
		return nil
	}
	nested, ok := array.ItemFields[head].(*form.ArrayField)
	if !ok {
		return nil
	}
	return findItemField(nested, rest)
}
