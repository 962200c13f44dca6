package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Option configures an Importer.
type Option func(*Importer)

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs(enabled bool) Option {
	return func(i *Importer) {
		i.externalRefs = enabled
	}
}

// WithValidation validates the document before importing.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// Importer converts OpenAPI schemas into form schemas.
type Importer struct {
	externalRefs bool
	validate     bool
}

// NewImporter constructs an Importer.
func NewImporter(options ...Option) *Importer {
	i := &Importer{}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

func (i *Importer) load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi importer: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi importer: load document: %w", err)
	}
	if i.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi importer: validate: %w", err)
		}
	}
	return doc, nil
}

// Component imports the named schema under components.schemas.
func (i *Importer) Component(ctx context.Context, raw []byte, name string) (form.Schema, error) {
	doc, err := i.load(ctx, raw)
	if err != nil {
		return form.Schema{}, err
	}
	if doc.Components == nil {
		return form.Schema{}, fmt.Errorf("openapi importer: component %q not found", name)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil {
		return form.Schema{}, fmt.Errorf("openapi importer: component %q not found", name)
	}
	return schemaFromRef(ref)
}

// Operation imports the request body schema of the operation with the given
// operationId, preferring form-friendly media types.
func (i *Importer) Operation(ctx context.Context, raw []byte, operationID string) (form.Schema, error) {
	doc, err := i.load(ctx, raw)
	if err != nil {
		return form.Schema{}, err
	}
	if doc.Paths == nil {
		return form.Schema{}, fmt.Errorf("openapi importer: operation %q not found", operationID)
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || op.OperationID != operationID {
				continue
			}
			ref := requestSchema(op.RequestBody)
			if ref == nil {
				return form.Schema{}, fmt.Errorf("openapi importer: operation %q has no request body schema", operationID)
			}
			return schemaFromRef(ref)
		}
	}
	return form.Schema{}, fmt.Errorf("openapi importer: operation %q not found", operationID)
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	for _, mt := range content {
		if mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func schemaFromRef(ref *openapi3.SchemaRef) (form.Schema, error) {
	root := convertSchema(ref, map[*openapi3.Schema]bool{})
	if root == nil || (root.Type != "" && root.Type != "object") {
		return form.Schema{}, errors.New("openapi importer: schema is not an object")
	}
	return form.Schema{Properties: root.Properties, Required: root.Required}, nil
}

// Apply merges imported into spec.Schema. Properties already declared by the
// specification win; required lists are unioned.
func Apply(spec *form.Specification, imported form.Schema) {
	if spec == nil {
		return
	}
	if spec.Schema.Properties == nil {
		spec.Schema.Properties = make(map[string]*form.Property, len(imported.Properties))
	}
	for name, prop := range imported.Properties {
		if _, exists := spec.Schema.Properties[name]; !exists {
			spec.Schema.Properties[name] = prop
		}
	}
	for _, name := range imported.Required {
		if !contains(spec.Schema.Required, name) {
			spec.Schema.Required = append(spec.Schema.Required, name)
		}
	}
}

// convertSchema maps an OpenAPI schema onto form.Property. visiting guards
// recursive references; a cycle yields an untyped property.
func convertSchema(ref *openapi3.SchemaRef, visiting map[*openapi3.Schema]bool) *form.Property {
	if ref == nil || ref.Value == nil {
		return nil
	}
	src := ref.Value
	if visiting[src] {
		return &form.Property{}
	}
	visiting[src] = true
	defer delete(visiting, src)

	prop := &form.Property{
		Type:    firstSchemaType(src.Type),
		Format:  src.Format,
		Title:   src.Title,
		Pattern: src.Pattern,
	}
	if len(src.Enum) > 0 {
		prop.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Required) > 0 {
		prop.Required = append([]string(nil), src.Required...)
	}
	if src.Min != nil {
		value := *src.Min
		if src.ExclusiveMin {
			prop.ExclusiveMinimum = &value
		} else {
			prop.Minimum = &value
		}
	}
	if src.Max != nil {
		value := *src.Max
		if src.ExclusiveMax {
			prop.ExclusiveMaximum = &value
		} else {
			prop.Maximum = &value
		}
	}
	if src.MultipleOf != nil {
		value := *src.MultipleOf
		prop.MultipleOf = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		prop.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		prop.MaxLength = &value
	}
	if src.MinItems != 0 {
		value := int(src.MinItems)
		prop.MinItems = &value
	}
	if src.MaxItems != nil {
		value := int(*src.MaxItems)
		prop.MaxItems = &value
	}
	if len(src.Properties) > 0 {
		prop.Properties = make(map[string]*form.Property, len(src.Properties))
		for name, child := range src.Properties {
			if converted := convertSchema(child, visiting); converted != nil {
				prop.Properties[name] = converted
			}
		}
	}
	if src.Items != nil {
		prop.Items = convertSchema(src.Items, visiting)
	}
	mergeAllOf(prop, src.AllOf, visiting)
	return prop
}

// mergeAllOf folds allOf members into prop: missing keywords are filled and
// properties and required lists are combined.
func mergeAllOf(prop *form.Property, refs openapi3.SchemaRefs, visiting map[*openapi3.Schema]bool) {
	for _, ref := range refs {
		member := convertSchema(ref, visiting)
		if member == nil {
			continue
		}
		if prop.Type == "" {
			prop.Type = member.Type
		}
		if prop.Format == "" {
			prop.Format = member.Format
		}
		for name, child := range member.Properties {
			if prop.Properties == nil {
				prop.Properties = make(map[string]*form.Property)
			}
			if _, exists := prop.Properties[name]; !exists {
				prop.Properties[name] = child
			}
		}
		for _, name := range member.Required {
			if !contains(prop.Required, name) {
				prop.Required = append(prop.Required, name)
			}
		}
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
