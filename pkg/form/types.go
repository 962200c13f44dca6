package form

import (
	"strings"

	"github.com/goliatone/go-formstate/internal/datapath"
)

// Specification is the full description of a form: metadata, property
// constraints, field definitions, field order, computed expressions, pages
// and free-form reference data.
type Specification struct {
	Metadata   Metadata       `json:"metadata"`
	Schema     Schema         `json:"schema"`
	Fields     FieldMap       `json:"fields"`
	FieldOrder []string       `json:"fieldOrder"`
	Computed   Computed       `json:"computed,omitempty"`
	Pages      []Page         `json:"pages,omitempty"`
	Reference  map[string]any `json:"referenceData,omitempty"`
}

// Metadata identifies the specification.
type Metadata struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is the JSON-Schema-like property map. Required lists top-level
// property names that are statically required.
type Schema struct {
	Properties map[string]*Property `json:"properties,omitempty"`
	Required   []string             `json:"required,omitempty"`
}

// Property carries the type and constraint keywords the validator enforces.
// Numeric bounds follow Draft 2020-12 (exclusive bounds are numbers).
type Property struct {
	Type             string               `json:"type,omitempty"`
	Format           string               `json:"format,omitempty"`
	Title            string               `json:"title,omitempty"`
	Minimum          *float64             `json:"minimum,omitempty"`
	Maximum          *float64             `json:"maximum,omitempty"`
	ExclusiveMinimum *float64             `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64             `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64             `json:"multipleOf,omitempty"`
	MinLength        *int                 `json:"minLength,omitempty"`
	MaxLength        *int                 `json:"maxLength,omitempty"`
	Pattern          string               `json:"pattern,omitempty"`
	Enum             []any                `json:"enum,omitempty"`
	MinItems         *int                 `json:"minItems,omitempty"`
	MaxItems         *int                 `json:"maxItems,omitempty"`
	Items            *Property            `json:"items,omitempty"`
	Properties       map[string]*Property `json:"properties,omitempty"`
	Required         []string             `json:"required,omitempty"`
}

// Page groups field paths; a page with VisibleWhen is shown only when the
// expression resolves to true.
type Page struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	VisibleWhen string   `json:"visibleWhen,omitempty"`
}

// Option is a static choice of a selection field.
type Option struct {
	Value       any    `json:"value"`
	Label       string `json:"label,omitempty"`
	VisibleWhen string `json:"visibleWhen,omitempty"`
}

// Severity classifies validation findings. Only SeverityError blocks.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule is a custom validation rule: a boolean expression evaluated with the
// field value bound as `value`. Severity defaults to SeverityError.
type Rule struct {
	Expression string   `json:"expression"`
	Message    string   `json:"message,omitempty"`
	Severity   Severity `json:"severity,omitempty"`
}

// EffectiveSeverity returns the rule severity, defaulting to error.
func (r Rule) EffectiveSeverity() Severity {
	if r.Severity == SeverityWarning {
		return SeverityWarning
	}
	return SeverityError
}

// Field resolves a definition by path. Indexed item paths such as
// "contacts[0].email" resolve through the array definition's item fields
// when no explicit entry exists.
func (s *Specification) Field(path string) (FieldDefinition, bool) {
	if s == nil {
		return nil, false
	}
	if def, ok := s.Fields[path]; ok && def != nil {
		return def, true
	}
	arrayPath, _, rest, ok := datapath.SplitItem(path)
	if !ok {
		return nil, false
	}
	parent, ok := s.Field(arrayPath)
	if !ok {
		return nil, false
	}
	array, ok := parent.(*ArrayField)
	if !ok {
		return nil, false
	}
	def, ok := array.ItemFields[rest]
	return def, ok && def != nil
}

// Property resolves the schema property for a field path. Dots descend into
// object properties, indexes descend into array items.
func (s *Specification) Property(path string) *Property {
	if s == nil {
		return nil
	}
	segments := datapath.Parse(path)
	if len(segments) == 0 {
		return nil
	}
	current := s.Schema.Properties[segments[0].Name]
	if current != nil && segments[0].Index >= 0 {
		current = current.Items
	}
	for _, seg := range segments[1:] {
		if current == nil {
			return nil
		}
		current = current.Properties[seg.Name]
		if current != nil && seg.Index >= 0 {
			current = current.Items
		}
	}
	return current
}

// SchemaRequired reports whether the schema statically requires path, via
// the root required list, a parent object's required list, or the array
// items' required list for indexed paths.
func (s *Specification) SchemaRequired(path string) bool {
	if s == nil {
		return false
	}
	segments := datapath.Parse(path)
	if len(segments) == 0 {
		return false
	}
	if len(segments) == 1 {
		return contains(s.Schema.Required, segments[0].Name)
	}

	parentPath := make([]string, 0, len(segments)-1)
	for _, seg := range segments[:len(segments)-1] {
		parentPath = append(parentPath, seg.Name)
	}
	parent := s.Property(strings.Join(parentPath, "."))
	if parent == nil {
		return false
	}
	if segments[len(segments)-2].Index >= 0 && parent.Items != nil {
		parent = parent.Items
	}
	return contains(parent.Required, segments[len(segments)-1].Name)
}

// Page returns the page with the given id.
func (s *Specification) Page(id string) (Page, bool) {
	if s == nil {
		return Page{}, false
	}
	for _, page := range s.Pages {
		if page.ID == id {
			return page, true
		}
	}
	return Page{}, false
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
