package form

// FieldKind is the discriminator of a field definition (the `type` key).
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindPassword FieldKind = "password"
	KindEmail    FieldKind = "email"
	KindNumber   FieldKind = "number"
	KindInteger  FieldKind = "integer"

	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
	KindRadio       FieldKind = "radio"

	KindBoolean  FieldKind = "boolean"
	KindCheckbox FieldKind = "checkbox"
	KindDate     FieldKind = "date"
	KindDateTime FieldKind = "datetime"
	KindTime     FieldKind = "time"

	KindArray  FieldKind = "array"
	KindObject FieldKind = "object"

	KindDisplay   FieldKind = "display"
	KindHeading   FieldKind = "heading"
	KindParagraph FieldKind = "paragraph"

	KindComputed FieldKind = "computed"
)

// FieldDefinition is the sealed sum type over field kinds. Use a type switch
// on the concrete variants (*InputField, *SelectField, *BasicField,
// *ArrayField, *ObjectField, *DisplayField, *ComputedPlaceholder).
type FieldDefinition interface {
	Kind() FieldKind
	Common() FieldCommon
	isFieldDefinition()
}

// Stateful is implemented by the variants that may carry required, enabled
// and readonly expressions. Display-only kinds deliberately do not.
type Stateful interface {
	FieldDefinition
	State() StateConditions
}

// FieldCommon holds the attributes shared by every variant.
type FieldCommon struct {
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	VisibleWhen string `json:"visibleWhen,omitempty"`
	Rules       []Rule `json:"rules,omitempty"`
}

// StateConditions are the conditional expressions of stateful variants.
type StateConditions struct {
	RequiredWhen string `json:"requiredWhen,omitempty"`
	EnabledWhen  string `json:"enabledWhen,omitempty"`
	ReadonlyWhen string `json:"readonlyWhen,omitempty"`
}

// InputField covers text-like and numeric inputs.
type InputField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	StateConditions
	Placeholder string `json:"placeholder,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Suffix      string `json:"suffix,omitempty"`
}

// SelectField offers a static option list, each option optionally gated by
// its own visibility expression.
type SelectField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	StateConditions
	Options []Option `json:"options,omitempty"`
}

// BasicField covers boolean and date-like inputs without extra payload.
type BasicField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	StateConditions
}

// ArrayField owns the item field definitions evaluated per element. MinItems
// and MaxItems override the schema-level constraints when set.
type ArrayField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	StateConditions
	ItemFields FieldMap `json:"itemFields,omitempty"`
	MinItems   *int     `json:"minItems,omitempty"`
	MaxItems   *int     `json:"maxItems,omitempty"`
}

// ObjectField groups nested values under one key.
type ObjectField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	StateConditions
}

// DisplayField renders static content; it never holds a value.
type DisplayField struct {
	Type FieldKind `json:"type"`
	FieldCommon
	Content string `json:"content,omitempty"`
}

// ComputedPlaceholder shows the value of a named computed expression.
type ComputedPlaceholder struct {
	Type FieldKind `json:"type"`
	FieldCommon
	Source string `json:"source,omitempty"`
}

func (f *InputField) Kind() FieldKind          { return f.Type }
func (f *SelectField) Kind() FieldKind         { return f.Type }
func (f *BasicField) Kind() FieldKind          { return f.Type }
func (f *ArrayField) Kind() FieldKind          { return KindArray }
func (f *ObjectField) Kind() FieldKind         { return KindObject }
func (f *DisplayField) Kind() FieldKind        { return f.Type }
func (f *ComputedPlaceholder) Kind() FieldKind { return KindComputed }

func (f *InputField) Common() FieldCommon          { return f.FieldCommon }
func (f *SelectField) Common() FieldCommon         { return f.FieldCommon }
func (f *BasicField) Common() FieldCommon          { return f.FieldCommon }
func (f *ArrayField) Common() FieldCommon          { return f.FieldCommon }
func (f *ObjectField) Common() FieldCommon         { return f.FieldCommon }
func (f *DisplayField) Common() FieldCommon        { return f.FieldCommon }
func (f *ComputedPlaceholder) Common() FieldCommon { return f.FieldCommon }

func (f *InputField) State() StateConditions  { return f.StateConditions }
func (f *SelectField) State() StateConditions { return f.StateConditions }
func (f *BasicField) State() StateConditions  { return f.StateConditions }
func (f *ArrayField) State() StateConditions  { return f.StateConditions }
func (f *ObjectField) State() StateConditions { return f.StateConditions }

func (*InputField) isFieldDefinition()          {}
func (*SelectField) isFieldDefinition()         {}
func (*BasicField) isFieldDefinition()          {}
func (*ArrayField) isFieldDefinition()          {}
func (*ObjectField) isFieldDefinition()         {}
func (*DisplayField) isFieldDefinition()        {}
func (*ComputedPlaceholder) isFieldDefinition() {}

// StateOf returns the state conditions of def, or the zero value for
// display-only kinds.
func StateOf(def FieldDefinition) (StateConditions, bool) {
	stateful, ok := def.(Stateful)
	if !ok {
		return StateConditions{}, false
	}
	return stateful.State(), true
}

// IsDisplayOnly reports whether def never holds user input.
func IsDisplayOnly(def FieldDefinition) bool {
	switch def.(type) {
	case *DisplayField, *ComputedPlaceholder:
		return true
	default:
		return false
	}
}

// CommonOf returns a pointer to the shared attributes of def for in-place
// edits such as presets.
func CommonOf(def FieldDefinition) *FieldCommon {
	switch typed := def.(type) {
	case *InputField:
		return &typed.FieldCommon
	case *SelectField:
		return &typed.FieldCommon
	case *BasicField:
		return &typed.FieldCommon
	case *ArrayField:
		return &typed.FieldCommon
	case *ObjectField:
		return &typed.FieldCommon
	case *DisplayField:
		return &typed.FieldCommon
	case *ComputedPlaceholder:
		return &typed.FieldCommon
	default:
		return nil
	}
}

// StateConditionsOf returns a pointer to the state conditions of def, or nil
// for display-only kinds.
func StateConditionsOf(def FieldDefinition) *StateConditions {
	switch typed := def.(type) {
	case *InputField:
		return &typed.StateConditions
	case *SelectField:
		return &typed.StateConditions
	case *BasicField:
		return &typed.StateConditions
	case *ArrayField:
		return &typed.StateConditions
	case *ObjectField:
		return &typed.StateConditions
	default:
		return nil
	}
}
