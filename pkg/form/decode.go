package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldMap maps field paths to definitions. It decodes the `type`
// discriminator into the matching variant.
type FieldMap map[string]FieldDefinition

type fieldEnvelope struct {
	Type         FieldKind `json:"type"`
	RequiredWhen string    `json:"requiredWhen"`
	EnabledWhen  string    `json:"enabledWhen"`
	ReadonlyWhen string    `json:"readonlyWhen"`
}

// UnmarshalJSON decodes each entry into its concrete variant.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FieldMap, len(raw))
	for path, payload := range raw {
		def, err := DecodeField(payload)
		if err != nil {
			return fmt.Errorf("form: field %q: %w", path, err)
		}
		out[path] = def
	}
	*m = out
	return nil
}

// DecodeField decodes a single field definition payload.
func DecodeField(payload []byte) (FieldDefinition, error) {
	var env fieldEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	kind := FieldKind(strings.ToLower(strings.TrimSpace(string(env.Type))))
	if kind == "" {
		kind = KindText
	}

	var def FieldDefinition
	switch kind {
	case KindText, KindTextarea, KindPassword, KindEmail, KindNumber, KindInteger:
		def = &InputField{}
	case KindSelect, KindMultiSelect, KindRadio:
		def = &SelectField{}
	case KindBoolean, KindCheckbox, KindDate, KindDateTime, KindTime:
		def = &BasicField{}
	case KindArray:
		def = &ArrayField{}
	case KindObject:
		def = &ObjectField{}
	case KindDisplay, KindHeading, KindParagraph, KindComputed:
		if env.RequiredWhen != "" || env.EnabledWhen != "" || env.ReadonlyWhen != "" {
			return nil, fmt.Errorf("%s fields cannot declare requiredWhen, enabledWhen or readonlyWhen", kind)
		}
		if kind == KindComputed {
			def = &ComputedPlaceholder{}
		} else {
			def = &DisplayField{}
		}
	default:
		return nil, fmt.Errorf("unknown field type %q", env.Type)
	}

	if err := json.Unmarshal(payload, def); err != nil {
		return nil, err
	}
	setKind(def, kind)
	return def, nil
}

func setKind(def FieldDefinition, kind FieldKind) {
	switch typed := def.(type) {
	case *InputField:
		typed.Type = kind
	case *SelectField:
		typed.Type = kind
	case *BasicField:
		typed.Type = kind
	case *ArrayField:
		typed.Type = kind
	case *ObjectField:
		typed.Type = kind
	case *DisplayField:
		typed.Type = kind
	case *ComputedPlaceholder:
		typed.Type = kind
	}
}

// ComputedField is a named, expression-derived value.
type ComputedField struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Computed keeps computed fields in declaration order. It decodes from a JSON
// object (key order preserved) or from a list of {name, expression}.
type Computed []ComputedField

// Names lists computed names in declaration order.
func (c Computed) Names() []string {
	out := make([]string, 0, len(c))
	for _, entry := range c {
		out = append(out, entry.Name)
	}
	return out
}

// Lookup returns the expression declared for name.
func (c Computed) Lookup(name string) (string, bool) {
	for _, entry := range c {
		if entry.Name == name {
			return entry.Expression, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts both the object and the list form.
func (c *Computed) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []ComputedField
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out Computed
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return errors.New("form: computed keys must be strings")
		}
		var expression string
		if err := dec.Decode(&expression); err != nil {
			return fmt.Errorf("form: computed %q: %w", name, err)
		}
		out = append(out, ComputedField{Name: name, Expression: expression})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// MarshalJSON emits the object form, keeping declaration order.
func (c Computed) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Expression)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortedPaths returns the map keys in lexical order.
func (m FieldMap) SortedPaths() []string {
	out := make([]string, 0, len(m))
	for path := range m {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
