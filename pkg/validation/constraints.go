package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/pkg/form"
)

const multipleOfTolerance = 1e-10

// effectiveProperty returns prop, or a property implied by the field kind
// when the schema does not describe the path.
func effectiveProperty(def form.FieldDefinition, prop *form.Property) *form.Property {
	if prop != nil {
		switch {
		case prop.Format == "" && def.Kind() == form.KindEmail:
			clone := *prop
			clone.Format = "email"
			return &clone
		case prop.Type == "" && (def.Kind() == form.KindArray || def.Kind() == form.KindMultiSelect):
			clone := *prop
			clone.Type = "array"
			return &clone
		}
		return prop
	}
	switch def.Kind() {
	case form.KindEmail:
		return &form.Property{Type: "string", Format: "email"}
	case form.KindNumber:
		return &form.Property{Type: "number"}
	case form.KindInteger:
		return &form.Property{Type: "integer"}
	case form.KindBoolean, form.KindCheckbox:
		return &form.Property{Type: "boolean"}
	case form.KindDate:
		return &form.Property{Type: "string", Format: "date"}
	case form.KindDateTime:
		return &form.Property{Type: "string", Format: "date-time"}
	case form.KindArray, form.KindMultiSelect:
		return &form.Property{Type: "array"}
	case form.KindObject:
		return &form.Property{Type: "object"}
	}
	return nil
}

// constraints returns the type and keyword violations of a present value.
func (v *validator) constraints(label string, value any, def form.FieldDefinition, prop *form.Property) []string {
	if prop == nil {
		return nil
	}
	var msgs []string
	switch prop.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return []string{label + " must be text"}
		}
		msgs = v.stringConstraints(label, str, prop)
	case "number", "integer":
		num, ok := toNumber(value)
		if !ok {
			return []string{label + " must be a number"}
		}
		if prop.Type == "integer" && num != math.Trunc(num) {
			return []string{label + " must be a whole number"}
		}
		msgs = numberConstraints(label, num, prop)
	case "boolean":
		if _, ok := value.(bool); !ok {
			return []string{label + " must be true or false"}
		}
	case "array":
		if _, ok := datapath.AsList(value); !ok {
			return []string{label + " must be a list"}
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return []string{label + " must be an object"}
		}
	}
	if len(prop.Enum) > 0 && isScalar(value) && !inEnum(value, prop.Enum) {
		msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", label, joinEnum(prop.Enum)))
	}
	return msgs
}

func (v *validator) stringConstraints(label, str string, prop *form.Property) []string {
	var msgs []string
	length := len([]rune(str))
	if prop.MinLength != nil && length < *prop.MinLength {
		msgs = append(msgs, fmt.Sprintf("%s must be at least %d characters", label, *prop.MinLength))
	}
	if prop.MaxLength != nil && length > *prop.MaxLength {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", label, *prop.MaxLength))
	}
	if prop.Pattern != "" {
		re, err := regexp.Compile(prop.Pattern)
		if err != nil {
			v.cfg.logger.Warn("validation pattern ignored", slog.String("pattern", prop.Pattern), slog.String("error", err.Error()))
		} else if !re.MatchString(str) {
			msgs = append(msgs, label+" has an invalid format")
		}
	}
	if prop.Format != "" {
		if check, ok := formats[prop.Format]; ok && !check.valid(str) {
			msgs = append(msgs, fmt.Sprintf("%s must be %s", label, check.description))
		}
	}
	return msgs
}

func numberConstraints(label string, num float64, prop *form.Property) []string {
	var msgs []string
	if prop.Minimum != nil && num < *prop.Minimum {
		msgs = append(msgs, fmt.Sprintf("%s must be at least %s", label, formatNumber(*prop.Minimum)))
	}
	if prop.Maximum != nil && num > *prop.Maximum {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %s", label, formatNumber(*prop.Maximum)))
	}
	if prop.ExclusiveMinimum != nil && num <= *prop.ExclusiveMinimum {
		msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", label, formatNumber(*prop.ExclusiveMinimum)))
	}
	if prop.ExclusiveMaximum != nil && num >= *prop.ExclusiveMaximum {
		msgs = append(msgs, fmt.Sprintf("%s must be less than %s", label, formatNumber(*prop.ExclusiveMaximum)))
	}
	if prop.MultipleOf != nil && *prop.MultipleOf != 0 && !isMultipleOf(num, *prop.MultipleOf) {
		msgs = append(msgs, fmt.Sprintf("%s must be a multiple of %s", label, formatNumber(*prop.MultipleOf)))
	}
	return msgs
}

// isMultipleOf accepts remainders within tolerance of zero or of the
// divisor, absorbing binary floating point error such as 0.3 / 0.1.
func isMultipleOf(value, divisor float64) bool {
	divisor = math.Abs(divisor)
	remainder := math.Mod(math.Abs(value), divisor)
	return remainder < multipleOfTolerance || math.Abs(remainder-divisor) < multipleOfTolerance
}

// itemConstraints checks minItems and maxItems for any list value, the
// empty list included. Field-level bounds override the schema's.
func itemConstraints(label string, value any, def form.FieldDefinition, prop *form.Property) []string {
	list, ok := datapath.AsList(value)
	if !ok {
		return nil
	}
	var minItems, maxItems *int
	if prop != nil {
		minItems, maxItems = prop.MinItems, prop.MaxItems
	}
	if array, ok := def.(*form.ArrayField); ok {
		if array.MinItems != nil {
			minItems = array.MinItems
		}
		if array.MaxItems != nil {
			maxItems = array.MaxItems
		}
	}
	return itemCount(label, len(list), minItems, maxItems)
}

func itemCount(label string, count int, minItems, maxItems *int) []string {
	var msgs []string
	if minItems != nil && count < *minItems {
		msgs = append(msgs, fmt.Sprintf("%s must have at least %d items", label, *minItems))
	}
	if maxItems != nil && count > *maxItems {
		msgs = append(msgs, fmt.Sprintf("%s must have at most %d items", label, *maxItems))
	}
	return msgs
}

func toNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func inEnum(value any, enum []any) bool {
	num, numeric := toNumber(value)
	for _, candidate := range enum {
		if numeric {
			if other, ok := toNumber(candidate); ok && other == num {
				return true
			}
			continue
		}
		switch value.(type) {
		case string, bool:
			if candidate == value {
				return true
			}
		}
	}
	return false
}

func isScalar(value any) bool {
	switch value.(type) {
	case string, bool:
		return true
	}
	_, ok := toNumber(value)
	return ok
}

func joinEnum(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, candidate := range enum {
		parts = append(parts, fmt.Sprint(candidate))
	}
	return strings.Join(parts, ", ")
}
