package datapath

import (
	"strconv"
	"strings"
)

// Segment is one step of a dotted/indexed field path. Index is -1 when the
// segment does not address an array element.
type Segment struct {
	Name  string
	Index int
}

// Parse splits paths such as "contacts[2].email" or "address.city" into
// segments. Malformed index brackets are kept as part of the name so lookups
// simply miss instead of panicking.
func Parse(path string) []Segment {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	out := make([]Segment, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseSegment(part))
	}
	return out
}

func parseSegment(raw string) Segment {
	open := strings.IndexByte(raw, '[')
	if open <= 0 || !strings.HasSuffix(raw, "]") {
		return Segment{Name: raw, Index: -1}
	}
	idx, err := strconv.Atoi(raw[open+1 : len(raw)-1])
	if err != nil || idx < 0 {
		return Segment{Name: raw, Index: -1}
	}
	return Segment{Name: raw[:open], Index: idx}
}

// ItemPath builds the canonical key for an array element field.
func ItemPath(arrayPath string, index int, name string) string {
	return arrayPath + "[" + strconv.Itoa(index) + "]." + name
}

// SplitItem reports whether path addresses an array item field and returns
// the array path, the element index and the remaining item field name.
// "orders[1].sku" yields ("orders", 1, "sku", true). The split happens at the
// last indexed segment so nested arrays resolve to their innermost element.
func SplitItem(path string) (arrayPath string, index int, rest string, ok bool) {
	close := strings.LastIndex(path, "].")
	if close < 0 {
		return "", 0, "", false
	}
	open := strings.LastIndex(path[:close], "[")
	if open <= 0 {
		return "", 0, "", false
	}
	idx, err := strconv.Atoi(path[open+1 : close])
	if err != nil || idx < 0 {
		return "", 0, "", false
	}
	rest = path[close+2:]
	if rest == "" {
		return "", 0, "", false
	}
	return path[:open], idx, rest, true
}

// Lookup resolves path against a decoded data snapshot. Exact keys win over
// traversal so flattened payloads ("cta.headline") keep working.
func Lookup(values map[string]any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, seg := range Parse(path) {
		next, ok := field(current, seg.Name)
		if !ok {
			return nil, false
		}
		current = next
		if seg.Index >= 0 {
			list, ok := AsList(current)
			if !ok || seg.Index >= len(list) {
				return nil, false
			}
			current = list[seg.Index]
		}
	}
	return current, true
}

func field(current any, name string) (any, bool) {
	switch typed := current.(type) {
	case map[string]any:
		v, ok := typed[name]
		return v, ok
	case map[string]string:
		v, ok := typed[name]
		return v, ok
	default:
		return nil, false
	}
}

// AsList normalises the slice shapes produced by JSON, YAML and Go callers.
func AsList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

// Clone deep-copies the maps and slices of a decoded data snapshot so the
// copy can be edited without touching the caller's values.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = Clone(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = Clone(v)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = Clone(v)
		}
		return out
	default:
		return value
	}
}

// Delete removes the value addressed by path from values, which must be a
// Clone-produced tree. It reports whether anything was removed.
func Delete(values map[string]any, path string) bool {
	if _, ok := values[path]; ok {
		delete(values, path)
		return true
	}
	segments := Parse(path)
	if len(segments) == 0 {
		return false
	}
	var current any = values
	for _, seg := range segments[:len(segments)-1] {
		next, ok := field(current, seg.Name)
		if !ok {
			return false
		}
		current = next
		if seg.Index >= 0 {
			list, ok := current.([]any)
			if !ok || seg.Index >= len(list) {
				return false
			}
			current = list[seg.Index]
		}
	}
	last := segments[len(segments)-1]
	parent, ok := current.(map[string]any)
	if !ok || last.Index >= 0 {
		return false
	}
	if _, ok := parent[last.Name]; !ok {
		return false
	}
	delete(parent, last.Name)
	return true
}

// Set writes value at path, creating intermediate objects and growing lists
// as needed. It reports false when an existing value blocks the path.
func Set(values map[string]any, path string, value any) bool {
	segments := Parse(path)
	if values == nil || len(segments) == 0 {
		return false
	}
	if _, ok := values[path]; ok {
		values[path] = value
		return true
	}
	current := values
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg.Index < 0 {
			if last {
				current[seg.Name] = value
				return true
			}
			next, ok := current[seg.Name].(map[string]any)
			if !ok {
				if current[seg.Name] != nil {
					return false
				}
				next = make(map[string]any)
				current[seg.Name] = next
			}
			current = next
			continue
		}

		list, ok := current[seg.Name].([]any)
		if !ok && current[seg.Name] != nil {
			return false
		}
		for len(list) <= seg.Index {
			list = append(list, nil)
		}
		current[seg.Name] = list
		if last {
			list[seg.Index] = value
			return true
		}
		next, ok := list[seg.Index].(map[string]any)
		if !ok {
			if list[seg.Index] != nil {
				return false
			}
			next = make(map[string]any)
			list[seg.Index] = next
		}
		current = next
	}
	return true
}
