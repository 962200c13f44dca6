package form

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/goliatone/go-formstate/internal/datapath"
)

// Check reports structural problems that would otherwise degrade silently at
// evaluation time: field-order or page entries without a definition,
// duplicate entries, item paths whose parent is not an array, and unnamed or
// duplicated computed fields. All problems are returned together.
func Check(spec *Specification) error {
	if spec == nil {
		return fmt.Errorf("form: specification is nil")
	}
	var result *multierror.Error

	seen := make(map[string]struct{}, len(spec.FieldOrder))
	for _, path := range spec.FieldOrder {
		if _, dup := seen[path]; dup {
			result = multierror.Append(result, fmt.Errorf("fieldOrder: duplicate entry %q", path))
			continue
		}
		seen[path] = struct{}{}
		if _, ok := spec.Field(path); !ok {
			result = multierror.Append(result, fmt.Errorf("fieldOrder: %q has no field definition", path))
		}
	}

	for _, path := range spec.Fields.SortedPaths() {
		if err := checkItemPath(spec, path); err != nil {
			result = multierror.Append(result, err)
		}
		if array, ok := spec.Fields[path].(*ArrayField); ok {
			for name := range array.ItemFields {
				if strings.ContainsAny(name, ".[]") {
					result = multierror.Append(result, fmt.Errorf("fields: %q item field %q must be a plain name", path, name))
				}
			}
		}
	}

	pageIDs := make(map[string]struct{}, len(spec.Pages))
	for idx, page := range spec.Pages {
		id := strings.TrimSpace(page.ID)
		if id == "" {
			result = multierror.Append(result, fmt.Errorf("pages[%d]: id is required", idx))
		} else if _, dup := pageIDs[id]; dup {
			result = multierror.Append(result, fmt.Errorf("pages: duplicate id %q", id))
		}
		pageIDs[id] = struct{}{}
		for _, path := range page.Fields {
			if _, ok := spec.Field(path); !ok {
				result = multierror.Append(result, fmt.Errorf("pages[%s]: %q has no field definition", id, path))
			}
		}
	}

	names := make(map[string]struct{}, len(spec.Computed))
	for idx, entry := range spec.Computed {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("computed[%d]: name is required", idx))
			continue
		}
		if _, dup := names[name]; dup {
			result = multierror.Append(result, fmt.Errorf("computed: duplicate name %q", name))
		}
		names[name] = struct{}{}
		if strings.TrimSpace(entry.Expression) == "" {
			result = multierror.Append(result, fmt.Errorf("computed: %q has an empty expression", name))
		}
	}

	return result.ErrorOrNil()
}

func checkItemPath(spec *Specification, path string) error {
	arrayPath, _, _, ok := datapath.SplitItem(path)
	if !ok {
		return nil
	}
	parent, ok := spec.Field(arrayPath)
	if !ok {
		return fmt.Errorf("fields: %q refers to undefined array %q", path, arrayPath)
	}
	if _, ok := parent.(*ArrayField); !ok {
		return fmt.Errorf("fields: %q refers to %q which is not an array", path, arrayPath)
	}
	return nil
}
