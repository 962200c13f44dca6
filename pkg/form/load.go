package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Loader reads specification documents from files or an fs.FS.
type Loader struct {
	fs        fs.FS
	skipCheck bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem sets the filesystem used for SourceKindFS sources.
func WithFileSystem(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithoutCheck skips the structural Check after decoding, leaving dangling
// references to the resolvers' best-effort handling.
func WithoutCheck() LoaderOption {
	return func(l *Loader) {
		l.skipCheck = true
	}
}

// NewLoader constructs a Loader.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads, decodes and (unless disabled) checks a specification.
func (l *Loader) Load(ctx context.Context, src Source) (*Specification, error) {
	if src == nil {
		return nil, errors.New("form loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("form loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	default:
		err = errors.New("form loader: unsupported source kind")
	}
	if err != nil {
		return nil, fmt.Errorf("form loader: read %s: %w", src.Location(), err)
	}

	spec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("form loader: %s: %w", src.Location(), err)
	}
	if !l.skipCheck {
		if err := Check(spec); err != nil {
			return nil, fmt.Errorf("form loader: %s: %w", src.Location(), err)
		}
	}
	return spec, nil
}

// Decode parses a JSON or YAML specification document. JSON is attempted
// first; anything else is read as YAML.
func Decode(data []byte) (*Specification, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("form: document is empty")
	}

	payload := data
	if !json.Valid(data) {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("form: invalid JSON or YAML: %w", err)
		}
		payload = converted
	}

	var spec Specification
	if err := json.Unmarshal(payload, &spec); err != nil {
		return nil, fmt.Errorf("form: decode: %w", err)
	}
	return &spec, nil
}

// DecodeData parses a JSON or YAML data snapshot into a value map.
func DecodeData(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	payload := data
	if !json.Valid(data) {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("form: invalid JSON or YAML data: %w", err)
		}
		payload = converted
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("form: decode data: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
