// Package testsupport loads the shared specification fixtures used across
// package tests.
package testsupport

import (
	"embed"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-formstate/pkg/expression"
	"github.com/goliatone/go-formstate/pkg/expression/exprlang"
	"github.com/goliatone/go-formstate/pkg/form"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

// LoadSpecification decodes and checks an embedded fixture by file name.
// Testing helpers fail the test on error to keep callers concise.
func LoadSpecification(t *testing.T, name string) *form.Specification {
	t.Helper()

	spec, err := LoadSpecificationFromFS(name)
	if err != nil {
		t.Fatalf("load specification: %v", err)
	}
	return spec
}

// LoadSpecificationFromFS returns a specification without requiring
// testing.T, allowing setup outside of tests.
func LoadSpecificationFromFS(name string) (*form.Specification, error) {
	if name == "" {
		return nil, errors.New("testsupport: fixture name is required")
	}
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	spec, err := form.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode fixture: %w", err)
	}
	if err := form.Check(spec); err != nil {
		return nil, fmt.Errorf("testsupport: check fixture: %w", err)
	}
	return spec, nil
}

// MustDecode decodes an inline JSON or YAML specification.
func MustDecode(t *testing.T, raw string) *form.Specification {
	t.Helper()

	spec, err := form.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode specification: %v", err)
	}
	return spec
}

// NewEvaluator returns an expr-lang backed evaluator recording warnings.
func NewEvaluator() (*expression.Evaluator, *expression.Recorder) {
	rec := &expression.Recorder{}
	return expression.NewEvaluator(exprlang.New(), expression.WithSink(rec)), rec
}
