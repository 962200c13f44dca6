package expression

import "fmt"

// Engine is the external expression engine. Implementations own the grammar
// and built-ins; they must expose every variable of the supplied namespace
// as a bare identifier and keep equality against unbound variables definite
// while relational comparisons against unbound variables yield nil.
type Engine interface {
	// Evaluate runs expression against vars and returns the raw result.
	Evaluate(expression string, vars map[string]any) (any, error)
	// Check reports a *SyntaxError for expressions that cannot be parsed.
	// Runtime-only problems such as unbound variables are not reported.
	Check(expression string) error
}

// ReferenceFinder is implemented by engines that can list the members an
// expression reads from a namespace root, e.g. the names in `computed.total`.
type ReferenceFinder interface {
	References(expression, root string) ([]string, error)
}

// SyntaxError marks an expression the engine cannot parse.
type SyntaxError struct {
	Expression string
	Err        error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expression: syntax error in %q: %v", e.Expression, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
