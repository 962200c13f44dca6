// Package expression is the evaluation boundary between the resolvers and a
// pluggable three-valued expression engine.
//
// Engines return raw values: true, false, nil (unknown) or any other value.
// Evaluator narrows those values for its callers and applies one collapse
// policy everywhere:
//
//   - an evaluation failure collapses to false (boolean) or nil
//     (number/string) and emits a failure warning;
//   - an unknown (nil) boolean result collapses to false and emits a
//     distinct warning with null-safe guidance;
//   - a successful result of the wrong kind collapses the same way with its
//     own warning.
//
// Warnings are diagnostics for expression authors. They travel through a
// Sink and never change the value a resolver returns.
package expression
