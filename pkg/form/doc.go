// Package form defines the declarative form specification consumed by the
// resolvers: the schema-style property map, the field definition sum type,
// the ordered computed-field list, pages and reference data.
//
// Specifications are plain values. Decode/Load build them from JSON or YAML,
// Check reports structural problems (dangling paths, bad item paths) so
// callers can reject a specification before evaluating it.
package form
