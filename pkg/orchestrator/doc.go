// Package orchestrator wires the expression engine, Calculate, the state
// resolvers and the validator behind a single dependency injection friendly
// entry point. An Orchestrator holds configuration only; every call takes an
// immutable (data, specification) snapshot and returns fresh results, so one
// instance may serve concurrent callers.
package orchestrator
