// Package selector implements the declarative element query language used to
// re-select geometry from a result model without raw identifiers.
//
// A selector names an element class, a conjunction of predicates, and an
// ordered ranking pipeline. Resolution filters the model's selectable
// elements to the class, requires every predicate to pass, then runs the
// ranking stages left to right; each stage keeps only the candidates tied
// for the best value and never widens the set. Resolution succeeds only when
// exactly one candidate remains.
//
// Predicates and ranking stages are closed sets of types: a selector that
// names an unknown predicate or rank kind fails when it is parsed, not
// silently at resolution time.
package selector
