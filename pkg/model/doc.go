// Package model defines the result model that accumulates as features are
// applied to a session: named outputs under stable keys, and the ordered list
// of selectable elements with their metadata.
//
// A Result is immutable once produced by a feature step. Composition across
// steps happens exclusively through Merge, which implements last-writer-wins
// for outputs and owner-key shadowing for selections: a feature that
// re-creates a named body retires every selectable element the previous
// version of that body contributed.
package model
