// Package pmi builds the product-and-manufacturing-information annotation
// graph: datum definitions and tolerance constraints that reference model
// elements through selectors and reference each other by symbolic id.
//
// Datums are processed before constraints so constraints can cross-reference
// them. Two lenient behaviors are kept deliberately: a constraint with an
// unrecognized kind is skipped, and a constraint's reference to an unknown
// datum id is skipped; both are logged. Modifier tags on both datums and
// constraints are validated strictly.
package pmi
