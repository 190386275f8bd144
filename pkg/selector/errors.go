package selector

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when the class and predicate filter leaves zero
// candidates.
var ErrNoMatch = errors.New("selector matched no candidates")

// ErrMissingCenter is returned when a closest-to stage needs center metadata
// that an element does not carry.
var ErrMissingCenter = errors.New("closest-to requires center metadata on the target")

// MissingOutputError reports a named lookup against an output key that does
// not exist in the result model.
type MissingOutputError struct {
	Name string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("missing named output: %q", e.Name)
}

// AmbiguousError reports that more than one candidate survived the ranking
// pipeline.
type AmbiguousError struct {
	Count int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("selector is ambiguous: %d candidates remain after ranking", e.Count)
}

// UnknownKindError reports an unrecognized wire token while parsing a
// selector, predicate, or ranking stage.
type UnknownKindError struct {
	Category string // "selector", "predicate" or "rank"
	Kind     string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown %s kind: %q", e.Category, e.Kind)
}
