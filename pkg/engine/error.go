package engine

import "errors"

// ErrEmptyKnowledge is returned when a long-term-bearing ask runs against an
// empty document store. It is a distinguishable outcome so callers never
// mistake "no knowledge stored" for an answer assembled from empty context.
var ErrEmptyKnowledge = errors.New("no knowledge available")
