package llm

import "errors"

// ErrProvider is returned when the generation backend fails or is
// unreachable after retries.
var ErrProvider = errors.New("generation provider failed")
