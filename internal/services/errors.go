package services

import "errors"

// Generation failure taxonomy. Configuration problems surface at construction
// time; these two cover the remote call itself. Malformed output is not an
// error here: the normalizer accepts any string.
var (
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationEmpty       = errors.New("generation service returned no content")
)
