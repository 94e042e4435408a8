package worker

import "errors"

// Sentinel kinds for fold pipeline errors.
var (
	ErrInvalidEvaluation = errors.New("invalid evaluation value")
)
