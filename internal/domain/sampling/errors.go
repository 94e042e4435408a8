package sampling

import "errors"

// Sentinel kinds for sampler errors.
var (
	ErrInvalidConfig    = errors.New("invalid sampling config")
	ErrInvalidBatchSize = errors.New("invalid batch size")
)
