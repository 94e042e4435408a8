package config

import (
	"errors"
)

// Sentinel error kinds for this package so callers can errors.Is/As.
// ErrInvalidConfig marks validation failures; ErrLoadConfig marks
// provider or parse failures while assembling the configuration.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
