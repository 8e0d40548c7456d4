package config

import "errors"

var (
	// ErrInvalidConfig wraps values that load but fail Validate.
	ErrInvalidConfig = errors.New("invalid valuator config")

	// ErrLoadConfig wraps failures reading the YAML file or the environment.
	ErrLoadConfig = errors.New("cannot load valuator config")
)
