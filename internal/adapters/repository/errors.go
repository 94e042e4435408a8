package repository

import "errors"

// Sentinel kinds for proposal store errors.
var (
	ErrNotFound      = errors.New("proposal not found")
	ErrAlreadyExists = errors.New("proposal already exists")
)
