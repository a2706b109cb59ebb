package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist in the store
	// that was asked.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
)
