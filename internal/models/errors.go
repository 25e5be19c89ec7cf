package models

import "errors"

var (
	// ErrNotFound indicates a referenced task, time entry or template does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates a malformed input such as a bad date key
	// or a negative target.
	ErrInvalidArgument = errors.New("invalid argument")
)
