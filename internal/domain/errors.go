package domain

import "errors"

// Validation errors.
var (
	ErrInvalidInterval = errors.New("status interval ends before it starts")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// UnknownLabel is returned for status codes without a label.
const UnknownLabel = "Unknown"
