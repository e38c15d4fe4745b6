package statuspage

import "errors"

// Repository errors.
var (
	ErrPageNotFound      = errors.New("page not found")
	ErrComponentNotFound = errors.New("component not found")
)

// Request errors.
var (
	ErrInvalidWindow = errors.New("window size is not allowed")
)
