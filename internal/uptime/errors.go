package uptime

import "errors"

// ErrSeriesMismatch is returned when component series cover different days.
var ErrSeriesMismatch = errors.New("component series cover different days")
