package hub

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid hub configuration")
	ErrShutdownTimeout = errors.New("hub tasks did not stop within the shutdown grace period")
)
