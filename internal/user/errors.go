package user

import "errors"

// Sentinel errors shared by the user and auth services. Handlers map these
// to HTTP status codes; raw store errors never reach a client.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidInput   = errors.New("invalid input")
	// ErrUnavailable covers pool exhaustion and query timeouts; it is the
	// only error callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
