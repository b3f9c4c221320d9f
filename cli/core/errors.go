package core

import (
	"errors"
	"fmt"
)

// ValidationError reports an empty or malformed configuration key or value.
type ValidationError struct {
	Key     string // optional
	Message string
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
	}
	return "validation failed: " + e.Message
}

// ConnectivityError reports that a client for an external service could not
// connect, authenticate or complete its round trip.
type ConnectivityError struct {
	Service string // "MongoDB", "SMTP", "Razorpay"
	Op      string // e.g. "ping", "login", "create order"
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ParseWarning records a malformed artifact line that was skipped.
// It is never returned as an error from store operations.
type ParseWarning struct {
	Line int // 1-based
	Text string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: skipped malformed entry %q", w.Line, w.Text)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
