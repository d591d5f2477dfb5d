package gateway

import (
	"fmt"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// TransportError describes a failed gateway call: network failure, non-2xx
// status, GraphQL errors, or an undecodable response. It matches
// progress.ErrTransport with errors.Is.
type TransportError struct {
	// Op names the failed call, e.g. "load", "update", "closing-message".
	Op string
	// RequestID is the X-Request-ID sent with the request.
	RequestID string
	// StatusCode is the HTTP status, or zero if no response was received.
	StatusCode int
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (request %s, status %d): %v", e.Op, e.RequestID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (request %s): %v", e.Op, e.RequestID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is progress.ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == progress.ErrTransport
}
