package gateway

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the rate window for an endpoint has not
// elapsed and no previously fetched value is available to fall back on.
var ErrRateLimited = errors.New("gateway: rate limited")

// TransportError wraps a network-level failure (connect, timeout, open
// circuit breaker).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway: transport failure on %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx HTTP status or a non-success payload envelope.
type RemoteError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: remote error on %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("gateway: remote error on %s: status %d", e.Endpoint, e.StatusCode)
}
