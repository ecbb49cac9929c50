package client

import (
	"context"
	"errors"
	"fmt"
)

// Common upstream errors
var (
	// ErrUpstreamTimeout is returned when a backend call exceeds its deadline
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrUpstreamConnect is returned when the backend cannot be reached
	ErrUpstreamConnect = errors.New("upstream connection failed")
)

// UpstreamError wraps a transport-level failure against a backend endpoint
type UpstreamError struct {
	Endpoint string
	Kind     error // ErrUpstreamTimeout or ErrUpstreamConnect
	Cause    error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call to %s failed: %v (caused by: %v)", e.Endpoint, e.Kind, e.Cause)
}

// Unwrap returns the error kind so errors.Is works against the sentinels
func (e *UpstreamError) Unwrap() error {
	return e.Kind
}

// HTTPError represents a non-2xx response from the backend
type HTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream call to %s returned HTTP %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("upstream call to %s returned HTTP %d", e.Endpoint, e.Status)
}

// classifyTransportError converts a raw transport error into the
// UpstreamError taxonomy. Timeouts and connection failures must stay
// distinguishable from "the backend answered with an empty result".
func classifyTransportError(endpoint string, err error) error {
	kind := ErrUpstreamConnect
	if errors.Is(err, context.DeadlineExceeded) || isTimeoutErr(err) {
		kind = ErrUpstreamTimeout
	}
	return &UpstreamError{Endpoint: endpoint, Kind: kind, Cause: err}
}

// isTimeoutErr walks the whole unwrap chain. The outermost url.Error of
// a retried request reports Timeout() false even when the attempt below
// it timed out, so errors.As against net.Error is not enough.
func isTimeoutErr(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if te, ok := e.(interface{ Timeout() bool }); ok && te.Timeout() {
			return true
		}
	}
	return false
}

// IsTimeout checks if an error is an upstream timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout)
}

// IsConnectFailure checks if an error is an upstream connection failure
func IsConnectFailure(err error) bool {
	return errors.Is(err, ErrUpstreamConnect)
}

// IsHTTPError checks if an error is a non-2xx backend response
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// IsUpstreamFailure reports whether an error came from the backend call
// boundary at all, regardless of flavor.
func IsUpstreamFailure(err error) bool {
	return IsTimeout(err) || IsConnectFailure(err) || IsHTTPError(err)
}
