package provider

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyMethod is returned when a call has no method name.
var ErrEmptyMethod = errors.New("method name is empty")

// TransportError is a network-level failure: DNS, connect, timeout, or a
// broken read. The request may or may not have reached the cluster.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s at %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CertificateError is returned when the cluster's TLS certificate fails
// verification. Retrying cannot change the outcome.
type CertificateError struct {
	Method string
	URL    string
	Err    error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("certificate verification failed calling %s at %s: %v", e.Method, e.URL, e.Err)
}

func (e *CertificateError) Unwrap() error { return e.Err }

// AuthenticationError is returned for HTTP 401, regardless of body content.
type AuthenticationError struct {
	Method string
	URL    string
	Login  string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %q at %s (method %s)", e.Login, e.URL, e.Method)
}

// ProtocolError covers unexpected HTTP statuses and bodies that are not a
// JSON object.
type ProtocolError struct {
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error calling %s (http %d): %v", e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("protocol error calling %s: http %d: %s", e.Method, e.StatusCode, e.Body)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// APIError is a well-formed JSON-RPC error returned by the cluster.
type APIError struct {
	Method  string          `json:"-"`
	Code    int             `json:"code"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

func (e *APIError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("api error %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("%s failed: %s: %s", e.Method, e.Name, e.Message)
}

// IsAPIError reports whether err carries a JSON-RPC error with the given name.
func IsAPIError(err error, name string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Name == name
	}
	return false
}
