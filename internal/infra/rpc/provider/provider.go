// Package provider implements the JSON-RPC transport to a storage cluster.
//
// This package contains:
//   - Dispatcher: builds the JSON-RPC envelope, posts it over HTTPS with basic
//     auth, and decodes the {result|error} response
//   - Request/Response: the wire envelope
//   - HealthStatus: request counts, error rate and latency per dispatcher
//   - TransportError, ProtocolError, AuthenticationError, APIError: the
//     failure taxonomy callers switch on with errors.As
package provider

import (
	"context"

	"github.com/vietddude/sfclient/internal/core/domain"
)

// Call is one JSON-RPC invocation.
type Call struct {
	// Method is the remote method name, e.g. "ListActiveVolumes".
	Method string

	// Params is sent as the "params" object. Keys not present are not sent.
	Params map[string]any

	// Endpoint overrides the dispatcher's cluster for this call only.
	// Used for node-level calls like CreateCluster or for a second cluster.
	Endpoint *domain.Endpoint

	// Version overrides the dispatcher's API version for this call only.
	Version string
}

// Provider is the interface the retry layer and client depend on.
type Provider interface {
	// Dispatch sends one request and returns the decoded response.
	// A well-formed JSON-RPC error is returned as a Response, not an error.
	Dispatch(ctx context.Context, call Call) (*Response, error)

	// Endpoint returns the default cluster endpoint.
	Endpoint() domain.Endpoint

	// Version returns the default API version.
	Version() string

	// Close releases idle connections.
	Close() error
}

// HealthReporter is implemented by providers that track dispatch outcomes.
type HealthReporter interface {
	Health() HealthStatus
}
