// Package rpc provides the JSON-RPC client for the storage cluster
// management API.
//
// This package offers:
//   - One entry point, Client.Call, for every API method
//   - Basic-auth HTTPS transport tolerant of self-signed certificates
//   - Typed errors for transport, protocol, authentication and API failures
//   - Bounded exponential backoff for transient failures
//   - Per-call retry safety, endpoint and version overrides
//
// # Quick Start
//
//	import "github.com/vietddude/sfclient/internal/infra/rpc"
//
//	ep, _ := domain.NewEndpoint("10.0.0.1", "admin", "password")
//	client, err := rpc.NewClient(rpc.Config{
//	    Endpoint: ep,
//	    Version:  "7.0",
//	})
//
//	// Idempotent reads retry on transport and transient API errors
//	result, err := client.Call(ctx, "ListActiveVolumes", map[string]any{"startVolumeID": 0, "limit": 0})
//
//	// Creates only retry when the cluster explicitly rejected the call
//	err = client.CallInto(ctx, "AddAccount", params, &out, rpc.NonIdempotent())
//
// # Package Structure
//
//   - provider/ - Dispatcher (HTTP transport), envelope, error types
//   - routing/  - Error classification and retry policy
//
// Most types are re-exported at the root level for convenience.
package rpc

import (
	"github.com/vietddude/sfclient/internal/infra/rpc/provider"
	"github.com/vietddude/sfclient/internal/infra/rpc/routing"
)

// =============================================================================
// Re-exported types from provider package
// =============================================================================

// Provider is the transport interface used by Client.
type Provider = provider.Provider

// Dispatcher implements Provider for JSON-RPC over HTTPS.
type Dispatcher = provider.Dispatcher

// Response is a decoded JSON-RPC response.
type Response = provider.Response

// HealthStatus summarizes dispatch outcomes against an endpoint.
type HealthStatus = provider.HealthStatus

// TransportError is a network-level failure.
type TransportError = provider.TransportError

// CertificateError is a failed TLS certificate verification.
type CertificateError = provider.CertificateError

// ProtocolError is an unexpected status or malformed body.
type ProtocolError = provider.ProtocolError

// AuthenticationError is an HTTP 401.
type AuthenticationError = provider.AuthenticationError

// APIError is a named JSON-RPC error from the cluster.
type APIError = provider.APIError

// IsAPIError reports whether err carries a JSON-RPC error with the given name.
var IsAPIError = provider.IsAPIError

// AsAPIError extracts an *APIError from err.
var AsAPIError = provider.AsAPIError

// =============================================================================
// Re-exported types from routing package
// =============================================================================

// RetryConfig defines retry behavior.
type RetryConfig = routing.RetryConfig

// RetriesExhaustedError wraps the last failure once attempts run out.
type RetriesExhaustedError = routing.RetriesExhaustedError

// Classification determines how a failure is handled.
type Classification = routing.Classification

// Classification constants
const (
	Retryable             = routing.Retryable
	AuthenticationFailure = routing.AuthenticationFailure
	ClientError           = routing.ClientError
	Fatal                 = routing.Fatal
)

// DefaultRetryConfig provides sensible retry defaults.
var DefaultRetryConfig = routing.DefaultRetryConfig

// ClassifyError maps an error from Call to a Classification.
var ClassifyError = routing.ClassifyError
