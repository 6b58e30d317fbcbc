package rpc

import (
	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc/routing"
)

// callOptions holds per-call overrides.
type callOptions struct {
	endpoint *domain.Endpoint
	version  string
	safety   routing.RetrySafety
}

// CallOption customizes a single Call.
type CallOption func(*callOptions)

// WithEndpoint sends this call to a different cluster or node.
func WithEndpoint(ep domain.Endpoint) CallOption {
	return func(o *callOptions) {
		o.endpoint = &ep
	}
}

// WithVersion overrides the API version for this call.
func WithVersion(version string) CallOption {
	return func(o *callOptions) {
		o.version = version
	}
}

// NonIdempotent marks a call that must not be repeated after a transport
// error, e.g. create/clone/add calls.
func NonIdempotent() CallOption {
	return func(o *callOptions) {
		o.safety = routing.NonIdempotent
	}
}

// NoRetry sends the call exactly once.
func NoRetry() CallOption {
	return func(o *callOptions) {
		o.safety = routing.NoRetry
	}
}

func buildCallOptions(opts []CallOption) callOptions {
	o := callOptions{safety: routing.Idempotent}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
