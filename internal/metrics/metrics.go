package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RPCRequestsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeAPIError  = "api_error"
	OutcomeTransport = "transport_error"
	OutcomeProtocol  = "protocol_error"
	OutcomeAuth      = "auth_failure"
)

var (
	// RPCRequestsTotal tracks HTTP attempts per method and outcome
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfclient_rpc_requests_total",
			Help: "Total number of JSON-RPC requests sent",
		},
		[]string{"method", "outcome"},
	)

	// RPCLatency tracks per-attempt latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sfclient_rpc_latency_seconds",
			Help:    "JSON-RPC request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// RPCRetriesTotal tracks retries scheduled after a retryable failure
	RPCRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfclient_rpc_retries_total",
			Help: "Total number of JSON-RPC retries",
		},
		[]string{"method", "class"},
	)

	// RPCErrorsTotal tracks logical calls that ended in an error
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfclient_rpc_errors_total",
			Help: "Total number of JSON-RPC calls that failed",
		},
		[]string{"method", "class"},
	)
)
