package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/metrics"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// ContentType is what the cluster expects on every request.
	ContentType = "application/json-rpc; charset=utf-8"

	maxResponseBytes = 64 << 20
	maxRequestID     = 1<<53 - 1
)

// Dispatcher implements Provider for JSON-RPC over HTTPS with basic auth.
// It is safe for concurrent use; the only shared mutable state is the
// request id counter.
type Dispatcher struct {
	endpoint   domain.Endpoint
	version    string
	httpClient *http.Client
	logger     *slog.Logger

	timeout            time.Duration
	insecureSkipVerify bool

	nextID atomic.Int64
	health *healthTracker
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Params are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client. Timeout and TLS options are then
// the caller's responsibility.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = client
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithInsecureSkipVerify controls TLS certificate verification. Clusters
// ship with self-signed certificates, so verification is off by default.
func WithInsecureSkipVerify(skip bool) Option {
	return func(d *Dispatcher) {
		d.insecureSkipVerify = skip
	}
}

// NewDispatcher creates a dispatcher for one cluster endpoint.
func NewDispatcher(endpoint domain.Endpoint, version string, opts ...Option) (*Dispatcher, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAPIVersion(version); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		endpoint:           endpoint,
		version:            version,
		logger:             slog.Default(),
		timeout:            DefaultTimeout,
		insecureSkipVerify: true,
		health:             newHealthTracker(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.httpClient == nil {
		d.httpClient = &http.Client{
			Timeout: d.timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: d.insecureSkipVerify,
				},
			},
		}
	}

	d.nextID.Store(rand.Int64N(1 << 31))
	return d, nil
}

// Endpoint returns the default cluster endpoint.
func (d *Dispatcher) Endpoint() domain.Endpoint {
	return d.endpoint
}

// Version returns the default API version.
func (d *Dispatcher) Version() string {
	return d.version
}

// Health returns dispatch statistics for this dispatcher.
func (d *Dispatcher) Health() HealthStatus {
	return d.health.snapshot()
}

// Close cleans up resources.
func (d *Dispatcher) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}

// Dispatch makes a single JSON-RPC call.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) (*Response, error) {
	if call.Method == "" {
		return nil, ErrEmptyMethod
	}

	endpoint := d.endpoint
	if call.Endpoint != nil {
		if err := call.Endpoint.Validate(); err != nil {
			return nil, err
		}
		endpoint = *call.Endpoint
	}
	version := d.version
	if call.Version != "" {
		version = call.Version
	}
	url := endpoint.RPCURL(version)

	id := d.newRequestID()
	jsonData, err := json.Marshal(NewRequest(id, call.Method, call.Params))
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", call.Method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", call.Method, err)
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(endpoint.Login, endpoint.Password)

	d.logger.Debug("Dispatching JSON-RPC request",
		"method", call.Method,
		"request_id", id,
		"url", url,
	)

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.observe(call.Method, metrics.OutcomeTransport, start)
		// Caller cancellation is not a transport fault.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", call.Method, ctxErr)
		}
		var certErr *tls.CertificateVerificationError
		if errors.As(err, &certErr) {
			return nil, &CertificateError{Method: call.Method, URL: url, Err: certErr}
		}
		return nil, &TransportError{Method: call.Method, URL: url, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		d.observe(call.Method, metrics.OutcomeAuth, start)
		return nil, &AuthenticationError{Method: call.Method, URL: url, Login: endpoint.Login}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		d.observe(call.Method, metrics.OutcomeTransport, start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", call.Method, ctxErr)
		}
		return nil, &TransportError{Method: call.Method, URL: url, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		d.observe(call.Method, metrics.OutcomeProtocol, start)
		return nil, &ProtocolError{
			Method:     call.Method,
			StatusCode: resp.StatusCode,
			Body:       snippet(bytes.TrimSpace(body)),
		}
	}

	rpcResp, err := decodeResponse(call.Method, body)
	if err != nil {
		d.observe(call.Method, metrics.OutcomeProtocol, start)
		return nil, err
	}

	if rpcResp.ID != 0 && rpcResp.ID != id {
		d.logger.Warn("JSON-RPC response id mismatch",
			"method", call.Method,
			"request_id", id,
			"response_id", rpcResp.ID,
		)
	}

	outcome := metrics.OutcomeSuccess
	if rpcResp.Error != nil {
		outcome = metrics.OutcomeAPIError
	}
	latency := d.observe(call.Method, outcome, start)

	d.logger.Debug("JSON-RPC response received",
		"method", call.Method,
		"request_id", id,
		"status", resp.StatusCode,
		"latency", latency,
		"api_error", errorName(rpcResp.Error),
	)

	return rpcResp, nil
}

func (d *Dispatcher) newRequestID() int64 {
	id := d.nextID.Add(1) & maxRequestID
	if id == 0 {
		id = d.nextID.Add(1) & maxRequestID
	}
	return id
}

func (d *Dispatcher) observe(method, outcome string, start time.Time) time.Duration {
	latency := time.Since(start)
	metrics.RPCRequestsTotal.WithLabelValues(method, outcome).Inc()
	metrics.RPCLatency.WithLabelValues(method).Observe(latency.Seconds())
	d.health.record(outcome, latency)
	return latency
}

func errorName(e *APIError) string {
	if e == nil {
		return ""
	}
	return e.Name
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
