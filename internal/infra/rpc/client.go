package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc/provider"
	"github.com/vietddude/sfclient/internal/infra/rpc/routing"
	"golang.org/x/time/rate"
)

// RateLimitConfig caps outgoing requests. A zero value disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Config holds everything needed to build a Client.
type Config struct {
	Endpoint domain.Endpoint
	Version  string

	// Timeout bounds each HTTP attempt. Defaults to 30s.
	Timeout time.Duration

	// CallTimeout bounds a whole logical call including retries. 0 = none.
	CallTimeout time.Duration

	// VerifyTLS turns on certificate verification. Off by default since
	// clusters ship self-signed certificates.
	VerifyTLS bool

	Retry     RetryConfig
	RateLimit RateLimitConfig
}

// Client is the high-level interface for making cluster API calls.
// This is what resource accessors and the CLI should use.
type Client struct {
	provider    provider.Provider
	retrier     *routing.Retrier
	limiter     *rate.Limiter
	callTimeout time.Duration
	logger      *slog.Logger
}

type clientOptions struct {
	logger   *slog.Logger
	provider provider.Provider
	sleeper  routing.Sleeper
}

// Option configures a Client.
type Option func(*clientOptions)

// WithLogger injects the logger used by the client, dispatcher and retrier.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithProvider replaces the HTTP dispatcher, mainly for tests.
func WithProvider(p provider.Provider) Option {
	return func(o *clientOptions) {
		o.provider = p
	}
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(sleep routing.Sleeper) Option {
	return func(o *clientOptions) {
		o.sleeper = sleep
	}
}

// NewClient creates a new cluster API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	o := clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	retryCfg := cfg.Retry
	if retryCfg == (RetryConfig{}) {
		retryCfg = routing.DefaultRetryConfig
	}
	retrier, err := routing.NewRetrier(retryCfg,
		routing.WithRetryLogger(o.logger),
		routing.WithSleeper(o.sleeper),
	)
	if err != nil {
		return nil, err
	}

	p := o.provider
	if p == nil {
		p, err = provider.NewDispatcher(cfg.Endpoint, cfg.Version,
			provider.WithLogger(o.logger),
			provider.WithTimeout(cfg.Timeout),
			provider.WithInsecureSkipVerify(!cfg.VerifyTLS),
		)
		if err != nil {
			return nil, fmt.Errorf("create dispatcher: %w", err)
		}
	}

	c := &Client{
		provider:    p,
		retrier:     retrier,
		callTimeout: cfg.CallTimeout,
		logger:      o.logger,
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), burst)
	}
	return c, nil
}

// Call issues one logical API call with retry. The result is the raw
// "result" payload of the JSON-RPC response.
func (c *Client) Call(ctx context.Context, method string, params map[string]any, opts ...CallOption) (json.RawMessage, error) {
	o := buildCallOptions(opts)

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	logger := c.logger.With("call_id", uuid.NewString())
	start := time.Now()

	result, err := c.retrier.WithLogger(logger).Do(ctx, method, o.safety, func(ctx context.Context) (json.RawMessage, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%s: rate limit wait: %w", method, err)
			}
		}

		resp, err := c.provider.Dispatch(ctx, provider.Call{
			Method:   method,
			Params:   params,
			Endpoint: o.endpoint,
			Version:  o.version,
		})
		if err != nil {
			return nil, err
		}
		if err := resp.Err(); err != nil {
			return nil, err
		}
		return resp.Result, nil
	})
	if err != nil {
		logger.Debug("API call failed", "method", method, "elapsed", time.Since(start), "error", err)
		return nil, err
	}

	logger.Debug("API call completed", "method", method, "elapsed", time.Since(start))
	return result, nil
}

// CallInto issues a call and decodes the result into out.
func (c *Client) CallInto(ctx context.Context, method string, params map[string]any, out any, opts ...CallOption) error {
	result, err := c.Call(ctx, method, params, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return &ProtocolError{Method: method, StatusCode: 200, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

// Endpoint returns the default cluster endpoint.
func (c *Client) Endpoint() domain.Endpoint {
	return c.provider.Endpoint()
}

// Version returns the default API version.
func (c *Client) Version() string {
	return c.provider.Version()
}

// RetryConfig returns the active retry settings.
func (c *Client) RetryConfig() RetryConfig {
	return c.retrier.Config()
}

// Health reports dispatch statistics when the provider tracks them.
func (c *Client) Health() (HealthStatus, bool) {
	if r, ok := c.provider.(provider.HealthReporter); ok {
		return r.Health(), true
	}
	return HealthStatus{}, false
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.provider.Close()
}
