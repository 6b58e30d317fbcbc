package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vietddude/sfclient/internal/infra/rpc/provider"
	"github.com/vietddude/sfclient/internal/metrics"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialDelay:    1 * time.Second,
	MaxDelay:        60 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrInvalidRetryConfig is returned by RetryConfig.Validate.
var ErrInvalidRetryConfig = errors.New("invalid retry config")

// Validate checks the config for values the retry loop cannot honor.
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidRetryConfig, c.MaxAttempts)
	case c.InitialDelay <= 0:
		return fmt.Errorf("%w: initial delay must be positive", ErrInvalidRetryConfig)
	case c.MaxDelay < c.InitialDelay:
		return fmt.Errorf("%w: max delay %v is below initial delay %v", ErrInvalidRetryConfig, c.MaxDelay, c.InitialDelay)
	case c.BackoffMultiple < 1:
		return fmt.Errorf("%w: backoff multiple must be >= 1, got %v", ErrInvalidRetryConfig, c.BackoffMultiple)
	}
	return nil
}

// RetrySafety says whether a call may be repeated after a failure of
// unknown outcome.
type RetrySafety int

const (
	// Idempotent calls are retried on transport errors and retryable API errors.
	Idempotent RetrySafety = iota
	// NonIdempotent calls are retried only on retryable API errors, where the
	// cluster answered and rejected the request. A transport error may mean
	// the request was applied and only the response was lost, so repeating a
	// create could duplicate the remote object.
	NonIdempotent
	// NoRetry calls run exactly once.
	NoRetry
)

// RetriesExhaustedError is returned once every attempt failed with a
// retryable error. It unwraps to the last failure.
type RetriesExhaustedError struct {
	Method   string
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Method, e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// Operation is one attempt of a logical call.
type Operation func(ctx context.Context) (json.RawMessage, error)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Retrier wraps operations with bounded exponential backoff.
type Retrier struct {
	config RetryConfig
	logger *slog.Logger
	sleep  Sleeper
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithRetryLogger sets the logger used for retry and exhaustion messages.
func WithRetryLogger(logger *slog.Logger) RetrierOption {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(sleep Sleeper) RetrierOption {
	return func(r *Retrier) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// NewRetrier creates a Retrier after validating config.
func NewRetrier(config RetryConfig, opts ...RetrierOption) (*Retrier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	r := &Retrier{
		config: config,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// WithLogger returns a copy of r that logs to logger.
func (r *Retrier) WithLogger(logger *slog.Logger) *Retrier {
	cp := *r
	if logger != nil {
		cp.logger = logger
	}
	return &cp
}

// Config returns the retry configuration.
func (r *Retrier) Config() RetryConfig {
	return r.config
}

// Do executes op with exponential backoff. Only Retryable failures allowed
// by safety are repeated; everything else is returned unchanged on first
// occurrence. Params are never logged, only the method and attempt count.
func (r *Retrier) Do(ctx context.Context, method string, safety RetrySafety, op Operation) (json.RawMessage, error) {
	schedule := r.newSchedule()
	attemptsRemaining := r.config.MaxAttempts
	if safety == NoRetry {
		attemptsRemaining = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, interrupted(method, attempt-1, lastErr, err)
		}

		result, err := op(ctx)
		attemptsRemaining--
		if err == nil {
			return result, nil
		}
		lastErr = err

		class := ClassifyError(err)
		if !retryAllowed(class, safety, err) {
			metrics.RPCErrorsTotal.WithLabelValues(method, class.String()).Inc()
			return nil, err
		}

		if attemptsRemaining <= 0 {
			metrics.RPCErrorsTotal.WithLabelValues(method, class.String()).Inc()
			r.logger.Error("Retry count exceeded",
				"method", method,
				"attempts", attempt,
				"error", err,
			)
			return nil, &RetriesExhaustedError{Method: method, Attempts: attempt, Err: err}
		}

		delay := schedule.NextBackOff()
		metrics.RPCRetriesTotal.WithLabelValues(method, class.String()).Inc()
		r.logger.Warn("Retrying JSON-RPC call",
			"method", method,
			"attempt", attempt,
			"attempts_remaining", attemptsRemaining,
			"delay", delay,
			"error", err,
		)

		if err := r.sleep(ctx, delay); err != nil {
			return nil, interrupted(method, attempt, lastErr, err)
		}
	}
}

// retryAllowed decides whether a failure may be repeated for this call.
func retryAllowed(class Classification, safety RetrySafety, err error) bool {
	if class != Retryable || safety == NoRetry {
		return false
	}
	if safety == NonIdempotent {
		_, isAPI := provider.AsAPIError(err)
		return isAPI
	}
	return true
}

// newSchedule returns a jitter-free exponential schedule: InitialDelay,
// then multiplied by BackoffMultiple each step, capped at MaxDelay.
func (r *Retrier) newSchedule() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialDelay
	b.Multiplier = r.config.BackoffMultiple
	b.MaxInterval = r.config.MaxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func interrupted(method string, attempts int, lastErr, ctxErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s: %w", method, ctxErr)
	}
	return fmt.Errorf("%s interrupted after %d attempts: %w (last error: %w)", method, attempts, ctxErr, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
