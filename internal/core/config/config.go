package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
}

// ClusterConfig identifies the cluster management endpoint.
type ClusterConfig struct {
	MVIP       string `yaml:"mvip"`
	Login      string `yaml:"login"`
	Password   string `yaml:"password"`
	APIVersion string `yaml:"api_version"`
}

// ClientConfig holds transport and retry settings.
type ClientConfig struct {
	Timeout            time.Duration   `yaml:"timeout"`
	CallTimeout        time.Duration   `yaml:"call_timeout"` // 0 = unbounded
	InsecureSkipVerify *bool           `yaml:"insecure_skip_verify"`
	Retry              RetryConfig     `yaml:"retry"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

// RetryConfig mirrors rpc.RetryConfig with YAML tags.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// RateLimitConfig caps outgoing requests. 0 = unlimited.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns a config with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 30 * time.Second
	}
	if c.Client.InsecureSkipVerify == nil {
		skip := true
		c.Client.InsecureSkipVerify = &skip
	}
	r := &c.Client.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = rpc.DefaultRetryConfig.MaxAttempts
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = rpc.DefaultRetryConfig.InitialDelay
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = rpc.DefaultRetryConfig.MaxDelay
	}
	if r.BackoffMultiple == 0 {
		r.BackoffMultiple = rpc.DefaultRetryConfig.BackoffMultiple
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks settings that do not depend on the cluster section.
// Cluster credentials are checked when the client is built, since flags
// and env vars may still fill them in.
func (c *AppConfig) Validate() error {
	if c.Client.Timeout < 0 || c.Client.CallTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.Client.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: rate_limit.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if err := c.RetryConfig().Validate(); err != nil {
		return fmt.Errorf("%w: client.retry: %w", ErrInvalidConfig, err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// RetryConfig converts the retry section.
func (c *AppConfig) RetryConfig() rpc.RetryConfig {
	return rpc.RetryConfig{
		MaxAttempts:     c.Client.Retry.MaxAttempts,
		InitialDelay:    c.Client.Retry.InitialDelay,
		MaxDelay:        c.Client.Retry.MaxDelay,
		BackoffMultiple: c.Client.Retry.BackoffMultiple,
	}
}

// ClientConfig builds an rpc.Config from the cluster and client sections.
func (c *AppConfig) ClientConfig() (rpc.Config, error) {
	ep, err := domain.NewEndpoint(c.Cluster.MVIP, c.Cluster.Login, c.Cluster.Password)
	if err != nil {
		return rpc.Config{}, err
	}
	if err := domain.ValidateAPIVersion(c.Cluster.APIVersion); err != nil {
		return rpc.Config{}, err
	}
	verify := false
	if c.Client.InsecureSkipVerify != nil {
		verify = !*c.Client.InsecureSkipVerify
	}
	return rpc.Config{
		Endpoint:    ep,
		Version:     c.Cluster.APIVersion,
		Timeout:     c.Client.Timeout,
		CallTimeout: c.Client.CallTimeout,
		VerifyTLS:   verify,
		Retry:       c.RetryConfig(),
		RateLimit: rpc.RateLimitConfig{
			RequestsPerSecond: c.Client.RateLimit.RequestsPerSecond,
			Burst:             c.Client.RateLimit.Burst,
		},
	}, nil
}
