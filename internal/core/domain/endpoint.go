package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidEndpoint is returned when an endpoint is missing a required field.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// ErrMissingAPIVersion is returned when no API version was configured.
var ErrMissingAPIVersion = errors.New("api version is required")

// Endpoint identifies one manageable cluster: base URL plus admin credentials.
type Endpoint struct {
	URL      string
	Login    string
	Password string
}

// NewEndpoint builds an Endpoint from a management address.
// A bare host or host:port gets an https:// scheme.
func NewEndpoint(mvip, login, password string) (Endpoint, error) {
	ep := Endpoint{
		URL:      normalizeURL(mvip),
		Login:    login,
		Password: password,
	}
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

// Validate checks that no field is empty.
func (e Endpoint) Validate() error {
	switch {
	case strings.TrimSpace(e.URL) == "":
		return fmt.Errorf("%w: url is empty", ErrInvalidEndpoint)
	case e.Login == "":
		return fmt.Errorf("%w: login is empty", ErrInvalidEndpoint)
	case e.Password == "":
		return fmt.Errorf("%w: password is empty", ErrInvalidEndpoint)
	}
	return nil
}

// IsZero reports whether the endpoint was never set.
func (e Endpoint) IsZero() bool {
	return e == Endpoint{}
}

// RPCURL returns the JSON-RPC URL for the given API version.
func (e Endpoint) RPCURL(version string) string {
	return fmt.Sprintf("%s/json-rpc/%s/", strings.TrimRight(e.URL, "/"), version)
}

// LogValue keeps the password out of log output.
func (e Endpoint) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", e.URL),
		slog.String("login", e.Login),
	)
}

// String implements fmt.Stringer without the password.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s@%s", e.Login, e.URL)
}

// ValidateAPIVersion rejects an empty version tag.
func ValidateAPIVersion(version string) error {
	if strings.TrimSpace(version) == "" {
		return ErrMissingAPIVersion
	}
	return nil
}

func normalizeURL(mvip string) string {
	u := strings.TrimSpace(mvip)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}
