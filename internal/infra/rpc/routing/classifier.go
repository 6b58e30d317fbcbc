package routing

import (
	"errors"
	"net/http"

	"github.com/vietddude/sfclient/internal/infra/rpc/provider"
)

// Classification determines how the retry layer handles a failure.
type Classification int

const (
	// Retryable failures are transient and may be repeated.
	Retryable Classification = iota
	// AuthenticationFailure means the cluster rejected the credentials (HTTP 401).
	AuthenticationFailure
	// ClientError is any named JSON-RPC error outside the retryable set.
	ClientError
	// Fatal covers protocol errors, cancellation and local failures.
	Fatal
)

func (c Classification) String() string {
	switch c {
	case Retryable:
		return "retryable"
	case AuthenticationFailure:
		return "auth_failure"
	case ClientError:
		return "client_error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Remote error names known to be transient: a version mismatch while the
// cluster is mid-upgrade, and the simultaneous snapshot/clone limits.
const (
	ErrNameDBVersionMismatch             = "xDBVersionMismatch"
	ErrNameMaxSnapshotsPerVolumeExceeded = "xMaxSnapshotsPerVolumeExceeded"
	ErrNameMaxClonesPerVolumeExceeded    = "xMaxClonesPerVolumeExceeded"
	ErrNameMaxSnapshotsPerNodeExceeded   = "xMaxSnapshotsPerNodeExceeded"
	ErrNameMaxClonesPerNodeExceeded      = "xMaxClonesPerNodeExceeded"
)

var retryableNames = map[string]struct{}{
	ErrNameDBVersionMismatch:             {},
	ErrNameMaxSnapshotsPerVolumeExceeded: {},
	ErrNameMaxClonesPerVolumeExceeded:    {},
	ErrNameMaxSnapshotsPerNodeExceeded:   {},
	ErrNameMaxClonesPerNodeExceeded:      {},
}

// IsRetryableName reports whether a remote error name is in the transient set.
// Matching is exact.
func IsRetryableName(name string) bool {
	_, ok := retryableNames[name]
	return ok
}

// ClassifyName maps a JSON-RPC error name plus the observed HTTP status to a
// classification. A 401 wins over any name.
func ClassifyName(name string, httpStatus int) Classification {
	if httpStatus == http.StatusUnauthorized {
		return AuthenticationFailure
	}
	if IsRetryableName(name) {
		return Retryable
	}
	return ClientError
}

// ClassifyError determines the classification for a dispatcher error.
func ClassifyError(err error) Classification {
	if err == nil {
		return Fatal // Should not happen
	}

	var (
		authErr      *provider.AuthenticationError
		transportErr *provider.TransportError
		apiErr       *provider.APIError
	)
	switch {
	case errors.As(err, &authErr):
		return AuthenticationFailure
	case errors.As(err, &transportErr):
		return Retryable
	case errors.As(err, &apiErr):
		return ClassifyName(apiErr.Name, http.StatusOK)
	default:
		// Includes certificate and protocol errors.
		return Fatal
	}
}
