// Package api provides typed accessors for the cluster resources exposed
// over JSON-RPC: accounts, volumes, snapshots, access groups and the
// cluster itself. Every accessor goes through a Caller, so retry, logging
// and error typing are those of rpc.Client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vietddude/sfclient/internal/infra/rpc"
)

// ErrNotFound is returned when a lookup names an object the cluster does not have.
var ErrNotFound = errors.New("not found")

// Remote error names that mean the addressed object does not exist.
const (
	nameUnknownAccount     = "xUnknownAccount"
	nameVolumeDoesNotExist = "xVolumeIDDoesNotExist"
	nameUnknownAccessGroup = "xVolumeAccessGroupIDDoesNotExist"
)

// Caller is the subset of rpc.Client used by the accessors.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]any, opts ...rpc.CallOption) (json.RawMessage, error)
	CallInto(ctx context.Context, method string, params map[string]any, out any, opts ...rpc.CallOption) error
}

// Service groups the resource accessors over one Caller.
type Service struct {
	Accounts     *Accounts
	Volumes      *Volumes
	Snapshots    *Snapshots
	AccessGroups *AccessGroups
	Cluster      *Cluster
}

// New creates a Service backed by c.
func New(c Caller) *Service {
	snapshots := &Snapshots{caller: c}
	return &Service{
		Accounts:     &Accounts{caller: c},
		Volumes:      &Volumes{caller: c, snapshots: snapshots},
		Snapshots:    snapshots,
		AccessGroups: &AccessGroups{caller: c},
		Cluster:      &Cluster{caller: c},
	}
}

// callList issues method and decodes the array stored under key.
// A missing key is a protocol error; an empty array yields an empty slice.
func callList[T any](ctx context.Context, c Caller, method string, params map[string]any, key string) ([]T, error) {
	var fields map[string]json.RawMessage
	if err := c.CallInto(ctx, method, params, &fields); err != nil {
		return nil, err
	}
	raw, ok := fields[key]
	if !ok {
		return nil, missingField(method, key)
	}
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &rpc.ProtocolError{Method: method, StatusCode: http.StatusOK, Err: fmt.Errorf("decode %s: %w", key, err)}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// callObject issues method and decodes the object stored under key.
func callObject[T any](ctx context.Context, c Caller, method string, params map[string]any, key string, opts ...rpc.CallOption) (*T, error) {
	var fields map[string]json.RawMessage
	if err := c.CallInto(ctx, method, params, &fields, opts...); err != nil {
		return nil, err
	}
	raw, ok := fields[key]
	if !ok {
		return nil, missingField(method, key)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &rpc.ProtocolError{Method: method, StatusCode: http.StatusOK, Err: fmt.Errorf("decode %s: %w", key, err)}
	}
	return &out, nil
}

func missingField(method, key string) error {
	return &rpc.ProtocolError{Method: method, StatusCode: http.StatusOK, Err: fmt.Errorf("result has no %q member", key)}
}

// notFound converts the named API error into ErrNotFound, keeping the original in the chain.
func notFound(err error, name, what string) error {
	if rpc.IsAPIError(err, name) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return err
}

// setIf adds key to params when v is not its zero value.
func setIf[T comparable](params map[string]any, key string, v T) {
	var zero T
	if v != zero {
		params[key] = v
	}
}
