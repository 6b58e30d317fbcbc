package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/infra/rpc"
	"github.com/vietddude/sfclient/internal/infra/rpc/provider"
)

// reply is one scripted answer: a result document, a named API error,
// or a transport failure.
type reply struct {
	result    string
	apiError  string
	transport bool
}

func ok(result string) reply   { return reply{result: result} }
func apiErr(name string) reply { return reply{apiError: name} }
func transportFailure() reply  { return reply{transport: true} }

// fakeCluster implements provider.Provider with per-method scripts.
// The last reply of a script repeats once the script is used up.
type fakeCluster struct {
	mu      sync.Mutex
	scripts map[string][]reply
	calls   []provider.Call
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{scripts: make(map[string][]reply)}
}

func (f *fakeCluster) on(method string, replies ...reply) *fakeCluster {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[method] = replies
	return f
}

func (f *fakeCluster) Dispatch(ctx context.Context, call provider.Call) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	script, found := f.scripts[call.Method]
	if !found || len(script) == 0 {
		return &provider.Response{Error: &provider.APIError{Method: call.Method, Name: "xUnknownAPIMethod"}}, nil
	}
	r := script[0]
	if len(script) > 1 {
		f.scripts[call.Method] = script[1:]
	}

	switch {
	case r.transport:
		return nil, &provider.TransportError{Method: call.Method, URL: "https://fake", Err: fmt.Errorf("connection reset")}
	case r.apiError != "":
		return &provider.Response{Error: &provider.APIError{Method: call.Method, Name: r.apiError, Message: r.apiError}}, nil
	}
	return &provider.Response{StatusCode: 200, Result: json.RawMessage(r.result)}, nil
}

func (f *fakeCluster) Endpoint() domain.Endpoint { return domain.Endpoint{URL: "https://fake"} }
func (f *fakeCluster) Version() string           { return "7.0" }
func (f *fakeCluster) Close() error              { return nil }

func (f *fakeCluster) callsTo(method string) []provider.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []provider.Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestService(t *testing.T, fake *fakeCluster) *Service {
	t.Helper()
	client, err := rpc.NewClient(rpc.Config{Retry: rpc.DefaultRetryConfig},
		rpc.WithProvider(fake),
		rpc.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		rpc.WithSleeper(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
	require.NoError(t, err)
	return New(client)
}
