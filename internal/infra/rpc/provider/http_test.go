package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vietddude/sfclient/internal/core/domain"
	"github.com/vietddude/sfclient/internal/metrics"
)

// =============================================================================
// Helpers
// =============================================================================

func newTestDispatcher(t *testing.T, url string, opts ...Option) *Dispatcher {
	t.Helper()
	ep := domain.Endpoint{URL: url, Login: "admin", Password: "s3cret"}
	d, err := NewDispatcher(ep, "7.0", opts...)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("failed to decode body: %v", err)
	}
	return req
}

// =============================================================================
// Tests
// =============================================================================

func TestDispatcher_Dispatch_Envelope(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/json-rpc/7.0/" {
			t.Errorf("expected path /json-rpc/7.0/, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != ContentType {
			t.Errorf("expected content type %q, got %q", ContentType, ct)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "s3cret" {
			t.Errorf("unexpected basic auth: %q %q %v", user, pass, ok)
		}

		req := decodeRequest(t, r)
		if len(req) != 3 {
			t.Errorf("expected exactly method, params, id; got %v", req)
		}
		if req["method"] != "ListActiveVolumes" {
			t.Errorf("expected method ListActiveVolumes, got %v", req["method"])
		}
		params, _ := req["params"].(map[string]any)
		if len(params) != 2 || params["startVolumeID"] != float64(0) || params["limit"] != float64(10) {
			t.Errorf("unexpected params: %v", params)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     req["id"],
			"result": map[string]any{"volumes": []any{}},
		})
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	resp, err := d.Dispatch(context.Background(), Call{
		Method: "ListActiveVolumes",
		Params: map[string]any{"startVolumeID": 0, "limit": 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Err() != nil {
		t.Fatalf("unexpected api error: %v", resp.Err())
	}
	if string(resp.Result) != `{"volumes":[]}` {
		t.Errorf("unexpected result: %s", resp.Result)
	}
}

func TestDispatcher_Dispatch_EchoesRequestID(t *testing.T) {
	var seen atomic.Int64
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		id := int64(req["id"].(float64))
		seen.Store(id)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "result": map[string]any{}})
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	for i := 0; i < 3; i++ {
		resp, err := d.Dispatch(context.Background(), Call{Method: "GetClusterInfo"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.ID == 0 || resp.ID != seen.Load() {
			t.Errorf("round trip id mismatch: response %d, server saw %d", resp.ID, seen.Load())
		}
	}
}

func TestDispatcher_Dispatch_NilParamsSentAsObject(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		params, ok := req["params"].(map[string]any)
		if !ok {
			t.Errorf("expected params object, got %T", req["params"])
		}
		if len(params) != 0 {
			t.Errorf("expected empty params, got %v", params)
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	if _, err := d.Dispatch(context.Background(), Call{Method: "GetClusterVersionInfo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatcher_Dispatch_UnwrappedResult(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accounts":[{"accountID":1,"username":"jdg"}]}`))
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	resp, err := d.Dispatch(context.Background(), Call{Method: "ListAccounts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Accounts []domain.Account `json:"accounts"`
	}
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(out.Accounts) != 1 || out.Accounts[0].Username != "jdg" {
		t.Errorf("unexpected accounts: %+v", out.Accounts)
	}
}

func TestDispatcher_Dispatch_APIError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"error":{"code":500,"name":"xUnknownAccount","message":"Account not found"}}`))
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	resp, err := d.Dispatch(context.Background(), Call{
		Method: "GetAccountByName",
		Params: map[string]any{"username": "nobody"},
	})
	if err != nil {
		t.Fatalf("api errors must come back as a response, got %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected error response")
	}
	if resp.Error.Name != "xUnknownAccount" || resp.Error.Code != 500 || resp.Error.Message != "Account not found" {
		t.Errorf("unexpected api error: %+v", resp.Error)
	}
	if len(resp.Error.Raw) == 0 {
		t.Error("expected raw error json to be kept")
	}
	if !IsAPIError(resp.Err(), "xUnknownAccount") {
		t.Errorf("IsAPIError failed for %v", resp.Err())
	}
}

func TestDispatcher_Dispatch_Unauthorized(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"result":{"ignored":true}}`))
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL)
	_, err := d.Dispatch(context.Background(), Call{Method: "ListAccounts"})

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if authErr.Login != "admin" {
		t.Errorf("expected login admin, got %q", authErr.Login)
	}
}

func TestDispatcher_Dispatch_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not found", http.StatusNotFound, "<html>404</html>"},
		{"html body", http.StatusOK, "<html>maintenance</html>"},
		{"json array", http.StatusOK, "[1,2,3]"},
		{"truncated json", http.StatusOK, `{"result":`},
		{"empty body", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			d := newTestDispatcher(t, server.URL)
			_, err := d.Dispatch(context.Background(), Call{Method: "GetClusterInfo"})

			var protoErr *ProtocolError
			if !errors.As(err, &protoErr) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
			if protoErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, protoErr.StatusCode)
			}
		})
	}
}

func TestDispatcher_Dispatch_TransportError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	d := newTestDispatcher(t, url, WithTimeout(2*time.Second))
	_, err := d.Dispatch(context.Background(), Call{Method: "ListActiveVolumes"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.Method != "ListActiveVolumes" {
		t.Errorf("expected method in error, got %q", transportErr.Method)
	}
}

func TestDispatcher_Dispatch_UntrustedCertificate(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, WithInsecureSkipVerify(false))
	_, err := d.Dispatch(context.Background(), Call{Method: "GetClusterInfo"})

	var certErr *CertificateError
	if !errors.As(err, &certErr) {
		t.Fatalf("expected CertificateError, got %v", err)
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		t.Error("certificate failure must not look like a transport error")
	}
}

func TestDispatcher_Dispatch_PerAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	d := newTestDispatcher(t, server.URL, WithTimeout(50*time.Millisecond))
	_, err := d.Dispatch(context.Background(), Call{Method: "ListDrives"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError for timeout, got %v", err)
	}
}

func TestDispatcher_Dispatch_ContextCanceled(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDispatcher(t, server.URL)
	_, err := d.Dispatch(ctx, Call{Method: "ListAccounts"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		t.Error("caller cancellation must not look like a transport error")
	}
}

func TestDispatcher_Dispatch_EndpointAndVersionOverride(t *testing.T) {
	primary := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("primary endpoint should not be called")
	}))
	defer primary.Close()

	var gotPath, gotUser string
	target := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer target.Close()

	d := newTestDispatcher(t, primary.URL)
	override := domain.Endpoint{URL: target.URL, Login: "node-admin", Password: "pw"}
	_, err := d.Dispatch(context.Background(), Call{
		Method:   "CreateCluster",
		Endpoint: &override,
		Version:  "9.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/json-rpc/9.0/" {
		t.Errorf("expected version override in path, got %s", gotPath)
	}
	if gotUser != "node-admin" {
		t.Errorf("expected override credentials, got %q", gotUser)
	}
}

func TestDispatcher_Dispatch_EmptyMethod(t *testing.T) {
	d := newTestDispatcher(t, "https://127.0.0.1:1")
	if _, err := d.Dispatch(context.Background(), Call{}); !errors.Is(err, ErrEmptyMethod) {
		t.Fatalf("expected ErrEmptyMethod, got %v", err)
	}
}

func TestNewDispatcher_RequiresVersion(t *testing.T) {
	ep := domain.Endpoint{URL: "https://10.0.0.1", Login: "a", Password: "b"}
	if _, err := NewDispatcher(ep, ""); !errors.Is(err, domain.ErrMissingAPIVersion) {
		t.Fatalf("expected ErrMissingAPIVersion, got %v", err)
	}
	if _, err := NewDispatcher(domain.Endpoint{}, "7.0"); !errors.Is(err, domain.ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestDispatcher_Dispatch_RecordsMetrics(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"name":"xNotPrimary","message":"no"}}`))
	}))
	defer server.Close()

	counter := metrics.RPCRequestsTotal.WithLabelValues("MetricsProbe", metrics.OutcomeAPIError)
	before := testutil.ToFloat64(counter)

	d := newTestDispatcher(t, server.URL)
	if _, err := d.Dispatch(context.Background(), Call{Method: "MetricsProbe"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected one api_error request recorded, got %v", got)
	}
}
