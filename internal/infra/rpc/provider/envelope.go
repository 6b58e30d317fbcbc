package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is the JSON-RPC request envelope.
type Request struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
	ID     int64          `json:"id"`
}

// NewRequest builds a request. A nil params map is sent as an empty object.
func NewRequest(id int64, method string, params map[string]any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{Method: method, Params: params, ID: id}
}

// Response is the decoded JSON-RPC response. Exactly one of Result or Error
// is set.
type Response struct {
	ID         int64
	Result     json.RawMessage
	Error      *APIError
	StatusCode int
}

// Err returns the JSON-RPC error as a Go error, or nil.
func (r *Response) Err() error {
	if r == nil || r.Error == nil {
		return nil
	}
	return r.Error
}

type rawResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// decodeResponse parses a 200 body. Some API revisions return the payload
// unwrapped, so a document without "result" or "error" is the result itself.
func decodeResponse(method string, body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ProtocolError{
			Method:     method,
			StatusCode: 200,
			Err:        fmt.Errorf("response is not a JSON object: %s", snippet(trimmed)),
		}
	}

	var raw rawResponse
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ProtocolError{Method: method, StatusCode: 200, Err: fmt.Errorf("parse response: %w", err)}
	}

	resp := &Response{StatusCode: 200}
	if len(raw.ID) > 0 && !isNull(raw.ID) {
		if err := json.Unmarshal(raw.ID, &resp.ID); err != nil {
			return nil, &ProtocolError{Method: method, StatusCode: 200, Err: fmt.Errorf("parse response id: %w", err)}
		}
	}

	if len(raw.Error) > 0 && !isNull(raw.Error) {
		apiErr := &APIError{Method: method, Raw: raw.Error}
		if err := json.Unmarshal(raw.Error, apiErr); err != nil {
			return nil, &ProtocolError{Method: method, StatusCode: 200, Err: fmt.Errorf("parse error object: %w", err)}
		}
		resp.Error = apiErr
		return resp, nil
	}

	if len(raw.Result) > 0 {
		resp.Result = raw.Result
	} else {
		resp.Result = json.RawMessage(trimmed)
	}
	return resp, nil
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func snippet(b []byte) string {
	const limit = 128
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
