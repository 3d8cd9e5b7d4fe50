package transport

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
)

// Envelope is a decoded JSON-RPC response. At most one of Result and Error is
// expected to be set, but the transport only decodes and does not enforce it.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpc2.Error `json:"error,omitempty"`
}

// ErrorObject returns the error member, or nil for a success response.
func (e *Envelope) ErrorObject() *jsonrpc2.Error {
	if e == nil {
		return nil
	}
	return e.Error
}

// ResultJSON returns the raw result member. Absent and null both come back
// as nil.
func (e *Envelope) ResultJSON() []byte {
	if e == nil || isNull(e.Result) {
		return nil
	}
	return e.Result
}

// HasError reports whether the envelope carries an error member.
func (e *Envelope) HasError() bool { return e.ErrorObject() != nil }

// DecodeResult unmarshals the result member into v. A null or missing result
// leaves v untouched.
func (e *Envelope) DecodeResult(v interface{}) error {
	raw := e.ResultJSON()
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// DecodeEnvelope parses a frame body. Bodies that are not a JSON object,
// including the empty body of a frame without Content-Length, are malformed.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &MalformedFrameError{Reason: "invalid JSON body", Err: err}
	}
	return &env, nil
}

// EncodeRequest serialises a request envelope with a numeric id.
func EncodeRequest(id int32, method string, params interface{}) ([]byte, error) {
	call, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(id), method, normalizeParams(params))
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", method, err)
	}
	data, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return data, nil
}

// EncodeNotification serialises a notification envelope, which has no id.
func EncodeNotification(method string, params interface{}) ([]byte, error) {
	notify, err := jsonrpc2.NewNotification(method, normalizeParams(params))
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", method, err)
	}
	data, err := json.Marshal(notify)
	if err != nil {
		return nil, fmt.Errorf("encoding %s notification: %w", method, err)
	}
	return data, nil
}

// normalizeParams sends nil params as an empty object.
func normalizeParams(params interface{}) interface{} {
	if params == nil {
		return map[string]interface{}{}
	}
	return params
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
