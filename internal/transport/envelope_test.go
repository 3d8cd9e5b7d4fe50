package transport

import (
	"errors"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
)

func TestEncodeRequest(t *testing.T) {
	body, err := EncodeRequest(3, "textDocument/hover", map[string]interface{}{"a": 1})
	require.NoError(t, err)

	assert.JSONEq(t, `{"jsonrpc":"2.0","id":3,"method":"textDocument/hover","params":{"a":1}}`, string(body))
}

func TestEncodeRequest_NilParams(t *testing.T) {
	body, err := EncodeRequest(1, "shutdown", nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"shutdown","params":{}}`, string(body))
}

func TestEncodeNotification(t *testing.T) {
	body, err := EncodeNotification("initialized", nil)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.NotContains(t, fields, "id")
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"initialized","params":{}}`, string(body))
}

func TestEncodeRequest_UnencodableParams(t *testing.T) {
	_, err := EncodeRequest(1, "m", map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantResult string
		wantErr    *jsonrpc2.Error
	}{
		{
			name:       "object result",
			body:       `{"jsonrpc":"2.0","id":1,"result":{"contents":"hover text"}}`,
			wantResult: `{"contents":"hover text"}`,
		},
		{
			name: "null result",
			body: `{"jsonrpc":"2.0","id":1,"result":null}`,
		},
		{
			name: "absent result",
			body: `{"jsonrpc":"2.0","id":1}`,
		},
		{
			name:    "error",
			body:    `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"not found"}}`,
			wantErr: &jsonrpc2.Error{Code: jsonrpc2.MethodNotFound, Message: "not found"},
		},
		{
			name:       "result and error are both kept",
			body:       `{"id":1,"result":[1],"error":{"code":-32603,"message":"boom"}}`,
			wantResult: `[1]`,
			wantErr:    &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body))
			require.NoError(t, err)

			if tt.wantResult == "" {
				assert.Nil(t, env.ResultJSON())
			} else {
				assert.JSONEq(t, tt.wantResult, string(env.ResultJSON()))
			}

			if tt.wantErr == nil {
				assert.False(t, env.HasError())
				return
			}
			require.True(t, env.HasError())
			assert.Equal(t, tt.wantErr.Code, env.ErrorObject().Code)
			assert.Equal(t, tt.wantErr.Message, env.ErrorObject().Message)
		})
	}
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	for _, body := range []string{"", "not json", `{"result":`} {
		_, err := DecodeEnvelope([]byte(body))
		var frameErr *MalformedFrameError
		assert.True(t, errors.As(err, &frameErr), "body %q: got %v", body, err)
	}
}

func TestEnvelope_DecodeResult(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"id":1,"result":{"items":[{"label":"a"},{"label":"b"}]}}`))
	require.NoError(t, err)

	var list struct {
		Items []struct {
			Label string `json:"label"`
		} `json:"items"`
	}
	require.NoError(t, env.DecodeResult(&list))
	assert.Len(t, list.Items, 2)

	empty, err := DecodeEnvelope([]byte(`{"id":2,"result":null}`))
	require.NoError(t, err)
	list.Items = nil
	require.NoError(t, empty.DecodeResult(&list))
	assert.Nil(t, list.Items)
}
