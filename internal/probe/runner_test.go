package probe

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/lspcheck/internal/lspstub"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

// stubRunner starts a stub server with responses and returns a runner
// pointed at it, writing to the returned buffer.
func stubRunner(t *testing.T, responses lspstub.Responses, opts Options) (*Runner, *bytes.Buffer, *lspstub.Server) {
	t.Helper()

	srv := lspstub.NewServer(responses, nil)
	addr, err := srv.Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("stub server did not stop")
		}
	})

	tcp := addr.(*net.TCPAddr)
	var out bytes.Buffer
	opts.Host = tcp.IP.String()
	opts.Port = tcp.Port
	opts.Out = &out
	opts.NoColor = true

	ch := transport.NewChannel(transport.Options{Timeout: 5 * time.Second})
	return NewRunner(ch, opts), &out, srv
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(transport.NewChannel(transport.Options{}), Options{})

	assert.Equal(t, DefaultHost, r.opts.Host)
	assert.Equal(t, DefaultPort, r.opts.Port)
	assert.Equal(t, DefaultDocument, string(r.opts.Document))
	assert.Len(t, r.opts.Schemas, 12)
	assert.Equal(t, 80, r.opts.MarkdownWidth)
	assert.Equal(t, "localhost:2087", r.addr())
}

func TestRunner_ConnectFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(transport.NewChannel(transport.Options{Timeout: time.Second}), Options{
		Host:    "127.0.0.1",
		Port:    closedPort(t),
		Out:     &out,
		NoColor: true,
	})

	suites := map[string]func() error{
		"all":      func() error { return r.All(context.Background()) },
		"extended": func() error { return r.Extended(context.Background()) },
		"refactor": func() error { return r.Refactor(context.Background()) },
		"compliance": func() error {
			report, err := r.Compliance(context.Background())
			assert.Empty(t, report.Outcomes)
			return err
		},
	}

	for name, run := range suites {
		t.Run(name, func(t *testing.T) {
			out.Reset()
			err := run()
			require.Error(t, err)

			var connErr *transport.ConnectionError
			assert.ErrorAs(t, err, &connErr)
			assert.Contains(t, out.String(), "[ERROR] Failed to connect to 127.0.0.1:")
		})
	}
}

func TestRunner_DisconnectsAfterSuite(t *testing.T) {
	ch := transport.NewChannel(transport.Options{Timeout: 5 * time.Second})
	r, _, _ := stubRunner(t, lspstub.Default(), Options{})
	r.client = ch

	require.NoError(t, r.Extended(context.Background()))
	assert.False(t, ch.Connected())
}

func TestRunner_Handshake(t *testing.T) {
	r, out, srv := stubRunner(t, lspstub.Default(), Options{Initialize: true, Version: "test"})

	require.NoError(t, r.Refactor(context.Background()))
	assert.Contains(t, out.String(), "[OK] Initialized lspcheck-stub "+lspstub.Version)

	assert.Eventually(t, func() bool {
		received := srv.Received()
		return len(received) > 1 && received[0] == "initialize" && received[1] == "initialized"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPrinter_Truncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"within limit", "abc", 3, "abc"},
		{"cut", "abcdef", 3, "abc\n... (truncated)"},
		{"runes", "移除变量", 2, "移除\n... (truncated)"},
		{"no limit", "abcdef", 0, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}

func TestPrinter_Format(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, DefaultTruncate, true)

	assert.Equal(t, "{\n  \"a\": 1\n}", p.Format([]byte(`{"a":1}`)))

	long := `["` + strings.Repeat("x", 3000) + `"]`
	formatted := p.Format([]byte(long))
	assert.True(t, strings.HasSuffix(formatted, "\n... (truncated)"))
	assert.Equal(t, DefaultTruncate+len("\n... (truncated)"), len(formatted))
}

func TestPrinter_FormatZeroLimit(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, 0, true)

	long := `["` + strings.Repeat("x", 3000) + `"]`
	formatted := p.Format([]byte(long))
	assert.NotContains(t, formatted, "(truncated)")
	assert.Contains(t, formatted, strings.Repeat("x", 3000))
}

func TestPrinter_Result(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, 0, true)

	env, err := transport.DecodeEnvelope([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"nope"}}`))
	require.NoError(t, err)
	assert.False(t, p.Result("textDocument/hover", env))
	assert.Contains(t, out.String(), "[ERROR] Code: -32601")
	assert.Contains(t, out.String(), "Message: nope")

	out.Reset()
	env, err = transport.DecodeEnvelope([]byte(`{"jsonrpc":"2.0","id":2,"result":null}`))
	require.NoError(t, err)
	assert.True(t, p.Result("textDocument/hover", env))
	assert.Contains(t, out.String(), "[RESULT] null")
}
