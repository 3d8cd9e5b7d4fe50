package transport

import (
	"bufio"
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame_ContentLengthCountsBytes(t *testing.T) {
	body, err := EncodeRequest(1, "textDocument/hover", map[string]string{"text": "héllo ✓ 世界"})
	require.NoError(t, err)
	require.NotEqual(t, len(body), utf8.RuneCount(body), "test body should contain multi-byte characters")

	frame := EncodeFrame(body)
	header, rest, found := strings.Cut(string(frame), "\r\n\r\n")
	require.True(t, found)

	length, err := parseContentLength([]byte(header + "\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, len(body), length)
	assert.Equal(t, string(body), rest)
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params interface{}
	}{
		{"simple object", map[string]int{"a": 1}},
		{"multi-byte", map[string]string{"a": "ünïcödé → ✓"}},
		{"nil params", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := EncodeRequest(7, "m", tt.params)
			require.NoError(t, err)

			var buf bytes.Buffer
			n, err := WriteFrame(&buf, body)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			got, err := ReadFrame(&buf)
			require.NoError(t, err)
			assert.Equal(t, body, got)
		})
	}
}

func TestReadFrame_OneByteReads(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","id":1,"result":{"contents":"hover ✓"}}`)
	r := iotest.OneByteReader(bytes.NewReader(EncodeFrame(body)))

	got, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestReadFrame_ConsecutiveFrames(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteFrame(&buf, []byte(`{"id":1}`))
	require.NoError(t, err)
	_, err = WriteFrame(&buf, []byte(`{"id":2}`))
	require.NoError(t, err)

	r := bufio.NewReader(&buf)
	first, err := ReadFrame(r)
	require.NoError(t, err)
	second, err := ReadFrame(r)
	require.NoError(t, err)

	assert.Equal(t, `{"id":1}`, string(first))
	assert.Equal(t, `{"id":2}`, string(second))
}

func TestReadFrame_ClosedStream(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty stream", ""},
		{"mid header", "Content-Len"},
		{"header without separator", "Content-Length: 4\r\n"},
		{"header only, no body", "Content-Length: 10\r\n\r\n"},
		{"partial body", "Content-Length: 10\r\n\r\n{\"a\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConnectionClosed), "got %v", err)
		})
	}
}

func TestReadFrame_ToleratesOtherHeaders(t *testing.T) {
	input := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"Content-Length: 2\r\n" +
		"X-Trace: abc\r\n\r\n{}"

	got, err := ReadFrame(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestReadFrame_MissingContentLength(t *testing.T) {
	got, err := ReadFrame(strings.NewReader("Content-Type: text/plain\r\n\r\n"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeEnvelope(got)
	var frameErr *MalformedFrameError
	assert.True(t, errors.As(err, &frameErr), "empty body should not decode, got %v", err)
}

func TestReadFrame_ContentLengthKeyIsCaseSensitive(t *testing.T) {
	got, err := ReadFrame(strings.NewReader("content-length: 2\r\n\r\n{}"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFrame_InvalidContentLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a number", "Content-Length: abc\r\n\r\n"},
		{"negative", "Content-Length: -3\r\n\r\n"},
		{"empty value", "Content-Length:\r\n\r\n"},
		{"overflows int", "Content-Length: 99999999999999999999\r\n\r\n{}"},
		{"max int", "Content-Length: 9223372036854775807\r\n\r\n{}"},
		{"above body limit", "Content-Length: " + strconv.Itoa(MaxBodyBytes+1) + "\r\n\r\n{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(strings.NewReader(tt.input))
			var frameErr *MalformedFrameError
			require.True(t, errors.As(err, &frameErr), "got %v", err)
		})
	}
}

func TestParseContentLength_BodyLimit(t *testing.T) {
	length, err := parseContentLength([]byte("Content-Length: " + strconv.Itoa(MaxBodyBytes) + "\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, MaxBodyBytes, length)

	_, err = parseContentLength([]byte("Content-Length: " + strconv.Itoa(MaxBodyBytes+1) + "\r\n\r\n"))
	var frameErr *MalformedFrameError
	require.ErrorAs(t, err, &frameErr)
	assert.Contains(t, frameErr.Reason, "exceeds")
}

func TestReadFrame_HeaderTooLarge(t *testing.T) {
	input := "X-Padding: " + strings.Repeat("a", maxHeaderBytes) + "\r\n\r\n"

	_, err := ReadFrame(strings.NewReader(input))
	var frameErr *MalformedFrameError
	require.True(t, errors.As(err, &frameErr), "got %v", err)
}

// shortWriter accepts at most limit bytes per call without reporting an error.
type shortWriter struct {
	buf   bytes.Buffer
	limit int
	calls int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	w.calls++
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

func TestWriteFrame_RetriesShortWrites(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`)
	w := &shortWriter{limit: 3}

	n, err := WriteFrame(w, body)
	require.NoError(t, err)

	assert.Equal(t, EncodeFrame(body), w.buf.Bytes())
	assert.Equal(t, int64(w.buf.Len()), n)
	assert.Greater(t, w.calls, 1)
}
