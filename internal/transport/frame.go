package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"go.lsp.dev/jsonrpc2"
)

const (
	// maxHeaderBytes bounds the header block so a peer that never sends the
	// separator cannot grow the buffer forever.
	maxHeaderBytes = 8 << 10

	// MaxBodyBytes is the largest Content-Length accepted. The body buffer is
	// allocated up front, so larger values are rejected before reading.
	MaxBodyBytes = 64 << 20
)

var headerSeparator = []byte(jsonrpc2.HdrContentSeparator)

// EncodeFrame returns header and body as one contiguous buffer. The
// Content-Length is the byte length of body, not its rune count.
func EncodeFrame(body []byte) []byte {
	header := fmt.Sprintf("%s: %d%s", jsonrpc2.HdrContentLength, len(body), jsonrpc2.HdrContentSeparator)
	buf := make([]byte, 0, len(header)+len(body))
	buf = append(buf, header...)
	return append(buf, body...)
}

// WriteFrame writes one framed message to w, retrying short writes until the
// whole buffer is flushed. It returns the number of bytes written.
func WriteFrame(w io.Writer, body []byte) (int64, error) {
	buf := EncodeFrame(body)
	var total int64
	for len(buf) > 0 {
		n, err := w.Write(buf)
		total += int64(n)
		buf = buf[n:]
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// ReadFrame reads one framed message from r and returns its body.
//
// The header is accumulated one byte at a time until the blank line, so r may
// deliver data in arbitrarily small pieces. A missing Content-Length header
// yields an empty body. Any EOF before the frame is complete is reported as
// ErrConnectionClosed.
func ReadFrame(r io.Reader) ([]byte, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	length, err := parseContentLength(header)
	if err != nil {
		return nil, err
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, classifyReadError("read body", err)
	}
	return body, nil
}

func readHeader(r io.Reader) ([]byte, error) {
	var header []byte
	var one [1]byte
	for !bytes.HasSuffix(header, headerSeparator) {
		if len(header) >= maxHeaderBytes {
			return nil, &MalformedFrameError{Reason: fmt.Sprintf("header exceeds %d bytes", maxHeaderBytes)}
		}
		n, err := r.Read(one[:])
		if n == 1 {
			header = append(header, one[0])
			continue
		}
		if err == nil {
			// A zero-byte read without an error carries no data; treat it
			// the same as the stream ending.
			err = io.EOF
		}
		return nil, classifyReadError("read header", err)
	}
	return header, nil
}

// parseContentLength extracts the Content-Length value from a CRLF separated
// header block. The key match is case-sensitive and other headers are
// ignored.
func parseContentLength(header []byte) (int, error) {
	block := strings.TrimSuffix(string(header), jsonrpc2.HdrContentSeparator)
	for _, line := range strings.Split(block, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok || name != jsonrpc2.HdrContentLength {
			continue
		}
		length, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, &MalformedFrameError{Reason: "invalid " + jsonrpc2.HdrContentLength, Err: err}
		}
		if length < 0 {
			return 0, &MalformedFrameError{Reason: fmt.Sprintf("negative %s %d", jsonrpc2.HdrContentLength, length)}
		}
		if length > MaxBodyBytes {
			return 0, &MalformedFrameError{Reason: fmt.Sprintf("%s %d exceeds %d bytes", jsonrpc2.HdrContentLength, length, MaxBodyBytes)}
		}
		return length, nil
	}
	return 0, nil
}

// classifyReadError maps end-of-stream conditions to ErrConnectionClosed and
// wraps everything else (timeouts included) in a ConnectionError.
func classifyReadError(op string, err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%s: %w", op, ErrConnectionClosed)
	default:
		return &ConnectionError{Op: op, Err: err}
	}
}
