package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs a live connection
	// and the channel has none.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrAlreadyConnected is returned by Connect when the channel already owns
	// a connection. Call Disconnect first.
	ErrAlreadyConnected = errors.New("transport: already connected")

	// ErrConnectionClosed is returned when the peer closes the stream before a
	// full frame (header or body) has been read.
	ErrConnectionClosed = errors.New("transport: connection closed")
)

// ConnectionError reports a failure to reach the endpoint or an I/O failure
// (including a read timeout) on an established connection.
type ConnectionError struct {
	Op   string
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MalformedFrameError reports a frame whose header or body could not be
// decoded. The stream position is indeterminate afterwards.
type MalformedFrameError struct {
	Reason string
	Err    error
}

func (e *MalformedFrameError) Error() string {
	if e.Err == nil {
		return "transport: malformed frame: " + e.Reason
	}
	return fmt.Sprintf("transport: malformed frame: %s: %v", e.Reason, e.Err)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// isFatal reports whether err leaves the connection unusable.
func isFatal(err error) bool {
	var connErr *ConnectionError
	var frameErr *MalformedFrameError
	return errors.Is(err, ErrConnectionClosed) || errors.As(err, &connErr) || errors.As(err, &frameErr)
}
