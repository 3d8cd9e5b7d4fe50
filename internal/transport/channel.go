// Package transport implements the client side of the LSP base protocol: it
// frames JSON-RPC messages with a Content-Length header over a single stream
// connection, assigns request ids and decodes responses.
//
// A Channel carries at most one request at a time. Responses are not matched
// to requests by id; the next frame read after a request is its response.
package transport

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"sync"
	"time"
)

// DefaultTimeout bounds dialing and every frame read or write.
const DefaultTimeout = 30 * time.Second

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Channel.
type Options struct {
	// Timeout bounds connecting and each frame read or write. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Observer receives channel events. Nil means NopObserver.
	Observer Observer

	// Dialer opens the connection. Nil means a *net.Dialer.
	Dialer Dialer
}

// Channel owns one connection to a language server.
//
// The mutex is held for the whole request/response cycle, so concurrent
// callers are serialised instead of interleaving frames.
type Channel struct {
	mu sync.Mutex

	timeout  time.Duration
	observer Observer
	dialer   Dialer

	conn   net.Conn
	reader *bufio.Reader
	addr   string

	// lastID is the id of the most recent request. It is reset by Connect
	// and left alone by Disconnect.
	lastID int32
}

// NewChannel creates a disconnected channel.
func NewChannel(opts Options) *Channel {
	c := &Channel{
		timeout:  opts.Timeout,
		observer: opts.Observer,
		dialer:   opts.Dialer,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.observer == nil {
		c.observer = NopObserver{}
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{}
	}
	return c
}

// Connect dials host:port. On success the request id counter starts over, so
// the next request gets id 1. Failures are not retried.
func (c *Channel) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return ErrAlreadyConnected
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		connErr := &ConnectionError{Op: "dial", Addr: addr, Err: err}
		c.observer.Observe(Event{Kind: EventFailed, Addr: addr, Err: connErr})
		return connErr
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.addr = addr
	c.lastID = 0
	c.observer.Observe(Event{Kind: EventConnected, Addr: addr})
	return nil
}

// Disconnect closes the connection if there is one. It is idempotent and
// never fails; a close error is not actionable.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Connected reports whether the channel currently owns a connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// LastID returns the id assigned to the most recent request, or 0 if no
// request has been sent since the last Connect.
func (c *Channel) LastID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastID
}

// SendRequest sends a request with the next id and blocks until one full
// response frame has been read and decoded.
//
// ctx is checked before anything is written, and its deadline caps the read
// when it is earlier than the channel timeout. An in-flight read cannot be
// cancelled.
func (c *Channel) SendRequest(ctx context.Context, method string, params interface{}) (*Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := c.lastID + 1
	body, err := EncodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}
	c.lastID = id

	n, err := c.writeLocked(body)
	if err != nil {
		return nil, c.failLocked(method, id, err)
	}
	c.observer.Observe(Event{Kind: EventSent, Addr: c.addr, Method: method, ID: id, Bytes: n})

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, c.failLocked(method, id, &ConnectionError{Op: "set read deadline", Addr: c.addr, Err: err})
	}

	frame, err := ReadFrame(c.reader)
	if err != nil {
		return nil, c.failLocked(method, id, err)
	}

	env, err := DecodeEnvelope(frame)
	if err != nil {
		return nil, c.failLocked(method, id, err)
	}

	c.observer.Observe(Event{Kind: EventReceived, Addr: c.addr, Method: method, ID: id, Bytes: int64(len(frame))})
	return env, nil
}

// SendNotification sends a notification. It carries no id, does not advance
// the id counter and does not wait for a response.
func (c *Channel) SendNotification(ctx context.Context, method string, params interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := EncodeNotification(method, params)
	if err != nil {
		return err
	}

	n, err := c.writeLocked(body)
	if err != nil {
		return c.failLocked(method, 0, err)
	}
	c.observer.Observe(Event{Kind: EventSent, Addr: c.addr, Method: method, Bytes: n})
	return nil
}

func (c *Channel) writeLocked(body []byte) (int64, error) {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, &ConnectionError{Op: "set write deadline", Addr: c.addr, Err: err}
	}
	n, err := WriteFrame(c.conn, body)
	if err != nil {
		return n, &ConnectionError{Op: "write", Addr: c.addr, Err: err}
	}
	return n, nil
}

// failLocked reports err and, when it leaves the stream unusable, drops the
// connection so later calls fail with ErrNotConnected.
func (c *Channel) failLocked(method string, id int32, err error) error {
	c.observer.Observe(Event{Kind: EventFailed, Addr: c.addr, Method: method, ID: id, Err: err})
	if isFatal(err) {
		c.closeLocked()
	}
	return err
}

func (c *Channel) closeLocked() {
	if c.conn == nil {
		return
	}
	_ = c.conn.Close()
	c.observer.Observe(Event{Kind: EventDisconnected, Addr: c.addr})
	c.conn = nil
	c.reader = nil
}
