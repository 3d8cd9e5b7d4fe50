// Package lspstub implements a canned Language Server Protocol endpoint over
// TCP. It answers every request from a fixed table, which makes it useful as
// a dry-run target for the probe suites and as the mock server in tests.
package lspstub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// Reply is the canned answer to one method. Err takes precedence over
// Result; Handler, when set, takes precedence over both.
type Reply struct {
	Result  interface{}
	Err     *jsonrpc2.Error
	Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)
}

// Responses maps method names to replies.
type Responses map[string]Reply

// Server serves Responses to every client that connects.
type Server struct {
	responses Responses
	logger    *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	received []string
}

// NewServer creates a stub server. A nil logger disables logging.
func NewServer(responses Responses, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if responses == nil {
		responses = Responses{}
	}
	return &Server{
		responses: responses,
		logger:    logger.Named("stub"),
	}
}

// Listen binds the server to addr. Use "127.0.0.1:0" for an ephemeral port.
func (s *Server) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Serve accepts connections until ctx is done or Close is called. Each
// connection is served by its own jsonrpc2 conn.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("lspstub: Serve called before Listen")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	err := jsonrpc2.Serve(ctx, ln, jsonrpc2.HandlerServer(s.handler()), 0)
	if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if _, err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Close stops accepting connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Received returns the methods received so far, notifications included, in
// arrival order.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func (s *Server) record(method string) {
	s.mu.Lock()
	s.received = append(s.received, method)
	s.mu.Unlock()
}

// handler returns the JSON-RPC handler function
func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		method := req.Method()
		s.record(method)

		if _, ok := req.(*jsonrpc2.Notification); ok {
			s.logger.Debug("notification", zap.String("method", method))
			return reply(ctx, nil, nil)
		}

		r, ok := s.responses[method]
		if !ok {
			s.logger.Debug("unhandled method", zap.String("method", method))
			return reply(ctx, nil, fmt.Errorf("%q: %w", method, jsonrpc2.ErrMethodNotFound))
		}
		s.logger.Debug("request", zap.String("method", method))

		switch {
		case r.Handler != nil:
			result, err := r.Handler(ctx, req.Params())
			if err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, result, nil)
		case r.Err != nil:
			return reply(ctx, nil, r.Err)
		default:
			return reply(ctx, r.Result, nil)
		}
	}
}
