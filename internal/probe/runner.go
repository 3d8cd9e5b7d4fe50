// Package probe drives suites of LSP requests against a server and reports
// on the responses. Each suite opens its own connection, runs to completion
// and always disconnects.
package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/conduit-lang/lspcheck/internal/schema"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 2087
)

// Options configures a Runner. Zero values fall back to the defaults noted
// on each field.
type Options struct {
	Host string // DefaultHost
	Port int    // DefaultPort

	// Document is the file the positional requests target. DefaultDocument
	// when empty.
	Document protocol.DocumentURI

	// Schemas is the descriptor table used by the compliance suite.
	// schema.LSP317 when nil.
	Schemas schema.Table

	Out      io.Writer // os.Stdout
	Truncate int       // zero prints responses whole
	NoColor  bool

	// Initialize sends initialize/initialized before the refactor suite.
	Initialize bool

	// Summary makes the compliance suite show a progress bar and the summary
	// table only.
	Summary bool

	// Spinner shows a spinner while the interactive suite waits for a reply.
	// Only useful on a terminal.
	Spinner bool

	// Prompter feeds the interactive suite. Required for that suite only.
	Prompter Prompter

	// MarkdownWidth is the column width for rendered hover markdown.
	MarkdownWidth int

	Version string
	Logger  *zap.Logger
}

// Runner runs suites over one Client.
type Runner struct {
	client  Client
	opts    Options
	printer *Printer
	logger  *zap.Logger
}

// NewRunner creates a Runner for client.
func NewRunner(client Client, opts Options) *Runner {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Document == "" {
		opts.Document = protocol.DocumentURI(DefaultDocument)
	}
	if opts.Schemas == nil {
		opts.Schemas = schema.LSP317()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.MarkdownWidth <= 0 {
		opts.MarkdownWidth = 80
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Runner{
		client:  client,
		opts:    opts,
		printer: NewPrinter(opts.Out, opts.Truncate, opts.NoColor),
		logger:  opts.Logger.Named("probe"),
	}
}

// Printer returns the runner's output printer.
func (r *Runner) Printer() *Printer { return r.printer }

func (r *Runner) addr() string { return fmt.Sprintf("%s:%d", r.opts.Host, r.opts.Port) }

// session connects, runs fn and disconnects whatever fn returns.
func (r *Runner) session(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	if err := r.client.Connect(ctx, r.opts.Host, r.opts.Port); err != nil {
		r.printer.Error("Failed to connect to %s: %v", r.addr(), err)
		return err
	}
	r.printer.OK("Connected to %s", r.addr())

	defer func() {
		r.client.Disconnect()
		r.logger.Debug("session closed",
			zap.String("addr", r.addr()),
			zap.Duration("elapsed", time.Since(start)))
	}()

	if err := fn(ctx); err != nil {
		r.printer.Error("%v", err)
		return err
	}
	return nil
}

func (r *Runner) request(ctx context.Context, method string, params interface{}) (*transport.Envelope, error) {
	env, err := r.client.SendRequest(ctx, method, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return env, nil
}

func (r *Runner) notify(ctx context.Context, method string, params interface{}) error {
	if err := r.client.SendNotification(ctx, method, params); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// show sends a request and prints the response under name.
func (r *Runner) show(ctx context.Context, name, method string, params interface{}) (*transport.Envelope, error) {
	env, err := r.request(ctx, method, params)
	if err != nil {
		return nil, err
	}
	r.printer.Result(name, env)
	return env, nil
}

// handshake performs initialize followed by the initialized notification.
func (r *Runner) handshake(ctx context.Context) error {
	env, err := r.request(ctx, protocol.MethodInitialize, initializeParams(r.opts.Document, r.opts.Version))
	if err != nil {
		return err
	}
	if rpcErr := env.ErrorObject(); rpcErr != nil {
		return fmt.Errorf("initialize: %w", rpcErr)
	}

	var result protocol.InitializeResult
	if err := env.DecodeResult(&result); err == nil && result.ServerInfo != nil {
		r.printer.OK("Initialized %s %s", result.ServerInfo.Name, result.ServerInfo.Version)
	} else {
		r.printer.OK("Initialized")
	}
	return r.notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{})
}
