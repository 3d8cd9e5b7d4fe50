package commands

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/lspcheck/internal/cli/config"
	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/probe"
	"github.com/conduit-lang/lspcheck/internal/schema"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

// session is the resolved configuration of one command run.
type session struct {
	id       string
	cfg      *config.Config
	logger   *zap.Logger
	schemas  schema.Table
	document protocol.DocumentURI
}

// open loads configuration, applies the flags set on the command line and
// builds the logger.
func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, o.noColor))
		return nil, fmt.Errorf("invalid configuration")
	}
	o.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, o.noColor))
		return nil, fmt.Errorf("invalid configuration")
	}

	schemas, err := cfg.SchemaTable(schema.LSP317())
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), nil, cfg.NoColor))
		return nil, fmt.Errorf("invalid configuration")
	}

	id := uuid.NewString()
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("session", id))
	logger.Debug("configuration loaded",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("file", cfg.File))

	return &session{
		id:       id,
		cfg:      cfg,
		logger:   logger,
		schemas:  schemas,
		document: probe.DocumentURI(cfg.File),
	}, nil
}

// apply copies the flags that were explicitly set over cfg.
func (o *globalOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("file") {
		cfg.File = o.file
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = o.noColor
	}
	if flags.Changed("truncate") {
		cfg.Truncate = o.truncate
	}
}

// runner builds a probe runner over a fresh channel. tweak may adjust the
// options before the runner is created.
func (s *session) runner(out io.Writer, tweak func(*probe.Options)) *probe.Runner {
	ch := transport.NewChannel(transport.Options{
		Timeout:  s.cfg.Timeout,
		Observer: transport.NewZapObserver(s.logger),
	})

	opts := probe.Options{
		Host:     s.cfg.Host,
		Port:     s.cfg.Port,
		Document: s.document,
		Schemas:  s.schemas,
		Out:      out,
		Truncate: s.cfg.Truncate,
		NoColor:  s.cfg.NoColor,
		Version:  Version,
		Logger:   s.logger,
	}
	if tweak != nil {
		tweak(&opts)
	}
	return probe.NewRunner(ch, opts)
}

// newLogger builds the process logger writing to w. Debug uses the
// development encoder; every other level uses the production one.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if lvl == zapcore.DebugLevel {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}
