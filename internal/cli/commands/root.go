package commands

import (
	"errors"
	"io/fs"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions holds the persistent flags. Flags that were set on the
// command line win over lspcheck.yaml and LSPCHECK_* variables.
type globalOptions struct {
	configPath string
	envFile    string
	host       string
	port       int
	file       string
	timeout    time.Duration
	logLevel   string
	noColor    bool
	truncate   int
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "lspcheck",
		Short: "Diagnostic client for Language Server Protocol servers",
		Long: color.CyanString(`lspcheck - LSP diagnostic client

lspcheck connects to a running language server over TCP, speaks
Content-Length framed JSON-RPC and exercises a broad set of LSP methods.

Suites:
  • compliance    validate response shapes against LSP 3.17
  • all           send every supported endpoint once
  • extended      symbols, signatures, formatting, code actions, inlay hints
  • refactor      rename, call and type hierarchy, workspace notifications
  • detailed      full responses at hand-picked positions
  • code-actions  list code actions
  • resolve       resolve code actions to workspace edits
  • interactive   type methods at a prompt`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			return loadEnvFile(opts.envFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ./lspcheck.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	flags.StringVar(&opts.host, "host", "localhost", "language server host")
	flags.IntVarP(&opts.port, "port", "p", 2087, "language server port")
	flags.StringVarP(&opts.file, "file", "f", "", "document to probe, as a path or file:// URI")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "connect and read timeout")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.IntVar(&opts.truncate, "truncate", 2000, "characters of JSON shown per response (0 shows all)")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	for _, cmd := range NewSuiteCommands(opts) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(NewRunCommand(opts))
	rootCmd.AddCommand(NewStubCommand(opts))
	rootCmd.AddCommand(NewConfigCommand(opts))

	return rootCmd
}

// loadEnvFile loads a dotenv file. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the lspcheck version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("lspcheck version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
