package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/probe"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

// suiteFlags are the flags only some suites read.
type suiteFlags struct {
	summary       bool
	initialize    bool
	markdownWidth int
}

func (f *suiteFlags) register(cmd *cobra.Command, suite string) {
	all := suite == ""
	if all || suite == "compliance" {
		cmd.Flags().BoolVar(&f.summary, "summary", false, "show a progress bar and the summary table only")
	}
	if all || suite == "refactor" {
		cmd.Flags().BoolVar(&f.initialize, "initialize", false, "send initialize/initialized before the requests")
	}
	if all || suite == "detailed" {
		cmd.Flags().IntVar(&f.markdownWidth, "markdown-width", 80, "column width of rendered hover markdown")
	}
}

// NewSuiteCommands creates one command per probe suite
func NewSuiteCommands(opts *globalOptions) []*cobra.Command {
	var cmds []*cobra.Command
	for _, suite := range probe.Suites() {
		suite := suite
		flags := &suiteFlags{}
		cmd := &cobra.Command{
			Use:     suite.Name,
			Aliases: suite.Aliases,
			Short:   suite.Summary,
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSuite(cmd, opts, flags, suite)
			},
		}
		flags.register(cmd, suite.Name)
		cmds = append(cmds, cmd)
	}
	return cmds
}

// NewRunCommand creates the run command, which selects a suite by name
func NewRunCommand(opts *globalOptions) *cobra.Command {
	flags := &suiteFlags{}
	var list bool

	cmd := &cobra.Command{
		Use:   "run <suite>",
		Short: "Run a probe suite by name",
		Long: `Run a probe suite by name or alias.

Unknown names are matched against the known suites and the closest
names are suggested. Use --list to see every suite.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				listSuites(cmd, opts.noColor)
				if len(args) == 0 && !list {
					return fmt.Errorf("missing suite name")
				}
				return nil
			}

			suite, ok := probe.Lookup(args[0])
			if !ok {
				suggestions := ui.FindSimilar(args[0], probe.Names(), nil)
				fmt.Fprint(out, ui.UnknownSuiteError(args[0], suggestions, opts.noColor))
				return fmt.Errorf("unknown suite %q", args[0])
			}
			return runSuite(cmd, opts, flags, suite)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the available suites")
	flags.register(cmd, "")
	return cmd
}

func listSuites(cmd *cobra.Command, noColor bool) {
	out := cmd.OutOrStdout()
	ui.Header(out, "Suites", noColor)
	table := ui.NewTable(out, []string{"SUITE", "ALIASES", "SUMMARY"}, &ui.TableOptions{NoColor: noColor})
	for _, s := range probe.Suites() {
		table.AddRow(s.Name, strings.Join(s.Aliases, ", "), s.Summary)
	}
	table.Render()
}

// runSuite resolves the session and runs suite until it finishes or the
// process is interrupted.
func runSuite(cmd *cobra.Command, opts *globalOptions, flags *suiteFlags, suite probe.Suite) error {
	sess, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer sess.logger.Sync() //nolint:errcheck

	runner := sess.runner(cmd.OutOrStdout(), func(o *probe.Options) {
		o.Summary = flags.summary
		o.Initialize = flags.initialize
		o.MarkdownWidth = flags.markdownWidth
		if suite.Name == "interactive" {
			if !isatty.IsTerminal(os.Stdin.Fd()) {
				fmt.Fprint(cmd.ErrOrStderr(), ui.Warning("Standard input is not a terminal; the prompt may not accept input.", nil, sess.cfg.NoColor))
			}
			o.Prompter = &probe.SurveyPrompter{Methods: probe.KnownMethods()}
			o.Spinner = isatty.IsTerminal(os.Stdout.Fd())
		}
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess.logger.Info("running suite", zap.String("suite", suite.Name))
	err = suite.Run(runner, ctx)
	reportSuiteError(cmd, sess, err)
	return err
}

// reportSuiteError prints the structured form of the errors a user can act
// on. Other errors are left to Execute.
func reportSuiteError(cmd *cobra.Command, sess *session, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	stderr := cmd.ErrOrStderr()
	var connErr *transport.ConnectionError
	switch {
	case errors.As(err, &connErr) && connErr.Op == "dial":
		addr := net.JoinHostPort(sess.cfg.Host, strconv.Itoa(sess.cfg.Port))
		fmt.Fprint(stderr, ui.ConnectionError(addr, connErr.Err, sess.cfg.NoColor))
	case errors.Is(err, probe.ErrNonCompliant):
		fmt.Fprint(stderr, ui.ComplianceError(err.Error(), "The run exits with a non-zero status.", sess.cfg.NoColor))
	}
}
