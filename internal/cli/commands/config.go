package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/schema"
)

// NewConfigCommand creates the config command
func NewConfigCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, lspcheck.yaml,
LSPCHECK_* environment variables and command line flags, followed by the
response schema used by the compliance suite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			noColor := sess.cfg.NoColor

			ui.Header(out, "Configuration", noColor)
			table := ui.NewKeyValueTable(out, noColor)
			table.AddRow("Host", sess.cfg.Host)
			table.AddRow("Port", fmt.Sprint(sess.cfg.Port))
			table.AddRow("Timeout", sess.cfg.Timeout.String())
			table.AddRow("Document", string(sess.document))
			table.AddRow("Log level", sess.cfg.LogLevel)
			table.AddRow("Truncate", fmt.Sprint(sess.cfg.Truncate))
			table.AddRow("Color", fmt.Sprint(!noColor))
			table.Render()
			fmt.Fprintln(out)

			section := ui.NewSection(out, "Compliance schema", noColor)
			for _, method := range sess.schemas.Methods() {
				section.AddLine(describeDescriptor(method, sess.schemas.Lookup(method)))
			}
			section.Render()
			return nil
		},
	}
}

func describeDescriptor(method string, d schema.Descriptor) string {
	kind := string(d.Kind)
	if kind == "" {
		kind = "any"
	}

	parts := []string{kind}
	if len(d.RequiredFields) > 0 {
		parts = append(parts, "required "+strings.Join(d.RequiredFields, " "))
	}
	if len(d.ItemFields) > 0 {
		parts = append(parts, "items "+strings.Join(d.ItemFields, " "))
	}
	if d.Nullable {
		parts = append(parts, "nullable")
	}
	return method + ": " + strings.Join(parts, ", ")
}
