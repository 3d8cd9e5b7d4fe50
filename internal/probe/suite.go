package probe

import (
	"context"
	"sort"
	"strings"
)

// Suite is a named probe run selectable from the command line.
type Suite struct {
	Name    string
	Aliases []string
	Summary string
	Run     func(*Runner, context.Context) error
}

var suites = []Suite{
	{
		Name:    "compliance",
		Summary: "Validate response shapes of the LSP 3.17 method table",
		Run: func(r *Runner, ctx context.Context) error {
			report, err := r.Compliance(ctx)
			if err != nil {
				return err
			}
			return report.Err()
		},
	},
	{
		Name:    "all",
		Summary: "Send every supported endpoint once and print the responses",
		Run:     (*Runner).All,
	},
	{
		Name:    "extended",
		Aliases: []string{"phase9"},
		Summary: "Count results of symbol, signature, formatting, code action, implementation and inlay hint requests",
		Run:     (*Runner).Extended,
	},
	{
		Name:    "refactor",
		Aliases: []string{"phase10"},
		Summary: "Exercise rename, call and type hierarchy and workspace notifications",
		Run:     (*Runner).Refactor,
	},
	{
		Name:    "detailed",
		Summary: "Print full responses at hand-picked positions",
		Run:     (*Runner).Detailed,
	},
	{
		Name:    "code-actions",
		Aliases: []string{"code_actions"},
		Summary: "List the code actions offered on a line",
		Run:     (*Runner).CodeActions,
	},
	{
		Name:    "resolve",
		Summary: "Resolve code actions until one returns a workspace edit",
		Run: func(r *Runner, ctx context.Context) error {
			_, err := r.Resolve(ctx)
			return err
		},
	},
	{
		Name:    "interactive",
		Summary: "Send requests typed at a prompt",
		Run:     (*Runner).Interactive,
	},
}

// Suites returns every registered suite in display order.
func Suites() []Suite {
	out := make([]Suite, len(suites))
	copy(out, suites)
	return out
}

// Lookup finds a suite by name or alias, ignoring case.
func Lookup(name string) (Suite, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range suites {
		if s.Name == name {
			return s, true
		}
		for _, a := range s.Aliases {
			if a == name {
				return s, true
			}
		}
	}
	return Suite{}, false
}

// Names returns every suite name and alias, sorted. Used for suggestions.
func Names() []string {
	var names []string
	for _, s := range suites {
		names = append(names, s.Name)
		names = append(names, s.Aliases...)
	}
	sort.Strings(names)
	return names
}
