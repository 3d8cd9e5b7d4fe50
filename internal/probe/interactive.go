package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/lspext"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

const promptMessage = "LSP>"

// Prompter supplies interactive input lines. io.EOF ends the session.
type Prompter interface {
	Prompt(message string) (string, error)
}

// SurveyPrompter reads lines from the terminal and completes method names
// on tab.
type SurveyPrompter struct {
	Methods []string
}

// Prompt implements Prompter. Ctrl-C is reported as io.EOF.
func (p *SurveyPrompter) Prompt(message string) (string, error) {
	var line string
	prompt := &survey.Input{
		Message: message,
		Suggest: p.suggest,
	}
	if err := survey.AskOne(prompt, &line); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

func (p *SurveyPrompter) suggest(toComplete string) []string {
	if strings.Contains(toComplete, " ") {
		return nil
	}
	var out []string
	for _, m := range p.Methods {
		if strings.HasPrefix(m, toComplete) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		out = ui.FindSimilar(toComplete, p.Methods, nil)
	}
	return out
}

// ScriptedPrompter replays fixed lines, then returns io.EOF.
type ScriptedPrompter struct {
	Lines []string
	next  int
}

// Prompt implements Prompter.
func (p *ScriptedPrompter) Prompt(string) (string, error) {
	if p.next >= len(p.Lines) {
		return "", io.EOF
	}
	line := p.Lines[p.next]
	p.next++
	return line, nil
}

// KnownMethods lists the request methods the suites know about, sorted.
func KnownMethods() []string {
	methods := []string{
		protocol.MethodInitialize,
		protocol.MethodShutdown,
		protocol.MethodTextDocumentHover,
		protocol.MethodTextDocumentDefinition,
		protocol.MethodTextDocumentTypeDefinition,
		protocol.MethodTextDocumentImplementation,
		protocol.MethodTextDocumentReferences,
		protocol.MethodTextDocumentCompletion,
		protocol.MethodTextDocumentSignatureHelp,
		protocol.MethodTextDocumentDocumentSymbol,
		protocol.MethodWorkspaceSymbol,
		protocol.MethodTextDocumentFormatting,
		protocol.MethodTextDocumentRangeFormatting,
		protocol.MethodTextDocumentCodeAction,
		protocol.MethodSemanticTokensFull,
		protocol.MethodTextDocumentPrepareRename,
		protocol.MethodTextDocumentRename,
		protocol.MethodTextDocumentPrepareCallHierarchy,
		protocol.MethodCallHierarchyIncomingCalls,
		protocol.MethodCallHierarchyOutgoingCalls,
		lspext.MethodInlayHint,
		lspext.MethodCodeActionResolve,
		lspext.MethodPrepareTypeHierarchy,
		lspext.MethodTypeHierarchySuper,
		lspext.MethodTypeHierarchySubtypes,
	}
	sort.Strings(methods)
	return methods
}

// ParseCommand splits an input line into a method and its params. Params
// must be strict JSON and default to an empty object.
func ParseCommand(line string) (method string, params json.RawMessage, err error) {
	line = strings.TrimSpace(line)
	method, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return method, json.RawMessage("{}"), nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(rest), &v); err != nil {
		return method, nil, fmt.Errorf("invalid params format: params must be JSON, e.g. {\"query\":\"x\"}: %w", err)
	}
	return method, json.RawMessage(rest), nil
}

// Interactive reads method lines from the configured Prompter and sends
// each as a request until quit, exit or end of input.
func (r *Runner) Interactive(ctx context.Context) error {
	if r.opts.Prompter == nil {
		return errors.New("interactive: no prompter configured")
	}

	r.printer.Banner("Interactive LSP Client")
	r.printer.Line("Enter an LSP method name and JSON params")
	r.printer.Line(`Example: textDocument/hover {"textDocument": {"uri": "..."}, "position": {"line": 0, "character": 0}}`)
	r.printer.Line("Enter 'quit' or 'exit' to stop")
	r.printer.Line("%s", strings.Repeat("-", ruleWidth))

	known := KnownMethods()

	return r.session(ctx, func(ctx context.Context) error {
		for {
			if err := ctx.Err(); err != nil {
				return nil
			}

			line, err := r.opts.Prompter.Prompt(promptMessage)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if cmd := strings.ToLower(line); cmd == "quit" || cmd == "exit" {
				return nil
			}

			method, params, err := ParseCommand(line)
			if err != nil {
				r.printer.Error("%v", err)
				continue
			}
			if !containsString(known, method) {
				if similar := ui.FindSimilar(method, known, nil); len(similar) > 0 {
					r.printer.Warn("Unknown method %q. Did you mean: %s?", method, strings.Join(similar, ", "))
				}
			}

			if err := r.exchange(ctx, method, params); err != nil {
				return err
			}
		}
	})
}

// exchange sends one interactive request. Only a lost connection ends the
// session.
func (r *Runner) exchange(ctx context.Context, method string, params json.RawMessage) error {
	r.printer.Line("Sending %s...", method)

	var env *transport.Envelope
	send := func() error {
		var err error
		env, err = r.client.SendRequest(ctx, method, params)
		return err
	}

	var err error
	if r.opts.Spinner {
		err = ui.WithSpinner(r.opts.Out, method, r.opts.NoColor, send)
	} else {
		err = send()
	}

	if err != nil {
		r.printer.Error("%v", err)
		if errors.Is(err, transport.ErrNotConnected) || errors.Is(err, transport.ErrConnectionClosed) {
			return fmt.Errorf("%s: %w", method, err)
		}
		return nil
	}

	if rpcErr := env.ErrorObject(); rpcErr != nil {
		r.printer.Error("code=%d message=%s", rpcErr.Code, rpcErr.Message)
		return nil
	}
	result := env.ResultJSON()
	if result == nil {
		result = []byte("null")
	}
	r.printer.Line("[RESULT]\n%s", r.printer.Format(result))
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
