package probe

import (
	"context"
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"
)

const markdownPad = 2

// Detailed prints full responses for signature help, workspace symbols,
// hover, code actions and type definition at hand-picked positions.
func (r *Runner) Detailed(ctx context.Context) error {
	doc := r.opts.Document

	return r.session(ctx, func(ctx context.Context) error {
		for _, p := range []protocol.Position{position(21, 55), position(16, 35)} {
			if _, err := r.show(ctx, positionName("textDocument/signatureHelp", p),
				protocol.MethodTextDocumentSignatureHelp,
				signatureHelpParams(doc, p.Line, p.Character)); err != nil {
				return err
			}
		}

		for _, query := range []string{"Lsp", "Worker", "Provider", "Activity", "Symbol"} {
			if err := r.symbolSearch(ctx, query); err != nil {
				return err
			}
		}

		for _, p := range []protocol.Position{position(11, 10), position(12, 30)} {
			if err := r.hover(ctx, doc, p); err != nil {
				return err
			}
		}

		ranges := []struct {
			name string
			rng  protocol.Range
		}{
			{"textDocument/codeAction (line 12)", lineRange(12, 0, 12, 50)},
			{"textDocument/codeAction (line 13)", lineRange(13, 0, 13, 50)},
			{"textDocument/codeAction (lines 11-14)", lineRange(11, 0, 14, 10)},
		}
		for _, c := range ranges {
			if _, err := r.show(ctx, c.name, protocol.MethodTextDocumentCodeAction, codeActionParams(doc, c.rng)); err != nil {
				return err
			}
		}

		if _, err := r.show(ctx, positionName("textDocument/typeDefinition", position(12, 20)),
			protocol.MethodTextDocumentTypeDefinition, typeDefinitionParams(doc, 12, 20)); err != nil {
			return err
		}

		r.printer.Banner("[COMPLETE] Detailed tests finished")
		return nil
	})
}

func positionName(method string, p protocol.Position) string {
	return method + " at " + formatPosition(p)
}

func formatPosition(p protocol.Position) string {
	return fmt.Sprintf("(%d, %d)", p.Line, p.Character)
}

func (r *Runner) symbolSearch(ctx context.Context, query string) error {
	name := "workspace/symbol (query: " + query + ")"
	env, err := r.request(ctx, protocol.MethodWorkspaceSymbol, workspaceSymbolParams(query))
	if err != nil {
		return err
	}

	r.printer.Banner(name)
	if !r.reportError(env) {
		return nil
	}

	var symbols []protocol.SymbolInformation
	if err := env.DecodeResult(&symbols); err != nil {
		r.printer.Line("%s", r.printer.Format(env.ResultJSON()))
		return nil
	}
	r.printer.OK("Found %d symbols", len(symbols))
	for _, s := range head(symbols, 5) {
		r.printer.Line("    - %s (%s)", s.Name, s.Kind)
	}
	return nil
}

// hover prints the raw response and, when the contents are markdown, the
// rendered text.
func (r *Runner) hover(ctx context.Context, doc protocol.DocumentURI, p protocol.Position) error {
	env, err := r.show(ctx, positionName("textDocument/hover", p),
		protocol.MethodTextDocumentHover, hoverParams(doc, p.Line, p.Character))
	if err != nil {
		return err
	}
	if env.HasError() || env.ResultJSON() == nil {
		return nil
	}

	if text, ok := hoverMarkdown(env.ResultJSON()); ok {
		r.printer.Line("[RENDERED]")
		r.printer.Line("%s", strings.TrimRight(string(markdown.Render(text, r.opts.MarkdownWidth, markdownPad)), "\n"))
	}
	return nil
}

// hoverMarkdown extracts markdown text from a Hover result. Plain strings
// and MarkedString values are treated as markdown; plaintext MarkupContent
// is not.
func hoverMarkdown(result []byte) (string, bool) {
	var hover struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(result, &hover); err != nil || len(hover.Contents) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(hover.Contents, &s); err == nil {
		return s, s != ""
	}

	var markup struct {
		Kind     protocol.MarkupKind `json:"kind"`
		Language string              `json:"language"`
		Value    string              `json:"value"`
	}
	if err := json.Unmarshal(hover.Contents, &markup); err == nil {
		switch {
		case markup.Kind == protocol.Markdown:
			return markup.Value, markup.Value != ""
		case markup.Language != "":
			return "```" + markup.Language + "\n" + markup.Value + "\n```", true
		}
	}
	return "", false
}
