package probe

import (
	"context"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspext"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

const semanticTokensShown = 20

// All sends every supported endpoint once and prints each response.
// Completion and semantic token results are summarised.
func (r *Runner) All(ctx context.Context) error {
	doc := r.opts.Document

	return r.session(ctx, func(ctx context.Context) error {
		steps := []struct {
			name   string
			method string
			params interface{}
		}{
			{"textDocument/hover", protocol.MethodTextDocumentHover, hoverParams(doc, 25, 15)},
			{"textDocument/definition", protocol.MethodTextDocumentDefinition, definitionParams(doc, 30, 20)},
			{"textDocument/references", protocol.MethodTextDocumentReferences, referenceParams(doc, 25, 15)},
		}
		for _, s := range steps {
			if _, err := r.show(ctx, s.name, s.method, s.params); err != nil {
				return err
			}
		}

		if err := r.completionSummary(ctx, completionParams(doc, 50, 10)); err != nil {
			return err
		}

		steps = []struct {
			name   string
			method string
			params interface{}
		}{
			{"textDocument/documentSymbol", protocol.MethodTextDocumentDocumentSymbol, documentSymbolParams(doc)},
			{"workspace/symbol (query: Handler)", protocol.MethodWorkspaceSymbol, workspaceSymbolParams("Handler")},
			{"textDocument/signatureHelp", protocol.MethodTextDocumentSignatureHelp, signatureHelpParams(doc, 100, 30)},
			{"textDocument/formatting", protocol.MethodTextDocumentFormatting, formattingParams(doc)},
			{"textDocument/rangeFormatting", protocol.MethodTextDocumentRangeFormatting, rangeFormattingParams(doc, lineRange(20, 0, 30, 0))},
			{"textDocument/codeAction", protocol.MethodTextDocumentCodeAction, codeActionParams(doc, lineRange(10, 0, 10, 100))},
			{"textDocument/implementation", protocol.MethodTextDocumentImplementation, implementationParams(doc, 25, 10)},
			{"textDocument/inlayHint", lspext.MethodInlayHint, inlayHintParams(doc, lineRange(0, 0, 30, 0))},
			{"textDocument/typeDefinition", protocol.MethodTextDocumentTypeDefinition, typeDefinitionParams(doc, 30, 15)},
		}
		for _, s := range steps {
			if _, err := r.show(ctx, s.name, s.method, s.params); err != nil {
				return err
			}
		}

		if err := r.semanticTokensSummary(ctx, semanticTokensParams(doc)); err != nil {
			return err
		}

		r.printer.Banner("[COMPLETE] All endpoints tested")
		return nil
	})
}

func (r *Runner) completionSummary(ctx context.Context, params interface{}) error {
	const name = "textDocument/completion (summary)"

	env, err := r.request(ctx, protocol.MethodTextDocumentCompletion, params)
	if err != nil {
		return err
	}
	if env.HasError() {
		r.printer.Result(name, env)
		return nil
	}

	// The result is either CompletionList or CompletionItem[]; only the list
	// form is counted.
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	_ = env.DecodeResult(&list)
	r.printer.Value(name, map[string]int{"itemCount": len(list.Items)})
	return nil
}

func (r *Runner) semanticTokensSummary(ctx context.Context, params interface{}) error {
	const name = "textDocument/semanticTokens/full"

	env, err := r.request(ctx, protocol.MethodSemanticTokensFull, params)
	if err != nil {
		return err
	}

	var tokens struct {
		Data []uint32 `json:"data"`
	}
	if env.HasError() || env.DecodeResult(&tokens) != nil || len(tokens.Data) == 0 {
		r.printer.Result(name, env)
		return nil
	}

	first := tokens.Data
	if len(first) > semanticTokensShown {
		first = first[:semanticTokensShown]
	}
	r.printer.Value(name, struct {
		DataLength  int      `json:"dataLength"`
		FirstTokens []uint32 `json:"firstTokens"`
	}{len(tokens.Data), first})
	return nil
}

// Extended exercises the endpoints added after the basic navigation set and
// reports how many results each returned.
func (r *Runner) Extended(ctx context.Context) error {
	doc := r.opts.Document

	return r.session(ctx, func(ctx context.Context) error {
		r.printer.Banner("Test 1: workspace/symbol")
		env, err := r.request(ctx, protocol.MethodWorkspaceSymbol, workspaceSymbolParams("Lsp"))
		if err != nil {
			return err
		}
		if r.reportError(env) {
			var symbols []protocol.SymbolInformation
			_ = env.DecodeResult(&symbols)
			r.printer.OK("Found %d symbols", len(symbols))
			for _, s := range head(symbols, 3) {
				r.printer.Line("    - %s (%d)", s.Name, int(s.Kind))
			}
		}

		r.printer.Banner("Test 2: textDocument/signatureHelp")
		env, err = r.request(ctx, protocol.MethodTextDocumentSignatureHelp, signatureHelpParams(doc, 50, 20))
		if err != nil {
			return err
		}
		if r.reportError(env) {
			r.printer.OK("Response received: %s", resultType(env.ResultJSON()))
		}

		counted := []struct {
			title  string
			method string
			params interface{}
			noun   string
		}{
			{"Test 3: textDocument/formatting", protocol.MethodTextDocumentFormatting, formattingParams(doc), "text edits"},
			{"Test 4: textDocument/codeAction", protocol.MethodTextDocumentCodeAction, codeActionParams(doc, lineRange(10, 0, 10, 50)), "code actions"},
			{"Test 5: textDocument/implementation", protocol.MethodTextDocumentImplementation, implementationParams(doc, 20, 10), "locations"},
			{"Test 6: textDocument/inlayHint", lspext.MethodInlayHint, inlayHintParams(doc, lineRange(0, 0, 50, 0)), "inlay hints"},
		}
		for _, c := range counted {
			r.printer.Banner(c.title)
			env, err := r.request(ctx, c.method, c.params)
			if err != nil {
				return err
			}
			if r.reportError(env) {
				r.printer.OK("Got %d %s", countItems(env.ResultJSON()), c.noun)
			}
		}

		r.printer.Banner("[SUCCESS] All extended features tested!")
		return nil
	})
}

// reportError prints the error carried by env, if any, and reports whether
// env was error free.
func (r *Runner) reportError(env *transport.Envelope) bool {
	rpcErr := env.ErrorObject()
	if rpcErr == nil {
		return true
	}
	r.printer.Error("code=%d message=%s", rpcErr.Code, rpcErr.Message)
	return false
}

// countItems returns the length of an array result, 0 for null and 1 for
// any other value.
func countItems(result []byte) int {
	if result == nil {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(result, &items); err != nil {
		return 1
	}
	return len(items)
}

// resultType names the JSON type of a result.
func resultType(result []byte) string {
	if result == nil {
		return "null"
	}
	var v interface{}
	if err := json.Unmarshal(result, &v); err != nil {
		return "invalid"
	}
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
