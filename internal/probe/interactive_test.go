package probe

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspstub"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantMethod string
		wantParams string
		wantErr    bool
	}{
		{"method only", "shutdown", "shutdown", "{}", false},
		{"with params", `textDocument/hover {"position":{"line":1}}`, "textDocument/hover", `{"position":{"line":1}}`, false},
		{"padded", "  workspace/symbol   {\"query\":\"x\"}  ", "workspace/symbol", `{"query":"x"}`, false},
		{"array params", "custom/method [1,2]", "custom/method", "[1,2]", false},
		{"bad json", "textDocument/hover {position:", "textDocument/hover", "", true},
		{"single quotes", "workspace/symbol {'query': 'x'}", "workspace/symbol", "", true},
		{"trailing comma", `workspace/symbol {"query":"x",}`, "workspace/symbol", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, params, err := ParseCommand(tt.line)
			assert.Equal(t, tt.wantMethod, method)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid params format")
				assert.Contains(t, err.Error(), "params must be JSON")
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantParams, string(params))
		})
	}
}

func TestScriptedPrompter(t *testing.T) {
	p := &ScriptedPrompter{Lines: []string{"a", "b"}}

	line, err := p.Prompt("LSP>")
	require.NoError(t, err)
	assert.Equal(t, "a", line)

	line, err = p.Prompt("LSP>")
	require.NoError(t, err)
	assert.Equal(t, "b", line)

	_, err = p.Prompt("LSP>")
	assert.ErrorIs(t, err, io.EOF)
}

func TestSurveyPrompter_Suggest(t *testing.T) {
	p := &SurveyPrompter{Methods: KnownMethods()}

	assert.Equal(t, []string{"typeHierarchy/subtypes", "typeHierarchy/supertypes"}, p.suggest("typeHierarchy/"))
	assert.Contains(t, p.suggest("textDocument/hovr"), protocol.MethodTextDocumentHover)
	assert.Nil(t, p.suggest("textDocument/hover {"))
}

func TestInteractive_Session(t *testing.T) {
	prompter := &ScriptedPrompter{Lines: []string{
		"",
		`textDocument/hover {"textDocument":{"uri":"file:///a.kt"},"position":{"line":11,"character":10}}`,
		"textDocument/hover {bad",
		"textDocument/hovr {}",
		"shutdown",
		"QUIT",
		"textDocument/definition {}",
	}}
	r, out, srv := stubRunner(t, lspstub.Default(), Options{Prompter: prompter})

	require.NoError(t, r.Interactive(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Interactive LSP Client")
	assert.Contains(t, text, "Sending textDocument/hover...")
	assert.Contains(t, text, "[RESULT]\n{")
	assert.Contains(t, text, "WorkspaceSymbolHandler")
	assert.Contains(t, text, "[ERROR] invalid params format: params must be JSON")
	assert.Contains(t, text, `Unknown method "textDocument/hovr". Did you mean: textDocument/hover`)
	assert.Contains(t, text, "code=-32601")
	assert.Contains(t, text, "[RESULT]\nnull")

	assert.Equal(t, []string{
		protocol.MethodTextDocumentHover,
		"textDocument/hovr",
		protocol.MethodShutdown,
	}, srv.Received())
}

type failingPrompter struct{ err error }

func (p failingPrompter) Prompt(string) (string, error) { return "", p.err }

func TestInteractive_PromptError(t *testing.T) {
	boom := errors.New("terminal gone")
	r, _, _ := stubRunner(t, lspstub.Default(), Options{Prompter: failingPrompter{boom}})

	err := r.Interactive(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestInteractive_RequiresPrompter(t *testing.T) {
	r, _, _ := stubRunner(t, lspstub.Default(), Options{})
	assert.Error(t, r.Interactive(context.Background()))
}
