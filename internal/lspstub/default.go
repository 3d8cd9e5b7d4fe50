package lspstub

import (
	"context"
	"fmt"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspext"
)

// DocumentURI is the document every canned location points at.
const DocumentURI = protocol.DocumentURI("file:///workspace/src/main/kotlin/WorkspaceSymbolHandler.kt")

// Version is reported in serverInfo.
const Version = "0.1.0"

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func rng(line, start, end uint32) protocol.Range {
	return protocol.Range{Start: pos(line, start), End: pos(line, end)}
}

func location(line, start, end uint32) protocol.Location {
	return protocol.Location{URI: DocumentURI, Range: rng(line, start, end)}
}

// Default returns well-formed replies for every method the probe suites
// send. Every result passes the LSP 3.17 compliance table.
func Default() Responses {
	handlerItem := protocol.CallHierarchyItem{
		Name:           "getVirtualFile",
		Kind:           protocol.SymbolKindMethod,
		URI:            DocumentURI,
		Range:          rng(111, 4, 40),
		SelectionRange: rng(111, 8, 22),
	}
	classItem := lspext.TypeHierarchyItem{
		Name:           "WorkspaceSymbolHandler",
		Kind:           protocol.SymbolKindClass,
		URI:            DocumentURI,
		Range:          rng(11, 0, 60),
		SelectionRange: rng(11, 6, 28),
	}

	return Responses{
		protocol.MethodInitialize: {Result: protocol.InitializeResult{
			Capabilities: capabilities(),
			ServerInfo: &protocol.ServerInfo{
				Name:    "lspcheck-stub",
				Version: Version,
			},
		}},
		protocol.MethodShutdown: {Result: nil},

		protocol.MethodTextDocumentHover: {Result: protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: "```kotlin\nclass WorkspaceSymbolHandler(project: Project)\n```\n\nAnswers **workspace/symbol** queries.",
			},
			Range: &protocol.Range{Start: pos(11, 6), End: pos(11, 28)},
		}},
		protocol.MethodTextDocumentDefinition:     {Result: location(17, 8, 20)},
		protocol.MethodTextDocumentTypeDefinition: {Result: location(3, 0, 30)},
		protocol.MethodTextDocumentReferences: {Result: []protocol.Location{
			location(12, 16, 23),
			location(40, 8, 15),
		}},
		protocol.MethodTextDocumentImplementation: {Result: []protocol.Location{
			location(25, 4, 30),
		}},
		protocol.MethodTextDocumentCompletion: {Result: protocol.CompletionList{
			Items: []protocol.CompletionItem{
				{Label: "project", Kind: protocol.CompletionItemKindField},
				{Label: "search", Kind: protocol.CompletionItemKindMethod},
				{Label: "symbols", Kind: protocol.CompletionItemKindVariable},
			},
		}},
		protocol.MethodTextDocumentDocumentSymbol: {Result: []protocol.DocumentSymbol{
			{
				Name:           "WorkspaceSymbolHandler",
				Kind:           protocol.SymbolKindClass,
				Range:          rng(11, 0, 60),
				SelectionRange: rng(11, 6, 28),
				Children: []protocol.DocumentSymbol{{
					Name:           "search",
					Kind:           protocol.SymbolKindMethod,
					Range:          rng(21, 4, 70),
					SelectionRange: rng(21, 8, 14),
				}},
			},
		}},
		protocol.MethodWorkspaceSymbol: {Result: []protocol.SymbolInformation{
			{Name: "WorkspaceSymbolHandler", Kind: protocol.SymbolKindClass, Location: location(11, 6, 28)},
			{Name: "DocumentSymbolHandler", Kind: protocol.SymbolKindClass, Location: location(3, 6, 27)},
		}},
		protocol.MethodTextDocumentSignatureHelp: {Result: protocol.SignatureHelp{
			Signatures: []protocol.SignatureInformation{{
				Label: "fun search(query: String, limit: Int): List<SymbolInformation>",
				Parameters: []protocol.ParameterInformation{
					{Label: "query: String"},
					{Label: "limit: Int"},
				},
			}},
		}},
		protocol.MethodTextDocumentFormatting: {Result: []protocol.TextEdit{
			{Range: rng(12, 0, 8), NewText: "    "},
		}},
		protocol.MethodTextDocumentRangeFormatting: {Result: []protocol.TextEdit{
			{Range: rng(20, 0, 2), NewText: "    "},
		}},
		protocol.MethodTextDocumentCodeAction: {Result: CodeActions()},
		lspext.MethodCodeActionResolve:        {Handler: resolveCodeAction},
		lspext.MethodInlayHint: {Result: []lspext.InlayHint{
			{Position: pos(12, 23), Label: ": Project", Kind: lspext.InlayHintKindType},
			{Position: pos(21, 18), Label: "query:", Kind: lspext.InlayHintKindParameter},
		}},
		protocol.MethodSemanticTokensFull: {Result: protocol.SemanticTokens{
			Data: []uint32{
				11, 6, 22, 0, 0,
				1, 4, 7, 1, 0,
				9, 4, 6, 2, 0,
				0, 7, 5, 3, 0,
			},
		}},

		protocol.MethodTextDocumentPrepareRename: {Result: map[string]interface{}{
			"range":       rng(20, 8, 16),
			"placeholder": "symbols",
		}},
		protocol.MethodTextDocumentRename: {Result: protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentURI][]protocol.TextEdit{
				DocumentURI: {
					{Range: rng(20, 8, 15), NewText: "testNewName"},
					{Range: rng(24, 12, 19), NewText: "testNewName"},
				},
			},
		}},

		protocol.MethodTextDocumentPrepareCallHierarchy: {Result: []protocol.CallHierarchyItem{handlerItem}},
		protocol.MethodCallHierarchyIncomingCalls: {Result: []protocol.CallHierarchyIncomingCall{{
			From:       protocol.CallHierarchyItem{Name: "openDocument", Kind: protocol.SymbolKindMethod, URI: DocumentURI, Range: rng(60, 4, 30), SelectionRange: rng(60, 8, 20)},
			FromRanges: []protocol.Range{rng(64, 12, 26)},
		}}},
		protocol.MethodCallHierarchyOutgoingCalls: {Result: []protocol.CallHierarchyOutgoingCall{{
			To:         protocol.CallHierarchyItem{Name: "findFileByUrl", Kind: protocol.SymbolKindMethod, URI: DocumentURI, Range: rng(90, 4, 30), SelectionRange: rng(90, 8, 21)},
			FromRanges: []protocol.Range{rng(113, 16, 29)},
		}}},

		lspext.MethodPrepareTypeHierarchy: {Result: []lspext.TypeHierarchyItem{classItem}},
		lspext.MethodTypeHierarchySuper: {Result: []lspext.TypeHierarchyItem{
			{Name: "SymbolHandler", Kind: protocol.SymbolKindInterface, URI: DocumentURI, Range: rng(2, 0, 40), SelectionRange: rng(2, 10, 23)},
		}},
		lspext.MethodTypeHierarchySubtypes: {Result: []lspext.TypeHierarchyItem{}},
	}
}

// CodeActions is the textDocument/codeAction result of Default. Only the
// quickfix resolves to an edit.
func CodeActions() []protocol.CodeAction {
	return []protocol.CodeAction{
		{
			Title: "Create test",
			Data:  map[string]interface{}{"actionType": "intention", "id": "create-test"},
		},
		{
			Title: "Convert to expression body",
			Kind:  protocol.RefactorRewrite,
		},
		{
			Title:       "Remove variable 'project'",
			Kind:        protocol.QuickFix,
			IsPreferred: true,
			Data:        map[string]interface{}{"actionType": "quickfix", "id": "remove-variable"},
		},
	}
}

// resolveCodeAction attaches an edit to quickfix actions and returns every
// other action unchanged.
func resolveCodeAction(_ context.Context, params json.RawMessage) (interface{}, error) {
	var action protocol.CodeAction
	if err := json.Unmarshal(params, &action); err != nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: fmt.Sprintf("Failed to parse code action: %v", err),
		}
	}

	data, _ := action.Data.(map[string]interface{})
	if data["actionType"] != "quickfix" {
		return action, nil
	}

	action.Edit = &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{
			DocumentURI: {{Range: rng(12, 0, 50), NewText: ""}},
		},
	}
	return action, nil
}

func capabilities() protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.TextDocumentSyncKindFull,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"."},
		},
		HoverProvider:                   true,
		SignatureHelpProvider:           &protocol.SignatureHelpOptions{TriggerCharacters: []string{"(", ","}},
		DefinitionProvider:              true,
		TypeDefinitionProvider:          true,
		ImplementationProvider:          true,
		ReferencesProvider:              true,
		DocumentSymbolProvider:          true,
		WorkspaceSymbolProvider:         true,
		CodeActionProvider:              &protocol.CodeActionOptions{ResolveProvider: true},
		DocumentFormattingProvider:      true,
		DocumentRangeFormattingProvider: true,
		RenameProvider:                  &protocol.RenameOptions{PrepareProvider: true},
		CallHierarchyProvider:           true,
	}
}
