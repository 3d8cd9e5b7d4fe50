package probe

import (
	"os"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/conduit-lang/lspcheck/internal/lspext"
)

// DefaultDocument is probed when no target file is configured.
const DefaultDocument = "file:///workspace/src/main/kotlin/WorkspaceSymbolHandler.kt"

// DocumentURI converts a --file value to a document URI. file:// URIs are
// kept as given; anything else is treated as a filesystem path. An empty
// value yields DefaultDocument.
func DocumentURI(file string) protocol.DocumentURI {
	if file == "" {
		return protocol.DocumentURI(DefaultDocument)
	}
	return uri.New(file)
}

func position(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

func lineRange(startLine, startChar, endLine, endChar uint32) protocol.Range {
	return protocol.Range{Start: position(startLine, startChar), End: position(endLine, endChar)}
}

func docPosition(doc protocol.DocumentURI, line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc},
		Position:     position(line, char),
	}
}

func textDocument(doc protocol.DocumentURI) protocol.TextDocumentIdentifier {
	return protocol.TextDocumentIdentifier{URI: doc}
}

func hoverParams(doc protocol.DocumentURI, line, char uint32) *protocol.HoverParams {
	return &protocol.HoverParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func definitionParams(doc protocol.DocumentURI, line, char uint32) *protocol.DefinitionParams {
	return &protocol.DefinitionParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func typeDefinitionParams(doc protocol.DocumentURI, line, char uint32) *protocol.TypeDefinitionParams {
	return &protocol.TypeDefinitionParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func implementationParams(doc protocol.DocumentURI, line, char uint32) *protocol.ImplementationParams {
	return &protocol.ImplementationParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func referenceParams(doc protocol.DocumentURI, line, char uint32) *protocol.ReferenceParams {
	return &protocol.ReferenceParams{
		TextDocumentPositionParams: docPosition(doc, line, char),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	}
}

func completionParams(doc protocol.DocumentURI, line, char uint32) *protocol.CompletionParams {
	return &protocol.CompletionParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func signatureHelpParams(doc protocol.DocumentURI, line, char uint32) *protocol.SignatureHelpParams {
	return &protocol.SignatureHelpParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func documentSymbolParams(doc protocol.DocumentURI) *protocol.DocumentSymbolParams {
	return &protocol.DocumentSymbolParams{TextDocument: textDocument(doc)}
}

func workspaceSymbolParams(query string) *protocol.WorkspaceSymbolParams {
	return &protocol.WorkspaceSymbolParams{Query: query}
}

func formattingOptions() protocol.FormattingOptions {
	return protocol.FormattingOptions{TabSize: 4, InsertSpaces: true}
}

func formattingParams(doc protocol.DocumentURI) *protocol.DocumentFormattingParams {
	return &protocol.DocumentFormattingParams{
		TextDocument: textDocument(doc),
		Options:      formattingOptions(),
	}
}

func rangeFormattingParams(doc protocol.DocumentURI, r protocol.Range) *protocol.DocumentRangeFormattingParams {
	return &protocol.DocumentRangeFormattingParams{
		TextDocument: textDocument(doc),
		Range:        r,
		Options:      formattingOptions(),
	}
}

// codeActionParams asks for every action in r without diagnostics. The
// diagnostics list is sent as [] since servers reject null.
func codeActionParams(doc protocol.DocumentURI, r protocol.Range) *protocol.CodeActionParams {
	return &protocol.CodeActionParams{
		TextDocument: textDocument(doc),
		Range:        r,
		Context:      protocol.CodeActionContext{Diagnostics: []protocol.Diagnostic{}},
	}
}

func inlayHintParams(doc protocol.DocumentURI, r protocol.Range) *lspext.InlayHintParams {
	return &lspext.InlayHintParams{TextDocument: textDocument(doc), Range: r}
}

func semanticTokensParams(doc protocol.DocumentURI) *protocol.SemanticTokensParams {
	return &protocol.SemanticTokensParams{TextDocument: textDocument(doc)}
}

func prepareRenameParams(doc protocol.DocumentURI, line, char uint32) *protocol.PrepareRenameParams {
	return &protocol.PrepareRenameParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func renameParams(doc protocol.DocumentURI, line, char uint32, newName string) *protocol.RenameParams {
	return &protocol.RenameParams{
		TextDocumentPositionParams: docPosition(doc, line, char),
		NewName:                    newName,
	}
}

func callHierarchyPrepareParams(doc protocol.DocumentURI, line, char uint32) *protocol.CallHierarchyPrepareParams {
	return &protocol.CallHierarchyPrepareParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

func typeHierarchyPrepareParams(doc protocol.DocumentURI, line, char uint32) *lspext.TypeHierarchyPrepareParams {
	return &lspext.TypeHierarchyPrepareParams{TextDocumentPositionParams: docPosition(doc, line, char)}
}

// workspaceFolder returns the URI of the directory holding doc.
func workspaceFolder(doc protocol.DocumentURI) protocol.DocumentURI {
	if i := strings.LastIndex(string(doc), "/"); i > len("file://") {
		return doc[:i]
	}
	return doc
}

// initializeParams is a minimal client handshake rooted at the directory of
// doc.
func initializeParams(doc protocol.DocumentURI, version string) *protocol.InitializeParams {
	return &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		ClientInfo: &protocol.ClientInfo{
			Name:    "lspcheck",
			Version: version,
		},
		RootURI: workspaceFolder(doc),
	}
}

func workspaceFoldersParams(folder protocol.DocumentURI, name string) *protocol.DidChangeWorkspaceFoldersParams {
	return &protocol.DidChangeWorkspaceFoldersParams{
		Event: protocol.WorkspaceFoldersChangeEvent{
			Added:   []protocol.WorkspaceFolder{{URI: string(folder), Name: name}},
			Removed: []protocol.WorkspaceFolder{},
		},
	}
}

func watchedFilesParams(file protocol.DocumentURI) *protocol.DidChangeWatchedFilesParams {
	return &protocol.DidChangeWatchedFilesParams{
		Changes: []*protocol.FileEvent{
			{URI: file, Type: protocol.FileChangeTypeCreated},
			{URI: file, Type: protocol.FileChangeTypeChanged},
		},
	}
}
