// Package lspext holds LSP 3.17 methods and types that go.lsp.dev/protocol
// v0.12.0 does not define yet.
package lspext

import (
	"go.lsp.dev/protocol"
)

// Methods added in LSP 3.16 and 3.17.
const (
	MethodInlayHint             = "textDocument/inlayHint"
	MethodCodeActionResolve     = "codeAction/resolve"
	MethodPrepareTypeHierarchy  = "textDocument/prepareTypeHierarchy"
	MethodTypeHierarchySuper    = "typeHierarchy/supertypes"
	MethodTypeHierarchySubtypes = "typeHierarchy/subtypes"
)

// InlayHintParams are the params of textDocument/inlayHint.
type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// InlayHintKind is 1 for type hints and 2 for parameter hints.
type InlayHintKind uint32

const (
	InlayHintKindType      InlayHintKind = 1
	InlayHintKindParameter InlayHintKind = 2
)

// InlayHint is one element of a textDocument/inlayHint result. Label is
// either a string or a list of label parts; servers in the wild mostly send
// strings.
type InlayHint struct {
	Position     protocol.Position `json:"position"`
	Label        interface{}       `json:"label"`
	Kind         InlayHintKind     `json:"kind,omitempty"`
	PaddingLeft  bool              `json:"paddingLeft,omitempty"`
	PaddingRight bool              `json:"paddingRight,omitempty"`
}

// TypeHierarchyItem is the item type shared by the type hierarchy methods.
type TypeHierarchyItem struct {
	Name           string               `json:"name"`
	Kind           protocol.SymbolKind  `json:"kind"`
	Tags           []protocol.SymbolTag `json:"tags,omitempty"`
	Detail         string               `json:"detail,omitempty"`
	URI            protocol.DocumentURI `json:"uri"`
	Range          protocol.Range       `json:"range"`
	SelectionRange protocol.Range       `json:"selectionRange"`
	Data           interface{}          `json:"data,omitempty"`
}

// TypeHierarchyPrepareParams are the params of textDocument/prepareTypeHierarchy.
type TypeHierarchyPrepareParams struct {
	protocol.TextDocumentPositionParams
}
