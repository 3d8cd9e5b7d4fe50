package schema

// LSP317 returns the descriptors for the methods probed by the compliance
// suite, following the result types of LSP 3.17. Every entry is nullable.
//
// definition and typeDefinition may legally return Location[]; the table
// describes the single Location form.
func LSP317() Table {
	return Table{
		"textDocument/hover": {
			Nullable:       true,
			Kind:           KindObject,
			RequiredFields: []string{"contents"},
		},
		"textDocument/definition": {
			Nullable:       true,
			Kind:           KindObject,
			RequiredFields: []string{"uri", "range"},
		},
		"textDocument/references": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"uri", "range"},
		},
		"textDocument/documentSymbol": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"name", "kind", "range", "selectionRange"},
		},
		"textDocument/signatureHelp": {
			Nullable:       true,
			Kind:           KindObject,
			RequiredFields: []string{"signatures"},
		},
		"textDocument/codeAction": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"title"},
		},
		"textDocument/formatting": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"range", "newText"},
		},
		"textDocument/inlayHint": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"position", "label"},
		},
		"textDocument/implementation": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"uri", "range"},
		},
		"workspace/symbol": {
			Nullable:   true,
			Kind:       KindArray,
			ItemFields: []string{"name", "kind", "location"},
		},
		"textDocument/typeDefinition": {
			Nullable:       true,
			Kind:           KindObject,
			RequiredFields: []string{"uri", "range"},
		},
		"textDocument/semanticTokens/full": {
			Nullable:       true,
			Kind:           KindObject,
			RequiredFields: []string{"data"},
		},
	}
}
