package probe

import (
	"context"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspext"
)

// hierarchyItem is the part of a call or type hierarchy item the suite
// prints. The item itself is sent back verbatim.
type hierarchyItem struct {
	Name string              `json:"name"`
	Kind protocol.SymbolKind `json:"kind"`
}

// Refactor exercises rename, call hierarchy, type hierarchy and the two
// workspace notifications.
func (r *Runner) Refactor(ctx context.Context) error {
	doc := r.opts.Document

	return r.session(ctx, func(ctx context.Context) error {
		if r.opts.Initialize {
			if err := r.handshake(ctx); err != nil {
				return err
			}
		}

		steps := []func(context.Context, protocol.DocumentURI) error{
			r.rename,
			r.callHierarchy,
			r.typeHierarchy,
			r.workspaceNotifications,
		}
		for _, step := range steps {
			if err := step(ctx, doc); err != nil {
				return err
			}
		}

		r.printer.Banner("[SUCCESS] All refactoring features tested!")
		return nil
	})
}

func (r *Runner) rename(ctx context.Context, doc protocol.DocumentURI) error {
	r.printer.Banner("Test 1: textDocument/prepareRename")
	env, err := r.request(ctx, protocol.MethodTextDocumentPrepareRename, prepareRenameParams(doc, 20, 10))
	if err != nil {
		return err
	}
	if r.reportError(env) {
		if env.ResultJSON() == nil {
			r.printer.OK("Got null (element not renameable)")
		} else {
			var res struct {
				Range       *protocol.Range `json:"range"`
				Placeholder string          `json:"placeholder"`
			}
			_ = env.DecodeResult(&res)
			if res.Range != nil {
				r.printer.OK("Renameable: range=%d:%d-%d:%d, placeholder=%q",
					res.Range.Start.Line, res.Range.Start.Character,
					res.Range.End.Line, res.Range.End.Character, res.Placeholder)
			} else {
				r.printer.OK("Renameable: %s", r.printer.Format(env.ResultJSON()))
			}
		}
	}

	r.printer.Banner("Test 2: textDocument/rename")
	env, err = r.request(ctx, protocol.MethodTextDocumentRename, renameParams(doc, 20, 10, "testNewName"))
	if err != nil {
		return err
	}
	if r.reportError(env) {
		if env.ResultJSON() == nil {
			r.printer.OK("Got null (cannot rename)")
			return nil
		}
		var edit protocol.WorkspaceEdit
		_ = env.DecodeResult(&edit)
		edits := 0
		for _, e := range edit.Changes {
			edits += len(e)
		}
		r.printer.OK("WorkspaceEdit: %d files, %d edits", len(edit.Changes), edits)
	}
	return nil
}

func (r *Runner) callHierarchy(ctx context.Context, doc protocol.DocumentURI) error {
	r.printer.Banner("Test 3: textDocument/prepareCallHierarchy")
	item, err := r.prepareHierarchy(ctx, protocol.MethodTextDocumentPrepareCallHierarchy,
		callHierarchyPrepareParams(doc, 111, 10), "method")
	if err != nil || item == nil {
		return err
	}

	calls := []struct {
		title  string
		method string
		side   string
		noun   string
	}{
		{"Test 4: callHierarchy/incomingCalls", protocol.MethodCallHierarchyIncomingCalls, "from", "incoming calls"},
		{"Test 5: callHierarchy/outgoingCalls", protocol.MethodCallHierarchyOutgoingCalls, "to", "outgoing calls"},
	}
	for _, c := range calls {
		r.printer.Banner(c.title)
		env, err := r.request(ctx, c.method, map[string]json.RawMessage{"item": item})
		if err != nil {
			return err
		}
		if !r.reportError(env) {
			continue
		}

		var results []struct {
			From hierarchyItem `json:"from"`
			To   hierarchyItem `json:"to"`
		}
		_ = env.DecodeResult(&results)
		r.printer.OK("Found %d %s", len(results), c.noun)
		for _, call := range head(results, 3) {
			name := call.From.Name
			if c.side == "to" {
				name = call.To.Name
			}
			r.printer.Line("    - %s: %s", c.side, name)
		}
	}
	return nil
}

func (r *Runner) typeHierarchy(ctx context.Context, doc protocol.DocumentURI) error {
	r.printer.Banner("Test 6: textDocument/prepareTypeHierarchy")
	item, err := r.prepareHierarchy(ctx, lspext.MethodPrepareTypeHierarchy,
		typeHierarchyPrepareParams(doc, 12, 10), "class")
	if err != nil || item == nil {
		return err
	}

	steps := []struct {
		title  string
		method string
		noun   string
	}{
		{"Test 7: typeHierarchy/supertypes", lspext.MethodTypeHierarchySuper, "supertypes"},
		{"Test 8: typeHierarchy/subtypes", lspext.MethodTypeHierarchySubtypes, "subtypes"},
	}
	for _, s := range steps {
		r.printer.Banner(s.title)
		env, err := r.request(ctx, s.method, map[string]json.RawMessage{"item": item})
		if err != nil {
			return err
		}
		if !r.reportError(env) {
			continue
		}

		var types []hierarchyItem
		_ = env.DecodeResult(&types)
		r.printer.OK("Found %d %s", len(types), s.noun)
		for _, t := range head(types, 3) {
			r.printer.Line("    - %s", t.Name)
		}
	}
	return nil
}

// prepareHierarchy sends a prepare request and returns the first item
// verbatim, or nil when the server found none.
func (r *Runner) prepareHierarchy(ctx context.Context, method string, params interface{}, noun string) (json.RawMessage, error) {
	env, err := r.request(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if !r.reportError(env) {
		return nil, nil
	}

	var items []json.RawMessage
	_ = env.DecodeResult(&items)
	if len(items) == 0 {
		r.printer.Warn("No hierarchy item found - try a different position")
		return nil, nil
	}

	var item hierarchyItem
	_ = json.Unmarshal(items[0], &item)
	r.printer.OK("Found %s: %s (kind=%d)", noun, item.Name, int(item.Kind))
	return items[0], nil
}

func (r *Runner) workspaceNotifications(ctx context.Context, doc protocol.DocumentURI) error {
	r.printer.Banner("Test 9: workspace/didChangeWorkspaceFolders (notification)")
	folder := workspaceFolder(doc)
	if err := r.notify(ctx, protocol.MethodWorkspaceDidChangeWorkspaceFolders, workspaceFoldersParams(folder+"/test-folder", "test-folder")); err != nil {
		return err
	}
	r.printer.OK("Notification sent successfully")

	r.printer.Banner("Test 10: workspace/didChangeWatchedFiles (notification)")
	if err := r.notify(ctx, protocol.MethodWorkspaceDidChangeWatchedFiles, watchedFilesParams(doc)); err != nil {
		return err
	}
	r.printer.OK("Notification sent successfully")
	return nil
}
