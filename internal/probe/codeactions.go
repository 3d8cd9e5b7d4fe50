package probe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspext"
)

// maxResolveAttempts bounds how many candidates Resolve sends back.
const maxResolveAttempts = 10

// Action is a code action as returned by the server. Raw is sent back
// verbatim on resolve so fields the client does not model survive.
type Action struct {
	Title       string
	Kind        protocol.CodeActionKind
	IsPreferred bool
	Data        map[string]interface{}
	Raw         json.RawMessage
}

// actionType returns data.actionType, or "" when absent.
func (a Action) actionType() string {
	s, _ := a.Data["actionType"].(string)
	return s
}

// ParseActions decodes a textDocument/codeAction result. Commands and
// other non-object entries are kept with empty fields.
func ParseActions(result []byte) ([]Action, error) {
	if result == nil {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(result, &raws); err != nil {
		return nil, fmt.Errorf("decode code actions: %w", err)
	}

	actions := make([]Action, 0, len(raws))
	for _, raw := range raws {
		var v struct {
			Title       string                  `json:"title"`
			Kind        protocol.CodeActionKind `json:"kind"`
			IsPreferred bool                    `json:"isPreferred"`
			Data        interface{}             `json:"data"`
		}
		_ = json.Unmarshal(raw, &v)
		data, _ := v.Data.(map[string]interface{})
		actions = append(actions, Action{
			Title:       v.Title,
			Kind:        v.Kind,
			IsPreferred: v.IsPreferred,
			Data:        data,
			Raw:         raw,
		})
	}
	return actions, nil
}

// ScoreAction ranks how likely an action is to resolve to an edit.
func ScoreAction(a Action) int {
	score := 0
	if a.actionType() == string(protocol.QuickFix) {
		score += 100
	}
	if a.Kind == protocol.QuickFix {
		score += 10
	}

	low := strings.ToLower(a.Title)
	if strings.Contains(low, "remove") || strings.Contains(low, "delete") ||
		strings.Contains(a.Title, "移除") || strings.Contains(a.Title, "删除") {
		score += 20
	}
	if strings.Contains(low, "val") || strings.Contains(low, "var") {
		score += 10
	}
	if strings.Contains(low, "create test") || strings.Contains(a.Title, "创建测试") {
		score -= 50
	}
	return score
}

// PickCandidates narrows actions to quickfixes carrying data, else to any
// action carrying data, else keeps them all, and orders the result by
// score. Ties keep server order.
func PickCandidates(actions []Action) []Action {
	var withData, quickfixes []Action
	for _, a := range actions {
		if len(a.Data) == 0 {
			continue
		}
		withData = append(withData, a)
		if a.actionType() == string(protocol.QuickFix) {
			quickfixes = append(quickfixes, a)
		}
	}

	var candidates []Action
	switch {
	case len(quickfixes) > 0:
		candidates = quickfixes
	case len(withData) > 0:
		candidates = withData
	default:
		candidates = append(candidates, actions...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return ScoreAction(candidates[i]) > ScoreAction(candidates[j])
	})
	return candidates
}

// fetchActions requests the code actions on line 12.
func (r *Runner) fetchActions(ctx context.Context) ([]Action, bool, error) {
	env, err := r.request(ctx, protocol.MethodTextDocumentCodeAction,
		codeActionParams(r.opts.Document, lineRange(12, 0, 12, 50)))
	if err != nil {
		return nil, false, err
	}
	if !r.reportError(env) {
		return nil, false, nil
	}
	actions, err := ParseActions(env.ResultJSON())
	if err != nil {
		return nil, false, err
	}
	return actions, true, nil
}

// CodeActions lists the actions offered on line 12.
func (r *Runner) CodeActions(ctx context.Context) error {
	return r.session(ctx, func(ctx context.Context) error {
		r.printer.Banner("textDocument/codeAction (line 12)")
		actions, ok, err := r.fetchActions(ctx)
		if err != nil || !ok {
			return err
		}

		r.printer.OK("Found %d code actions", len(actions))
		for i, a := range actions {
			r.printer.Line("%d. %s", i+1, a.Title)
			r.printer.Line("   kind: %s", a.Kind)
			r.printer.Line("   isPreferred: %t", a.IsPreferred)
		}
		return nil
	})
}

// ResolveOutcome reports what Resolve achieved.
type ResolveOutcome struct {
	Attempts int
	// Resolved is the title of the action whose resolution carried an edit,
	// or "" when none did.
	Resolved string
	Edit     *protocol.WorkspaceEdit
}

// Resolve fetches the code actions on line 12 and sends the best scoring
// candidates to codeAction/resolve until one comes back with an edit.
func (r *Runner) Resolve(ctx context.Context) (*ResolveOutcome, error) {
	outcome := &ResolveOutcome{}

	err := r.session(ctx, func(ctx context.Context) error {
		r.printer.Banner("codeAction/resolve Test")

		r.printer.Line("\n[Step 1] Fetching textDocument/codeAction...")
		actions, ok, err := r.fetchActions(ctx)
		if err != nil || !ok {
			return err
		}
		r.printer.Line("Found %d CodeActions", len(actions))
		if len(actions) == 0 {
			r.printer.Line("[SKIP] No CodeActions found for test")
			return nil
		}

		r.printer.Line("\n[Step 2] Sending codeAction/resolve...")
		for i, a := range head(PickCandidates(actions), maxResolveAttempts) {
			outcome.Attempts++
			r.printer.Line("\nAttempt #%d: %s", i+1, a.Title)
			r.printer.Line("  kind: %s", a.Kind)

			env, err := r.request(ctx, lspext.MethodCodeActionResolve, a.Raw)
			if err != nil {
				return err
			}
			if !r.reportError(env) {
				continue
			}

			var resolved protocol.CodeAction
			if err := env.DecodeResult(&resolved); err != nil {
				r.printer.Warn("Could not decode resolved action: %v", err)
				continue
			}
			r.printer.Line("Resolved CodeAction:")
			r.printer.Line("  title: %s", resolved.Title)
			if resolved.Edit == nil {
				r.printer.Line("  edit: none")
				continue
			}

			r.printEdit(resolved.Edit)
			outcome.Resolved = resolved.Title
			outcome.Edit = resolved.Edit
			r.printer.OK("codeAction/resolve returned WorkspaceEdit!")
			return nil
		}

		r.printer.Warn("No candidate returned an edit")
		return nil
	})
	return outcome, err
}

func (r *Runner) printEdit(edit *protocol.WorkspaceEdit) {
	uris := make([]string, 0, len(edit.Changes))
	for uri := range edit.Changes {
		uris = append(uris, string(uri))
	}
	sort.Strings(uris)

	for _, uri := range uris {
		r.printer.Line("\n  File: %s", uri)
		for _, e := range edit.Changes[protocol.DocumentURI(uri)] {
			r.printer.Line("    - range: %d:%d-%d:%d",
				e.Range.Start.Line, e.Range.Start.Character,
				e.Range.End.Line, e.Range.End.Character)
			r.printer.Line("      newText: %q", prefix(e.NewText, 50))
		}
	}
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
