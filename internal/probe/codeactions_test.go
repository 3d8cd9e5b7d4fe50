package probe

import (
	"context"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/lspcheck/internal/lspext"
	"github.com/conduit-lang/lspcheck/internal/lspstub"
)

func TestScoreAction(t *testing.T) {
	quickfixData := map[string]interface{}{"actionType": "quickfix"}

	tests := []struct {
		name   string
		action Action
		want   int
	}{
		{"plain", Action{Title: "Convert to expression body"}, 0},
		{"quickfix data", Action{Title: "Add import", Data: quickfixData}, 100},
		{"quickfix kind", Action{Title: "Add import", Kind: protocol.QuickFix}, 10},
		{"remove variable", Action{Title: "Remove variable 'project'", Kind: protocol.QuickFix, Data: quickfixData}, 140},
		{"delete", Action{Title: "Delete unused import"}, 20},
		{"chinese remove", Action{Title: "移除未使用的导入"}, 20},
		{"chinese delete", Action{Title: "删除导入"}, 20},
		{"val", Action{Title: "Convert to val"}, 10},
		{"create test", Action{Title: "Create Test"}, -50},
		{"chinese create test", Action{Title: "创建测试"}, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAction(tt.action))
		})
	}
}

func titles(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Title
	}
	return out
}

func TestPickCandidates(t *testing.T) {
	intention := map[string]interface{}{"actionType": "intention"}
	quickfix := map[string]interface{}{"actionType": "quickfix"}

	t.Run("quickfixes with data first", func(t *testing.T) {
		actions := []Action{
			{Title: "Create test", Data: intention},
			{Title: "Add import", Data: quickfix},
			{Title: "Remove variable", Data: quickfix},
			{Title: "Rename", Kind: protocol.QuickFix},
		}
		assert.Equal(t, []string{"Remove variable", "Add import"}, titles(PickCandidates(actions)))
	})

	t.Run("any data next", func(t *testing.T) {
		actions := []Action{
			{Title: "Create test", Data: intention},
			{Title: "Inline", Data: intention},
			{Title: "Rename"},
		}
		assert.Equal(t, []string{"Inline", "Create test"}, titles(PickCandidates(actions)))
	})

	t.Run("all otherwise", func(t *testing.T) {
		actions := []Action{
			{Title: "Create test"},
			{Title: "Rename"},
			{Title: "Delete line"},
		}
		assert.Equal(t, []string{"Delete line", "Rename", "Create test"}, titles(PickCandidates(actions)))
	})

	t.Run("ties keep order", func(t *testing.T) {
		actions := []Action{{Title: "b"}, {Title: "a"}, {Title: "c"}}
		assert.Equal(t, []string{"b", "a", "c"}, titles(PickCandidates(actions)))
	})
}

func TestParseActions(t *testing.T) {
	raw, err := json.Marshal(lspstub.CodeActions())
	require.NoError(t, err)

	actions, err := ParseActions(raw)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	assert.Equal(t, "Create test", actions[0].Title)
	assert.Equal(t, "intention", actions[0].actionType())
	assert.Equal(t, protocol.RefactorRewrite, actions[1].Kind)
	assert.Nil(t, actions[1].Data)
	assert.True(t, actions[2].IsPreferred)
	assert.JSONEq(t, `{"title":"Create test","data":{"actionType":"intention","id":"create-test"}}`, string(actions[0].Raw))

	none, err := ParseActions(nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = ParseActions([]byte(`{"title":"x"}`))
	assert.Error(t, err)
}

func TestCodeActions_List(t *testing.T) {
	r, out, _ := stubRunner(t, lspstub.Default(), Options{})

	require.NoError(t, r.CodeActions(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Found 3 code actions")
	assert.Contains(t, text, "1. Create test")
	assert.Contains(t, text, "2. Convert to expression body")
	assert.Contains(t, text, "   kind: refactor.rewrite")
	assert.Contains(t, text, "3. Remove variable 'project'")
	assert.Contains(t, text, "   isPreferred: true")
}

func TestResolve_FindsEdit(t *testing.T) {
	r, out, srv := stubRunner(t, lspstub.Default(), Options{})

	outcome, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, "Remove variable 'project'", outcome.Resolved)
	require.NotNil(t, outcome.Edit)
	assert.Len(t, outcome.Edit.Changes[lspstub.DocumentURI], 1)

	text := out.String()
	assert.Contains(t, text, "Found 3 CodeActions")
	assert.Contains(t, text, "Attempt #1: Remove variable 'project'")
	assert.Contains(t, text, "File: "+string(lspstub.DocumentURI))
	assert.Contains(t, text, "codeAction/resolve returned WorkspaceEdit!")
	assert.Contains(t, srv.Received(), lspext.MethodCodeActionResolve)
}

func TestResolve_NoEdit(t *testing.T) {
	responses := lspstub.Responses{
		protocol.MethodTextDocumentCodeAction: {Result: []protocol.CodeAction{
			{Title: "Create test"},
			{Title: "Rename file"},
		}},
		lspext.MethodCodeActionResolve: {Result: map[string]string{"title": "resolved"}},
	}
	r, out, _ := stubRunner(t, responses, Options{})

	outcome, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Attempts)
	assert.Empty(t, outcome.Resolved)
	assert.Nil(t, outcome.Edit)

	text := out.String()
	assert.Contains(t, text, "Attempt #1: Rename file")
	assert.Contains(t, text, "Attempt #2: Create test")
	assert.Contains(t, text, "[WARN] No candidate returned an edit")
}

func TestResolve_NoActions(t *testing.T) {
	responses := lspstub.Responses{
		protocol.MethodTextDocumentCodeAction: {Result: []protocol.CodeAction{}},
	}
	r, out, _ := stubRunner(t, responses, Options{})

	outcome, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, outcome.Attempts)
	assert.Contains(t, out.String(), "[SKIP] No CodeActions found for test")
}
