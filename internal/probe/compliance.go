package probe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/conduit-lang/lspcheck/internal/cli/ui"
	"github.com/conduit-lang/lspcheck/internal/lspext"
	"github.com/conduit-lang/lspcheck/internal/schema"
	"github.com/conduit-lang/lspcheck/internal/transport"
)

// summaryDetailWidth bounds the DETAIL column of the summary table. The
// failure list below it repeats the full text.
const summaryDetailWidth = 60

// ErrNonCompliant is returned by the compliance suite when at least one
// method failed.
var ErrNonCompliant = errors.New("server is not compliant")

// Outcome is the compliance result for one method.
type Outcome struct {
	Method string
	Passed bool
	// Detail is "Compliant" on success, the joined issues on a schema
	// failure, or the error text.
	Detail string
	Issues []string
}

// Report collects the outcomes of a compliance run in request order.
type Report struct {
	Outcomes []Outcome
}

// Passed counts the passing outcomes.
func (r *Report) Passed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Passed {
			n++
		}
	}
	return n
}

// Total is the number of methods checked.
func (r *Report) Total() int { return len(r.Outcomes) }

// Failures returns the failing outcomes in request order.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err returns nil when every method passed and an error wrapping
// ErrNonCompliant otherwise.
func (r *Report) Err() error {
	if failed := r.Total() - r.Passed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d methods failed", ErrNonCompliant, failed, r.Total())
	}
	return nil
}

type probeRequest struct {
	method string
	params interface{}
}

// complianceRequests are the requests of the compliance suite, one per
// method of the LSP 3.17 table.
func complianceRequests(doc protocol.DocumentURI) []probeRequest {
	return []probeRequest{
		{protocol.MethodTextDocumentHover, hoverParams(doc, 11, 10)},
		{protocol.MethodTextDocumentDefinition, definitionParams(doc, 17, 20)},
		{protocol.MethodTextDocumentReferences, referenceParams(doc, 12, 20)},
		{protocol.MethodTextDocumentDocumentSymbol, documentSymbolParams(doc)},
		{protocol.MethodTextDocumentSignatureHelp, signatureHelpParams(doc, 21, 55)},
		{protocol.MethodTextDocumentCodeAction, codeActionParams(doc, lineRange(12, 0, 12, 50))},
		{protocol.MethodTextDocumentFormatting, formattingParams(doc)},
		{lspext.MethodInlayHint, inlayHintParams(doc, lineRange(0, 0, 30, 0))},
		{protocol.MethodTextDocumentImplementation, implementationParams(doc, 11, 10)},
		{protocol.MethodWorkspaceSymbol, workspaceSymbolParams("Handler")},
		{protocol.MethodTextDocumentTypeDefinition, typeDefinitionParams(doc, 12, 30)},
		{protocol.MethodSemanticTokensFull, semanticTokensParams(doc)},
	}
}

// Compliance sends every method of the compliance table and validates each
// response shape. A transport error fails that method only; the report is
// returned with err nil unless the connection could not be opened.
func (r *Runner) Compliance(ctx context.Context) (*Report, error) {
	report := &Report{}
	requests := complianceRequests(r.opts.Document)

	err := r.session(ctx, func(ctx context.Context) error {
		r.printer.Banner("LSP 3.17 Compliance Check")

		check := func(bar *ui.ProgressBar) error {
			for _, req := range requests {
				outcome := r.checkMethod(ctx, req)
				report.Outcomes = append(report.Outcomes, outcome)
				r.logger.Debug("checked method",
					zap.String("method", outcome.Method),
					zap.Bool("passed", outcome.Passed))
				switch {
				case bar == nil:
				case outcome.Passed:
					bar.Add(1)
				default:
					bar.AddFailure()
				}
			}
			return nil
		}

		if r.opts.Summary {
			_ = ui.WithProgress(r.opts.Out, "probing methods", len(requests), r.opts.NoColor, check)
		} else {
			_ = check(nil)
		}

		r.printSummary(report)
		return nil
	})
	return report, err
}

func (r *Runner) checkMethod(ctx context.Context, req probeRequest) Outcome {
	quiet := r.opts.Summary
	if !quiet {
		r.printer.Banner(req.method)
	}

	env, err := r.client.SendRequest(ctx, req.method, req.params)
	if err != nil {
		if !quiet {
			r.printer.Error("%v", err)
		}
		return Outcome{Method: req.method, Detail: err.Error()}
	}

	verdict := schema.Validate(req.method, env, r.opts.Schemas)

	switch {
	case env.HasError():
		rpcErr := env.ErrorObject()
		detail := fmt.Sprintf("code=%d message=%s", rpcErr.Code, rpcErr.Message)
		if !quiet {
			r.printer.Error("%s", detail)
		}
		return Outcome{Method: req.method, Detail: detail, Issues: verdict.Issues}
	case verdict.Passed:
		if !quiet {
			r.describeResult(env)
		}
		return Outcome{Method: req.method, Passed: true, Detail: "Compliant"}
	default:
		if !quiet {
			r.printer.Fail("Schema issues:")
			for _, issue := range verdict.Issues {
				r.printer.Line("       - %s", issue)
			}
		}
		return Outcome{Method: req.method, Detail: strings.Join(verdict.Issues, "; "), Issues: verdict.Issues}
	}
}

// describeResult prints a one-line summary of a passing result.
func (r *Runner) describeResult(env *transport.Envelope) {
	result := env.ResultJSON()
	if result == nil {
		r.printer.OK("null (Allowed)")
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(result, &items); err == nil {
		r.printer.OK("Returned %d items", len(items))
		if len(items) > 0 {
			r.printer.Line("     First item keys: %s", keyList(items[0]))
		}
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(result, &obj); err == nil {
		r.printer.OK("Returned object")
		r.printer.Line("     Keys: %s", keyList(result))
		return
	}

	r.printer.OK("Returned %s", strings.TrimSpace(string(result)))
}

// keyList renders the sorted keys of a JSON object.
func keyList(raw []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "[]"
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}

func (r *Runner) printSummary(report *Report) {
	r.printer.Banner("Summary Report")

	table := ui.NewTable(r.opts.Out, []string{"METHOD", "STATUS", "DETAIL"}, &ui.TableOptions{
		NoColor:      r.opts.NoColor,
		MaxCellWidth: summaryDetailWidth,
		Highlight:    map[string]color.Attribute{"PASS": color.FgGreen, "FAIL": color.FgRed},
	})
	for _, o := range report.Outcomes {
		status := "PASS"
		if !o.Passed {
			status = "FAIL"
		}
		table.AddRow(o.Method, status, o.Detail)
	}
	table.Render()

	r.printer.Line("\nPassed: %d/%d", report.Passed(), report.Total())

	if failures := report.Failures(); len(failures) > 0 {
		r.printer.Line("\nFailures:")
		list := ui.NewList(r.opts.Out, ui.ListOptions{NoColor: r.opts.NoColor})
		for _, o := range failures {
			list.AddItem(o.Method + ": " + o.Detail)
		}
		list.Render()
	}
	r.printer.Rule()
}
