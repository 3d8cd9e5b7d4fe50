package probe

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/segmentio/encoding/json"

	"github.com/conduit-lang/lspcheck/internal/transport"
)

const (
	// DefaultTruncate is the number of characters of pretty-printed JSON
	// shown before output is cut.
	DefaultTruncate = 2000

	truncatedSuffix = "\n... (truncated)"
	ruleWidth       = 60
)

// Printer writes response envelopes as indented JSON, cut at a fixed number
// of characters.
type Printer struct {
	w       io.Writer
	limit   int
	noColor bool
}

// NewPrinter creates a printer. A limit of zero prints responses whole.
func NewPrinter(w io.Writer, limit int, noColor bool) *Printer {
	return &Printer{w: w, limit: limit, noColor: noColor}
}

func (p *Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.noColor {
		c.DisableColor()
	}
	return c
}

// Rule prints a horizontal rule of '=' characters.
func (p *Printer) Rule() {
	fmt.Fprintln(p.w, strings.Repeat("=", ruleWidth))
}

// Banner prints title between two rules.
func (p *Printer) Banner(title string) {
	fmt.Fprintln(p.w)
	p.Rule()
	p.paint(color.Bold, color.FgCyan).Fprintf(p.w, "  %s\n", title)
	p.Rule()
}

// OK prints a success status line.
func (p *Printer) OK(format string, args ...interface{}) {
	p.status(color.FgGreen, "[OK]", format, args...)
}

// Warn prints a warning status line.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.status(color.FgYellow, "[WARN]", format, args...)
}

// Fail prints a failure status line.
func (p *Printer) Fail(format string, args ...interface{}) {
	p.status(color.FgRed, "[FAIL]", format, args...)
}

// Error prints an error status line.
func (p *Printer) Error(format string, args ...interface{}) {
	p.status(color.FgRed, "[ERROR]", format, args...)
}

func (p *Printer) status(attr color.Attribute, tag, format string, args ...interface{}) {
	p.paint(attr, color.Bold).Fprint(p.w, tag)
	fmt.Fprintf(p.w, " %s\n", fmt.Sprintf(format, args...))
}

// Line prints an unadorned line.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Result prints env under a banner named name. It reports false when env
// carries an error.
func (p *Printer) Result(name string, env *transport.Envelope) bool {
	p.Banner(name)

	if rpcErr := env.ErrorObject(); rpcErr != nil {
		p.Error("Code: %d", rpcErr.Code)
		p.Line("        Message: %s", rpcErr.Message)
		return false
	}

	result := env.ResultJSON()
	if result == nil {
		p.paint(color.FgHiBlack).Fprintln(p.w, "[RESULT] null")
		return true
	}

	p.paint(color.Bold).Fprintln(p.w, "[RESULT]")
	fmt.Fprintln(p.w, p.Format(result))
	return true
}

// Value prints a value that was computed locally, such as a summary of a
// large result.
func (p *Printer) Value(name string, v interface{}) {
	p.Banner(name)

	raw, err := json.Marshal(v)
	if err != nil {
		p.Error("%v", err)
		return
	}
	p.paint(color.Bold).Fprintln(p.w, "[RESULT]")
	fmt.Fprintln(p.w, p.Format(raw))
}

// Format indents raw JSON and truncates it to the printer's limit.
func (p *Printer) Format(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Truncate(string(raw), p.limit)
	}
	return Truncate(buf.String(), p.limit)
}

// Truncate cuts s to limit characters and marks the cut. Strings within the
// limit are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + truncatedSuffix
		}
		n++
	}
	return s
}
