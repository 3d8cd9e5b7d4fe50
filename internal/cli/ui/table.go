package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const (
	columnGap = "  "
	ellipsis  = "…"
)

// TableOptions configures a Table.
type TableOptions struct {
	NoColor bool

	// MaxCellWidth cuts longer cells and marks the cut with an ellipsis.
	// Zero leaves cells whole.
	MaxCellWidth int

	// Highlight colors every cell whose text matches a key, such as
	// {"PASS": color.FgGreen, "FAIL": color.FgRed}.
	Highlight map[string]color.Attribute
}

// Table renders rows under a header, one column per header. Widths are
// counted in runes so non-ASCII cells line up.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	opts    TableOptions
}

// NewTable creates a table with the given headers. opts may be nil.
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.opts = *opts
	}
	return t
}

// AddRow adds a row. Missing trailing cells render empty and cells past the
// last header are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = t.clip(cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) clip(cell string) string {
	limit := t.opts.MaxCellWidth
	if limit <= 0 || utf8.RuneCountInString(cell) <= limit {
		return cell
	}
	if limit == 1 {
		return ellipsis
	}
	runes := []rune(cell)
	return string(runes[:limit-1]) + ellipsis
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// Render writes the table. A table without headers writes nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	header := paint(t.opts.NoColor, color.Bold, color.FgCyan)
	t.line(widths, t.headers, func(string) *color.Color { return header })

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	gray := paint(t.opts.NoColor, color.FgHiBlack)
	t.line(widths, rules, func(string) *color.Color { return gray })

	for _, row := range t.rows {
		t.line(widths, row, t.cellColor)
	}
}

func (t *Table) cellColor(cell string) *color.Color {
	if attr, ok := t.opts.Highlight[cell]; ok {
		return paint(t.opts.NoColor, attr, color.Bold)
	}
	return nil
}

// line writes one row. Padding is applied before coloring so escape codes
// do not count towards the width, and the last column is never padded.
func (t *Table) line(widths []int, cells []string, colorOf func(string) *color.Color) {
	var b strings.Builder
	for i, cell := range cells {
		text := cell
		if i < len(cells)-1 {
			text = padRight(cell, widths[i])
		}
		if c := colorOf(cell); c != nil {
			text = c.Sprint(text)
		}
		b.WriteString(text)
		if i < len(cells)-1 {
			b.WriteString(columnGap)
		}
	}
	fmt.Fprintln(t.writer, b.String())
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func paint(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// KeyValueTable renders "key: value" lines with the values aligned.
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates an empty key-value table.
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow appends a pair. Keys keep their insertion order.
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs.
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		if n := utf8.RuneCountInString(k) + 1; n > width {
			width = n
		}
	}

	cyan := paint(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		fmt.Fprintf(t.writer, "%s %s\n", cyan.Sprint(padRight(k+":", width)), t.values[i])
	}
}

// Section is a titled block of indented lines.
type Section struct {
	writer  io.Writer
	title   string
	lines   []string
	noColor bool
}

// NewSection creates a section.
func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{writer: w, title: title, noColor: noColor}
}

// AddLine appends a line to the section body.
func (s *Section) AddLine(line string) {
	s.lines = append(s.lines, line)
}

// Render writes the title, the indented lines and a blank line. A section
// without lines says so instead of rendering an empty body.
func (s *Section) Render() {
	paint(s.noColor, color.Bold, color.FgCyan).Fprintln(s.writer, s.title)
	if len(s.lines) == 0 {
		paint(s.noColor, color.FgHiBlack).Fprintln(s.writer, "  (none)")
	}
	for _, line := range s.lines {
		fmt.Fprintf(s.writer, "  %s\n", line)
	}
	fmt.Fprintln(s.writer)
}

// ListOptions configures a List.
type ListOptions struct {
	Numbered bool
	NoColor  bool
}

// List renders bulleted or numbered items.
type List struct {
	writer io.Writer
	items  []string
	opts   ListOptions
}

// NewList creates a list.
func NewList(w io.Writer, opts ListOptions) *List {
	return &List{writer: w, opts: opts}
}

// AddItem appends an item.
func (l *List) AddItem(item string) {
	l.items = append(l.items, item)
}

// Render writes the items. Continuation lines of a multi-line item are
// indented under its first line.
func (l *List) Render() {
	cyan := paint(l.opts.NoColor, color.FgCyan)
	for i, item := range l.items {
		marker := "• "
		if l.opts.Numbered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		indent := strings.Repeat(" ", utf8.RuneCountInString(marker))
		item = strings.ReplaceAll(item, "\n", "\n"+indent)
		fmt.Fprintf(l.writer, "%s%s\n", cyan.Sprint(marker), item)
	}
}

// Header writes title underlined to its own width.
func Header(w io.Writer, title string, noColor bool) {
	paint(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	paint(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", utf8.RuneCountInString(title)))
}
