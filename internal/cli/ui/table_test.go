package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"METHOD", "STATUS", "DETAIL"}, &TableOptions{NoColor: true})

	table.AddRow("textDocument/hover", "PASS", "Compliant")
	table.AddRow("textDocument/references", "FAIL", "Array item missing required field: range")
	table.Render()

	want := strings.Join([]string{
		"METHOD                   STATUS  DETAIL",
		"───────────────────────  ──────  ────────────────────────────────────────",
		"textDocument/hover       PASS    Compliant",
		"textDocument/references  FAIL    Array item missing required field: range",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, nil).Render()

	if buf.Len() != 0 {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestTableRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"SUITE", "ALIASES", "SUMMARY"}, &TableOptions{NoColor: true})
	table.AddRow("all")
	table.AddRow("extended", "phase9", "symbols and hints", "dropped")
	table.Render()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if lines[2] != "all"+strings.Repeat(" ", 16) {
		t.Errorf("short row = %q", lines[2])
	}
	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("cell past the last header was rendered")
	}
}

func TestTableMaxCellWidth(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		cell  string
		want  string
	}{
		{"no limit", 0, "code=-32601 message=method not found", "code=-32601 message=method not found"},
		{"within limit", 40, "Compliant", "Compliant"},
		{"cut", 11, "code=-32601 message=method not found", "code=-3260…"},
		{"cut runes", 3, "移除变量", "移除…"},
		{"one", 1, "Compliant", "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(&bytes.Buffer{}, []string{"DETAIL"}, &TableOptions{MaxCellWidth: tt.limit})
			table.AddRow(tt.cell)
			if got := table.rows[0][0]; got != tt.want {
				t.Errorf("clip(%q) = %q; want %q", tt.cell, got, tt.want)
			}
		})
	}
}

func TestTableHighlight(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"STATUS", "DETAIL"}, &TableOptions{
		Highlight: map[string]color.Attribute{"FAIL": color.FgRed},
	})
	table.AddRow("FAIL", "Compliant")
	table.Render()

	output := buf.String()
	red := color.New(color.FgRed, color.Bold)
	if !strings.Contains(output, red.Sprint("FAIL  ")) {
		t.Errorf("FAIL cell not highlighted: %q", output)
	}
	if strings.Contains(output, red.Sprint("Compliant")) {
		t.Errorf("unmatched cell highlighted: %q", output)
	}
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})
	table.AddRow("移除", "x")
	table.AddRow("abcd", "y")
	table.Render()

	lines := strings.Split(buf.String(), "\n")
	if lines[2] != "移除    x" || lines[3] != "abcd  y" {
		t.Errorf("rows not aligned by rune width: %q", lines[2:4])
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Host", "localhost")
	table.AddRow("Log level", "warn")
	table.Render()

	want := "Host:      localhost\nLog level: warn\n"
	if buf.String() != want {
		t.Errorf("Render() = %q; want %q", buf.String(), want)
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()

	if buf.Len() != 0 {
		t.Errorf("Expected empty output, got: %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	section := NewSection(&buf, "Compliance schema", true)
	section.AddLine("textDocument/hover: object, required contents, nullable")
	section.Render()

	want := "Compliance schema\n  textDocument/hover: object, required contents, nullable\n\n"
	if buf.String() != want {
		t.Errorf("Render() = %q; want %q", buf.String(), want)
	}
}

func TestSectionEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewSection(&buf, "Compliance schema", true).Render()

	if buf.String() != "Compliance schema\n  (none)\n\n" {
		t.Errorf("Render() = %q", buf.String())
	}
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	list := NewList(&buf, ListOptions{NoColor: true})
	list.AddItem("textDocument/references: Array item missing required field: range")
	list.AddItem("textDocument/hover: first\nsecond")
	list.Render()

	want := "• textDocument/references: Array item missing required field: range\n" +
		"• textDocument/hover: first\n  second\n"
	if buf.String() != want {
		t.Errorf("Render() = %q; want %q", buf.String(), want)
	}
}

func TestListNumbered(t *testing.T) {
	var buf bytes.Buffer
	list := NewList(&buf, ListOptions{Numbered: true, NoColor: true})
	for i := 0; i < 10; i++ {
		list.AddItem("item")
	}
	list.AddItem("last\nwrapped")
	list.Render()

	output := buf.String()
	if !strings.HasPrefix(output, "1. item\n") {
		t.Errorf("first item = %q", output)
	}
	if !strings.HasSuffix(output, "11. last\n    wrapped\n") {
		t.Errorf("continuation not indented under marker: %q", output)
	}
}

func TestListEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewList(&buf, ListOptions{NoColor: true}).Render()

	if buf.Len() != 0 {
		t.Errorf("Expected empty output, got: %q", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Suites", true)

	if buf.String() != "Suites\n──────\n" {
		t.Errorf("Header() = %q", buf.String())
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"hover", 8, "hover   "},
		{"references", 5, "references"},
		{"移除", 4, "移除  "},
		{"", 2, "  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, got, tt.expected)
		}
	}
}
