package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/tap14/internal/report"
	"github.com/chriserin/tap14/tap"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	bailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func TestLine(w io.Writer, depth int, t *tap.Test) {
	var mark string
	switch {
	case t.Directive != nil && t.Directive.Key == tap.Skip:
		mark = skipStyle.Render("skip")
	case t.Directive != nil && t.Directive.Key == tap.Todo:
		mark = skipStyle.Render("todo")
	case t.Result:
		mark = passStyle.Render("ok  ")
	default:
		mark = failStyle.Render("fail")
	}

	line := indent(depth) + mark
	if t.Number != nil {
		line += fmt.Sprintf(" %d", *t.Number)
	}
	if t.Description != nil {
		line += " " + *t.Description
	}
	if t.Directive != nil && t.Directive.Reason != nil {
		line += " " + dimStyle.Render("("+*t.Directive.Reason+")")
	}
	fmt.Fprintln(w, line)
}

func SubtestLine(w io.Writer, depth int, name *string) {
	label := "(unnamed subtest)"
	if name != nil {
		label = *name
	}
	fmt.Fprintln(w, indent(depth)+dimStyle.Render("subtest")+" "+label)
}

func BailOutLine(w io.Writer, depth int, reason *string) {
	line := indent(depth) + bailStyle.Render("bail out!")
	if reason != nil {
		line += " " + *reason
	}
	fmt.Fprintln(w, line)
}

func SummaryLine(w io.Writer, t report.Tally) {
	parts := []string{
		passStyle.Render(fmt.Sprintf("%d passed", t.Passed)),
		failStyle.Render(fmt.Sprintf("%d failed", t.Failed)),
	}
	if t.Skipped > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", t.Skipped)))
	}
	if t.Todo > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d todo", t.Todo)))
	}
	fmt.Fprintf(w, "%s (%d of %d planned)\n", strings.Join(parts, ", "), t.Ran, t.Planned)
	if t.BailedOut {
		BailOutLine(w, 0, nilIfEmpty(t.BailReason))
	}
}

func RunRow(w io.Writer, id int64, source, recordedAt string, passed, failed, sourceWidth int) {
	status := passStyle.Render("pass")
	if failed > 0 {
		status = failStyle.Render("fail")
	}
	fmt.Fprintf(w, "%-6s %-*s  %s  %s  %d/%d\n",
		fmt.Sprintf("#%d", id), sourceWidth, source, dimStyle.Render(recordedAt), status, passed, passed+failed)
}

func RecordedLine(w io.Writer, id int64, source string) {
	fmt.Fprintln(w, passStyle.Render("recorded")+fmt.Sprintf("  #%d  %s", id, source))
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
