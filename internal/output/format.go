// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasker/internal/service"
)

// Printer writes tasks to w. Styling is applied only when w is a terminal
// that supports it, so buffered and piped output stays plain text.
type Printer struct {
	w     io.Writer
	done  lipgloss.Style
	open  lipgloss.Style
	faint lipgloss.Style
}

// NewPrinter returns a Printer bound to w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		done:  r.NewStyle().Foreground(lipgloss.Color("120")),
		open:  r.NewStyle().Foreground(lipgloss.Color("214")),
		faint: r.NewStyle().Faint(true),
	}
}

// Task formats one task.
// Format: "{ID:>4}  [x] {TITLE}\n", then the description indented below it.
func (p *Printer) Task(task service.Task) {
	mark := p.open.Render("[ ]")
	if task.Completed {
		mark = p.done.Render("[x]")
	}
	fmt.Fprintf(p.w, "%4d  %s %s\n", task.ID, mark, normalizeTitle(task.Title))
	if desc := normalizeDescription(task.Description); desc != "" {
		fmt.Fprintf(p.w, "          %s\n", p.faint.Render(desc))
	}
}

// Page formats a listed page followed by a footer naming the page and the
// filter.
func (p *Printer) Page(q service.Query, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(p.w, "no tasks found")
	}
	for _, t := range tasks {
		p.Task(t)
	}
	fmt.Fprintln(p.w, p.faint.Render(Footer(q)))
}

// Footer describes a query, e.g. "-- page 2, open --".
func Footer(q service.Query) string {
	return fmt.Sprintf("-- page %d, %s --", q.Page, FilterName(q.Filter))
}

// FilterName is the display name of a filter.
func FilterName(f service.Filter) string {
	switch f {
	case service.FilterCompleted:
		return "done"
	case service.FilterOpen:
		return "open"
	default:
		return "all"
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func normalizeDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "\r", " ")
	desc = strings.ReplaceAll(desc, "\n", " ")
	return strings.TrimSpace(desc)
}
