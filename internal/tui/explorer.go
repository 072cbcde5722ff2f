package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agriinsight/internal/dataset"
	"agriinsight/internal/domain"
)

const (
	warnEmptyAnalysis = "Enter a question."
	previewRows       = 10
	maxColumnWidth    = 20
	maxHints          = 8
)

const (
	fieldStates = iota
	fieldCrops
	fieldQuestion
	fieldCount
)

type recordsMsg struct{ table domain.Table }

type explorerTab struct {
	inputs   [fieldCount]textinput.Model
	focused  int
	all      domain.Table
	filtered domain.Table
	answer   string
	status   string
	loading  bool
}

func newExplorerTab() explorerTab {
	e := explorerTab{loading: true}
	placeholders := [fieldCount]string{
		"States, comma separated (empty = all)",
		"Crops, comma separated (empty = all)",
		"Which state has the highest production?",
	}
	for i := range e.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 0
		e.inputs[i] = ti
	}
	return e
}

func (e *explorerTab) focus() tea.Cmd { return e.inputs[e.focused].Focus() }

func (e *explorerTab) blur() {
	for i := range e.inputs {
		e.inputs[i].Blur()
	}
}

func (e *explorerTab) loaded(t domain.Table) {
	e.loading = false
	e.all = t
	e.applyFilter()
}

func (e *explorerTab) filter() dataset.Filter {
	return dataset.Filter{
		States: splitList(e.inputs[fieldStates].Value()),
		Crops:  splitList(e.inputs[fieldCrops].Value()),
	}
}

func (e *explorerTab) applyFilter() {
	e.filtered = dataset.Apply(e.all, e.filter())
}

func (e *explorerTab) update(msg tea.Msg, backend Backend) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "down":
			e.blur()
			if key.String() == "down" {
				e.focused = (e.focused + 1) % fieldCount
			} else {
				e.focused = (e.focused + fieldCount - 1) % fieldCount
			}
			return e.focus()
		case "enter":
			if e.focused != fieldQuestion {
				e.applyFilter()
				return nil
			}
			q := strings.TrimSpace(e.inputs[fieldQuestion].Value())
			if q == "" {
				e.status = warnEmptyAnalysis
				e.answer = ""
				return nil
			}
			e.status = ""
			e.answer = backend.Insight(q, e.filtered)
			return nil
		}
	}
	var cmd tea.Cmd
	e.inputs[e.focused], cmd = e.inputs[e.focused].Update(msg)
	return cmd
}

func (e explorerTab) view(spin string) string {
	if e.loading {
		return spin + " Fetching dataset..."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Records: %d (filtered: %d)\n", e.all.Len(), e.filtered.Len())
	labels := [fieldCount]string{"States", "Crops", "Analysis question"}
	hints := [fieldCount]string{
		hintList(dataset.Distinct(e.all, "state")),
		hintList(dataset.Distinct(e.all, "commodity")),
	}
	for i, in := range e.inputs {
		style := boxStyle
		if i == e.focused {
			style = focusBoxStyle
		}
		label := labelStyle.Render(labels[i])
		if hints[i] != "" {
			label += " " + mutedStyle.Render(hints[i])
		}
		b.WriteString(label + "\n" + style.Render(in.View()) + "\n")
	}
	switch {
	case e.status != "":
		b.WriteString(warnStyle.Render(e.status) + "\n")
	case e.answer != "":
		b.WriteString(boxStyle.Render(e.answer) + "\n")
	}
	if e.all.Empty() {
		b.WriteString(mutedStyle.Render("No records returned by the dataset API."))
	} else {
		b.WriteString(previewTable(dataset.Head(e.filtered, previewRows)))
	}
	return b.String()
}

func previewTable(t domain.Table) string {
	cols := make([]table.Column, len(t.Columns))
	for i, name := range t.Columns {
		width := lipgloss.Width(name)
		for _, rec := range t.Rows {
			width = max(width, lipgloss.Width(rec[name]))
		}
		cols[i] = table.Column{Title: name, Width: min(width, maxColumnWidth)}
	}
	rows := make([]table.Row, len(t.Rows))
	for i, rec := range t.Rows {
		row := make(table.Row, len(t.Columns))
		for j, name := range t.Columns {
			row[j] = rec[name]
		}
		rows[i] = row
	}
	tbl := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	return tbl.View()
}

func hintList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) > maxHints {
		return strings.Join(values[:maxHints], ", ") + fmt.Sprintf(", … (%d more)", len(values)-maxHints)
	}
	return strings.Join(values, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadRecords(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg { return recordsMsg{table: backend.Records(ctx)} }
}
