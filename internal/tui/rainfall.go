package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"agriinsight/internal/domain"
	"agriinsight/internal/weather"
)

const (
	minDays         = 30
	maxDays         = 365
	stepDays        = 30
	defaultDays     = 90
	comparisonDays  = 30
	defaultCompared = 3
)

const (
	fieldStateA = iota
	fieldStateB
	fieldDays
	fieldCompare
	rainfallFieldCount
)

type rainfallMsg struct {
	days    int
	a, b    *domain.RainfallSeries
	err     error
	latestA *domain.RainfallReading
	latestB *domain.RainfallReading
}

type comparisonMsg struct{ rows []weather.Comparison }

type rainfallTab struct {
	states    []string
	stateA    int
	stateB    int
	days      int
	focused   int
	cursor    int
	selected  map[int]bool
	last      rainfallMsg
	rows      []weather.Comparison
	loading   bool
	comparing bool
}

func newRainfallTab(states []string) rainfallTab {
	r := rainfallTab{
		states:    states,
		days:      defaultDays,
		selected:  make(map[int]bool),
		loading:   len(states) > 0,
		comparing: len(states) > 0,
	}
	if len(states) > 1 {
		r.stateB = 1
	}
	for i := 0; i < len(states) && i < defaultCompared; i++ {
		r.selected[i] = true
	}
	return r
}

func (r *rainfallTab) update(ctx context.Context, msg tea.Msg, backend Backend) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(r.states) == 0 {
		return nil
	}
	switch key.String() {
	case "up":
		r.focused = (r.focused + rainfallFieldCount - 1) % rainfallFieldCount
	case "down":
		r.focused = (r.focused + 1) % rainfallFieldCount
	case "left":
		r.step(-1)
	case "right":
		r.step(1)
	case " ":
		if r.focused == fieldCompare {
			r.selected[r.cursor] = !r.selected[r.cursor]
		}
	case "enter":
		if r.focused == fieldCompare {
			if r.comparing {
				return nil
			}
			r.comparing = true
			return r.fetchComparison(ctx, backend)
		}
		if r.loading {
			return nil
		}
		r.loading = true
		return r.fetch(ctx, backend)
	}
	return nil
}

func (r *rainfallTab) step(delta int) {
	n := len(r.states)
	switch r.focused {
	case fieldStateA:
		r.stateA = (r.stateA + delta + n) % n
	case fieldStateB:
		r.stateB = (r.stateB + delta + n) % n
	case fieldDays:
		if next := r.days + delta*stepDays; next >= minDays && next <= maxDays {
			r.days = next
		}
	case fieldCompare:
		r.cursor = (r.cursor + delta + n) % n
	}
}

func (r rainfallTab) compared() []string {
	var names []string
	for i, name := range r.states {
		if r.selected[i] {
			names = append(names, name)
		}
	}
	return names
}

func (r rainfallTab) fetch(ctx context.Context, backend Backend) tea.Cmd {
	if len(r.states) == 0 {
		return nil
	}
	a, b, days := r.states[r.stateA], r.states[r.stateB], r.days
	return func() tea.Msg {
		msg := rainfallMsg{days: days}
		sa, errA := backend.Rainfall(ctx, a, days)
		sb, errB := backend.Rainfall(ctx, b, days)
		if errA != nil {
			msg.err = errA
		} else if errB != nil {
			msg.err = errB
		} else {
			msg.a, msg.b = sa, sb
		}
		msg.latestA, _ = backend.LatestRainfall(ctx, a)
		msg.latestB, _ = backend.LatestRainfall(ctx, b)
		return msg
	}
}

func (r rainfallTab) fetchComparison(ctx context.Context, backend Backend) tea.Cmd {
	names := r.compared()
	if len(names) == 0 {
		return func() tea.Msg { return comparisonMsg{} }
	}
	return func() tea.Msg {
		return comparisonMsg{rows: backend.CompareRainfall(ctx, names, comparisonDays)}
	}
}

func (r *rainfallTab) seriesLoaded(msg rainfallMsg) {
	r.loading = false
	r.last = msg
}

func (r *rainfallTab) comparisonLoaded(msg comparisonMsg) {
	r.comparing = false
	r.rows = msg.rows
}

func (r rainfallTab) view(spin string, width int) string {
	if len(r.states) == 0 {
		return mutedStyle.Render("No supported locations.")
	}
	var b strings.Builder
	fields := [rainfallFieldCount]string{
		"State A: ‹ " + r.states[r.stateA] + " ›",
		"State B: ‹ " + r.states[r.stateB] + " ›",
		fmt.Sprintf("Days of history: ‹ %d ›", r.days),
		"Compare: " + r.compareChoices(),
	}
	for i, f := range fields {
		if i == r.focused {
			b.WriteString(labelStyle.Render("▸ "+f) + "\n")
		} else {
			b.WriteString("  " + f + "\n")
		}
	}
	b.WriteString("\n")

	switch {
	case r.loading:
		b.WriteString(spin + " Fetching rainfall timeseries...\n")
	case r.last.err != nil:
		b.WriteString(errorStyle.Render("Error fetching rainfall: "+r.last.err.Error()) + "\n")
	case r.last.a != nil:
		fmt.Fprintf(&b, "Daily rainfall last %d days\n", r.last.days)
		chartWidth := max(10, width-20)
		for _, s := range []*domain.RainfallSeries{r.last.a, r.last.b} {
			fmt.Fprintf(&b, "%-14s %s\n", s.Location, Sparkline(precipitation(s), chartWidth))
		}
	}
	if !r.loading {
		b.WriteString("\n" + labelStyle.Render("Latest rainfall") + "\n")
		b.WriteString(latestLine(r.last.latestA) + "   " + latestLine(r.last.latestB) + "\n")
	}

	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("Average rainfall (last %d days)", comparisonDays)) + "\n")
	if r.comparing {
		b.WriteString(spin + " Computing averages...")
	} else if len(r.rows) > 0 {
		b.WriteString(comparisonTable(r.rows))
	}
	return b.String()
}

func (r rainfallTab) compareChoices() string {
	parts := make([]string, len(r.states))
	for i, name := range r.states {
		mark := "[ ]"
		if r.selected[i] {
			mark = "[x]"
		}
		item := mark + " " + name
		if r.focused == fieldCompare && i == r.cursor {
			item = activeTabStyle.Render(item)
		}
		parts[i] = item
	}
	return strings.Join(parts, " ")
}

func latestLine(r *domain.RainfallReading) string {
	if r == nil {
		return "No data."
	}
	return fmt.Sprintf("%s latest rainfall (mm): %s", r.Location, formatMM(r.PrecipMM))
}

func comparisonTable(rows []weather.Comparison) string {
	trows := make([]table.Row, len(rows))
	for i, row := range rows {
		value := formatMM(row.AvgMM)
		if row.Error != "" {
			value = row.Error
		}
		trows[i] = table.Row{row.Location, value}
	}
	tbl := table.New(
		table.WithColumns([]table.Column{{Title: "state", Width: 14}, {Title: "avg_rain_mm", Width: 34}}),
		table.WithRows(trows),
		table.WithHeight(len(trows)+1),
	)
	return tbl.View()
}

func precipitation(s *domain.RainfallSeries) []*float64 {
	out := make([]*float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.PrecipMM
	}
	return out
}

func formatMM(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
