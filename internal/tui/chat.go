package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const warnEmptyQuestion = "Type a question first."

type exchange struct {
	question string
	answer   string
}

type answerMsg struct {
	question string
	answer   string
}

type chatTab struct {
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	pending  bool
	status   string
}

func newChatTab() chatTab {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Which state produces the most sugarcane?"
	ti.CharLimit = 0
	return chatTab{input: ti, viewport: viewport.New(80, 10)}
}

func (c *chatTab) focus() tea.Cmd { return c.input.Focus() }
func (c *chatTab) blur()          { c.input.Blur() }

func (c *chatTab) resize(width, height int) {
	c.viewport.Width = max(20, width)
	c.viewport.Height = max(3, height)
	c.viewport.SetContent(c.transcript())
}

func (c *chatTab) update(ctx context.Context, msg tea.Msg, backend Backend) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			q := strings.TrimSpace(c.input.Value())
			if q == "" {
				c.status = warnEmptyQuestion
				return nil
			}
			if c.pending {
				return nil
			}
			c.pending = true
			c.status = ""
			c.input.SetValue("")
			return ask(ctx, backend, q)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return cmd
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *chatTab) answered(msg answerMsg) {
	c.pending = false
	c.history = append(c.history, exchange{question: msg.question, answer: msg.answer})
	c.viewport.SetContent(c.transcript())
	c.viewport.GotoBottom()
}

func (c chatTab) transcript() string {
	if len(c.history) == 0 {
		return mutedStyle.Render("Ask anything about Indian crops, districts and production.")
	}
	var b strings.Builder
	for i, ex := range c.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(labelStyle.Render("You: "))
		b.WriteString(ex.question)
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("AgriInsight: "))
		b.WriteString(ex.answer)
	}
	return b.String()
}

func (c chatTab) view(spin string) string {
	out := boxStyle.Render(c.viewport.View()) + "\n" + focusBoxStyle.Render(c.input.View())
	switch {
	case c.pending:
		out += "\n" + spin + " Thinking..."
	case c.status != "":
		out += "\n" + warnStyle.Render(c.status)
	}
	return out
}

func ask(ctx context.Context, backend Backend, q string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{question: q, answer: backend.Ask(ctx, q)}
	}
}
