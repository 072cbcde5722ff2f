package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agriinsight/internal/domain"
	"agriinsight/internal/weather"
)

// Backend is the TUI-facing subset of the application.
type Backend interface {
	Ask(ctx context.Context, query string) string
	Records(ctx context.Context) domain.Table
	Insight(query string, table domain.Table) string
	Rainfall(ctx context.Context, name string, days int) (*domain.RainfallSeries, error)
	LatestRainfall(ctx context.Context, name string) (*domain.RainfallReading, error)
	CompareRainfall(ctx context.Context, names []string, days int) []weather.Comparison
	States() []string
}

type tab int

const (
	tabChat tab = iota
	tabExplorer
	tabRainfall
	tabCount
)

var tabTitles = [tabCount]string{"Chatbot", "Data Explorer", "Rainfall & Climate"}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx      context.Context
	backend  Backend
	active   tab
	chat     chatTab
	explorer explorerTab
	rainfall rainfallTab
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
}

// New creates the dashboard. ctx bounds every backend call.
func New(ctx context.Context, backend Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		ctx:      ctx,
		backend:  backend,
		chat:     newChatTab(),
		explorer: newExplorerTab(),
		rainfall: newRainfallTab(backend.States()),
		spinner:  sp,
	}
	m.chat.focus()
	return m
}

// Init loads the dataset and the default rainfall views.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadRecords(m.ctx, m.backend),
		m.rainfall.fetch(m.ctx, m.backend),
		m.rainfall.fetchComparison(m.ctx, m.backend),
	)
}

// Update routes messages to the active tab.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.chat.resize(msg.Width, msg.Height-chromeHeight)
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case answerMsg:
		m.chat.answered(msg)
		return m, nil
	case recordsMsg:
		m.explorer.loaded(msg.table)
		return m, nil
	case rainfallMsg:
		m.rainfall.seriesLoaded(msg)
		return m, nil
	case comparisonMsg:
		m.rainfall.comparisonLoaded(msg)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.switchTab((m.active + 1) % tabCount)
		case "shift+tab":
			return m, m.switchTab((m.active + tabCount - 1) % tabCount)
		}
	}

	var cmd tea.Cmd
	switch m.active {
	case tabChat:
		cmd = m.chat.update(m.ctx, msg, m.backend)
	case tabExplorer:
		cmd = m.explorer.update(msg, m.backend)
	case tabRainfall:
		cmd = m.rainfall.update(m.ctx, msg, m.backend)
	}
	if m.busy() {
		cmd = tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m *Model) switchTab(t tab) tea.Cmd {
	m.chat.blur()
	m.explorer.blur()
	m.active = t
	switch t {
	case tabChat:
		return m.chat.focus()
	case tabExplorer:
		return m.explorer.focus()
	}
	return nil
}

func (m Model) busy() bool {
	return m.chat.pending || m.explorer.loading || m.rainfall.loading || m.rainfall.comparing
}

// View renders the tab bar, the active tab and the help line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var body string
	switch m.active {
	case tabChat:
		body = m.chat.view(m.spinner.View())
	case tabExplorer:
		body = m.explorer.view(m.spinner.View())
	case tabRainfall:
		body = m.rainfall.view(m.spinner.View(), m.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("🌾 AgriInsight"),
		m.tabBar(),
		body,
		helpStyle.Render("tab/shift+tab: switch tab • esc: quit"),
	)
}

func (m Model) tabBar() string {
	parts := make([]string, 0, tabCount)
	for i, title := range tabTitles {
		if tab(i) == m.active {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, tabStyle.Render(title))
		}
	}
	return strings.Join(parts, " ")
}
