// Package tui provides Bubble Tea models for terminal UI interactions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazuruo/chaosflow/internal/draft"
	"github.com/chazuruo/chaosflow/internal/hub"
	"github.com/chazuruo/chaosflow/internal/wizard"
)

// focusArea is the part of the form receiving keys.
type focusArea int

const (
	focusName focusArea = iota
	focusDesc
	focusHub
	focusExperiment
	focusNext
	focusCount
)

// experimentPlaceholder is the non-selectable first row of the experiment list.
const experimentPlaceholder = "Select an experiment"

// visibleRows caps how many list rows are drawn at once.
const visibleRows = 8

// chartsLoadedMsg carries a finished chart fetch back into Update.
type chartsLoadedMsg struct {
	result wizard.FetchResult
}

// CreateWorkflowModel is the create-workflow step of the wizard.
type CreateWorkflowModel struct {
	ctx     context.Context
	ctrl    *wizard.Controller
	catalog hub.Catalog

	name    textinput.Model
	desc    textarea.Model
	spinner spinner.Model

	focus     focusArea
	hubCursor int
	// expCursor indexes the rendered experiment rows; row 0 is the placeholder.
	expCursor int

	showHelp bool
	status   string

	// pending is a fetch started before the program ran; Init issues it.
	pending *wizard.FetchRequest

	// Committed holds the draft once Next succeeds.
	Committed *draft.WorkflowDraft
	Done      bool
	Cancelled bool
}

// NewCreateWorkflow creates the step model around ctrl. catalog runs the
// chart fetches for registered hubs.
func NewCreateWorkflow(ctx context.Context, ctrl *wizard.Controller, catalog hub.Catalog, showHelp bool) CreateWorkflowModel {
	ni := textinput.New()
	ni.Placeholder = "Workflow name"
	ni.CharLimit = 54
	ni.SetValue(ctrl.Name())
	ni.Focus()

	da := textarea.New()
	da.Placeholder = "Description"
	da.SetHeight(3)
	da.SetWidth(60)
	da.ShowLineNumbers = false
	da.SetValue(ctrl.Description())
	da.Blur()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	cursor := 0
	for i, opt := range ctrl.HubOptions() {
		if opt.Equal(ctrl.Selection()) {
			cursor = i
			break
		}
	}

	return CreateWorkflowModel{
		ctx:       ctx,
		ctrl:      ctrl,
		catalog:   catalog,
		name:      ni,
		desc:      da,
		spinner:   sp,
		focus:     focusName,
		hubCursor: cursor,
		showHelp:  showHelp,
		status:    fetchStatus(ctrl.FetchErr()),
	}
}

// fetchStatus is the status line for a failed chart fetch.
func fetchStatus(err error) string {
	if err == nil {
		return ""
	}
	return "Could not load experiments: " + err.Error()
}

// WithFetch returns m with req to be run when the program starts, for a
// registered hub selected before the form is shown.
func (m CreateWorkflowModel) WithFetch(req *wizard.FetchRequest) CreateWorkflowModel {
	m.pending = req
	return m
}

// Init initializes the model.
func (m CreateWorkflowModel) Init() tea.Cmd {
	if m.pending != nil {
		return tea.Batch(textinput.Blink, m.spinner.Tick, fetchCharts(m.ctx, m.catalog, *m.pending))
	}
	return textinput.Blink
}

// Update handles messages.
func (m CreateWorkflowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case chartsLoadedMsg:
		if m.ctrl.ApplyFetch(msg.result) {
			m.expCursor = 0
			m.status = fetchStatus(m.ctrl.FetchErr())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDesc:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m CreateWorkflowModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.Cancelled = true
		return m, tea.Quit
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+n":
		return m.next()
	}

	switch m.focus {
	case focusName:
		if msg.Type == tea.KeyEnter {
			return m.setFocus(focusDesc)
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		m.ctrl.SetName(m.name.Value())
		return m, cmd

	case focusDesc:
		var cmd tea.Cmd
		m.desc, cmd = m.desc.Update(msg)
		m.ctrl.SetDescription(m.desc.Value())
		return m, cmd

	case focusHub:
		switch msg.String() {
		case "up", "k":
			if m.hubCursor > 0 {
				m.hubCursor--
			}
		case "down", "j":
			if m.hubCursor < len(m.ctrl.HubOptions())-1 {
				m.hubCursor++
			}
		case "enter", " ":
			return m.selectHub()
		}
		return m, nil

	case focusExperiment:
		switch msg.String() {
		case "up", "k":
			if m.expCursor > 0 {
				m.expCursor--
			}
		case "down", "j":
			if m.expCursor < len(m.ctrl.Experiments()) {
				m.expCursor++
			}
		case "enter", " ":
			return m.selectExperiment()
		}
		return m, nil

	case focusNext:
		if msg.Type == tea.KeyEnter {
			return m.next()
		}
	}
	return m, nil
}

func (m CreateWorkflowModel) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.name.Blur()
	m.desc.Blur()

	var cmd tea.Cmd
	switch f {
	case focusName:
		cmd = m.name.Focus()
	case focusDesc:
		cmd = m.desc.Focus()
	}
	return m, cmd
}

func (m CreateWorkflowModel) selectHub() (tea.Model, tea.Cmd) {
	opts := m.ctrl.HubOptions()
	if m.hubCursor >= len(opts) {
		return m, nil
	}

	req, err := m.ctrl.SelectHub(m.ctx, opts[m.hubCursor])
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	m.expCursor = 0
	if req == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, fetchCharts(m.ctx, m.catalog, *req))
}

func (m CreateWorkflowModel) selectExperiment() (tea.Model, tea.Cmd) {
	// Row 0 is the placeholder and cannot be chosen.
	if m.expCursor == 0 {
		return m, nil
	}
	entries := m.ctrl.Experiments()
	if m.expCursor > len(entries) {
		return m, nil
	}
	if err := m.ctrl.SelectExperiment(m.ctx, entries[m.expCursor-1].Key()); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	return m, nil
}

func (m CreateWorkflowModel) next() (tea.Model, tea.Cmd) {
	if !m.ctrl.CanAdvance() {
		m.status = "Choose an experiment first"
		return m, nil
	}
	d, err := m.ctrl.Next(m.ctx)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.Committed = &d
	m.Done = true
	return m, tea.Quit
}

// fetchCharts runs req off the update loop.
func fetchCharts(ctx context.Context, catalog hub.Catalog, req wizard.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		return chartsLoadedMsg{result: wizard.Fetch(ctx, catalog, req)}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
	activeLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Bold(true)
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))
	disabledButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("238")).
				Foreground(lipgloss.Color("245"))
)

// View renders the step.
func (m CreateWorkflowModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Create a new chaos workflow"))
	b.WriteString("\n")

	b.WriteString(m.label("Name", focusName) + "\n")
	b.WriteString(m.name.View() + "\n\n")

	b.WriteString(m.label("Description", focusDesc) + "\n")
	b.WriteString(m.desc.View() + "\n\n")

	b.WriteString(m.label("Hub", focusHub) + "\n")
	b.WriteString(m.renderHubs() + "\n")

	b.WriteString(m.label("Experiment", focusExperiment) + "\n")
	b.WriteString(m.renderExperiments() + "\n")

	b.WriteString(m.renderNext() + "\n")

	if m.status != "" {
		b.WriteString("\n" + errorStyle.Render(m.status) + "\n")
	}
	if m.showHelp {
		b.WriteString(m.renderFooter())
	}
	return b.String()
}

func (m CreateWorkflowModel) label(text string, f focusArea) string {
	if m.focus == f {
		return activeLabelStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m CreateWorkflowModel) renderHubs() string {
	var b strings.Builder
	sel := m.ctrl.Selection()
	for i, opt := range m.ctrl.HubOptions() {
		cursor := "  "
		if m.focus == focusHub && i == m.hubCursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := "( )"
		line := opt.Name()
		if opt.Equal(sel) {
			mark = "(•)"
			line = selectedStyle.Render(line)
		}
		if !opt.IsPublic() && !opt.Hub.IsAvailable {
			line += dimStyle.Render(" (unavailable)")
		}
		fmt.Fprintf(&b, "  %s%s %s\n", cursor, mark, line)
	}
	return b.String()
}

func (m CreateWorkflowModel) renderExperiments() string {
	if m.ctrl.Loading() {
		return fmt.Sprintf("  %s Loading experiments from %s...\n", m.spinner.View(), m.ctrl.Selection().Name())
	}

	entries := m.ctrl.Experiments()
	rows := make([]string, 0, len(entries)+1)
	rows = append(rows, experimentPlaceholder)
	for _, e := range entries {
		rows = append(rows, e.Key())
	}

	chosen, hasChosen := m.ctrl.Chosen()
	start, end := window(len(rows), m.expCursor, visibleRows)

	var b strings.Builder
	for i := start; i < end; i++ {
		cursor := "  "
		if m.focus == focusExperiment && i == m.expCursor {
			cursor = cursorStyle.Render("> ")
		}
		line := rows[i]
		switch {
		case i == 0:
			line = dimStyle.Render(line)
		case hasChosen && line == chosen.Key():
			line = selectedStyle.Render(line + " ✓")
		}
		fmt.Fprintf(&b, "  %s%s\n", cursor, line)
	}
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("    no experiments available") + "\n")
	} else if end-start < len(rows) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("    %d/%d", m.expCursor, len(entries))) + "\n")
	}
	return b.String()
}

// window returns the [start, end) range of n rows to draw so that cursor
// stays visible.
func window(n, cursor, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}

func (m CreateWorkflowModel) renderNext() string {
	prefix := "  "
	if m.focus == focusNext {
		prefix = cursorStyle.Render("> ")
	}
	if m.ctrl.CanAdvance() {
		return prefix + buttonStyle.Render("Next")
	}
	return prefix + disabledButtonStyle.Render("Next")
}

func (m CreateWorkflowModel) renderFooter() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	help := " [Tab/Shift+Tab]: move [↑/↓]: choose [Enter]: select\n" +
		" [Ctrl+N]: next [Esc]: cancel"
	return helpStyle.Render(help)
}
