package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/i18n"
	"github.com/egoavara/smart-updater/internal/search"
)

// dispatchTimeout bounds writing the update command, not the update itself
const dispatchTimeout = 5 * time.Second

// statesMsg carries a new registry snapshot
type statesMsg card.States

// closedMsg reports that no more snapshots will arrive
type closedMsg struct{}

// Model is the bubbletea model hosting one card
type Model struct {
	ctx     context.Context
	card    *card.Card
	states  card.States
	updates <-chan card.States
	connErr func() error

	rows      []int // indexes of visible pending rows
	cursor    int
	filter    textinput.Model
	filtering bool

	notice    string
	noticeErr bool
	width     int
	height    int
	ready     bool
	quitting  bool
}

// NewModel creates a host for c fed by updates. connErr, when set, explains why updates closed.
func NewModel(ctx context.Context, c *card.Card, updates <-chan card.States, connErr func() error) Model {
	ti := textinput.New()
	ti.Placeholder = i18n.T("tui.filterPlaceholder", nil)
	ti.Prompt = "/ "
	ti.CharLimit = 50
	ti.Width = 30

	return Model{
		ctx:     ctx,
		card:    c,
		updates: updates,
		connErr: connErr,
		filter:  ti,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForStates(m.updates)
}

func waitForStates(ch <-chan card.States) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		states, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return statesMsg(states)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statesMsg:
		m.states = card.States(msg)
		m.ready = true
		if dropped := m.card.Refresh(m.states); len(dropped) > 0 {
			m.setNotice(i18n.T("tui.pruned", map[string]any{"Count": len(dropped)}, len(dropped)), false)
		}
		m.applyFilter()
		return m, waitForStates(m.updates)

	case closedMsg:
		err := errors.New("subscription closed")
		if m.connErr != nil && m.connErr() != nil {
			err = m.connErr()
		}
		m.setNotice(i18n.T("tui.disconnected", map[string]any{"Error": err.Error()}), true)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleCardKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m Model) handleCardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		// If filter has text, clear it; otherwise quit
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case " ", "tab":
		pending := m.currentView().Pending
		if m.cursor < len(pending) {
			row := pending[m.cursor]
			m.card.OnCheckboxChange(row.EntityID, !row.Checked)
		}

	case "enter", "u":
		if !m.card.Render(m.states).ShowAction {
			return m, nil
		}
		m.dispatch()

	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil

	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// dispatch runs on the update loop so the card only ever sees one event at a time
func (m *Model) dispatch() {
	count := len(m.card.Selected())

	ctx, cancel := context.WithTimeout(m.ctx, dispatchTimeout)
	defer cancel()
	if err := m.card.UpdateSelected(ctx); err != nil {
		m.setNotice(i18n.T("tui.dispatchFailed", map[string]any{"Error": err.Error()}), true)
		return
	}
	m.setNotice(i18n.T("tui.dispatched", map[string]any{"Count": count}, count), false)
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) applyFilter() {
	var rows []int
	if snap, ok := m.states.Lookup(m.card.Config().Entity); ok {
		for _, r := range search.FuzzySearch(snap.PendingUpdates, m.filter.Value()) {
			rows = append(rows, r.Index)
		}
	}
	m.rows = rows

	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

// currentView renders the card and keeps only the pending rows passing the filter
func (m Model) currentView() card.View {
	v := m.card.Render(m.states)
	if v.Mode != card.ModeNormal {
		return v
	}

	pending := make([]card.PendingRow, 0, len(m.rows))
	for _, idx := range m.rows {
		if idx < len(v.Pending) {
			pending = append(pending, v.Pending[idx])
		}
	}
	v.Pending = pending
	return v
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if !m.ready {
		b.WriteString(messageStyle.Render(i18n.T("tui.waiting", nil)))
	} else {
		width := 0
		if m.width > 0 {
			width = min(m.width-1, 100)
		}
		b.WriteString(renderCard(m.currentView(), width, m.cursor))
	}
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if m.notice != "" {
		if m.noticeErr {
			b.WriteString(errorStyle.Render(m.notice))
		} else {
			b.WriteString(statusStyle.Render(m.notice))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(i18n.T("tui.help", nil)))
	return b.String()
}

// Run hosts c in the terminal until the user quits or ctx ends
func Run(ctx context.Context, c *card.Card, updates <-chan card.States, connErr func() error) error {
	model := NewModel(ctx, c, updates, connErr)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
