package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/i18n"
)

// PolicyOption is one selectable selection policy
type PolicyOption struct {
	Policy      card.SelectionPolicy
	Label       string
	Description string
}

// PolicySelectorModel is the bubbletea model for choosing a selection policy
type PolicySelectorModel struct {
	options   []PolicyOption
	cursor    int
	selected  card.SelectionPolicy
	quitting  bool
	confirmed bool
}

// Policy selector styles
var (
	policyOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	policySelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true).
				Padding(0, 1)

	policyDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginLeft(4)

	policyDescSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				MarginLeft(4)

	policyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// NewPolicySelectorModel creates a selector with the cursor on current
func NewPolicySelectorModel(current card.SelectionPolicy) PolicySelectorModel {
	options := []PolicyOption{
		{
			Policy:      card.PolicyPrune,
			Label:       i18n.T("policy.prune.label", nil),
			Description: i18n.T("policy.prune.desc", nil),
		},
		{
			Policy:      card.PolicyPreserve,
			Label:       i18n.T("policy.preserve.label", nil),
			Description: i18n.T("policy.preserve.desc", nil),
		},
	}

	m := PolicySelectorModel{options: options, selected: card.PolicyPrune}
	for i, opt := range options {
		if opt.Policy == current {
			m.cursor = i
			m.selected = current
		}
	}
	return m
}

func (m PolicySelectorModel) Init() tea.Cmd {
	return nil
}

func (m PolicySelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case "enter", " ":
		m.selected = m.options[m.cursor].Policy
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m PolicySelectorModel) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("policy.title", nil)))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(policySelectedStyle.Render(fmt.Sprintf("▸ %s", opt.Label)))
			b.WriteString("\n")
			b.WriteString(policyDescSelectedStyle.Render(opt.Description))
		} else {
			b.WriteString(policyOptionStyle.Render(fmt.Sprintf("  %s", opt.Label)))
			b.WriteString("\n")
			b.WriteString(policyDescStyle.Render(opt.Description))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render(i18n.T("policy.help", nil)))
	return policyBoxStyle.Render(b.String())
}

// Selected returns the chosen policy
func (m PolicySelectorModel) Selected() card.SelectionPolicy {
	return m.selected
}

// IsConfirmed returns whether the user confirmed a choice
func (m PolicySelectorModel) IsConfirmed() bool {
	return m.confirmed
}

// RunPolicySelector launches the interactive selection policy picker
func RunPolicySelector(current card.SelectionPolicy) (card.SelectionPolicy, bool, error) {
	p := tea.NewProgram(NewPolicySelectorModel(current))

	finalModel, err := p.Run()
	if err != nil {
		return current, false, err
	}

	m := finalModel.(PolicySelectorModel)
	return m.Selected(), m.IsConfirmed(), nil
}
