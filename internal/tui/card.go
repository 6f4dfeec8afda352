package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/egoavara/smart-updater/internal/card"
	"github.com/egoavara/smart-updater/internal/i18n"
)

// Styles
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	cursorCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// RenderCard draws a card view as terminal text. width <= 0 lets the content decide.
func RenderCard(v card.View, width int) string {
	return renderCard(v, width, -1)
}

// renderCard highlights the pending row at cursor; a negative cursor highlights nothing
func renderCard(v card.View, width, cursor int) string {
	style := cardStyle
	inner := 0
	if width > 0 {
		style = style.Width(width - style.GetHorizontalBorderSize())
		inner = width - style.GetHorizontalFrameSize()
	}

	if v.Mode == card.ModeEntityNotFound {
		return style.Render(warningStyle.Render(i18n.T("card.entityNotFound", map[string]any{"Entity": v.Entity})))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(i18n.T("card.title", nil)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(i18n.T("card.status", map[string]any{
		"Status": v.Status,
		"Count":  v.PendingCount,
	}, v.PendingCount)))
	b.WriteString("\n\n")

	switch {
	case v.HasPending():
		b.WriteString(pendingTable(v.Pending, cursor, inner).Render())
	case v.PendingCount > 0:
		// every pending row is hidden by the filter
		b.WriteString(messageStyle.Render(i18n.T("tui.noMatches", nil)))
	default:
		b.WriteString(messageStyle.Render(i18n.T("card.noUpdates", nil)))
	}
	b.WriteString("\n")

	if v.ShowAction {
		b.WriteString("\n")
		button := actionStyle.Render(i18n.T("card.updateSelected", nil))
		if inner > 0 {
			button = lipgloss.PlaceHorizontal(inner, lipgloss.Right, button)
		}
		b.WriteString(button)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(i18n.T("history.title", nil)))
	b.WriteString("\n")
	if v.HasHistory() {
		b.WriteString(historyTable(v.History, inner).Render())
	} else {
		b.WriteString(messageStyle.Render(i18n.T("card.noHistory", nil)))
	}

	return style.Render(b.String())
}

func newTable(width int) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderRow(true)
	if width > 0 {
		t = t.Width(width)
	}
	return t
}

func pendingTable(rows []card.PendingRow, cursor, width int) *table.Table {
	t := newTable(width).
		Headers("", i18n.T("card.col.name", nil), i18n.T("card.col.installed", nil), i18n.T("card.col.available", nil)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case row == cursor:
				return cursorCellStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		t.Row(checkbox(r.Checked), displayName(r.Name, r.EntityID), r.InstalledVersion, r.LatestVersion)
	}
	return t
}

func historyTable(rows []card.HistoryRow, width int) *table.Table {
	t := newTable(width).
		Headers(
			i18n.T("history.col.name", nil),
			i18n.T("history.col.old", nil),
			i18n.T("history.col.new", nil),
			i18n.T("history.col.when", nil),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		t.Row(r.Name, r.OldVersion, r.NewVersion, r.When)
	}
	return t
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func displayName(name, entityID string) string {
	if name == "" {
		return entityID
	}
	return name
}
