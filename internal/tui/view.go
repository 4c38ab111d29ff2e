package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/dealwatch/internal/app"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/schedule"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	savedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	formStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
)

// chromeHeight is the number of lines around the table.
const chromeHeight = 7

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("8")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Bold(false)
	return s
}

// dealColumns sizes the deals table columns for width.
func dealColumns(width int) []table.Column {
	fixed := 2 + 10 + 10 + 8 + 6 + 12 + 5
	name := max(16, width-fixed-16)
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: name},
		{Title: "Price", Width: 10},
		{Title: "Est", Width: 10},
		{Title: "Margin", Width: 8},
		{Title: "Score", Width: 6},
		{Title: "Seller", Width: 12},
		{Title: "Age", Width: 5},
	}
}

// watchColumns sizes the watchlist table columns for width.
func watchColumns(width int) []table.Column {
	flex := max(12, (width-10-8)/3)
	return []table.Column{
		{Title: "ID", Width: flex},
		{Title: "Name", Width: flex},
		{Title: "Price", Width: 10},
		{Title: "Note", Width: flex},
	}
}

func (m *Model) resize() {
	h := max(3, m.height-chromeHeight)
	m.deals.SetColumns(dealColumns(m.width))
	m.deals.SetHeight(h)
	m.deals.SetWidth(m.width)
	m.watch.SetColumns(watchColumns(m.width))
	m.watch.SetHeight(h)
	m.watch.SetWidth(m.width)
	m.help.Width = m.width
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.mode == ModeHelp {
		return m.viewHelp()
	}

	v := m.dash.View()

	var sb strings.Builder
	sb.WriteString(m.viewHeader(v) + "\n")
	sb.WriteString(m.viewFilterBar() + "\n")

	if m.tab == TabWatchlist {
		sb.WriteString(m.watch.View() + "\n")
	} else {
		sb.WriteString(m.deals.View() + "\n")
	}

	switch m.mode {
	case ModeSettings:
		sb.WriteString(m.viewSettingsForm(v) + "\n")
	case ModeNote:
		sb.WriteString(formStyle.Render(m.note.View()) + "\n")
	default:
		sb.WriteString(m.viewSettingsLine(v) + "\n")
	}

	sb.WriteString(m.viewFooter(v) + "\n")

	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		sb.WriteString(style.Render(m.statusMsg))
	} else {
		sb.WriteString(m.buildKeybindBar(m.width))
	}

	return sb.String()
}

func (m Model) viewHeader(v app.View) string {
	tabs := []string{}
	for _, t := range []Tab{TabDeals, TabWatchlist} {
		title := t.String()
		if t == TabWatchlist {
			title = fmt.Sprintf("%s (%d)", title, len(m.dash.Watchlist()))
		}
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := v.Status
	if v.Status == app.StatusError {
		status = errorStyle.Render(status)
	}
	right := status
	if v.Sort.Field != core.SortNone {
		right = dimStyle.Render(fmt.Sprintf("sort: %s %s  ", v.Sort.Field, v.Sort.Order)) + status
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) viewFilterBar() string {
	parts := make([]string, 0, len(m.filters))
	for i := range m.filters {
		if m.mode == ModeFilter {
			parts = append(parts, m.filters[i].View())
			continue
		}
		val := m.filters[i].Value()
		if val == "" {
			val = "-"
		}
		parts = append(parts, dimStyle.Render(m.filters[i].Prompt)+val)
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewSettingsLine(v app.View) string {
	auto := "off"
	if v.Settings.AutoRefresh {
		auto = fmt.Sprintf("every %ds", model.ClampInterval(v.Settings.IntervalSec))
	}
	line := dimStyle.Render("Auto-refresh: ") + auto
	if v.Refresh == schedule.StateActive {
		line += dimStyle.Render(" (active)")
	}
	return line
}

func (m Model) viewSettingsForm(v app.View) string {
	check := "[ ]"
	if m.autoRefresh {
		check = "[x]"
	}
	save := dimStyle.Render(v.SaveStatus)
	if v.SaveStatus == app.SaveStatusSaved {
		save = savedStyle.Render(v.SaveStatus)
	}
	body := fmt.Sprintf("%s Auto-refresh   %s   %s", check, m.interval.View(), save)
	api := dimStyle.Render("API base: ") + m.apiBase + dimStyle.Render(" (read-only)")
	if m.requireQuery {
		api += dimStyle.Render("  item query required")
	}
	return formStyle.Render(body + "\n" + api)
}

func (m Model) viewFooter(v app.View) string {
	if strings.HasPrefix(v.Footer, "Error:") {
		return errorStyle.Render(v.Footer)
	}
	if v.LastRefresh.IsZero() {
		return dimStyle.Render(v.Footer)
	}
	ago := humanize.RelTime(v.LastRefresh, m.now(), "ago", "from now")
	return dimStyle.Render(fmt.Sprintf("%s (%s)", v.Footer, ago))
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys) + "\n\n"
	s += dimStyle.Render("Press ? or esc to return")
	return s
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar for the current mode that fits within width.
func (m Model) buildKeybindBar(width int) string {
	var binds []keybind

	switch {
	case m.mode == ModeFilter:
		binds = []keybind{
			{"enter", "done", 1},
			{"tab", "next field", 2},
			{"esc", "back", 3},
		}
	case m.mode == ModeSettings:
		binds = []keybind{
			{"enter", "save", 1},
			{"space", "toggle auto-refresh", 2},
			{"esc", "back", 3},
		}
	case m.mode == ModeNote:
		binds = []keybind{
			{"enter", "save note", 1},
			{"esc", "cancel", 2},
		}
	case m.tab == TabWatchlist:
		binds = []keybind{
			{"q", "quit", 1},
			{"tab", "deals", 2},
			{"x", "remove", 3},
			{"n", "note", 4},
			{"c", "copy link", 5},
			{"?", "help", 6},
		}
	default:
		binds = []keybind{
			{"q", "quit", 1},
			{"/", "filter", 2},
			{"w", "watch", 3},
			{"r", "refresh", 4},
			{"?", "help", 5},
			{"tab", "watchlist", 6},
			{"S", "settings", 7},
			{"o", "sort", 8},
			{"c", "copy link", 9},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		if result != "" {
			item = separator + item
		}
		if width > 0 && lipgloss.Width(result)+lipgloss.Width(item) > width {
			break
		}
		result += item
	}

	return dimStyle.Render(result)
}
