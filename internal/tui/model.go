// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/dealwatch/internal/app"
	"github.com/jmylchreest/dealwatch/internal/config"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/render"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeFilter
	ModeSettings
	ModeNote
	ModeHelp
)

// Tab selects the visible table.
type Tab int

const (
	TabDeals Tab = iota
	TabWatchlist
)

// Filter form fields, in focus order.
const (
	fieldQuery = iota
	fieldMinScore
	fieldMinMargin
	fieldLimit
	filterFieldCount
)

// Model is the main TUI model.
type Model struct {
	cfg     *config.Config
	dash    *app.Dashboard
	fetches *FetchQueue
	events  *EventLoop
	now     func() time.Time

	mode     Mode
	prevMode Mode
	tab      Tab

	// Components
	deals       table.Model
	watch       table.Model
	filters     []textinput.Model
	filterFocus int
	interval    textinput.Model
	autoRefresh bool // Settings form state, applied on save
	note        textinput.Model
	noteID      string
	help        help.Model

	// Rows currently shown, parallel to the table rows
	dealRows  []render.DealRow
	watchRows []render.WatchRow

	width  int
	height int
	ready  bool

	keys KeyMap

	// API endpoint, shown read-only in the settings form
	apiBase      string
	requireQuery bool

	// Transient status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model around an existing dashboard.
// fetches must be the dashboard's launch queue; events may be nil.
func New(cfg *config.Config, d *app.Dashboard, fetches *FetchQueue, events *EventLoop) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	c := d.Criteria()
	filters := make([]textinput.Model, filterFieldCount)
	for i := range filters {
		ti := textinput.New()
		ti.CharLimit = 64
		filters[i] = ti
	}
	filters[fieldQuery].Prompt = "Query: "
	filters[fieldQuery].Placeholder = "item name"
	filters[fieldQuery].SetValue(c.Query)
	filters[fieldQuery].Width = 24
	filters[fieldMinScore].Prompt = "Min score: "
	filters[fieldMinScore].Placeholder = "0"
	filters[fieldMinScore].SetValue(formatNumber(c.MinScore))
	filters[fieldMinScore].Width = 6
	filters[fieldMinMargin].Prompt = "Min margin %: "
	filters[fieldMinMargin].Placeholder = "0"
	filters[fieldMinMargin].SetValue(formatNumber(c.MinMargin))
	filters[fieldMinMargin].Width = 6
	filters[fieldLimit].Prompt = "Limit: "
	filters[fieldLimit].Placeholder = strconv.Itoa(core.DefaultLimit)
	filters[fieldLimit].SetValue(strconv.Itoa(c.Limit))
	filters[fieldLimit].Width = 5

	s := d.Settings()
	interval := textinput.New()
	interval.Prompt = "Interval (s): "
	interval.CharLimit = 6
	interval.Width = 6
	interval.SetValue(strconv.Itoa(s.IntervalSec))

	note := textinput.New()
	note.Prompt = "Note: "
	note.CharLimit = 200
	note.Width = 48

	deals := table.New(table.WithColumns(dealColumns(80)), table.WithFocused(true))
	deals.SetStyles(tableStyles())
	watch := table.New(table.WithColumns(watchColumns(80)), table.WithFocused(true))
	watch.SetStyles(tableStyles())

	h := help.New()
	h.ShowAll = true

	m := Model{
		cfg:          cfg,
		dash:         d,
		fetches:      fetches,
		events:       events,
		now:          time.Now,
		mode:         ModeBrowse,
		tab:          TabDeals,
		deals:        deals,
		watch:        watch,
		filters:      filters,
		interval:     interval,
		autoRefresh:  s.AutoRefresh,
		note:         note,
		help:         h,
		keys:         DefaultKeyMap(),
		apiBase:      cfg.API.BaseURL,
		requireQuery: cfg.API.RequireQuery,
	}
	m.syncTables()
	return m
}

// Init starts the dashboard: first fetch, auto-refresh and event pumps.
func (m Model) Init() tea.Cmd {
	m.dash.Start()

	cmds := m.fetches.commands()
	if m.events != nil {
		cmds = append(cmds, m.events.wait)
	}
	cmds = append(cmds, tick())
	return tea.Batch(cmds...)
}

type tickMsg time.Time

// tick re-renders once a second so ages and "refreshed ago" stay current.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	what string
	err  error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case dispatchMsg:
		msg.fn()
		if m.events != nil {
			cmds = append(cmds, m.events.wait)
		}

	case fetchResultMsg:
		m.dash.ApplyFetch(msg.req, msg.res, msg.err)

	case tickMsg:
		cmds = append(cmds, tick())

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		cmds = append(cmds, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		}))

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false

	case copyResultMsg:
		if msg.err != nil {
			cmds = append(cmds, statusCmd("Copy failed: "+msg.err.Error(), true))
		} else {
			cmds = append(cmds, statusCmd("Copied "+msg.what+" to clipboard", false))
		}
	}

	cmds = append(cmds, m.fetches.commands()...)
	m.syncTables()
	return m, tea.Batch(cmds...)
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeSettings:
		return m.handleSettingsKey(msg)
	case ModeNote:
		return m.handleNoteKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.mode = m.prevMode
		}
		return m, nil
	}

	return m.handleBrowseKey(msg)
}

// handleBrowseKey handles keys while a table has focus.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		if m.tab == TabDeals {
			m.tab = TabWatchlist
		} else {
			m.tab = TabDeals
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.mode = ModeFilter
		cmd := m.focusFilter(m.filterFocus)
		return m, cmd

	case key.Matches(msg, m.keys.Settings):
		s := m.dash.Settings()
		m.autoRefresh = s.AutoRefresh
		m.interval.SetValue(strconv.Itoa(s.IntervalSec))
		m.mode = ModeSettings
		cmd := m.interval.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		m.dash.OnRefreshRequested()
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		opts := m.dash.Sort()
		opts.Field = core.NextSortField(opts.Field)
		m.dash.OnSortChanged(opts)
		return m, nil

	case key.Matches(msg, m.keys.SortOrder):
		opts := m.dash.Sort()
		if opts.Order == core.SortAsc {
			opts.Order = core.SortDesc
		} else {
			opts.Order = core.SortAsc
		}
		m.dash.OnSortChanged(opts)
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		return m, m.copyVisible("json")

	case key.Matches(msg, m.keys.CopyAllYAML):
		return m, m.copyVisible("yaml")
	}

	if m.tab == TabWatchlist {
		return m.handleWatchKey(msg)
	}
	return m.handleDealsKey(msg)
}

func (m Model) handleDealsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Watch):
		row, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		added, err := m.dash.OnWatchToggled(row.Key)
		if err != nil {
			return m, statusCmd("Failed to save watchlist: "+err.Error(), true)
		}
		if added {
			return m, statusCmd("Watching "+row.Name, false)
		}
		return m, statusCmd("Stopped watching "+row.Name, false)

	case key.Matches(msg, m.keys.CopyLink):
		row, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		return m, m.copyLink(row.Link)
	}

	var cmd tea.Cmd
	m.deals, cmd = m.deals.Update(msg)
	return m, cmd
}

func (m Model) handleWatchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Remove), key.Matches(msg, m.keys.Watch):
		row, ok := m.selectedWatch()
		if !ok {
			return m, nil
		}
		if err := m.dash.OnWatchRemoved(row.ID); err != nil {
			return m, statusCmd("Failed to save watchlist: "+err.Error(), true)
		}
		return m, statusCmd("Removed "+row.ID, false)

	case key.Matches(msg, m.keys.Note):
		row, ok := m.selectedWatch()
		if !ok {
			return m, nil
		}
		m.noteID = row.ID
		m.note.SetValue(m.dash.Note(row.ID))
		m.mode = ModeNote
		cmd := m.note.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CopyLink):
		row, ok := m.selectedWatch()
		if !ok {
			return m, nil
		}
		return m, m.copyLink(row.Link)
	}

	var cmd tea.Cmd
	m.watch, cmd = m.watch.Update(msg)
	return m, cmd
}

// handleFilterKey handles keys while the filter form has focus.
// Every edit is reported to the dashboard as a filter change.
func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Submit):
		m.filters[m.filterFocus].Blur()
		m.mode = ModeBrowse
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		cmd := m.focusFilter((m.filterFocus + 1) % filterFieldCount)
		return m, cmd
	case key.Matches(msg, m.keys.PrevField):
		cmd := m.focusFilter((m.filterFocus + filterFieldCount - 1) % filterFieldCount)
		return m, cmd
	}

	before := m.filters[m.filterFocus].Value()
	var cmd tea.Cmd
	m.filters[m.filterFocus], cmd = m.filters[m.filterFocus].Update(msg)
	if m.filters[m.filterFocus].Value() != before {
		m.dash.OnFilterChanged(m.criteria())
	}
	return m, cmd
}

// focusFilter moves focus to field i.
func (m *Model) focusFilter(i int) tea.Cmd {
	m.filters[m.filterFocus].Blur()
	m.filterFocus = i
	return m.filters[i].Focus()
}

func (m Model) criteria() core.Criteria {
	return core.ParseCriteria(
		m.filters[fieldQuery].Value(),
		m.filters[fieldMinScore].Value(),
		m.filters[fieldMinMargin].Value(),
		m.filters[fieldLimit].Value(),
	)
}

// handleSettingsKey handles keys in the settings form.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.interval.Blur()
		m.mode = ModeBrowse
		return m, nil

	case key.Matches(msg, m.keys.ToggleAuto):
		m.autoRefresh = !m.autoRefresh
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		sec, err := strconv.Atoi(strings.TrimSpace(m.interval.Value()))
		if err != nil {
			sec = model.DefaultIntervalSec
		}
		auto := m.autoRefresh
		s, err := m.dash.OnSettingsSaved(model.SettingsUpdate{AutoRefresh: &auto, IntervalSec: &sec})
		m.interval.SetValue(strconv.Itoa(s.IntervalSec))
		if err != nil {
			return m, statusCmd("Failed to save settings: "+err.Error(), true)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.interval, cmd = m.interval.Update(msg)
	return m, cmd
}

// handleNoteKey handles keys while editing a watchlist note.
func (m Model) handleNoteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.note.Blur()
		m.mode = ModeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.dash.SetNote(m.noteID, strings.TrimSpace(m.note.Value()))
		m.note.Blur()
		m.mode = ModeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) selectedDeal() (render.DealRow, bool) {
	i := m.deals.Cursor()
	if i < 0 || i >= len(m.dealRows) || m.dealRows[i].IsPlaceholder() {
		return render.DealRow{}, false
	}
	return m.dealRows[i], true
}

func (m Model) selectedWatch() (render.WatchRow, bool) {
	i := m.watch.Cursor()
	if i < 0 || i >= len(m.watchRows) || m.watchRows[i].IsPlaceholder() {
		return render.WatchRow{}, false
	}
	return m.watchRows[i], true
}

// visibleDeals returns the filtered deals in display order.
func (m Model) visibleDeals() []model.Deal {
	deals := make([]model.Deal, len(m.dash.Filtered()))
	copy(deals, m.dash.Filtered())
	core.Sort(deals, m.dash.Sort())
	return deals
}

func (m Model) copyLink(link string) tea.Cmd {
	if link == "" {
		return statusCmd("No trade link for this item", true)
	}
	return m.copyToClipboard(link, "trade link")
}

func (m Model) copyVisible(format string) tea.Cmd {
	text, err := marshalDeals(m.visibleDeals(), format)
	if err != nil {
		return statusCmd(err.Error(), true)
	}
	return m.copyToClipboard(text, strings.ToUpper(format))
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text, what string) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		return copyResultMsg{what: what, err: copyText(text, cfg)}
	}
}

// syncTables rebuilds table rows from the dashboard view.
func (m *Model) syncTables() {
	v := m.dash.View()

	m.dealRows = v.Deals
	rows := make([]table.Row, 0, len(v.Deals))
	for _, r := range v.Deals {
		if r.IsPlaceholder() {
			rows = append(rows, table.Row{"", r.Message, "", "", "", "", "", ""})
			continue
		}
		mark := ""
		if r.Watched {
			mark = "★"
		}
		rows = append(rows, table.Row{mark, r.Name, r.Price, r.Estimate, r.Margin, r.Score, r.Seller, r.Age})
	}
	m.deals.SetRows(rows)

	m.watchRows = v.Watch
	wrows := make([]table.Row, 0, len(v.Watch))
	for _, r := range v.Watch {
		if r.IsPlaceholder() {
			wrows = append(wrows, table.Row{r.Message, "", "", ""})
			continue
		}
		wrows = append(wrows, table.Row{r.ID, r.Name, r.Price, v.Notes[r.ID]})
	}
	m.watch.SetRows(wrows)
}

func formatNumber(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Mode returns the current UI mode.
func (m Model) Mode() Mode {
	return m.mode
}

// String returns the tab title.
func (t Tab) String() string {
	switch t {
	case TabWatchlist:
		return "Watchlist"
	default:
		return "Deals"
	}
}
