// Package app holds the dashboard state and the command handlers that mutate it.
//
// A Dashboard is single-writer: every method must be called from one goroutine
// (the UI event loop). Timer callbacks reach it through the scheduler's
// dispatcher, and fetch results come back through ApplyFetch.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/schedule"
	"github.com/jmylchreest/dealwatch/internal/store"
)

// Status and indicator texts.
const (
	StatusLoading = "Loading…"
	StatusError   = "Error"
	StatusIdle    = "Idle"

	SaveStatusSaved    = "Saved"
	SaveStatusNotSaved = "Not saved"
)

// SaveIndicatorWindow is how long "Saved" is shown after a settings save.
const SaveIndicatorWindow = 1500 * time.Millisecond

// Fetcher is the deals source used by the fetch cycle.
type Fetcher interface {
	Fetch(ctx context.Context, limit int, itemQuery string) (input.Result, error)
}

// Options configures a Dashboard.
type Options struct {
	Source    Fetcher
	Settings  *store.SettingsStore
	Watchlist *store.Watchlist
	Scheduler schedule.Scheduler
	Criteria  core.Criteria
	Sort      core.SortOptions
	Debounce  time.Duration
	Now       func() time.Time
	Logger    *slog.Logger

	// Launch runs a fetch off the event loop and hands the outcome back
	// through ApplyFetch on the loop. Nil runs fetches inline.
	Launch func(FetchRequest)
}

// FetchRequest is one fetch-and-render cycle in flight.
type FetchRequest struct {
	Seq      uint64
	Limit    int
	Query    string
	IssuedAt time.Time

	source Fetcher
}

// Do performs the request. Safe to call off the event loop.
func (r FetchRequest) Do(ctx context.Context) (input.Result, error) {
	if r.source == nil {
		return input.Result{}, fmt.Errorf("fetch %d: no source configured", r.Seq)
	}
	return r.source.Fetch(ctx, r.Limit, r.Query)
}

// Dashboard is the application state shared by every surface.
type Dashboard struct {
	opts      Options
	logger    *slog.Logger
	settings  *store.SettingsStore
	watchlist *store.Watchlist
	sched     schedule.Scheduler
	refresher *schedule.Refresher
	debouncer *schedule.Debouncer

	criteria core.Criteria
	sort     core.SortOptions

	items    []model.Deal // Last successful raw item set
	filtered []model.Deal
	hasData  bool
	lastErr  error

	status      string
	footer      string
	lastRefresh time.Time

	seq      uint64 // Last issued request
	applied  uint64 // Highest request applied so far
	inFlight int

	saveStatus string
	saveToken  schedule.Token
	saveArmed  bool

	notes map[string]string
}

// New creates a Dashboard. Settings and Watchlist default to in-memory stores.
func New(opts Options) *Dashboard {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewTimerScheduler(nil)
	}
	if opts.Settings == nil {
		opts.Settings = store.NewSettingsStore(store.NewMemoryKV(), store.DefaultNamespace)
	}
	if opts.Watchlist == nil {
		opts.Watchlist = store.NewWatchlist(store.NewMemoryKV(), store.DefaultNamespace)
	}
	if opts.Criteria == (core.Criteria{}) {
		opts.Criteria = core.DefaultCriteria()
	}
	if opts.Sort.Order == "" {
		opts.Sort.Order = core.SortDesc
	}

	d := &Dashboard{
		opts:       opts,
		logger:     opts.Logger,
		settings:   opts.Settings,
		watchlist:  opts.Watchlist,
		sched:      opts.Scheduler,
		criteria:   opts.Criteria.Normalize(),
		sort:       opts.Sort,
		status:     StatusIdle,
		saveStatus: SaveStatusNotSaved,
		notes:      make(map[string]string),
	}
	d.refresher = schedule.NewRefresher(d.sched, d.requestFetch, d.logger)
	d.debouncer = schedule.NewDebouncer(d.sched, opts.Debounce, d.requestFetch)
	return d
}

// Start issues the first fetch and arms auto-refresh from the stored settings.
func (d *Dashboard) Start() {
	d.requestFetch()
	d.refresher.Configure(d.settings.Get())
}

// Stop tears down every timer owned by the dashboard.
func (d *Dashboard) Stop() {
	d.refresher.Stop()
	d.debouncer.Cancel()
	if d.saveArmed {
		d.sched.Cancel(d.saveToken)
		d.saveArmed = false
	}
}

// OnFilterChanged stores new criteria, re-filters the current items and
// schedules a debounced fetch.
func (d *Dashboard) OnFilterChanged(c core.Criteria) {
	d.criteria = c.Normalize()
	d.refilter()
	if d.hasData && d.lastErr == nil && d.inFlight == 0 {
		d.status = d.showingStatus()
	}
	d.debouncer.Trigger()
}

// OnSortChanged changes the table ordering. No fetch is issued.
func (d *Dashboard) OnSortChanged(opts core.SortOptions) {
	d.sort = opts
}

// OnSettingsSaved applies a partial settings update, persists it and
// reconfigures auto-refresh. The refresher is reconfigured even if
// persisting fails.
func (d *Dashboard) OnSettingsSaved(u model.SettingsUpdate) (model.Settings, error) {
	s, err := d.settings.Set(u)
	d.refresher.Configure(s)

	if err != nil {
		d.logger.Warn("failed to save settings", "error", err)
		d.setSaveStatus(SaveStatusNotSaved)
		return s, err
	}

	d.logger.Debug("settings saved", "auto_refresh", s.AutoRefresh, "interval_sec", s.IntervalSec)
	d.setSaveStatus(SaveStatusSaved)
	d.saveToken = d.sched.Schedule(SaveIndicatorWindow, func() {
		d.saveArmed = false
		d.saveStatus = SaveStatusNotSaved
	})
	d.saveArmed = true
	return s, nil
}

func (d *Dashboard) setSaveStatus(s string) {
	if d.saveArmed {
		d.sched.Cancel(d.saveToken)
		d.saveArmed = false
	}
	d.saveStatus = s
}

// OnWatchToggled adds id to the watchlist if absent, removes it otherwise.
func (d *Dashboard) OnWatchToggled(id string) (bool, error) {
	added, err := d.watchlist.Toggle(id)
	if err != nil {
		d.logger.Warn("failed to save watchlist", "id", id, "error", err)
		return added, err
	}
	if !added {
		delete(d.notes, id)
	}
	return added, nil
}

// OnWatchAdded adds id to the watchlist.
func (d *Dashboard) OnWatchAdded(id string) error {
	if err := d.watchlist.Add(id); err != nil {
		d.logger.Warn("failed to save watchlist", "id", id, "error", err)
		return err
	}
	return nil
}

// OnWatchRemoved removes id from the watchlist and drops its note.
func (d *Dashboard) OnWatchRemoved(id string) error {
	delete(d.notes, id)
	if err := d.watchlist.Remove(id); err != nil {
		d.logger.Warn("failed to save watchlist", "id", id, "error", err)
		return err
	}
	return nil
}

// OnRefreshRequested runs a fetch-and-render cycle now.
func (d *Dashboard) OnRefreshRequested() {
	d.requestFetch()
}

// OnStorageChanged reloads state after another process wrote key.
func (d *Dashboard) OnStorageChanged(key string) {
	switch key {
	case d.watchlist.Key():
		ids := d.watchlist.Reload()
		for id := range d.notes {
			if !d.watchlist.Contains(id) {
				delete(d.notes, id)
			}
		}
		d.logger.Debug("watchlist reloaded", "count", len(ids))
	case d.settings.Key():
		s := d.settings.Reload()
		d.refresher.Configure(s)
		d.logger.Debug("settings reloaded", "auto_refresh", s.AutoRefresh, "interval_sec", s.IntervalSec)
	}
}

// SetNote attaches a session-only note to a watchlist id.
func (d *Dashboard) SetNote(id, note string) {
	if note == "" {
		delete(d.notes, id)
		return
	}
	d.notes[id] = note
}

// Note returns the session note for id.
func (d *Dashboard) Note(id string) string {
	return d.notes[id]
}

func (d *Dashboard) requestFetch() {
	req := d.BeginFetch()
	if d.opts.Launch != nil {
		d.opts.Launch(req)
		return
	}
	res, err := req.Do(context.Background())
	d.ApplyFetch(req, res, err)
}

// BeginFetch starts a fetch cycle and returns the request to execute.
func (d *Dashboard) BeginFetch() FetchRequest {
	d.seq++
	d.inFlight++
	d.status = StatusLoading

	req := FetchRequest{
		Seq:      d.seq,
		Limit:    d.criteria.Limit,
		Query:    d.criteria.Query,
		IssuedAt: d.opts.Now(),
		source:   d.opts.Source,
	}
	d.logger.Debug("fetch started", "seq", req.Seq, "limit", req.Limit)
	return req
}

// ApplyFetch records the outcome of req. Responses are applied in arrival
// order, so a slow stale response can overwrite a fresher one.
func (d *Dashboard) ApplyFetch(req FetchRequest, res input.Result, err error) {
	if d.inFlight > 0 {
		d.inFlight--
	}
	if req.Seq < d.applied {
		d.logger.Debug("applying out-of-order response", "seq", req.Seq, "latest_applied", d.applied)
	}
	d.applied = max(d.applied, req.Seq)

	if err != nil {
		d.lastErr = err
		d.status = StatusError
		d.footer = "Error: " + err.Error()
		d.logger.Warn("fetch failed", "seq", req.Seq, "error", err)
		return
	}

	d.lastErr = nil
	d.items = res.Items
	d.hasData = true
	d.refilter()

	d.lastRefresh = res.FetchedAt
	if d.lastRefresh.IsZero() {
		d.lastRefresh = d.opts.Now()
	}
	d.status = d.showingStatus()
	d.footer = "Last refresh: " + d.lastRefresh.Format("15:04:05")
	d.logger.Debug("fetch applied", "seq", req.Seq, "request_id", res.RequestID,
		"total", len(d.items), "shown", len(d.filtered))
}

func (d *Dashboard) refilter() {
	d.filtered = core.Filter(d.items, d.criteria)
}

func (d *Dashboard) showingStatus() string {
	return fmt.Sprintf("Showing %d/%d", len(d.filtered), len(d.items))
}

// Criteria returns the current filter criteria.
func (d *Dashboard) Criteria() core.Criteria {
	return d.criteria
}

// Sort returns the current sort options.
func (d *Dashboard) Sort() core.SortOptions {
	return d.sort
}

// Settings returns the current settings.
func (d *Dashboard) Settings() model.Settings {
	return d.settings.Get()
}

// Items returns the last successful raw item set.
func (d *Dashboard) Items() []model.Deal {
	return d.items
}

// Filtered returns the items passing the current criteria, in feed order.
func (d *Dashboard) Filtered() []model.Deal {
	return d.filtered
}

// Watchlist returns the watchlist ids in insertion order.
func (d *Dashboard) Watchlist() []string {
	return d.watchlist.List()
}

// IsWatched reports whether id is on the watchlist.
func (d *Dashboard) IsWatched(id string) bool {
	return d.watchlist.Contains(id)
}

// Err returns the error of the last applied fetch, or nil.
func (d *Dashboard) Err() error {
	return d.lastErr
}

// RefreshState returns the auto-refresh state.
func (d *Dashboard) RefreshState() schedule.State {
	return d.refresher.State()
}

// InFlight returns the number of fetches not yet applied.
func (d *Dashboard) InFlight() int {
	return d.inFlight
}
