package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/dealwatch/internal/adapter/input"
	"github.com/jmylchreest/dealwatch/internal/app"
	"github.com/jmylchreest/dealwatch/internal/config"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/schedule"
	"github.com/jmylchreest/dealwatch/internal/store"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	items []model.Deal
	calls int
}

func (s *stubSource) Fetch(_ context.Context, _ int, _ string) (input.Result, error) {
	s.calls++
	return input.Result{Items: s.items, FetchedAt: epoch}, nil
}

type harness struct {
	m       Model
	dash    *app.Dashboard
	clock   *schedule.ManualClock
	fetches *FetchQueue
	src     *stubSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithKV(t, store.NewMemoryKV())
}

func newHarnessWithKV(t *testing.T, kv store.KV) *harness {
	t.Helper()
	clock := schedule.NewManualClock(epoch)
	fetches := NewFetchQueue(0)
	src := &stubSource{items: []model.Deal{
		{ID: "s1", Name: "Sapphire Ring", Score: 80, MarginPct: 12, TradeURL: "https://trade.example/s1"},
		{ID: "t1", Name: "Topaz Ring", Score: 40, MarginPct: 5},
	}}
	d := app.New(app.Options{
		Source:    src,
		Settings:  store.NewSettingsStore(kv, "v13"),
		Watchlist: store.NewWatchlist(kv, "v13"),
		Scheduler: clock,
		Now:       clock.Now,
		Launch:    fetches.Push,
	})
	t.Cleanup(d.Stop)

	m := New(config.DefaultConfig(), d, fetches, nil)
	m.now = clock.Now
	h := &harness{m: m, dash: d, clock: clock, fetches: fetches, src: src}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// runFetches performs every queued request and applies the results.
func (h *harness) runFetches() {
	for _, cmd := range h.m.fetches.commands() {
		h.send(cmd())
	}
}

// apply runs cmd and delivers any fetch results it produces.
// Only use with commands that do not sleep.
func (h *harness) apply(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.apply(c)
		}
	case fetchResultMsg:
		h.send(msg)
	}
}

func (h *harness) start() {
	h.m.dash.Start()
	h.runFetches()
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(keyRunes(string(r)))
	}
}

func TestModel_InitializingBeforeSize(t *testing.T) {
	clock := schedule.NewManualClock(epoch)
	d := app.New(app.Options{Scheduler: clock, Now: clock.Now})
	m := New(nil, d, NewFetchQueue(0), nil)
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_FirstFetchRenders(t *testing.T) {
	h := newHarness(t)
	h.start()

	assert.Equal(t, 1, h.src.calls)
	view := h.m.View()
	assert.Contains(t, view, "Showing 2/2")
	assert.Contains(t, view, "Sapphire Ring")
	assert.Contains(t, view, "Last refresh: 12:00:00")
	require.Len(t, h.m.dealRows, 2)
}

func TestModel_FilterEditsAreDebounced(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("/"))
	assert.Equal(t, ModeFilter, h.m.Mode())

	h.typeText("topaz")
	assert.Equal(t, "topaz", h.dash.Criteria().Query)
	require.Len(t, h.dash.Filtered(), 1)
	assert.Contains(t, h.m.View(), "Showing 1/2")
	assert.Equal(t, 0, h.fetches.Len())

	h.clock.Advance(schedule.DefaultDebounce)
	assert.Equal(t, 1, h.fetches.Len())
	h.runFetches()
	assert.Equal(t, 2, h.src.calls)

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeBrowse, h.m.Mode())
}

func TestModel_DefaultFilterHidesNegativeMargin(t *testing.T) {
	h := newHarness(t)
	h.src.items = append(h.src.items, model.Deal{ID: "b1", Name: "Bent Ring", Score: 60, MarginPct: -5})
	h.start()

	assert.Contains(t, h.m.View(), "Showing 2/3")
	require.Len(t, h.m.dealRows, 2)

	// Focus the min margin field and allow losses down to -10%.
	h.send(keyRunes("/"))
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("-10")
	assert.InDelta(t, -10.0, h.dash.Criteria().MinMargin, 0.001)
	assert.Contains(t, h.m.View(), "Showing 3/3")
}

func TestModel_SettingsLineClampsStoredInterval(t *testing.T) {
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(store.SettingsKey("v13"), `{"autoRefresh":true,"intervalSec":1}`))
	h := newHarnessWithKV(t, kv)

	view := h.m.View()
	assert.Contains(t, view, "Auto-refresh: every 5s")
	assert.NotContains(t, view, "every 1s")
}

func TestModel_SettingsShowEndpoint(t *testing.T) {
	h := newHarness(t)
	h.m.useEndpoint(input.NewHTTPSource(input.HTTPOptions{
		BaseURL:      "https://deals.example",
		RequireQuery: true,
	}))

	h.send(keyRunes("S"))
	view := h.m.View()
	assert.Contains(t, view, "API base: https://deals.example")
	assert.Contains(t, view, "item query required")

	// Sources without an endpoint keep the configured one.
	h.m.useEndpoint(h.src)
	assert.Equal(t, "https://deals.example", h.m.apiBase)
}

func TestModel_FilterFieldsCycle(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("/"))
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.typeText("50")
	assert.InDelta(t, 50.0, h.dash.Criteria().MinScore, 0.001)
	require.Len(t, h.dash.Filtered(), 1)
	assert.Equal(t, "Sapphire Ring", h.dash.Filtered()[0].Name)

	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	h.typeText("q")
	assert.Equal(t, "q", h.dash.Criteria().Query)
	assert.Equal(t, ModeFilter, h.m.Mode(), "q is text while editing")
}

func TestModel_WatchToggle(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("w"))
	assert.True(t, h.dash.IsWatched("s1"))
	assert.True(t, h.m.dealRows[0].Watched)

	h.send(keyRunes("w"))
	assert.False(t, h.dash.IsWatched("s1"))
}

func TestModel_WatchlistTab(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("w"))
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabWatchlist, h.m.tab)

	view := h.m.View()
	assert.Contains(t, view, "Watchlist (1)")
	assert.Contains(t, view, "s1")

	h.send(keyRunes("n"))
	assert.Equal(t, ModeNote, h.m.Mode())
	h.typeText("relist")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "relist", h.dash.Note("s1"))
	assert.Contains(t, h.m.View(), "relist")

	h.send(keyRunes("x"))
	assert.Empty(t, h.dash.Watchlist())
	assert.Contains(t, h.m.View(), "No items in watchlist.")
}

func TestModel_SettingsSave(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("S"))
	assert.Equal(t, ModeSettings, h.m.Mode())

	h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, h.m.autoRefresh)

	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	h.typeText("2")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, h.m.View(), "API base: "+config.DefaultBaseURL)
	assert.NotContains(t, h.m.View(), "item query required")

	s := h.dash.Settings()
	assert.True(t, s.AutoRefresh)
	assert.Equal(t, model.MinIntervalSec, s.IntervalSec)
	assert.Equal(t, "5", h.m.interval.Value())
	assert.Contains(t, h.m.View(), app.SaveStatusSaved)

	h.clock.Advance(app.SaveIndicatorWindow)
	assert.Contains(t, h.m.View(), app.SaveStatusNotSaved)

	h.clock.Advance(5*time.Second - app.SaveIndicatorWindow)
	assert.Equal(t, 1, h.fetches.Len(), "auto-refresh fired")
}

func TestModel_SortCycle(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(keyRunes("o"))
	assert.Equal(t, core.SortByName, h.dash.Sort().Field)

	h.send(keyRunes("O"))
	assert.Equal(t, core.SortAsc, h.dash.Sort().Order)
	assert.Equal(t, "Sapphire Ring", h.m.dealRows[0].Name)
}

func TestModel_RefreshKey(t *testing.T) {
	h := newHarness(t)
	h.start()

	cmd := h.send(keyRunes("r"))
	assert.Contains(t, h.m.View(), app.StatusLoading)
	assert.Equal(t, 1, h.dash.InFlight())

	// The fetch is returned as a command rather than left queued.
	assert.Equal(t, 0, h.fetches.Len())
	h.apply(cmd)
	assert.Equal(t, 2, h.src.calls)
	assert.Equal(t, 0, h.dash.InFlight())
	assert.Contains(t, h.m.View(), "Showing 2/2")
}

func TestModel_DispatchRunsOnLoop(t *testing.T) {
	h := newHarness(t)
	ran := false

	h.send(dispatchMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestModel_HelpToggle(t *testing.T) {
	h := newHarness(t)

	h.send(keyRunes("?"))
	assert.Equal(t, ModeHelp, h.m.Mode())
	assert.Contains(t, h.m.View(), "Keyboard Shortcuts")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowse, h.m.Mode())
}

func TestModel_CopyLinkWithoutLink(t *testing.T) {
	h := newHarness(t)
	h.start()

	h.send(tea.KeyMsg{Type: tea.KeyDown})
	cmd := h.send(keyRunes("c"))
	require.NotNil(t, cmd)
}

func TestEventLoop_DispatchAfterClose(t *testing.T) {
	l := NewEventLoop()
	l.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			l.Dispatch(func() {})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked after Close")
	}
	assert.Nil(t, l.wait())
}

func TestMarshalDeals(t *testing.T) {
	deals := []model.Deal{{ID: "a", Name: "Ruby Ring"}}

	js, err := marshalDeals(deals, "json")
	require.NoError(t, err)
	assert.Contains(t, js, `"name": "Ruby Ring"`)

	ym, err := marshalDeals(deals, "yaml")
	require.NoError(t, err)
	assert.Contains(t, ym, "name: Ruby Ring")
}
