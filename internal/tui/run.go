package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/dealwatch/internal/app"
	"github.com/jmylchreest/dealwatch/internal/config"
	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/schedule"
	"github.com/jmylchreest/dealwatch/internal/store"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config    *config.Config
	Source    app.Fetcher
	KV        store.KV // A *store.FileKV is watched for external changes
	Namespace string
	Logger    *slog.Logger
}

// endpoint is implemented by sources that talk to a remote API.
type endpoint interface {
	BaseURL() string
	RequireQuery() bool
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	kv := opts.KV
	if kv == nil {
		kv = store.NewMemoryKV()
	}
	ns := opts.Namespace
	if ns == "" {
		ns = cfg.Storage.Namespace
	}

	events := NewEventLoop()
	defer events.Close()

	sched := schedule.NewTimerScheduler(events.Dispatch)
	defer sched.Stop()

	fetches := NewFetchQueue(0)
	settings := store.NewSettingsStore(kv, ns)
	watchlist := store.NewWatchlist(kv, ns)

	d := app.New(app.Options{
		Source:    opts.Source,
		Settings:  settings,
		Watchlist: watchlist,
		Scheduler: sched,
		Criteria:  criteriaFromConfig(cfg),
		Sort: core.SortOptions{
			Field: core.ParseSortField(cfg.Sort.Field),
			Order: core.ParseSortOrder(cfg.Sort.Order),
		},
		Debounce: cfg.Refresh.Debounce.Duration(),
		Logger:   logger,
		Launch:   fetches.Push,
	})
	defer d.Stop()

	if fkv, ok := kv.(*store.FileKV); ok {
		watcher, err := store.NewFileWatcher(fkv, func(key string) {
			events.Dispatch(func() { d.OnStorageChanged(key) })
		}, settings.Key(), watchlist.Key())
		if err != nil {
			logger.Warn("failed to create file watcher", "error", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("failed to start file watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	m := New(cfg, d, fetches, events)
	m.useEndpoint(opts.Source)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err := p.Run()
	return err
}

// useEndpoint shows src's API settings when it talks to a remote API.
func (m *Model) useEndpoint(src app.Fetcher) {
	if ep, ok := src.(endpoint); ok {
		m.apiBase = ep.BaseURL()
		m.requireQuery = ep.RequireQuery()
	}
}

func criteriaFromConfig(cfg *config.Config) core.Criteria {
	return core.Criteria{
		Query:     cfg.Filter.Query,
		MinScore:  cfg.Filter.MinScore,
		MinMargin: cfg.Filter.MinMargin,
		Limit:     cfg.Filter.Limit,
	}.Normalize()
}
