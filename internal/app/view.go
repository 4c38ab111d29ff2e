package app

import (
	"time"

	"github.com/jmylchreest/dealwatch/internal/core"
	"github.com/jmylchreest/dealwatch/internal/model"
	"github.com/jmylchreest/dealwatch/internal/render"
	"github.com/jmylchreest/dealwatch/internal/schedule"
)

// View is a snapshot of everything a surface needs to draw the dashboard.
type View struct {
	Status      string
	Footer      string
	SaveStatus  string
	Loading     bool
	LastRefresh time.Time
	Deals       []render.DealRow
	Watch       []render.WatchRow
	Notes       map[string]string
	Criteria    core.Criteria
	Sort        core.SortOptions
	Settings    model.Settings
	Refresh     schedule.State
}

// View builds the current snapshot.
func (d *Dashboard) View() View {
	v := View{
		Status:      d.status,
		Footer:      d.footer,
		SaveStatus:  d.saveStatus,
		Loading:     d.inFlight > 0,
		LastRefresh: d.lastRefresh,
		Criteria:    d.criteria,
		Sort:        d.sort,
		Settings:    d.settings.Get(),
		Refresh:     d.refresher.State(),
		Notes:       make(map[string]string, len(d.notes)),
	}
	for id, note := range d.notes {
		v.Notes[id] = note
	}

	switch {
	case d.lastErr != nil:
		v.Deals = render.ErrorRows()
	case d.hasData:
		v.Deals = render.DealRows(d.filtered, d.watchlist.Contains, d.sort, d.opts.Now())
	default:
		v.Deals = []render.DealRow{}
	}

	v.Watch = render.WatchRows(d.watchlist.List(), d.items)
	return v
}
