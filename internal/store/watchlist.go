package store

import (
	"slices"
)

// Watchlist is an ordered set of item identifiers.
// Uniqueness is enforced on insert and every mutation is persisted immediately.
type Watchlist struct {
	kv  KV
	key string
	ids []string
}

// NewWatchlist loads the watchlist from kv. Corrupt or missing data yields an empty list.
func NewWatchlist(kv KV, namespace string) *Watchlist {
	w := &Watchlist{
		kv:  kv,
		key: WatchlistKey(namespace),
	}
	w.Reload()
	return w
}

// Reload re-reads the watchlist from storage.
func (w *Watchlist) Reload() []string {
	loaded := LoadJSON(w.kv, w.key, []string{})

	// A hand-edited file may carry duplicates; keep the first occurrence.
	ids := make([]string, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for _, id := range loaded {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	w.ids = ids
	return w.List()
}

// Add appends id. Adding an id that is already present is a no-op.
func (w *Watchlist) Add(id string) error {
	if slices.Contains(w.ids, id) {
		return nil
	}
	w.ids = append(w.ids, id)
	return w.save()
}

// Remove deletes id. Removing an absent id is a no-op that still persists.
func (w *Watchlist) Remove(id string) error {
	w.ids = slices.DeleteFunc(w.ids, func(x string) bool { return x == id })
	return w.save()
}

// Toggle adds id if absent and removes it otherwise.
// Returns true if the id was added.
func (w *Watchlist) Toggle(id string) (bool, error) {
	if w.Contains(id) {
		return false, w.Remove(id)
	}
	return true, w.Add(id)
}

// Contains reports whether id is in the watchlist.
func (w *Watchlist) Contains(id string) bool {
	return slices.Contains(w.ids, id)
}

// List returns a copy of the ids in insertion order.
func (w *Watchlist) List() []string {
	return slices.Clone(w.ids)
}

// Len returns the number of ids.
func (w *Watchlist) Len() int {
	return len(w.ids)
}

// Key returns the storage key used for the watchlist.
func (w *Watchlist) Key() string {
	return w.key
}

func (w *Watchlist) save() error {
	return SaveJSON(w.kv, w.key, w.ids)
}
