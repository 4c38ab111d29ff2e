package store

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches the key files of a FileKV and reports which key changed.
// It lets a running dashboard pick up edits made by another dealwatch process.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	keys     map[string]string // file name -> key
	onChange func(key string)
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewFileWatcher creates a watcher for the given keys of kv.
// onChange is called from the watcher goroutine.
func NewFileWatcher(kv *FileKV, onChange func(key string), keys ...string) (*FileWatcher, error) {
	names := make(map[string]string, len(keys))
	for _, key := range keys {
		path, err := kv.Path(key)
		if err != nil {
			return nil, err
		}
		names[filepath.Base(path)] = key
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher:  watcher,
		dir:      kv.Dir(),
		keys:     names,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The directory must exist.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	// Watch the directory: FileKV replaces files by rename.
	if err := fw.watcher.Add(fw.dir); err != nil {
		return err
	}

	go fw.watch()
	return nil
}

func (fw *FileWatcher) watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			key, tracked := fw.keys[filepath.Base(event.Name)]
			if !tracked {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("key file changed", "key", key, "file", event.Name)
				if fw.onChange != nil {
					fw.onChange(key)
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)

		case <-fw.done:
			return
		}
	}
}

// Stop stops the watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return nil
	}

	fw.running = false
	close(fw.done)
	return fw.watcher.Close()
}
