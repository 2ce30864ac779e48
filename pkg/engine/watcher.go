package engine

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// snapshotWatcher calls onChange once a burst of writes to a single file has
// settled for the debounce window.
//
// The parent directory is watched rather than the file itself: snapshots are
// replaced by rename, which would drop a watch on the old inode.
type snapshotWatcher struct {
	target   string
	debounce time.Duration
	onChange func()
	fs       *fsnotify.Watcher
}

func newSnapshotWatcher(target string, debounce time.Duration, onChange func()) (*snapshotWatcher, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &snapshotWatcher{
		target:   abs,
		debounce: debounce,
		onChange: onChange,
		fs:       fw,
	}, nil
}

func (w *snapshotWatcher) run(done <-chan struct{}) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("Snapshot watcher error", "error", err)
		case <-timer.C:
			slog.Debug("Canonical graph changed", "path", w.target)
			w.onChange()
		}
	}
}

func (w *snapshotWatcher) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.target {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
}

func (w *snapshotWatcher) close() error {
	return w.fs.Close()
}
