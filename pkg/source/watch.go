package source

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/sitegraph/pkg/graph"
)

// DefaultWatchDebounce coalesces the burst of events an editor save makes.
const DefaultWatchDebounce = 100 * time.Millisecond

// Update is one reload result: a snapshot, or the error reading it.
type Update struct {
	Snapshot graph.Snapshot
	Err      error
}

// Watcher reloads a snapshot file whenever it is written, created or
// renamed into place.
type Watcher struct {
	src      *FileSource
	debounce time.Duration
	logger   *log.Logger
	updates  chan Update
}

// NewWatcher watches src. A non-positive debounce uses
// DefaultWatchDebounce.
func NewWatcher(src *FileSource, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		src:      src,
		debounce: debounce,
		logger:   logger,
		updates:  make(chan Update, 1),
	}
}

// Updates delivers reload results. It is closed when Run returns.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Run watches until ctx is done. The parent directory is watched, not the
// file, so atomic rename-into-place saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	target, err := filepath.Abs(w.src.Path())
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return err
	}
	w.logger.Debug("watching snapshot", "path", target)

	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, target) {
				continue
			}
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			snap, err := w.src.Fetch(ctx)
			if err != nil {
				w.logger.Warn("snapshot reload failed", "path", target, "err", err)
			} else {
				w.logger.Info("snapshot changed", "path", target, "nodes", len(snap.Nodes))
			}
			w.send(ctx, Update{Snapshot: snap, Err: err})
		}
	}
}

// send replaces an unconsumed update rather than blocking the watch loop.
func (w *Watcher) send(ctx context.Context, u Update) {
	for {
		select {
		case w.updates <- u:
			return
		case <-ctx.Done():
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}

func relevant(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
