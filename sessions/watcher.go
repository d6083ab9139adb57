package sessions

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Watcher observes the state file for mutations made by another process and
// invokes a reload hook, the way a background browser tab reloads when a
// sibling tab rewrites a location key. The hook fires at most once per guard
// window regardless of how many raw filesystem events arrive, and writes made
// through this process's own FileRepo are ignored via the document fingerprint.
type Watcher struct {
	repo   *FileRepo
	hook   func()
	window time.Duration
	log    zerolog.Logger

	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	lastAt time.Time
	done   chan struct{}
}

// WatcherOption defines a function type to modify the Watcher instance.
type WatcherOption func(*Watcher)

// WithGuardWindow sets the minimum interval between hook invocations.
func WithGuardWindow(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.window = d
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = l
	}
}

// NewWatcher starts watching repo's state file. hook runs on the watcher
// goroutine after an external mutation; it should be fast and must not write
// back to the store.
func NewWatcher(repo *FileRepo, hook func(), options ...WatcherOption) (*Watcher, error) {
	if repo == nil {
		return nil, errors.New("[NewWatcher] repo is required")
	}
	if hook == nil {
		return nil, errors.New("[NewWatcher] hook is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "[NewWatcher] fsnotify")
	}

	w := &Watcher{
		repo:   repo,
		hook:   hook,
		window: 10 * time.Second,
		log:    zerolog.Nop(),
		fsw:    fsw,
		done:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	// Watch the directory rather than the file: FileRepo replaces the file
	// by rename, which drops a direct file watch.
	if err := fsw.Add(filepath.Dir(repo.Path())); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrap(err, "[NewWatcher] watch state dir")
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.repo.Path() {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.handleChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("state watch error")
		}
	}
}

func (w *Watcher) handleChange() {
	current, err := FingerprintFile(w.repo.Path())
	if err != nil {
		w.log.Warn().Err(err).Msg("state fingerprint failed")
		return
	}
	if current == w.repo.Fingerprint() {
		// Our own write landing on disk.
		return
	}

	w.mu.Lock()
	if time.Since(w.lastAt) < w.window {
		w.mu.Unlock()
		return
	}
	w.lastAt = time.Now()
	w.mu.Unlock()

	w.log.Warn().Msg("state changed externally, syncing")
	if err := w.repo.Reload(); err != nil {
		w.log.Error().Err(err).Msg("state reload failed")
	}
	w.hook()
}
