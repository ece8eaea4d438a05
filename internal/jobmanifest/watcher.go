package jobmanifest

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 2 * time.Second

// Watcher watches a manifest file's directory for changes and reapplies
// it to a Loader on write, debounced, mirroring inful-docbuilder's
// ConfigWatcher shape (watch the containing directory, not the file
// itself — editors often replace rather than truncate-and-write).
type Watcher struct {
	path    string
	loader  *Loader
	log     *log.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	reload  chan struct{}
}

// NewWatcher constructs a Watcher for path, bound to loader.
func NewWatcher(path string, loader *Loader, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		path:    absPath,
		loader:  loader,
		log:     logger,
		watcher: fsw,
		stopCh:  make(chan struct{}),
		reload:  make(chan struct{}, 1),
	}, nil
}

// Start begins watching the manifest's directory in background
// goroutines. It performs an initial load before returning.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	if err := w.reapply(); err != nil {
		return err
	}

	go w.watchLoop()
	go w.reloadLoop()
	return nil
}

// Stop halts the watcher's goroutines and closes the underlying
// fsnotify.Watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	fileName := filepath.Base(w.path)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.triggerReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Printf("jobmanifest: watch error: %v", err)
		}
	}
}

func (w *Watcher) reloadLoop() {
	var timer *time.Timer
	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.reload:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				if err := w.reapply(); err != nil {
					w.log.Printf("jobmanifest: reload failed: %v", err)
				}
			})
		}
	}
}

func (w *Watcher) triggerReload() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

func (w *Watcher) reapply() error {
	m, err := Load(w.path)
	if err != nil {
		return err
	}
	return w.loader.Apply(m)
}
