// Package watch hands audio segments dropped into an inbox directory to a
// handler, one at a time, exactly once each.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/suykerbuyk/carenotes/internal/discover"
)

// Handled segments are moved into these subdirectories of the inbox.
const (
	ProcessedDir = ".processed"
	FailedDir    = ".failed"
)

// DefaultSettle is how long a file must stay quiet before it is handled.
const DefaultSettle = 300 * time.Millisecond

// Handler processes one segment.
type Handler func(ctx context.Context, path string) error

// Watcher watches one inbox directory.
type Watcher struct {
	dir     string
	exts    []string
	settle  time.Duration
	handle  Handler
	pending map[string]*time.Timer
	ready   chan string
}

// New returns a watcher for dir that passes files with one of exts to h.
func New(dir string, exts []string, h Handler) *Watcher {
	return &Watcher{
		dir:     dir,
		exts:    exts,
		settle:  DefaultSettle,
		handle:  h,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 16),
	}
}

// WithSettle overrides the quiet period.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	w.settle = d
	return w
}

// Run handles segments already in the inbox (oldest first), then watches
// for new ones until ctx is done. Segments are handled sequentially.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	existing, err := discover.Discover(w.dir, w.exts)
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}
	for _, f := range existing {
		if filepath.Dir(f.Path) != w.dir {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		w.process(ctx, f.Path)
	}

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.schedule(ev.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("warning: inbox watcher: %v", err)

		case path := <-w.ready:
			delete(w.pending, path)
			w.process(ctx, path)
		}
	}
}

// schedule (re)starts the quiet timer for path.
func (w *Watcher) schedule(path string) {
	name := filepath.Base(path)
	if name == "" || name[0] == '.' || !discover.IsAudio(name, w.exts) {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() { w.ready <- path })
}

func (w *Watcher) stopTimers() {
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// process hands path to the handler and moves it out of the inbox so it is
// never handled twice.
func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return
	}

	dest := ProcessedDir
	if err := w.handle(ctx, path); err != nil {
		log.Printf("warning: segment %s: %v", filepath.Base(path), err)
		dest = FailedDir
	}
	if err := move(path, filepath.Join(w.dir, dest)); err != nil {
		log.Printf("warning: %v", err)
	}
}

func move(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = fmt.Sprintf("%s-%d%s", target[:len(target)-len(ext)], time.Now().UnixNano(), ext)
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}
	return nil
}
