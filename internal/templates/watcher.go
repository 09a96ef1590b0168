package templates

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resolution-backend/internal/shared/telemetry"
)

// DefaultDebounce lets editors finish multi-step saves before a reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Registry when template files in its directory change.
type Watcher struct {
	dir      string
	reg      *Registry
	debounce time.Duration
	fs       *fsnotify.Watcher

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch starts reloading reg from dir on every settled change. Stop it with
// Close or by cancelling ctx.
func Watch(ctx context.Context, dir string, reg *Registry, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("templates: watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("templates: watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		dir:      dir,
		reg:      reg,
		debounce: debounce,
		fs:       fw,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	telemetry.Info("templates.watching", map[string]any{"dir": dir})
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		<-w.done
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !isTemplateFile(filepath.Base(ev.Name)) || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			telemetry.Warn("templates.watch_error", map[string]any{"dir": w.dir, "error": err.Error()})

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.reg.Reload(w.dir); err != nil {
		telemetry.Warn("templates.reload_failed", map[string]any{"dir": w.dir, "error": err.Error()})
		return
	}
	telemetry.Info("templates.reloaded", map[string]any{"dir": w.dir, "count": len(w.reg.List())})
}
