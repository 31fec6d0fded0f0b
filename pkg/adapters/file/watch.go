package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watch implements ports.Watchable. The channel is signaled when any
// document in the store is written, created, renamed or removed, and closed
// when ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	return watch(ctx, s.BasePath, func(name string) bool {
		base := filepath.Base(name)
		return filepath.Ext(base) == ext && !strings.HasPrefix(base, ".tmp-")
	})
}

// WatchFile signals changes to a single file. The parent directory is
// watched so that atomic replacements are seen.
func WatchFile(ctx context.Context, path string) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return watch(ctx, filepath.Dir(abs), func(name string) bool {
		return filepath.Clean(name) == abs
	})
}

func watch(ctx context.Context, dir string, match func(name string) bool) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod || !match(ev.Name) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(DefaultDebounce)
				} else {
					timer.Reset(DefaultDebounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
