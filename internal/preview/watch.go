package preview

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of editor writes into one reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls a reload function after files under its directories change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   zerolog.Logger
	done     chan struct{}
}

// Watch starts watching dirs recursively. onChange runs on the watcher
// goroutine once changes settle for debounce. The watcher stops when ctx is
// cancelled or Close is called.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, logger zerolog.Logger, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("preview: watch callback is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := addWatchRecursive(fw, dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			_ = w.watcher.Close()
			return
		case <-timerC:
			timerC = nil
			w.logger.Debug().Msg("Templates changed, reloading")
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Has(fsnotify.Create) {
				if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
					if addErr := addWatchRecursive(w.watcher, evt.Name); addErr != nil {
						w.logger.Warn().Err(addErr).Str("path", evt.Name).Msg("Failed to watch new directory")
					}
				}
			}
			if shouldReload(evt) {
				resetTimer()
			}
		}
	}
}

func shouldReload(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(evt.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
