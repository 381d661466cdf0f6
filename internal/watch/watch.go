package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const DefaultDebounce = 300 * time.Millisecond

// File watches path and signals on the returned channel once changes to
// it have settled for the debounce period. The parent directory is
// watched so that editors which save by rename are still noticed.
// The channel is closed after ctx is cancelled.
func File(ctx context.Context, path string, debounce time.Duration) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go run(ctx, w, abs, debounce, changes)
	log.Debug().Str("path", abs).Msg("watching fixture")
	return changes, nil
}

func run(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, changes chan<- struct{}) {
	defer close(changes)
	defer w.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("op", ev.Op.String()).Msg("fixture changed")
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			// Drop the signal if the previous one has not been consumed.
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}
}
