package toolexecutor

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// LogWatcher calls onChange, debounced, whenever the execution log file (or
// one of its SQLite side files) is written.
type LogWatcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	base     string
	onChange func()
	debounce time.Duration
	timer    *time.Timer
	timerMu  sync.Mutex
	stopCh   chan struct{}
}

// NewLogWatcher watches the directory containing path
func NewLogWatcher(path string, logger zerolog.Logger, onChange func()) (*LogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	lw := &LogWatcher{
		watcher:  watcher,
		logger:   logger,
		base:     filepath.Base(path),
		onChange: onChange,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	go lw.run()

	return lw, nil
}

// Stop stops watching
func (lw *LogWatcher) Stop() error {
	close(lw.stopCh)

	lw.timerMu.Lock()
	if lw.timer != nil {
		lw.timer.Stop()
	}
	lw.timerMu.Unlock()

	return lw.watcher.Close()
}

func (lw *LogWatcher) run() {
	for {
		select {
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}

			// Temp files from atomic writes share the prefix.
			if !strings.HasPrefix(filepath.Base(event.Name), lw.base) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				lw.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Execution log change detected")

				lw.schedule()
			}

		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.logger.Error().Err(err).Msg("Execution log watcher error")

		case <-lw.stopCh:
			return
		}
	}
}

func (lw *LogWatcher) schedule() {
	lw.timerMu.Lock()
	defer lw.timerMu.Unlock()

	if lw.timer != nil {
		lw.timer.Stop()
	}
	lw.timer = time.AfterFunc(lw.debounce, lw.onChange)
}
