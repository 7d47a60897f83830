package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it is written and delivers every valid result.
// Invalid edits are logged and skipped so the running configuration stays in effect.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan Config
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched rather than the file so that
// editors that save by renaming a temporary file are still seen.
//
// Parameters:
//   - path: the config file to watch
//
// Returns:
//   - *Watcher: the running watcher; call Close to stop it
//   - error: an error if the watch could not be registered
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		watcher: fw,
		changes: make(chan Config, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers reloaded configurations. Only the latest unread one is kept.
func (w *Watcher) Changes() <-chan Config {
	return w.changes
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Config] watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Printf("[Config] ignoring %s: %v", w.path, err)
		return
	}

	// drop a pending unread config so the newest always wins
	select {
	case <-w.changes:
	default:
	}
	w.changes <- cfg
	log.Printf("[Config] reloaded %s", w.path)
}
