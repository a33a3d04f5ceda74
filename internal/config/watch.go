package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Hot carries the subset of a reparsed config file the running master
// might act on. Only LogVerbosity is actually applied without a restart;
// AdminAddr is carried through for the caller to report or diff against,
// since actually moving the admin listener would mean tearing down and
// rebinding it. Every other field is ignored on reload, since it would
// require tearing down a listener or disturbing in-flight protocol state.
type Hot struct {
	LogVerbosity int
	AdminAddr    string
}

// Watch starts watching path for changes and calls onChange with the
// hot-reloadable subset of each successfully reparsed file. It runs
// until the returned watcher is closed; callers should defer Close.
func Watch(path string, onChange func(Hot)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.Printf("config: reload %s failed: %v", path, err)
					continue
				}
				onChange(Hot{LogVerbosity: cfg.LogVerbosity, AdminAddr: cfg.AdminAddr})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config: watch error: %v", err)
			}
		}
	}()

	return w, nil
}
