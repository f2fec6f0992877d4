package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-loads the config file whenever it changes on disk and invokes
// onChange with the new config. Load errors are reported through onError
// and the previous config stays in effect. The returned stop function
// releases the watcher.
//
// Editors often replace the file (rename + create) instead of writing in
// place, so the watch is on the parent directory.
func Watch(path string, onChange func(*Config), onError func(error)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()

	return func() { w.Close() }, nil
}
