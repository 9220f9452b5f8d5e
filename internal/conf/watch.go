package conf

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yola1107/cards56/library/zlog"
)

// Watch reloads the config whenever the file changes and hands the new
// bootstrap to onChange. Returns a stop function. Reload errors are
// logged and the previous config stays in effect.
func Watch(path string, onChange func(*Bootstrap)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory: editors replace files by rename
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				bc, err := Load(path)
				if err != nil {
					zlog.Warnf("config reload failed, keeping previous: %v", err)
					continue
				}
				zlog.Infof("config reloaded from %q", path)
				onChange(bc)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zlog.Warnf("config watcher: %v", err)
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
