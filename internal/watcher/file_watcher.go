// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"context"
	"expvar"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var errorCount = expvar.NewInt("file_watcher_error_count")

// FileWatcher implements Watcher over a real filesystem with fsnotify.
type FileWatcher struct {
	watcher *fsnotify.Watcher

	watchedMu sync.RWMutex // protects `watched'
	watched   map[string][]Processor

	eventsDone chan struct{} // closed when the events handler exits
	closeOnce  sync.Once
}

// NewFileWatcher returns a new FileWatcher, or an error if the fsnotify
// watcher could not be created.
func NewFileWatcher() (*FileWatcher, error) {
	f, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	w := &FileWatcher{
		watcher:    f,
		watched:    make(map[string][]Processor),
		eventsDone: make(chan struct{}),
	}
	go w.runEvents()
	return w, nil
}

// Observe registers processor to be notified of changes to the named path.
func (w *FileWatcher) Observe(name string, processor Processor) error {
	if err := w.watcher.Add(name); err != nil {
		return errors.Wrapf(err, "adding watch on %q", name)
	}
	w.watchedMu.Lock()
	w.watched[name] = append(w.watched[name], processor)
	w.watchedMu.Unlock()
	glog.V(1).Infof("Watching %q", name)
	return nil
}

// runEvents translates fsnotify events into watcher Events and delivers them
// to the observers of the affected path.
func (w *FileWatcher) runEvents() {
	defer close(w.eventsDone)

	go func() {
		for err := range w.watcher.Errors {
			errorCount.Add(1)
			glog.Errorf("fsnotify error: %s", err)
		}
	}()

	for e := range w.watcher.Events {
		glog.V(2).Infof("watcher event %v", e)
		switch {
		case e.Op&fsnotify.Create == fsnotify.Create:
			w.sendEvent(Event{Create, e.Name})
		case e.Op&fsnotify.Write == fsnotify.Write,
			e.Op&fsnotify.Chmod == fsnotify.Chmod:
			w.sendEvent(Event{Update, e.Name})
		case e.Op&fsnotify.Remove == fsnotify.Remove:
			w.sendEvent(Event{Delete, e.Name})
		case e.Op&fsnotify.Rename == fsnotify.Rename:
			// The original path of a rename is gone; the new name
			// receives its own Create event.
			w.sendEvent(Event{Delete, e.Name})
		default:
			glog.V(1).Infof("Unexpected event type detected: %q", e)
		}
	}
}

func (w *FileWatcher) sendEvent(e Event) {
	w.watchedMu.RLock()
	processors, ok := w.watched[e.Pathname]
	w.watchedMu.RUnlock()
	if !ok {
		glog.V(2).Infof("No watch for path %q", e.Pathname)
		return
	}
	for _, p := range processors {
		p.ProcessFileEvent(context.TODO(), e)
	}
}

// Close shuts down the watcher and waits for the event handler to drain.
func (w *FileWatcher) Close() (err error) {
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		<-w.eventsDone
	})
	return
}
