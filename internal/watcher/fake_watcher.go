// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"context"
	"sync"

	"github.com/golang/glog"
)

// FakeWatcher implements an in-memory Watcher for use in tests.
type FakeWatcher struct {
	watchesMu sync.RWMutex
	watches   map[string][]Processor
	isClosed  bool
}

// NewFakeWatcher returns a fake Watcher.
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{watches: make(map[string][]Processor)}
}

func (w *FakeWatcher) Observe(name string, processor Processor) error {
	w.watchesMu.Lock()
	defer w.watchesMu.Unlock()
	w.watches[name] = append(w.watches[name], processor)
	return nil
}

// Close closes down the FakeWatcher.
func (w *FakeWatcher) Close() error {
	w.watchesMu.Lock()
	defer w.watchesMu.Unlock()
	w.isClosed = true
	return nil
}

// InjectUpdate lets a test inject a fake update event for the named path.
func (w *FakeWatcher) InjectUpdate(name string) {
	w.send(Event{Update, name})
}

// InjectDelete lets a test inject a fake deletion event for the named path.
func (w *FakeWatcher) InjectDelete(name string) {
	w.send(Event{Delete, name})
}

func (w *FakeWatcher) send(e Event) {
	w.watchesMu.RLock()
	processors, ok := w.watches[e.Pathname]
	closed := w.isClosed
	w.watchesMu.RUnlock()
	if closed || !ok {
		glog.Infof("Didn't find %s in watched list", e.Pathname)
		return
	}
	for _, p := range processors {
		p.ProcessFileEvent(context.Background(), e)
	}
}
