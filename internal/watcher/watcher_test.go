// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recordingProcessor struct {
	events []Event
}

func (p *recordingProcessor) ProcessFileEvent(_ context.Context, e Event) {
	p.events = append(p.events, e)
}

func TestFakeWatcherDeliversToObservers(t *testing.T) {
	w := NewFakeWatcher()
	p := &recordingProcessor{}
	if err := w.Observe("prog.py", p); err != nil {
		t.Fatal(err)
	}

	w.InjectUpdate("prog.py")
	w.InjectDelete("prog.py")
	w.InjectUpdate("other.py") // not observed, dropped

	want := []Event{
		{Update, "prog.py"},
		{Delete, "prog.py"},
	}
	if len(p.events) != len(want) {
		t.Fatalf("want %d events, got %v", len(want), p.events)
	}
	for i, e := range want {
		if p.events[i] != e {
			t.Errorf("event %d: want %v, got %v", i, e, p.events[i])
		}
	}
}

func TestFakeWatcherClosedDropsEvents(t *testing.T) {
	w := NewFakeWatcher()
	p := &recordingProcessor{}
	if err := w.Observe("prog.py", p); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	w.InjectUpdate("prog.py")
	if len(p.events) != 0 {
		t.Errorf("want no events after Close, got %v", p.events)
	}
}

type chanProcessor struct {
	ch chan Event
}

func (p *chanProcessor) ProcessFileEvent(_ context.Context, e Event) {
	select {
	case p.ch <- e:
	default:
	}
}

func TestFileWatcherSeesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := NewFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	p := &chanProcessor{ch: make(chan Event, 16)}
	if err := w.Observe(path, p); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("x = 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-p.ch:
		if e.Pathname != path {
			t.Errorf("want event for %q, got %v", path, e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a file event")
	}
}

func TestFileWatcherObserveMissingPath(t *testing.T) {
	w, err := NewFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Observe(filepath.Join(t.TempDir(), "nope.py"), &recordingProcessor{}); err == nil {
		t.Error("want an error observing a missing path, got none")
	}
}
