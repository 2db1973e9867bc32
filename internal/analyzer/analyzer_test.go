// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package analyzer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/JohnAzizJA/Python-Compiler/internal/testutil"
	"github.com/JohnAzizJA/Python-Compiler/internal/watcher"
)

func newTestAnalyzer(t *testing.T, prog string) (*Analyzer, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.FatalIfErr(t, afero.WriteFile(fs, "prog.py", []byte(prog), 0600))
	var out bytes.Buffer
	a, err := New(Options{
		Prog:       "prog.py",
		DotFile:    "tree.dot",
		DumpTokens: true,
		DumpSymtab: true,
		DumpTree:   true,
		FS:         fs,
		Out:        &out,
	})
	testutil.FatalIfErr(t, err)
	return a, fs, &out
}

func TestRunOneShot(t *testing.T) {
	a, fs, out := newTestAnalyzer(t, "x = 5\n")
	testutil.FatalIfErr(t, a.Run())

	report := out.String()
	for _, want := range []string{
		"Line", "Type", "Value", // token table header
		"IDENTIFIER",
		"--- Symbol Table ---",
		"int", "global",
		"--- Parse Tree ---",
		"AssignOp: =",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	b, err := afero.ReadFile(fs, "tree.dot")
	testutil.FatalIfErr(t, err)
	dot := string(b)
	if !strings.HasPrefix(dot, "digraph ParseTree {\n") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("malformed DOT output:\n%s", dot)
	}
	if !strings.Contains(dot, `node0 [label="Program"];`) {
		t.Errorf("DOT output missing root node:\n%s", dot)
	}
}

func TestRunReportsLexError(t *testing.T) {
	a, fs, _ := newTestAnalyzer(t, "y = 1.2.3\n")
	err := a.Run()
	if err == nil {
		t.Fatal("want a lex error, got none")
	}
	if got, want := err.Error(), "Error: Malformed number literal '1.2.3' on line 1"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	if ok, _ := afero.Exists(fs, "tree.dot"); ok {
		t.Error("want no DOT file after a failed run")
	}
}

func TestRunReportsSyntaxError(t *testing.T) {
	a, fs, _ := newTestAnalyzer(t, "def f: pass\n")
	err := a.Run()
	if err == nil {
		t.Fatal("want a syntax error, got none")
	}
	if got, want := err.Error(), "Syntax Error at line 1 near ':': Expected '(' after function name"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	if ok, _ := afero.Exists(fs, "tree.dot"); ok {
		t.Error("want no DOT file after a failed run")
	}
}

func TestNewRequiresProgram(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("want an error for missing input program, got none")
	}
}

func TestProcessFileEventReRuns(t *testing.T) {
	a, _, out := newTestAnalyzer(t, "x = 5\n")
	a.ProcessFileEvent(context.Background(), watcher.Event{Op: watcher.Update, Pathname: "prog.py"})
	first := out.Len()
	if first == 0 {
		t.Fatal("want a report from the update event, got none")
	}
	a.ProcessFileEvent(context.Background(), watcher.Event{Op: watcher.Delete, Pathname: "prog.py"})
	if out.Len() != first {
		t.Error("want no re-run on a delete event")
	}
}

func TestWatchRegistersAndStops(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.FatalIfErr(t, afero.WriteFile(fs, "prog.py", []byte("x = 1\n"), 0600))
	w := watcher.NewFakeWatcher()
	var out bytes.Buffer
	a, err := New(Options{Prog: "prog.py", W: w, FS: fs, Out: &out})
	testutil.FatalIfErr(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	testutil.FatalIfErr(t, a.Watch(ctx))
}

func TestWatchWithoutWatcher(t *testing.T) {
	a, _, _ := newTestAnalyzer(t, "x = 1\n")
	if err := a.Watch(context.Background()); err == nil {
		t.Error("want an error when no watcher is configured")
	}
}
