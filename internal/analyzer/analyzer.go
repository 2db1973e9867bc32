// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package analyzer wires the front-end pipeline together: line buffer,
// tokenizer, symbol table, parser, and the tree serializers.  Data flow is
// strictly linear; no component feeds back into an earlier one.
package analyzer

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/JohnAzizJA/Python-Compiler/internal/ast"
	"github.com/JohnAzizJA/Python-Compiler/internal/dot"
	"github.com/JohnAzizJA/Python-Compiler/internal/lexer"
	"github.com/JohnAzizJA/Python-Compiler/internal/parser"
	"github.com/JohnAzizJA/Python-Compiler/internal/source"
	"github.com/JohnAzizJA/Python-Compiler/internal/symtab"
	"github.com/JohnAzizJA/Python-Compiler/internal/watcher"
)

var (
	runCount      = expvar.NewInt("analysis_runs_total")
	runErrorCount = expvar.NewInt("analysis_run_errors_total")
)

// Options contains the required configuration for an Analyzer.
type Options struct {
	Prog    string // Path of the source program to analyze.
	DotFile string // Path to write the DOT serialization to; empty disables it.

	DumpTokens bool // Print the token table after lexing.
	DumpSymtab bool // Print the symbol table after lexing.
	DumpTree   bool // Print the parse tree as indented text.

	W   watcher.Watcher // Watcher used by Watch; nil disables watch mode.
	FS  afero.Fs        // Filesystem to read and write through; defaults to the OS.
	Out io.Writer       // Report destination; defaults to stdout.
}

// Analyzer contains the state of the main program object.
type Analyzer struct {
	o   Options
	fs  afero.Fs
	out io.Writer
}

// New validates the options and creates an Analyzer.
func New(o Options) (*Analyzer, error) {
	if o.Prog == "" {
		return nil, errors.New("no input program specified")
	}
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return &Analyzer{o: o, fs: o.FS, out: o.Out}, nil
}

// Run performs one full analysis pass over the input program.  Nothing is
// persisted between runs.
func (a *Analyzer) Run() error {
	runCount.Add(1)
	lines, err := source.Load(a.fs, a.o.Prog)
	if err != nil {
		runErrorCount.Add(1)
		return err
	}

	tab := symtab.New()
	tokens, err := lexer.Lex(a.o.Prog, lines, tab)
	if err != nil {
		runErrorCount.Add(1)
		return err
	}
	if a.o.DumpTokens {
		a.writeTokens(tokens)
	}
	if a.o.DumpSymtab {
		a.writeSymtab(tab)
	}

	root, err := parser.Parse(tokens)
	if err != nil {
		runErrorCount.Add(1)
		return err
	}
	if a.o.DumpTree {
		fmt.Fprintf(a.out, "\n--- Parse Tree ---\n%s", root.Dump())
	}

	if a.o.DotFile != "" {
		if err := a.writeDot(root); err != nil {
			runErrorCount.Add(1)
			return err
		}
		glog.Infof("Parse tree saved to %s", a.o.DotFile)
	}
	return nil
}

func (a *Analyzer) writeDot(root *ast.Node) error {
	f, err := a.fs.Create(a.o.DotFile)
	if err != nil {
		return errors.Wrapf(err, "could not create %q", a.o.DotFile)
	}
	defer f.Close()
	return dot.Write(f, root)
}

func (a *Analyzer) writeTokens(tokens []lexer.Token) {
	fmt.Fprintf(a.out, "%-8s%-15s%-20s\n", "Line", "Type", "Value")
	fmt.Fprintln(a.out, strings.Repeat("-", 45))
	for _, t := range tokens {
		fmt.Fprintf(a.out, "%-8d%-15s%-20s\n", t.Line, t.Kind.String(), t.Text)
	}
}

func (a *Analyzer) writeSymtab(tab *symtab.Table) {
	fmt.Fprintf(a.out, "\n--- Symbol Table ---\n")
	fmt.Fprintf(a.out, "%-6s%-20s%-15s%-15s\n", "ID", "Name", "Type", "Scope")
	fmt.Fprintln(a.out, strings.Repeat("-", 56))
	for _, r := range tab.Records() {
		fmt.Fprintf(a.out, "%-6d%-20s%-15s%-15s\n", r.ID, r.Name, r.Type, r.Scope)
	}
}

// ProcessFileEvent implements watcher.Processor: any event other than a
// deletion re-runs the analysis.
func (a *Analyzer) ProcessFileEvent(ctx context.Context, e watcher.Event) {
	if e.Op == watcher.Delete {
		glog.Infof("%q deleted; waiting for it to return", e.Pathname)
		return
	}
	if err := a.Run(); err != nil {
		glog.Error(err)
	}
}

// Watch observes the input program and re-analyzes it on every change until
// ctx is cancelled.
func (a *Analyzer) Watch(ctx context.Context) error {
	if a.o.W == nil {
		return errors.New("no watcher configured")
	}
	if err := a.o.W.Observe(a.o.Prog, a); err != nil {
		return err
	}
	<-ctx.Done()
	return a.o.W.Close()
}
