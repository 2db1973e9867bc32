// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Command pyanalyze is a front-end analyzer for an indentation-structured
// scripting language.  It tokenizes the input program, builds a symbol table
// and a concrete parse tree, and serializes the tree in Graphviz DOT form
// for offline visualization.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/golang/glog"

	"github.com/JohnAzizJA/Python-Compiler/internal/analyzer"
	"github.com/JohnAzizJA/Python-Compiler/internal/watcher"
)

var (
	input   = flag.String("input", "", "Path of the source program to analyze.")
	dotFile = flag.String("dot", "tree.dot", "Path to write the parse tree DOT serialization to; empty disables it.")

	dumpTokens = flag.Bool("dump_tokens", true, "Dump the token table after lexing.")
	dumpSymtab = flag.Bool("dump_symtab", true, "Dump the symbol table after lexing.")
	dumpTree   = flag.Bool("dump_tree", true, "Dump the parse tree as indented text.")

	oneShot = flag.Bool("one_shot", true, "Analyze once and exit.  With -one_shot=false the analyzer re-runs whenever the input changes.")
)

var (
	// Externally supplied by the linker
	Version   string
	GoVersion = runtime.Version()
)

func main() {
	flag.Parse()
	glog.Infof("pyanalyze version %s go version %s", Version, GoVersion)
	if *input == "" {
		glog.Exitf("No input program specified; use -input")
	}

	o := analyzer.Options{
		Prog:       *input,
		DotFile:    *dotFile,
		DumpTokens: *dumpTokens,
		DumpSymtab: *dumpSymtab,
		DumpTree:   *dumpTree,
	}
	if !*oneShot {
		w, err := watcher.NewFileWatcher()
		if err != nil {
			glog.Fatalf("couldn't start watcher: %s", err)
		}
		o.W = w
	}

	a, err := analyzer.New(o)
	if err != nil {
		glog.Fatalf("couldn't start: %s", err)
	}

	if *oneShot {
		if err := a.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: analyze once now, then again on every change until
	// interrupted.  A failed pass is reported and the watch continues.
	if err := a.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := a.Watch(ctx); err != nil {
		glog.Fatal(err)
	}
}
