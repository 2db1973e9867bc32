// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package source implements the line buffer that feeds the tokenizer.  It
// loads a program, strips line comments, and measures the indentation width
// of each physical line.
package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// A Line is one physical line of the program after comment removal.
type Line struct {
	Text   string // Line text, truncated at the first hash.
	Num    int    // 1-based line number in the source file.
	Indent int    // Indentation width: a space counts 1, a tab counts 4.
}

// Load reads the named program from fs and returns its lines in order.
func Load(fs afero.Fs, name string) ([]Line, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open program %q", name)
	}
	defer f.Close()
	lines, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read program %q", name)
	}
	glog.V(1).Infof("Loaded %d lines from %s", len(lines), name)
	return lines, nil
}

// Read consumes r line by line, stripping comments and measuring indents.
// The hash stripper is not quote aware: the first hash on a line wins, even
// inside a string literal.
func Read(r io.Reader) ([]Line, error) {
	sc := bufio.NewScanner(r)
	var lines []Line
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		lines = append(lines, Line{Text: text, Num: n, Indent: indentWidth(text)})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading source lines")
	}
	return lines, nil
}

// indentWidth sums the leading whitespace of text, stopping at the first
// non-whitespace character.
func indentWidth(text string) int {
	w := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
