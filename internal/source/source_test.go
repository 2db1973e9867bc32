// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package source

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/JohnAzizJA/Python-Compiler/internal/testutil"
)

func TestRead(t *testing.T) {
	input := "x = 1\n    y = 2  # tail comment\n\ttabbed = 3\n# only comment\n"
	lines, err := Read(strings.NewReader(input))
	testutil.FatalIfErr(t, err)
	want := []Line{
		{Text: "x = 1", Num: 1, Indent: 0},
		{Text: "    y = 2  ", Num: 2, Indent: 4},
		{Text: "\ttabbed = 3", Num: 3, Indent: 4},
		{Text: "", Num: 4, Indent: 0},
	}
	testutil.ExpectNoDiff(t, want, lines)
}

func TestReadHashInsideStringTruncates(t *testing.T) {
	// The stripper is not quote aware; the first hash wins.
	lines, err := Read(strings.NewReader("s = \"a#b\"\n"))
	testutil.FatalIfErr(t, err)
	if got := lines[0].Text; got != "s = \"a" {
		t.Errorf("want the line truncated at the hash, got %q", got)
	}
}

func TestIndentWidthMixed(t *testing.T) {
	lines, err := Read(strings.NewReader(" \t x = 1\n"))
	testutil.FatalIfErr(t, err)
	// space + tab + space = 1 + 4 + 1.
	if got := lines[0].Indent; got != 6 {
		t.Errorf("want indent 6, got %d", got)
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.FatalIfErr(t, afero.WriteFile(fs, "prog.py", []byte("a = 1\nb = 2\n"), 0600))
	lines, err := Load(fs, "prog.py")
	testutil.FatalIfErr(t, err)
	if len(lines) != 2 || lines[1].Num != 2 {
		t.Errorf("want 2 numbered lines, got %+v", lines)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.py")
	if err == nil {
		t.Error("want an error for a missing file, got none")
	}
}
