// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package lexer

import (
	"fmt"
	"sort"
)

// Kind enumerates the classes of lexical tokens.
type Kind int

const (
	IDENTIFIER Kind = iota
	KEYWORD
	OPERATOR
	LITERAL
	DELIMITER
	ERROR
	INDENT
	DEDENT
	NEWLINE
)

// Printable names for token kinds.
var kindName = map[Kind]string{
	IDENTIFIER: "IDENTIFIER",
	KEYWORD:    "KEYWORD",
	OPERATOR:   "OPERATOR",
	LITERAL:    "LITERAL",
	DELIMITER:  "DELIMITER",
	ERROR:      "ERROR",
	INDENT:     "INDENT",
	DEDENT:     "DEDENT",
	NEWLINE:    "NEWLINE",
}

func (k Kind) String() string {
	if s, ok := kindName[k]; ok {
		return s
	}
	return fmt.Sprintf("token%d", int(k))
}

// A Token describes one lexed token: its class, the original text slice, and
// the 1-based source line it came from.  INDENT and DEDENT carry the new
// indentation width in decimal as their text; NEWLINE carries "\n".
type Token struct {
	Kind Kind
	Text string
	Line int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q,%d)", t.Kind, t.Text, t.Line)
}

// The keyword set.  Keep this list sorted!
var keywords = map[string]struct{}{
	"False":    {},
	"None":     {},
	"True":     {},
	"and":      {},
	"as":       {},
	"break":    {},
	"class":    {},
	"continue": {},
	"def":      {},
	"elif":     {},
	"else":     {},
	"for":      {},
	"from":     {},
	"if":       {},
	"import":   {},
	"in":       {},
	"is":       {},
	"not":      {},
	"or":       {},
	"pass":     {},
	"return":   {},
	"while":    {},
	"yield":    {},
}

// Built-in function names.  These lex as IDENTIFIER but are never entered
// into the symbol table.  Keep this list sorted!
var builtins = []string{
	"bool",
	"dict",
	"float",
	"input",
	"int",
	"len",
	"list",
	"lower",
	"print",
	"range",
	"set",
	"str",
	"tuple",
	"upper",
}

func isKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

func isBuiltin(word string) bool {
	i := sort.SearchStrings(builtins, word)
	return i < len(builtins) && builtins[i] == word
}
