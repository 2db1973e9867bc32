// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package lexer

import "fmt"

// Error is a fatal lexical or indentation error.  The tokenizer emits an
// ERROR token recording the offending text just before returning one of
// these, and the pipeline stops before the parser runs.
type Error struct {
	Detail string
	Line   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error: %s on line %d", e.Detail, e.Line)
}
