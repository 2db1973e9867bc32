// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package parser

import "fmt"

// SyntaxError reports a parser-side expectation violation, carrying the
// offending line and the token text the parser stopped near.
type SyntaxError struct {
	Line int
	Near string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at line %d near '%s': %s", e.Line, e.Near, e.Msg)
}
