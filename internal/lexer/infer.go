// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package lexer

import (
	"regexp"
	"strings"
)

// Right-hand-side patterns for assignment type inference, tried in priority
// order.
var (
	hexRE    = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	intRE    = regexp.MustCompile(`^[+-]?\d+$`)
	floatRE  = regexp.MustCompile(`^[+-]?(\d*\.\d+|\d+\.\d*)([eE][+-]?\d+)?$`)
	stringRE = regexp.MustCompile(`^(".*"|'.*')$`)
	inputRE  = regexp.MustCompile(`^input\s*\(.*\)$`)
	callRE   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*\s*\(.*\)$`)
	nameRE   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	arithRE  = regexp.MustCompile(`^[+-]?\d+\s*[+\-*/]\s*\d+$`)
	listRE   = regexp.MustCompile(`^\[[^\]]*\]$`)
	tupleRE  = regexp.MustCompile(`^\([^)]*\)$`)

	defRE   = regexp.MustCompile(`^\s*def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	classRE = regexp.MustCompile(`^\s*class\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// inferType classifies the right-hand side of an assignment.  The rhs is the
// trimmed remainder of the segment after the equals sign.
func (l *lexer) inferType(rhs string) string {
	switch {
	case hexRE.MatchString(rhs), intRE.MatchString(rhs):
		return "int"
	case floatRE.MatchString(rhs):
		return "float"
	case stringRE.MatchString(rhs):
		return "string"
	case rhs == "True", rhs == "False":
		return "bool"
	case inputRE.MatchString(rhs):
		// input() always yields a string.
		return "string"
	case callRE.MatchString(rhs):
		return "func return"
	case nameRE.MatchString(rhs):
		return l.tab.Lookup(rhs, l.currentScope)
	case arithRE.MatchString(rhs):
		return "int"
	case listRE.MatchString(rhs):
		return "list"
	case tupleRE.MatchString(rhs):
		return "tuple"
	}
	// Mixed expression: use the first whitespace-separated operand that
	// resolves to a known type.
	for _, field := range strings.Fields(rhs) {
		switch {
		case nameRE.MatchString(field):
			if t := l.tab.Lookup(field, l.currentScope); t != "unknown" {
				return t
			}
		case intRE.MatchString(field):
			return "int"
		case floatRE.MatchString(field):
			return "float"
		}
	}
	return "unknown"
}
