// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package lexer turns the line stream into a flat token stream.  It maintains
// the indentation state machine that emits the synthetic INDENT, DEDENT and
// NEWLINE markers, tracks the lexical scope, and performs the first-pass type
// inference that populates the symbol table.
package lexer

import (
	"expvar"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/JohnAzizJA/Python-Compiler/internal/source"
	"github.com/JohnAzizJA/Python-Compiler/internal/symtab"
)

var (
	lineCount  = expvar.NewInt("lexer_line_count")
	tokenCount = expvar.NewInt("lexer_token_count")
)

// Assignment operators.  Scanning one of these marks the start of a
// right-hand side, where a bracketed run may lex as a single literal.
var assignOps = map[string]struct{}{
	"=": {}, "+=": {}, "-=": {}, "*=": {}, "/=": {}, "%=": {}, "//=": {},
}

var twoCharOps = []string{"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%="}

const singleCharOps = "+-*/%=<>!&|^~"

const delimiters = "(){}[],.:;"

// lexer holds the state of the tokenizer across lines.
type lexer struct {
	name   string
	tab    *symtab.Table
	tokens []Token

	// Indentation state machine.  prevIndent and the INDENT/DEDENT scope
	// pushes and pops change at line boundaries; block keywords and
	// def/class headers also update the scope fields mid-line.
	prevIndent     int
	scopeStack     []string
	currentScope   string
	expectingBlock bool
	inBlockComment bool
	blockDelim     string

	lastLine int
}

// Lex tokenizes the given lines, recording identifiers into tab as it goes.
// On a fatal error the tokens lexed so far, ending with an ERROR token, are
// returned alongside the error.
func Lex(name string, lines []source.Line, tab *symtab.Table) ([]Token, error) {
	l := &lexer{name: name, tab: tab, currentScope: "global"}
	for _, ln := range lines {
		if err := l.line(ln); err != nil {
			return l.tokens, err
		}
	}
	// Close any blocks still open at end of input.
	for n := l.prevIndent / 4; n > 0; n-- {
		l.emit(DEDENT, "0", l.lastLine)
		l.popScope()
	}
	lineCount.Add(int64(len(lines)))
	tokenCount.Add(int64(len(l.tokens)))
	glog.V(1).Infof("%s: %d tokens, %d symbols", name, len(l.tokens), tab.Len())
	return l.tokens, nil
}

func (l *lexer) emit(kind Kind, text string, line int) {
	glog.V(2).Infof("Emitting %s(%q) at line %d", kind, text, line)
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Line: line})
}

func (l *lexer) popScope() {
	if len(l.scopeStack) > 0 {
		l.scopeStack = l.scopeStack[:len(l.scopeStack)-1]
	}
}

func (l *lexer) pushScope(scope string) {
	l.scopeStack = append(l.scopeStack, scope)
	l.currentScope = scope
}

// line runs the indentation state machine for one line and tokenizes its
// semicolon-separated segments.
func (l *lexer) line(ln source.Line) error {
	if strings.TrimSpace(ln.Text) == "" {
		return nil
	}
	l.lastLine = ln.Num

	if l.inBlockComment {
		if strings.Contains(ln.Text, l.blockDelim) {
			l.inBlockComment = false
			l.blockDelim = ""
		}
		return nil
	}
	if delim, open, skip := blockComment(ln.Text); skip {
		if open {
			l.inBlockComment = true
			l.blockDelim = delim
		}
		return nil
	}

	if ln.Indent%4 != 0 {
		l.emit(ERROR, "IndentationError", ln.Num)
		return &Error{Detail: "Indentation error: indent width " + strconv.Itoa(ln.Indent) + " is not a multiple of 4", Line: ln.Num}
	}
	if l.currentScope == "global" && ln.Indent > 0 && !l.expectingBlock {
		l.emit(ERROR, "IndentationError", ln.Num)
		return &Error{Detail: "Indentation error: unexpected indent", Line: ln.Num}
	}

	switch {
	case ln.Indent > l.prevIndent:
		l.emit(INDENT, strconv.Itoa(ln.Indent), ln.Num)
		if l.expectingBlock {
			l.scopeStack = append(l.scopeStack, l.currentScope)
			l.expectingBlock = false
		}
	case ln.Indent < l.prevIndent:
		for n := (l.prevIndent - ln.Indent) / 4; n > 0; n-- {
			l.emit(DEDENT, strconv.Itoa(ln.Indent), ln.Num)
			l.popScope()
		}
	}
	l.prevIndent = ln.Indent
	if len(l.scopeStack) > 0 {
		l.currentScope = l.scopeStack[len(l.scopeStack)-1]
	} else {
		l.currentScope = "global"
	}

	for _, seg := range splitSegments(ln.Text) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		if err := l.segment(seg, ln.Num); err != nil {
			return err
		}
	}
	l.emit(NEWLINE, "\n", ln.Num)
	return nil
}

// blockComment reports whether text is part of a triple-quoted block
// comment.  It returns the delimiter, whether the comment stays open past
// this line, and whether the line should be skipped entirely.  A triple
// quote that opens and closes on the same line (six or more of the quote
// character) is skipped without opening the state.
func blockComment(text string) (delim string, open, skip bool) {
	switch {
	case strings.Contains(text, `"""`):
		delim = `"""`
		open = strings.Count(text, `"`) < 6
	case strings.Contains(text, "'''"):
		delim = "'''"
		open = strings.Count(text, "'") < 6
	default:
		return "", false, false
	}
	return delim, open, true
}

// splitSegments splits a line on semicolons that are not inside a string
// literal.
func splitSegments(text string) []string {
	var segs []string
	var quote byte
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			segs = append(segs, text[start:i])
			start = i + 1
		}
	}
	return append(segs, text[start:])
}

// segment scans one semicolon-free statement left to right, attempting the
// classifiers in their fixed priority order.
func (l *lexer) segment(code string, line int) error {
	hasColon := strings.Contains(code, ":")
	// rhsStart is true when the cursor sits immediately after an assignment
	// operator; only there can a bracketed run lex as a single literal.
	rhsStart := false

	for i := 0; i < len(code); {
		c := code[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}

		// Formatted string literal, non-greedy.
		if (c == 'f' || c == 'F') && i+1 < len(code) && isQuote(code[i+1]) {
			if end := strings.IndexByte(code[i+2:], code[i+1]); end >= 0 {
				lit := code[i : i+3+end]
				l.emit(LITERAL, lit, line)
				i += len(lit)
				rhsStart = false
				continue
			}
			// No closing quote: fall through so the bare quote reports
			// the unterminated literal.
		}

		// String literal, non-greedy; a quote with no close is fatal.
		if isQuote(c) {
			end := strings.IndexByte(code[i+1:], c)
			if end < 0 {
				l.emit(ERROR, code[i:], line)
				return &Error{Detail: "Unterminated string literal", Line: line}
			}
			lit := code[i : i+2+end]
			l.emit(LITERAL, lit, line)
			i += len(lit)
			rhsStart = false
			continue
		}

		// Two identifiers separated by whitespace before an equals sign is
		// an invalid attribute name, but only on lines without a colon.
		if !hasColon && isIdentStart(c) {
			if end, ok := invalidAttribute(code[i:]); ok {
				l.emit(ERROR, code[i:i+end], line)
				return &Error{Detail: "Invalid attribute name with space", Line: line}
			}
		}

		// Operators, longest match first.
		if op, ok := scanOperator(code[i:]); ok {
			l.emit(OPERATOR, op, line)
			_, rhsStart = assignOps[op]
			i += len(op)
			continue
		}

		// A bracketed run that forms the whole right-hand side of an
		// assignment lexes as a single list or tuple LITERAL.  Anywhere
		// else the bracket is a plain delimiter and the parser's atom
		// grammar takes over.
		if rhsStart && (c == '(' || c == '[') {
			if lit, ok := bracketedRun(code[i:]); ok {
				l.emit(LITERAL, lit, line)
				i += len(lit)
				rhsStart = false
				continue
			}
		}

		if strings.IndexByte(delimiters, c) >= 0 {
			l.emit(DELIMITER, string(c), line)
			i++
			rhsStart = false
			continue
		}

		if isIdentStart(c) {
			i = l.word(code, i, line)
			rhsStart = false
			continue
		}

		if isDigit(c) {
			n, err := l.number(code, i, line)
			if err != nil {
				return err
			}
			i = n
			rhsStart = false
			continue
		}

		l.emit(ERROR, string(c), line)
		return &Error{Detail: "Invalid character '" + string(c) + "'", Line: line}
	}

	// Function and class definitions are detected by an end-of-segment
	// pattern match.  The definition's scope becomes current, and the next
	// INDENT pushes it.
	if m := defRE.FindStringSubmatch(code); m != nil {
		l.tab.Declare(m[1], "function")
		l.currentScope = m[1]
		l.expectingBlock = true
	} else if m := classRE.FindStringSubmatch(code); m != nil {
		l.tab.Declare(m[1], "class")
		l.currentScope = m[1]
		l.expectingBlock = true
	}
	return nil
}

// word scans the identifier or keyword starting at i and returns the index
// just past it.  Keywords that introduce blocks push a synthetic scope token
// of the form "<keyword> line number <N>".  Identifiers that are assignment
// targets have their type inferred and recorded.
func (l *lexer) word(code string, i, line int) int {
	end := i + 1
	for end < len(code) && isIdentPart(code[end]) {
		end++
	}
	word := code[i:end]

	if isKeyword(word) {
		switch word {
		case "if", "elif", "else", "while", "for":
			l.pushScope(word + " line number " + strconv.Itoa(line))
		}
		l.emit(KEYWORD, word, line)
		return end
	}

	l.emit(IDENTIFIER, word, line)
	if isBuiltin(word) {
		return end
	}

	if eq := assignEquals(code, end); eq >= 0 {
		rhs := strings.TrimSpace(code[eq+1:])
		typ := l.inferType(rhs)
		l.tab.Upsert(word, typ, l.currentScope)
		glog.V(2).Infof("Recorded %q as %q in scope %q", word, typ, l.currentScope)
	}
	return end
}

// assignEquals returns the index of the first '=' at or after from, or -1
// when there is none or that '=' is adjacent to another '='.
func assignEquals(code string, from int) int {
	eq := strings.IndexByte(code[from:], '=')
	if eq < 0 {
		return -1
	}
	eq += from
	if eq > 0 && code[eq-1] == '=' {
		return -1
	}
	if eq+1 < len(code) && code[eq+1] == '=' {
		return -1
	}
	return eq
}

// number scans the numeric literal starting at i and returns the index just
// past it.  Doubled decimal points and dangling exponents are fatal.
func (l *lexer) number(code string, i, line int) (int, error) {
	end := i

	// Hexadecimal integer.
	if code[i] == '0' && i+2 < len(code) && (code[i+1] == 'x' || code[i+1] == 'X') && isHexDigit(code[i+2]) {
		end = i + 2
		for end < len(code) && isHexDigit(code[end]) {
			end++
		}
		l.emit(LITERAL, code[i:end], line)
		return end, nil
	}

	dots := 0
Loop:
	for end < len(code) {
		switch {
		case isDigit(code[end]):
			end++
		case code[end] == '.' && end+1 < len(code) && isDigit(code[end+1]):
			dots++
			end++
		default:
			break Loop
		}
	}
	if dots > 1 {
		l.emit(ERROR, code[i:end], line)
		return 0, &Error{Detail: "Malformed number literal '" + code[i:end] + "'", Line: line}
	}

	if end < len(code) && (code[end] == 'e' || code[end] == 'E') {
		exp := end + 1
		if exp < len(code) && (code[exp] == '+' || code[exp] == '-') {
			exp++
		}
		if exp >= len(code) || !isDigit(code[exp]) {
			l.emit(ERROR, code[i:exp], line)
			return 0, &Error{Detail: "Malformed number literal '" + code[i:exp] + "'", Line: line}
		}
		end = exp
		for end < len(code) && isDigit(code[end]) {
			end++
		}
	}

	l.emit(LITERAL, code[i:end], line)
	return end, nil
}

// scanOperator matches the operator at the head of code, longest form first.
func scanOperator(code string) (string, bool) {
	if strings.HasPrefix(code, "//=") {
		return "//=", true
	}
	if strings.HasPrefix(code, "//") {
		return "//", true
	}
	for _, op := range twoCharOps {
		if strings.HasPrefix(code, op) {
			return op, true
		}
	}
	if strings.IndexByte(singleCharOps, code[0]) >= 0 {
		return code[:1], true
	}
	return "", false
}

// bracketedRun matches a complete non-nested bracketed run that extends to
// the end of the segment.
func bracketedRun(code string) (string, bool) {
	closer := byte(')')
	if code[0] == '[' {
		closer = ']'
	}
	end := strings.IndexByte(code[1:], closer)
	if end < 0 {
		return "", false
	}
	run := code[:end+2]
	if strings.TrimSpace(code[end+2:]) != "" {
		return "", false
	}
	return run, true
}

// invalidAttribute matches "ident ws ident ws* =" at the head of code,
// returning the length of the match.
func invalidAttribute(code string) (int, bool) {
	i := 0
	for i < len(code) && isIdentPart(code[i]) {
		i++
	}
	ws := i
	for ws < len(code) && (code[ws] == ' ' || code[ws] == '\t') {
		ws++
	}
	if ws == i || ws >= len(code) || !isIdentStart(code[ws]) {
		return 0, false
	}
	j := ws
	for j < len(code) && isIdentPart(code[j]) {
		j++
	}
	k := j
	for k < len(code) && (code[k] == ' ' || code[k] == '\t') {
		k++
	}
	if k < len(code) && code[k] == '=' {
		return k + 1, true
	}
	return 0, false
}

// Helper predicates.

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
