// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

package parser

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	"github.com/JohnAzizJA/Python-Compiler/internal/ast"
	"github.com/JohnAzizJA/Python-Compiler/internal/lexer"
	"github.com/JohnAzizJA/Python-Compiler/internal/source"
	"github.com/JohnAzizJA/Python-Compiler/internal/symtab"
	"github.com/JohnAzizJA/Python-Compiler/internal/testutil"
)

// parseProgram lexes and parses input, failing the test on lexer errors.
func parseProgram(t *testing.T, input string) (*ast.Node, error) {
	t.Helper()
	lines, err := source.Read(strings.NewReader(input))
	testutil.FatalIfErr(t, err)
	tokens, err := lexer.Lex(t.Name(), lines, symtab.New())
	testutil.FatalIfErr(t, err)
	return Parse(tokens)
}

type parserTest struct {
	name  string
	input string
	tree  string // expected Dump output
}

var parserTests = []parserTest{
	{"assignment", "x = 5\n", `Program
  ExpressionStatement
    Assignment
      IdentifierList
        Identifier: x
      AssignOp: =
      Literal: 5
`},
	{"operator precedence", "a + b * c\n", `Program
  ExpressionStatement
    ExpressionList
      Identifier: a
      BinaryOp: +
      BinaryOp: *
        Identifier: b
        Identifier: c
`},
	{"term left associativity", "a / b / c\n", `Program
  ExpressionStatement
    BinaryOp: /
      BinaryOp: /
        Identifier: a
        Identifier: b
      Identifier: c
`},
	{"ternary", "x if c else y\n", `Program
  ExpressionStatement
    TernaryOp
      Identifier: x
      Keyword: if
      Identifier: c
      Keyword: else
      Identifier: y
`},
	{"boolean and unary operators", "not a and -b or ~c\n", `Program
  ExpressionStatement
    BinaryOp: or
      BinaryOp: and
        UnaryOp: not
          Identifier: a
        UnaryOp: -
          Identifier: b
      UnaryOp: ~
        Identifier: c
`},
	{"function definition", "def add(a, b):\n    return a + b\n", `Program
  FunctionDefinition
    Keyword: def
    Identifier: add
    Delimiter: (
    Parameters
      Parameter: a
      Delimiter: ,
      Parameter: b
    Delimiter: )
    Delimiter: :
    Suite
      ReturnStatement
        Keyword: return
        ExpressionList
          Identifier: a
          BinaryOp: +
          Identifier: b
`},
	{"bare return", "def f():\n    return\n", `Program
  FunctionDefinition
    Keyword: def
    Identifier: f
    Delimiter: (
    Parameters
    Delimiter: )
    Delimiter: :
    Suite
      ReturnStatement
        Keyword: return
`},
	{"if elif else", "if a == 1:\n    x = 2\nelif a == 2:\n    x = 3\nelse:\n    x = 4\n", `Program
  IfStatement
    Keyword: if
    Comparison
      Identifier: a
      ComparisonOp: ==
      Literal: 1
    Suite
      ExpressionStatement
        Assignment
          IdentifierList
            Identifier: x
          AssignOp: =
          Literal: 2
    ElifClause
      Keyword: elif
      Comparison
        Identifier: a
        ComparisonOp: ==
        Literal: 2
      Suite
        ExpressionStatement
          Assignment
            IdentifierList
              Identifier: x
            AssignOp: =
            Literal: 3
    ElseClause
      Keyword: else
      Suite
        ExpressionStatement
          Assignment
            IdentifierList
              Identifier: x
            AssignOp: =
            Literal: 4
`},
	{"while with break and continue", "while True:\n    break\n    continue\n", `Program
  WhileStatement
    Keyword: while
    Keyword: True
    Suite
      BreakStatement
        Keyword: break
      ContinueStatement
        Keyword: continue
`},
	{"for over call with attribute call body", "for i in range(10):\n    obj.run(i)\n", `Program
  ForStatement
    Keyword: for
    Identifier: i
    Keyword: in
    FunctionCall
      Identifier: range
      Delimiter: (
      Arguments
        Literal: 10
      Delimiter: )
    Suite
      ExpressionStatement
        FunctionCall
          AttributeAccess
            Identifier: obj
            Delimiter: .
            Identifier: run
          Delimiter: (
          Arguments
            Identifier: i
          Delimiter: )
`},
	{"attribute assignment", "obj.attr = 5\n", `Program
  ExpressionStatement
    Assignment
      IdentifierList
        AttributeAccess
          Identifier: obj
          Delimiter: .
          Identifier: attr
      AssignOp: =
      Literal: 5
`},
	{"call statement", "print(x)\n", `Program
  FunctionCallStatement
    Identifier: print
    Delimiter: (
    Arguments
      Identifier: x
    Delimiter: )
`},
	{"import with alias and second module", "import os.path as p, sys\n", `Program
  ImportStatement
    Keyword: import
    DottedName
      NamePart: os
      Delimiter: .
      NamePart: path
    Alias: p
    DottedName
      NamePart: sys
`},
	{"from import star", "from os import *\n", `Program
  ImportStatement
    Keyword: from
    DottedName
      NamePart: os
    ImportAll: *
`},
	{"from import with alias", "from a.b import c as d\n", `Program
  ImportStatement
    Keyword: from
    DottedName
      NamePart: a
      Delimiter: .
      NamePart: b
    ImportName: c
    Alias: d
`},
	{"dictionary atom", "d = {1: \"a\"}\n", `Program
  ExpressionStatement
    Assignment
      IdentifierList
        Identifier: d
      AssignOp: =
      Dict
        Delimiter: {
        KeyValuePair
          Literal: 1
          Delimiter: :
          Literal: "a"
        Delimiter: }
`},
	{"empty tuple", "()\n", `Program
  ExpressionStatement
    Tuple
      Delimiter: (
      Delimiter: )
`},
	{"parenthesized expression", "(a + b)\n", `Program
  ExpressionStatement
    ParenExpr
      Delimiter: (
      ExpressionList
        Identifier: a
        BinaryOp: +
        Identifier: b
      Delimiter: )
`},
	{"tuple with trailing comma", "(a, b,)\n", `Program
  ExpressionStatement
    Tuple
      Delimiter: (
      Identifier: a
      Delimiter: ,
      Identifier: b
      Delimiter: ,
      Delimiter: )
`},
	{"assignment to expression list", "x = 1, 2\n", `Program
  ExpressionStatement
    Assignment
      IdentifierList
        Identifier: x
      AssignOp: =
      ExpressionList
        Literal: 1
        Literal: 2
`},
	{"class with parent and inline suite", "class Dog(Animal): pass\n", `Program
  ClassDefinition
    Keyword: class
    Identifier: Dog
    Delimiter: (
    Identifier: Animal
    Delimiter: )
    Delimiter: :
    Suite
      PassStatement
        Keyword: pass
`},
	{"lexed tuple literal stays one leaf", "x = (1, 2, 3)\n", `Program
  ExpressionStatement
    Assignment
      IdentifierList
        Identifier: x
      AssignOp: =
      Literal: (1, 2, 3)
`},
}

func TestParse(t *testing.T) {
	for _, tc := range parserTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root, err := parseProgram(t, tc.input)
			testutil.FatalIfErr(t, err)
			testutil.ExpectNoDiff(t, tc.tree, root.Dump())
		})
	}
}

func TestParseAssignmentTree(t *testing.T) {
	root, err := parseProgram(t, "x = 5\n")
	testutil.FatalIfErr(t, err)

	want := &ast.Node{Kind: ast.Program, Children: []*ast.Node{
		{Kind: ast.ExpressionStatement, Children: []*ast.Node{
			{Kind: ast.Assignment, Children: []*ast.Node{
				{Kind: ast.IdentifierList, Children: []*ast.Node{
					{Kind: ast.Identifier, Value: "x"},
				}},
				{Kind: ast.AssignOp, Value: "="},
				{Kind: ast.Literal, Value: "5"},
			}},
		}},
	}}
	if diff := pretty.Compare(want, root); diff != "" {
		t.Errorf("parse tree differs, -want +got:\n%s", diff)
	}
}

type parserErrorTest struct {
	name   string
	input  string
	errMsg string
}

var parserErrorTests = []parserErrorTest{
	{"missing colon after if", "if a\n    x = 1\n",
		"Syntax Error at line 1 near '\n': Expected ':' after if condition"},
	{"missing close paren", "x = (1 + 2\n",
		"Syntax Error at line 1 near '\n': Expected ')' after expression"},
	{"comparisons do not chain", "a < b < c\n",
		"Syntax Error at line 1 near '<': Expected expression"},
	{"missing rhs", "x =\n",
		"Syntax Error at line 1 near '\n': Expected expression"},
	{"missing block", "if a:\n",
		"Syntax Error at line -1 near 'EOF': Expected INDENT after NEWLINE for block suite"},
	// Without the paren the tokenizer never arms an indented block, so the
	// suite stays inline to keep this a parser-side failure.
	{"def missing paren", "def f: pass\n",
		"Syntax Error at line 1 near ':': Expected '(' after function name"},
	{"for missing in", "for i on x:\n    pass\n",
		"Syntax Error at line 1 near 'on': Expected 'in' after for variable"},
}

func TestParseErrors(t *testing.T) {
	for _, tc := range parserErrorTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root, err := parseProgram(t, tc.input)
			if err == nil {
				t.Fatalf("want error %q, got tree:\n%s", tc.errMsg, root.Dump())
			}
			if err.Error() != tc.errMsg {
				t.Errorf("want error %q, got %q", tc.errMsg, err.Error())
			}
			if root != nil {
				t.Error("want no tree on parse failure")
			}
		})
	}
}

func TestSkipToStatementBoundary(t *testing.T) {
	p := &parser{tokens: []lexer.Token{
		{Kind: lexer.LITERAL, Text: "1", Line: 1},
		{Kind: lexer.OPERATOR, Text: "+", Line: 1},
		{Kind: lexer.KEYWORD, Text: "while", Line: 1},
		{Kind: lexer.IDENTIFIER, Text: "a", Line: 1},
	}}
	p.skipToStatementBoundary()
	if p.pos != 2 {
		t.Errorf("want cursor at the 'while' keyword (2), got %d", p.pos)
	}

	p = &parser{tokens: []lexer.Token{
		{Kind: lexer.LITERAL, Text: "1", Line: 1},
		{Kind: lexer.OPERATOR, Text: "+", Line: 1},
	}}
	p.skipToStatementBoundary()
	if !p.done() {
		t.Errorf("want cursor at end of input, got %d", p.pos)
	}
}
