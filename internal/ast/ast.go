// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package ast defines the concrete parse tree built by the parser.  Unlike an
// abstract syntax tree, the concrete tree preserves delimiter tokens as nodes
// so the original syntactic shape can be re-rendered.
package ast

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of parse-tree node labels.
type Kind int

const (
	Program Kind = iota
	IfStatement
	ElifClause
	ElseClause
	WhileStatement
	ForStatement
	FunctionDefinition
	ClassDefinition
	ReturnStatement
	PassStatement
	BreakStatement
	ContinueStatement
	ImportStatement
	Assignment
	ExpressionStatement
	FunctionCallStatement
	Suite
	IdentifierList
	ExpressionList
	AssignOp
	Keyword
	Identifier
	Parameter
	Parameters
	Arguments
	Delimiter
	DottedName
	NamePart
	Alias
	ImportName
	ImportAll
	TernaryOp
	BinaryOp
	UnaryOp
	Comparison
	ComparisonOp
	FunctionCall
	AttributeAccess
	Tuple
	ParenExpr
	List
	Dict
	KeyValuePair
	Literal
)

// Printable names for node kinds.
var kindName = map[Kind]string{
	Program:               "Program",
	IfStatement:           "IfStatement",
	ElifClause:            "ElifClause",
	ElseClause:            "ElseClause",
	WhileStatement:        "WhileStatement",
	ForStatement:          "ForStatement",
	FunctionDefinition:    "FunctionDefinition",
	ClassDefinition:       "ClassDefinition",
	ReturnStatement:       "ReturnStatement",
	PassStatement:         "PassStatement",
	BreakStatement:        "BreakStatement",
	ContinueStatement:     "ContinueStatement",
	ImportStatement:       "ImportStatement",
	Assignment:            "Assignment",
	ExpressionStatement:   "ExpressionStatement",
	FunctionCallStatement: "FunctionCallStatement",
	Suite:                 "Suite",
	IdentifierList:        "IdentifierList",
	ExpressionList:        "ExpressionList",
	AssignOp:              "AssignOp",
	Keyword:               "Keyword",
	Identifier:            "Identifier",
	Parameter:             "Parameter",
	Parameters:            "Parameters",
	Arguments:             "Arguments",
	Delimiter:             "Delimiter",
	DottedName:            "DottedName",
	NamePart:              "NamePart",
	Alias:                 "Alias",
	ImportName:            "ImportName",
	ImportAll:             "ImportAll",
	TernaryOp:             "TernaryOp",
	BinaryOp:              "BinaryOp",
	UnaryOp:               "UnaryOp",
	Comparison:            "Comparison",
	ComparisonOp:          "ComparisonOp",
	FunctionCall:          "FunctionCall",
	AttributeAccess:       "AttributeAccess",
	Tuple:                 "Tuple",
	ParenExpr:             "ParenExpr",
	List:                  "List",
	Dict:                  "Dict",
	KeyValuePair:          "KeyValuePair",
	Literal:               "Literal",
}

func (k Kind) String() string {
	if s, ok := kindName[k]; ok {
		return s
	}
	return fmt.Sprintf("kind%d", int(k))
}

// A Node is one node of the concrete parse tree.  Each node exclusively owns
// its children; releasing the root releases the whole tree.
type Node struct {
	Kind     Kind
	Value    string
	Children []*Node
}

// New returns a leafless node of the given kind carrying value.
func New(kind Kind, value string) *Node {
	return &Node{Kind: kind, Value: value}
}

// AddChild appends child to n's ordered child list.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Label returns the node label, with the value appended after ": " when the
// node carries one.
func (n *Node) Label() string {
	if n.Value == "" {
		return n.Kind.String()
	}
	return n.Kind.String() + ": " + n.Value
}

// Dump renders the tree as indented text, two spaces per level.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(n.Label())
	sb.WriteString("\n")
	for _, child := range n.Children {
		child.dump(sb, depth+1)
	}
}
