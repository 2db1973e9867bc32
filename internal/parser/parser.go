// Copyright 2024 John Aziz. All Rights Reserved.
// This file is available under the Apache license.

// Package parser builds a concrete parse tree from the token stream by
// recursive descent.  The brackets, braces, parentheses, commas and colons
// of calls, composite atoms, and def/class headers, and the dots of dotted
// and attribute names, are preserved in the tree as Delimiter nodes.  The
// colons of if, elif, else, while and for headers and the commas of import
// lists, assignment targets and right-hand expression lists are consumed
// without a node.
package parser

import (
	"expvar"

	"github.com/golang/glog"

	"github.com/JohnAzizJA/Python-Compiler/internal/ast"
	"github.com/JohnAzizJA/Python-Compiler/internal/lexer"
)

var parseCount = expvar.NewInt("parser_parse_count")

// eofToken stands in for the current token once the stream is exhausted.
var eofToken = lexer.Token{Kind: lexer.ERROR, Text: "EOF", Line: -1}

// Assignment operators accepted after a statement-leading identifier.
var assignOps = map[string]struct{}{
	"=": {}, "+=": {}, "-=": {}, "*=": {}, "/=": {}, "%=": {}, "//=": {},
}

// Parse consumes the token sequence and returns the Program root, or a
// *SyntaxError describing the first expectation violation.  On error no tree
// is returned.
func Parse(tokens []lexer.Token) (*ast.Node, error) {
	parseCount.Add(1)
	glog.V(1).Infof("Parsing %d tokens", len(tokens))
	p := &parser{tokens: tokens}
	return p.program()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Helper methods.

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) cur() lexer.Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the cursor without
// consuming anything.  Lookahead is bounded: the grammar never peeks more
// than three tokens ahead.
func (p *parser) peekAt(offset int) lexer.Token {
	if p.pos+offset >= len(p.tokens) {
		return eofToken
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) match(kind lexer.Kind) bool {
	return !p.done() && p.cur().Kind == kind
}

func (p *parser) matchText(kind lexer.Kind, text string) bool {
	return !p.done() && p.cur().Kind == kind && p.cur().Text == text
}

func (p *parser) consume() lexer.Token {
	t := p.cur()
	if !p.done() {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind lexer.Kind, msg string) (lexer.Token, error) {
	if !p.match(kind) {
		return eofToken, p.syntaxError(msg)
	}
	return p.consume(), nil
}

func (p *parser) expectText(kind lexer.Kind, text, msg string) (lexer.Token, error) {
	if !p.matchText(kind, text) {
		return eofToken, p.syntaxError(msg)
	}
	return p.consume(), nil
}

func (p *parser) syntaxError(msg string) error {
	return &SyntaxError{Line: p.cur().Line, Near: p.cur().Text, Msg: msg}
}

func (p *parser) isAssignOp(t lexer.Token) bool {
	if t.Kind != lexer.OPERATOR {
		return false
	}
	_, ok := assignOps[t.Text]
	return ok
}

// skipToStatementBoundary advances the cursor to the next token that can
// begin a statement.  Reserved for future error recovery; no production rule
// calls it yet.
func (p *parser) skipToStatementBoundary() {
	for !p.done() {
		if p.matchText(lexer.DELIMITER, ";") || p.matchText(lexer.KEYWORD, "if") ||
			p.matchText(lexer.KEYWORD, "while") || p.matchText(lexer.KEYWORD, "for") ||
			p.matchText(lexer.KEYWORD, "def") || p.matchText(lexer.KEYWORD, "class") {
			return
		}
		p.pos++
	}
}

// Grammar rules.

// program ::= { NEWLINE | statement }*
func (p *parser) program() (*ast.Node, error) {
	node := ast.New(ast.Program, "")
	for !p.done() {
		for p.match(lexer.NEWLINE) {
			p.consume()
		}
		if p.done() {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		node.AddChild(stmt)
	}
	return node, nil
}

func (p *parser) statement() (*ast.Node, error) {
	for p.match(lexer.NEWLINE) {
		p.consume()
	}
	switch {
	case p.matchText(lexer.KEYWORD, "if"):
		return p.ifStatement()
	case p.matchText(lexer.KEYWORD, "while"):
		return p.whileStatement()
	case p.matchText(lexer.KEYWORD, "for"):
		return p.forStatement()
	case p.matchText(lexer.KEYWORD, "def"):
		return p.functionDef()
	case p.matchText(lexer.KEYWORD, "class"):
		return p.classDef()
	case p.matchText(lexer.KEYWORD, "return"):
		return p.returnStatement()
	case p.matchText(lexer.KEYWORD, "pass"):
		return p.keywordStatement(ast.PassStatement)
	case p.matchText(lexer.KEYWORD, "break"):
		return p.keywordStatement(ast.BreakStatement)
	case p.matchText(lexer.KEYWORD, "continue"):
		return p.keywordStatement(ast.ContinueStatement)
	case p.matchText(lexer.KEYWORD, "import"), p.matchText(lexer.KEYWORD, "from"):
		return p.importStatement()
	case p.match(lexer.IDENTIFIER):
		// One bounded lookahead distinguishes assignments, attribute
		// assignments and call statements without backtracking.
		if p.peekAt(1).Kind == lexer.DELIMITER && p.peekAt(1).Text == "." &&
			p.peekAt(2).Kind == lexer.IDENTIFIER && p.isAssignOp(p.peekAt(3)) {
			return p.assignmentStatement()
		}
		if p.isAssignOp(p.peekAt(1)) {
			return p.assignmentStatement()
		}
		if p.peekAt(1).Kind == lexer.DELIMITER && p.peekAt(1).Text == "(" {
			return p.functionCallStatement()
		}
		return p.expressionStatement()
	default:
		return p.expressionStatement()
	}
}

// blockOrSimpleSuite parses the body of a compound statement after ':':
// either NEWLINE INDENT statements... DEDENT, or one inline statement.
// End of input is accepted in place of the closing DEDENT.
func (p *parser) blockOrSimpleSuite() (*ast.Node, error) {
	node := ast.New(ast.Suite, "")
	if p.match(lexer.NEWLINE) {
		p.consume()
		if !p.match(lexer.INDENT) {
			return nil, p.syntaxError("Expected INDENT after NEWLINE for block suite")
		}
		p.consume()
		for !p.match(lexer.DEDENT) && !p.done() {
			for p.match(lexer.NEWLINE) {
				p.consume()
			}
			if p.match(lexer.DEDENT) || p.done() {
				break
			}
			stmt, err := p.statement()
			if err != nil {
				return nil, err
			}
			node.AddChild(stmt)
		}
		if p.match(lexer.DEDENT) {
			p.consume()
		}
		return node, nil
	}
	if p.match(lexer.IDENTIFIER) || p.matchKeywordIn("return", "pass", "break", "continue",
		"import", "from", "if", "while", "for", "def", "class") {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		node.AddChild(stmt)
		return node, nil
	}
	return nil, p.syntaxError("Expected NEWLINE+INDENT for block or a simple statement after ':'")
}

func (p *parser) matchKeywordIn(words ...string) bool {
	for _, w := range words {
		if p.matchText(lexer.KEYWORD, w) {
			return true
		}
	}
	return false
}

func (p *parser) ifStatement() (*ast.Node, error) {
	node := ast.New(ast.IfStatement, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	cond, err := p.test()
	if err != nil {
		return nil, err
	}
	node.AddChild(cond)
	if _, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after if condition"); err != nil {
		return nil, err
	}
	suite, err := p.blockOrSimpleSuite()
	if err != nil {
		return nil, err
	}
	node.AddChild(suite)

	for p.matchText(lexer.KEYWORD, "elif") {
		elifNode := ast.New(ast.ElifClause, "")
		elifNode.AddChild(ast.New(ast.Keyword, p.consume().Text))
		cond, err := p.test()
		if err != nil {
			return nil, err
		}
		elifNode.AddChild(cond)
		if _, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after elif condition"); err != nil {
			return nil, err
		}
		suite, err := p.blockOrSimpleSuite()
		if err != nil {
			return nil, err
		}
		elifNode.AddChild(suite)
		node.AddChild(elifNode)
	}

	if p.matchText(lexer.KEYWORD, "else") {
		elseNode := ast.New(ast.ElseClause, "")
		elseNode.AddChild(ast.New(ast.Keyword, p.consume().Text))
		if _, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after 'else'"); err != nil {
			return nil, err
		}
		suite, err := p.blockOrSimpleSuite()
		if err != nil {
			return nil, err
		}
		elseNode.AddChild(suite)
		node.AddChild(elseNode)
	}
	return node, nil
}

func (p *parser) whileStatement() (*ast.Node, error) {
	node := ast.New(ast.WhileStatement, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	cond, err := p.test()
	if err != nil {
		return nil, err
	}
	node.AddChild(cond)
	if _, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after while condition"); err != nil {
		return nil, err
	}
	suite, err := p.blockOrSimpleSuite()
	if err != nil {
		return nil, err
	}
	node.AddChild(suite)
	return node, nil
}

func (p *parser) forStatement() (*ast.Node, error) {
	node := ast.New(ast.ForStatement, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	id, err := p.expect(lexer.IDENTIFIER, "Expected identifier after 'for'")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Identifier, id.Text))
	if _, err := p.expectText(lexer.KEYWORD, "in", "Expected 'in' after for variable"); err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Keyword, "in"))
	iter, err := p.test()
	if err != nil {
		return nil, err
	}
	node.AddChild(iter)
	if _, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after for statement"); err != nil {
		return nil, err
	}
	suite, err := p.blockOrSimpleSuite()
	if err != nil {
		return nil, err
	}
	node.AddChild(suite)
	return node, nil
}

func (p *parser) functionDef() (*ast.Node, error) {
	node := ast.New(ast.FunctionDefinition, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	name, err := p.expect(lexer.IDENTIFIER, "Expected function name after 'def'")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Identifier, name.Text))

	openParen, err := p.expectText(lexer.DELIMITER, "(", "Expected '(' after function name")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, openParen.Text))

	params := ast.New(ast.Parameters, "")
	if !p.matchText(lexer.DELIMITER, ")") {
		for {
			param, err := p.expect(lexer.IDENTIFIER, "Expected parameter name")
			if err != nil {
				return nil, err
			}
			params.AddChild(ast.New(ast.Parameter, param.Text))
			if !p.matchText(lexer.DELIMITER, ",") {
				break
			}
			comma := p.consume()
			params.AddChild(ast.New(ast.Delimiter, comma.Text))
			if p.matchText(lexer.DELIMITER, ")") {
				break
			}
		}
	}
	node.AddChild(params)

	closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after parameters")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, closeParen.Text))

	colon, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after function declaration")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, colon.Text))

	suite, err := p.blockOrSimpleSuite()
	if err != nil {
		return nil, err
	}
	node.AddChild(suite)
	return node, nil
}

func (p *parser) classDef() (*ast.Node, error) {
	node := ast.New(ast.ClassDefinition, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	name, err := p.expect(lexer.IDENTIFIER, "Expected class name after 'class'")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Identifier, name.Text))

	if p.matchText(lexer.DELIMITER, "(") {
		openParen := p.consume()
		node.AddChild(ast.New(ast.Delimiter, openParen.Text))
		parent, err := p.expect(lexer.IDENTIFIER, "Expected parent class name")
		if err != nil {
			return nil, err
		}
		node.AddChild(ast.New(ast.Identifier, parent.Text))
		closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after parent class name")
		if err != nil {
			return nil, err
		}
		node.AddChild(ast.New(ast.Delimiter, closeParen.Text))
	}

	colon, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after class declaration")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, colon.Text))

	suite, err := p.blockOrSimpleSuite()
	if err != nil {
		return nil, err
	}
	node.AddChild(suite)
	return node, nil
}

func (p *parser) returnStatement() (*ast.Node, error) {
	node := ast.New(ast.ReturnStatement, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	if !p.matchText(lexer.DELIMITER, ";") && !p.match(lexer.NEWLINE) &&
		!p.match(lexer.DEDENT) && !p.done() {
		value, err := p.test()
		if err != nil {
			return nil, err
		}
		node.AddChild(value)
	}
	return node, nil
}

func (p *parser) keywordStatement(kind ast.Kind) (*ast.Node, error) {
	node := ast.New(kind, "")
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	return node, nil
}

func (p *parser) importStatement() (*ast.Node, error) {
	node := ast.New(ast.ImportStatement, "")
	keyword := p.consume()
	node.AddChild(ast.New(ast.Keyword, keyword.Text))

	if keyword.Text == "import" {
		name, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		node.AddChild(name)
		if err := p.importAlias(node); err != nil {
			return nil, err
		}
		for p.matchText(lexer.DELIMITER, ",") {
			p.consume()
			name, err := p.dottedName()
			if err != nil {
				return nil, err
			}
			node.AddChild(name)
			if err := p.importAlias(node); err != nil {
				return nil, err
			}
		}
		return node, nil
	}

	// from DottedName import ( * | IDENT [ as IDENT ] )
	name, err := p.dottedName()
	if err != nil {
		return nil, err
	}
	node.AddChild(name)
	if _, err := p.expectText(lexer.KEYWORD, "import", "Expected 'import' after module name"); err != nil {
		return nil, err
	}
	if p.matchText(lexer.OPERATOR, "*") {
		node.AddChild(ast.New(ast.ImportAll, p.consume().Text))
		return node, nil
	}
	imported, err := p.expect(lexer.IDENTIFIER, "Expected name to import")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.ImportName, imported.Text))
	if err := p.importAlias(node); err != nil {
		return nil, err
	}
	return node, nil
}

// importAlias consumes an optional "as IDENT" clause, adding an Alias child.
func (p *parser) importAlias(node *ast.Node) error {
	if !p.matchText(lexer.KEYWORD, "as") {
		return nil
	}
	p.consume()
	alias, err := p.expect(lexer.IDENTIFIER, "Expected identifier after 'as'")
	if err != nil {
		return err
	}
	node.AddChild(ast.New(ast.Alias, alias.Text))
	return nil
}

func (p *parser) dottedName() (*ast.Node, error) {
	node := ast.New(ast.DottedName, "")
	part, err := p.expect(lexer.IDENTIFIER, "Expected identifier")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.NamePart, part.Text))
	for p.matchText(lexer.DELIMITER, ".") {
		dot := p.consume()
		node.AddChild(ast.New(ast.Delimiter, dot.Text))
		part, err := p.expect(lexer.IDENTIFIER, "Expected identifier after '.'")
		if err != nil {
			return nil, err
		}
		node.AddChild(ast.New(ast.NamePart, part.Text))
	}
	return node, nil
}

// assignmentStatement wraps an Assignment in an ExpressionStatement node.
func (p *parser) assignmentStatement() (*ast.Node, error) {
	assign, err := p.assignment()
	if err != nil {
		return nil, err
	}
	node := ast.New(ast.ExpressionStatement, "")
	node.AddChild(assign)
	return node, nil
}

func (p *parser) assignment() (*ast.Node, error) {
	node := ast.New(ast.Assignment, "")
	target := ast.New(ast.IdentifierList, "")
	if !p.match(lexer.IDENTIFIER) {
		return nil, p.syntaxError("Expected identifier or attribute access")
	}
	if p.peekAt(1).Kind == lexer.DELIMITER && p.peekAt(1).Text == "." {
		expr, err := p.atomExpr()
		if err != nil {
			return nil, err
		}
		target.AddChild(expr)
	} else {
		target.AddChild(ast.New(ast.Identifier, p.consume().Text))
	}
	for p.matchText(lexer.DELIMITER, ",") {
		p.consume()
		id, err := p.expect(lexer.IDENTIFIER, "Expected identifier after ','")
		if err != nil {
			return nil, err
		}
		target.AddChild(ast.New(ast.Identifier, id.Text))
	}
	node.AddChild(target)

	op, err := p.expect(lexer.OPERATOR, "Expected assignment operator")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.AssignOp, op.Text))

	first, err := p.test()
	if err != nil {
		return nil, err
	}
	if p.matchText(lexer.DELIMITER, ",") {
		value := ast.New(ast.ExpressionList, "")
		value.AddChild(first)
		for p.matchText(lexer.DELIMITER, ",") {
			p.consume()
			expr, err := p.test()
			if err != nil {
				return nil, err
			}
			value.AddChild(expr)
		}
		node.AddChild(value)
	} else {
		node.AddChild(first)
	}
	return node, nil
}

func (p *parser) functionCallStatement() (*ast.Node, error) {
	node := ast.New(ast.FunctionCallStatement, "")
	if !p.match(lexer.IDENTIFIER) {
		return nil, p.syntaxError("Expected function name")
	}
	if p.peekAt(1).Kind == lexer.DELIMITER && p.peekAt(1).Text == "." {
		name, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		node.AddChild(name)
	} else {
		node.AddChild(ast.New(ast.Identifier, p.consume().Text))
	}

	openParen, err := p.expectText(lexer.DELIMITER, "(", "Expected '(' after function name")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, openParen.Text))

	args, err := p.arguments()
	if err != nil {
		return nil, err
	}
	node.AddChild(args)

	closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after function arguments")
	if err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Delimiter, closeParen.Text))
	return node, nil
}

// arguments parses a possibly empty, comma-separated argument list up to the
// closing parenthesis, preserving the commas and tolerating a trailing one.
func (p *parser) arguments() (*ast.Node, error) {
	args := ast.New(ast.Arguments, "")
	if p.matchText(lexer.DELIMITER, ")") {
		return args, nil
	}
	arg, err := p.test()
	if err != nil {
		return nil, err
	}
	args.AddChild(arg)
	for p.matchText(lexer.DELIMITER, ",") {
		comma := p.consume()
		args.AddChild(ast.New(ast.Delimiter, comma.Text))
		if p.matchText(lexer.DELIMITER, ")") {
			break
		}
		arg, err := p.test()
		if err != nil {
			return nil, err
		}
		args.AddChild(arg)
	}
	return args, nil
}

func (p *parser) expressionStatement() (*ast.Node, error) {
	node := ast.New(ast.ExpressionStatement, "")
	expr, err := p.test()
	if err != nil {
		return nil, err
	}
	node.AddChild(expr)
	return node, nil
}

// Expression grammar, lowest precedence first.

func (p *parser) test() (*ast.Node, error) {
	return p.ternary()
}

// ternary ::= orTest [ 'if' orTest 'else' test ]
func (p *parser) ternary() (*ast.Node, error) {
	then, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.matchText(lexer.KEYWORD, "if") {
		return then, nil
	}
	node := ast.New(ast.TernaryOp, "")
	node.AddChild(then)
	node.AddChild(ast.New(ast.Keyword, p.consume().Text))
	cond, err := p.orTest()
	if err != nil {
		return nil, err
	}
	node.AddChild(cond)
	if _, err := p.expectText(lexer.KEYWORD, "else", "Expected 'else' in conditional expression"); err != nil {
		return nil, err
	}
	node.AddChild(ast.New(ast.Keyword, "else"))
	alt, err := p.test()
	if err != nil {
		return nil, err
	}
	node.AddChild(alt)
	return node, nil
}

func (p *parser) orTest() (*ast.Node, error) {
	node, err := p.andTest()
	if err != nil {
		return nil, err
	}
	for p.matchText(lexer.KEYWORD, "or") {
		opNode := ast.New(ast.BinaryOp, p.consume().Text)
		opNode.AddChild(node)
		right, err := p.andTest()
		if err != nil {
			return nil, err
		}
		opNode.AddChild(right)
		node = opNode
	}
	return node, nil
}

func (p *parser) andTest() (*ast.Node, error) {
	node, err := p.notTest()
	if err != nil {
		return nil, err
	}
	for p.matchText(lexer.KEYWORD, "and") {
		opNode := ast.New(ast.BinaryOp, p.consume().Text)
		opNode.AddChild(node)
		right, err := p.notTest()
		if err != nil {
			return nil, err
		}
		opNode.AddChild(right)
		node = opNode
	}
	return node, nil
}

func (p *parser) notTest() (*ast.Node, error) {
	if p.matchText(lexer.KEYWORD, "not") {
		node := ast.New(ast.UnaryOp, p.consume().Text)
		operand, err := p.notTest()
		if err != nil {
			return nil, err
		}
		node.AddChild(operand)
		return node, nil
	}
	return p.comparison()
}

// comparison ::= arithExpr [ compOp arithExpr ]
// Comparisons do not chain; a second comparison operator is left for the
// caller and surfaces as a syntax error.
func (p *parser) comparison() (*ast.Node, error) {
	left, err := p.arithExpr()
	if err != nil {
		return nil, err
	}
	if !p.matchOperatorIn("<", ">", "==", ">=", "<=", "!=") {
		return left, nil
	}
	node := ast.New(ast.Comparison, "")
	node.AddChild(left)
	node.AddChild(ast.New(ast.ComparisonOp, p.consume().Text))
	right, err := p.arithExpr()
	if err != nil {
		return nil, err
	}
	node.AddChild(right)
	return node, nil
}

func (p *parser) matchOperatorIn(ops ...string) bool {
	for _, op := range ops {
		if p.matchText(lexer.OPERATOR, op) {
			return true
		}
	}
	return false
}

// arithExpr ::= term { ('+'|'-') term }*
// Two or more operands are emitted as a flat ExpressionList; a single
// operand passes through unwrapped.
func (p *parser) arithExpr() (*ast.Node, error) {
	list := ast.New(ast.ExpressionList, "")
	term, err := p.term()
	if err != nil {
		return nil, err
	}
	list.AddChild(term)
	for p.matchOperatorIn("+", "-") {
		list.AddChild(ast.New(ast.BinaryOp, p.consume().Text))
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		list.AddChild(term)
	}
	if len(list.Children) == 1 {
		return list.Children[0], nil
	}
	return list, nil
}

func (p *parser) term() (*ast.Node, error) {
	node, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.matchOperatorIn("*", "/", "//") {
		opNode := ast.New(ast.BinaryOp, p.consume().Text)
		opNode.AddChild(node)
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		opNode.AddChild(right)
		node = opNode
	}
	return node, nil
}

func (p *parser) factor() (*ast.Node, error) {
	if p.matchOperatorIn("+", "-", "~") {
		node := ast.New(ast.UnaryOp, p.consume().Text)
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		node.AddChild(operand)
		return node, nil
	}
	return p.atomExpr()
}

// atomExpr ::= atom { trailer }* where trailer is a call or attribute access,
// binding left to right.
func (p *parser) atomExpr() (*ast.Node, error) {
	node, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.matchText(lexer.DELIMITER, "("):
			callNode := ast.New(ast.FunctionCall, "")
			callNode.AddChild(node)
			openParen := p.consume()
			callNode.AddChild(ast.New(ast.Delimiter, openParen.Text))
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			callNode.AddChild(args)
			closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after function arguments")
			if err != nil {
				return nil, err
			}
			callNode.AddChild(ast.New(ast.Delimiter, closeParen.Text))
			node = callNode
		case p.matchText(lexer.DELIMITER, "."):
			dot := p.consume()
			attrNode := ast.New(ast.AttributeAccess, "")
			attrNode.AddChild(node)
			attrNode.AddChild(ast.New(ast.Delimiter, dot.Text))
			name, err := p.expect(lexer.IDENTIFIER, "Expected attribute name after '.'")
			if err != nil {
				return nil, err
			}
			attrNode.AddChild(ast.New(ast.Identifier, name.Text))
			node = attrNode
		default:
			return node, nil
		}
	}
}

func (p *parser) atom() (*ast.Node, error) {
	switch {
	case p.matchText(lexer.DELIMITER, "("):
		return p.parenAtom()
	case p.matchText(lexer.DELIMITER, "["):
		return p.listAtom()
	case p.matchText(lexer.DELIMITER, "{"):
		return p.dictAtom()
	case p.match(lexer.IDENTIFIER):
		return ast.New(ast.Identifier, p.consume().Text), nil
	case p.match(lexer.LITERAL):
		return ast.New(ast.Literal, p.consume().Text), nil
	case p.matchText(lexer.KEYWORD, "None"), p.matchText(lexer.KEYWORD, "True"), p.matchText(lexer.KEYWORD, "False"):
		return ast.New(ast.Keyword, p.consume().Text), nil
	case p.done():
		return nil, p.syntaxError("Unexpected end of input (EOF) while parsing expression")
	default:
		return nil, p.syntaxError("Expected expression")
	}
}

// parenAtom disambiguates '(': an empty Tuple, a parenthesized expression,
// or a Tuple of comma-separated elements (trailing comma allowed).
func (p *parser) parenAtom() (*ast.Node, error) {
	openParen := p.consume()
	if p.matchText(lexer.DELIMITER, ")") {
		closeParen := p.consume()
		tupleNode := ast.New(ast.Tuple, "")
		tupleNode.AddChild(ast.New(ast.Delimiter, openParen.Text))
		tupleNode.AddChild(ast.New(ast.Delimiter, closeParen.Text))
		return tupleNode, nil
	}
	expr, err := p.test()
	if err != nil {
		return nil, err
	}
	if p.matchText(lexer.DELIMITER, ",") {
		tupleNode := ast.New(ast.Tuple, "")
		tupleNode.AddChild(ast.New(ast.Delimiter, openParen.Text))
		tupleNode.AddChild(expr)
		for p.matchText(lexer.DELIMITER, ",") {
			comma := p.consume()
			tupleNode.AddChild(ast.New(ast.Delimiter, comma.Text))
			if p.matchText(lexer.DELIMITER, ")") {
				break
			}
			element, err := p.test()
			if err != nil {
				return nil, err
			}
			tupleNode.AddChild(element)
		}
		closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after tuple elements")
		if err != nil {
			return nil, err
		}
		tupleNode.AddChild(ast.New(ast.Delimiter, closeParen.Text))
		return tupleNode, nil
	}
	closeParen, err := p.expectText(lexer.DELIMITER, ")", "Expected ')' after expression")
	if err != nil {
		return nil, err
	}
	exprNode := ast.New(ast.ParenExpr, "")
	exprNode.AddChild(ast.New(ast.Delimiter, openParen.Text))
	exprNode.AddChild(expr)
	exprNode.AddChild(ast.New(ast.Delimiter, closeParen.Text))
	return exprNode, nil
}

func (p *parser) listAtom() (*ast.Node, error) {
	listNode := ast.New(ast.List, "")
	openBracket := p.consume()
	listNode.AddChild(ast.New(ast.Delimiter, openBracket.Text))
	if !p.matchText(lexer.DELIMITER, "]") {
		element, err := p.test()
		if err != nil {
			return nil, err
		}
		listNode.AddChild(element)
		for p.matchText(lexer.DELIMITER, ",") {
			comma := p.consume()
			listNode.AddChild(ast.New(ast.Delimiter, comma.Text))
			if p.matchText(lexer.DELIMITER, "]") {
				break
			}
			element, err := p.test()
			if err != nil {
				return nil, err
			}
			listNode.AddChild(element)
		}
	}
	closeBracket, err := p.expectText(lexer.DELIMITER, "]", "Expected ']' after list elements")
	if err != nil {
		return nil, err
	}
	listNode.AddChild(ast.New(ast.Delimiter, closeBracket.Text))
	return listNode, nil
}

func (p *parser) dictAtom() (*ast.Node, error) {
	dictNode := ast.New(ast.Dict, "")
	openBrace := p.consume()
	dictNode.AddChild(ast.New(ast.Delimiter, openBrace.Text))
	if !p.matchText(lexer.DELIMITER, "}") {
		pair, err := p.keyValuePair()
		if err != nil {
			return nil, err
		}
		dictNode.AddChild(pair)
		for p.matchText(lexer.DELIMITER, ",") {
			comma := p.consume()
			dictNode.AddChild(ast.New(ast.Delimiter, comma.Text))
			if p.matchText(lexer.DELIMITER, "}") {
				break
			}
			pair, err := p.keyValuePair()
			if err != nil {
				return nil, err
			}
			dictNode.AddChild(pair)
		}
	}
	closeBrace, err := p.expectText(lexer.DELIMITER, "}", "Expected '}' after dictionary elements")
	if err != nil {
		return nil, err
	}
	dictNode.AddChild(ast.New(ast.Delimiter, closeBrace.Text))
	return dictNode, nil
}

// keyValuePair parses "key : value"; the pair owns its colon delimiter as
// its middle child.
func (p *parser) keyValuePair() (*ast.Node, error) {
	key, err := p.test()
	if err != nil {
		return nil, err
	}
	colon, err := p.expectText(lexer.DELIMITER, ":", "Expected ':' after dictionary key")
	if err != nil {
		return nil, err
	}
	value, err := p.test()
	if err != nil {
		return nil, err
	}
	pairNode := ast.New(ast.KeyValuePair, "")
	pairNode.AddChild(key)
	pairNode.AddChild(ast.New(ast.Delimiter, colon.Text))
	pairNode.AddChild(value)
	return pairNode, nil
}
