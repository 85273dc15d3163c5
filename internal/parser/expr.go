package parser

import (
	"strconv"

	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/lexer"
)

// parseExpr parses a full expression including the comma operator
func (p *Parser) parseExpr() *ast.Expression {
	expr := p.parseAssignExpr()
	for p.at(lexer.COMMA) {
		tok := p.advance()
		right := p.parseAssignExpr()
		expr = &ast.Expression{Kind: ast.Comma, Pos: pos(tok), Sub: []*ast.Expression{expr, right}}
	}
	return expr
}

var assignOps = map[lexer.TokenType]ast.Kind{
	lexer.ASSIGN:    ast.Assign,
	lexer.PLUSEQ:    ast.AssPlus,
	lexer.MINUSEQ:   ast.AssMinus,
	lexer.STAREQ:    ast.AssMult,
	lexer.SLASHEQ:   ast.AssDiv,
	lexer.PERCENTEQ: ast.AssMod,
	lexer.AMPEQ:     ast.AssAnd,
	lexer.PIPEEQ:    ast.AssOr,
	lexer.CARETEQ:   ast.AssXor,
	lexer.LSHIFTEQ:  ast.AssLShift,
	lexer.RSHIFTEQ:  ast.AssRShift,
}

// parseAssignExpr parses a right-associative assignment
func (p *Parser) parseAssignExpr() *ast.Expression {
	expr := p.parseConditional()
	if kind, ok := assignOps[p.cur().Type]; ok {
		tok := p.advance()
		right := p.parseAssignExpr()
		return &ast.Expression{Kind: kind, Pos: pos(tok), Sub: []*ast.Expression{expr, right}}
	}
	return expr
}

// parseConditional parses an inline if (c ? t : e)
func (p *Parser) parseConditional() *ast.Expression {
	expr := p.parseBinary(0)
	if p.at(lexer.QUESTION) {
		tok := p.advance()
		then := p.parseExpr()
		p.expect(lexer.COLON, "':'")
		otherwise := p.parseConditional()
		return &ast.Expression{Kind: ast.InlineIf, Pos: pos(tok),
			Sub: []*ast.Expression{expr, then, otherwise}}
	}
	return expr
}

// binaryLevels lists the binary operators from loosest to tightest
var binaryLevels = []map[lexer.TokenType]ast.Kind{
	{lexer.OR: ast.Or},
	{lexer.AND: ast.And},
	{lexer.PIPE: ast.BitOr},
	{lexer.CARET: ast.BitXor},
	{lexer.AMP: ast.BitAnd},
	{lexer.EQ: ast.Eq, lexer.NEQ: ast.Neq},
	{lexer.LT: ast.Lt, lexer.LEQ: ast.Le, lexer.GEQ: ast.Ge, lexer.GT: ast.Gt},
	{lexer.MINOP: ast.Min, lexer.MAXOP: ast.Max},
	{lexer.LSHIFT: ast.LShift, lexer.RSHIFT: ast.RShift},
	{lexer.PLUS: ast.Plus, lexer.MINUS: ast.Minus},
	{lexer.STAR: ast.Mult, lexer.SLASH: ast.Div, lexer.PERCENT: ast.Mod},
}

func (p *Parser) parseBinary(level int) *ast.Expression {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	expr := p.parseBinary(level + 1)
	for {
		kind, ok := binaryLevels[level][p.cur().Type]
		if !ok {
			return expr
		}
		tok := p.advance()
		right := p.parseBinary(level + 1)
		expr = &ast.Expression{Kind: kind, Pos: pos(tok), Sub: []*ast.Expression{expr, right}}
	}
}

func (p *Parser) parseUnary() *ast.Expression {
	switch p.cur().Type {
	case lexer.NOT:
		tok := p.advance()
		return &ast.Expression{Kind: ast.Not, Pos: pos(tok), Sub: []*ast.Expression{p.parseUnary()}}
	case lexer.MINUS:
		tok := p.advance()
		return &ast.Expression{Kind: ast.UnaryMinus, Pos: pos(tok), Sub: []*ast.Expression{p.parseUnary()}}
	case lexer.PLUS:
		p.advance()
		return p.parseUnary()
	case lexer.INCR:
		tok := p.advance()
		return &ast.Expression{Kind: ast.PreIncrement, Pos: pos(tok), Sub: []*ast.Expression{p.parseUnary()}}
	case lexer.DECR:
		tok := p.advance()
		return &ast.Expression{Kind: ast.PreDecrement, Pos: pos(tok), Sub: []*ast.Expression{p.parseUnary()}}
	default:
		return p.parsePostfixExpr()
	}
}

// parsePostfixExpr parses a primary expression followed by subscripts,
// field accesses, calls and postfix increments. Subscripts and field
// accesses are typed here; call nodes are left without a type (the
// checker checks their arguments but assigns them no type either).
func (p *Parser) parsePostfixExpr() *ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur().Type {
		case lexer.LBRACKET:
			tok := p.advance()
			index := p.parseExpr()
			p.expect(lexer.RBRACKET, "']'")
			node := &ast.Expression{Kind: ast.Index, Pos: pos(tok),
				Sub: []*ast.Expression{expr, index}}
			if expr.Base() == ast.Array {
				node.Typ = expr.Type().Sub()
			} else {
				p.errorf(tok, "array expected here")
				node.Typ = ast.TypeInt
			}
			expr = node

		case lexer.DOT:
			tok := p.advance()
			field := p.expect(lexer.IDENT, "field name")
			node := &ast.Expression{Kind: ast.Dot, Pos: pos(tok),
				Sub: []*ast.Expression{expr}, Name: field.Literal}
			if expr.Base() == ast.Record {
				if sym := expr.Type().RecordFields().Lookup(field.Literal); sym != nil {
					node.Typ = sym.Type()
				} else {
					p.errorf(field, "unknown field '%s'", field.Literal)
					node.Typ = ast.TypeInt
				}
			} else {
				p.errorf(tok, "struct expected here")
				node.Typ = ast.TypeInt
			}
			expr = node

		case lexer.LPAREN:
			tok := p.advance()
			call := &ast.Expression{Kind: ast.FunCall, Pos: pos(tok),
				Sub: []*ast.Expression{expr}}
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				call.Sub = append(call.Sub, p.parseAssignExpr())
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN, "')'")
			expr = call

		case lexer.INCR:
			tok := p.advance()
			expr = &ast.Expression{Kind: ast.PostIncrement, Pos: pos(tok),
				Sub: []*ast.Expression{expr}}

		case lexer.DECR:
			tok := p.advance()
			expr = &ast.Expression{Kind: ast.PostDecrement, Pos: pos(tok),
				Sub: []*ast.Expression{expr}}

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() *ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			p.errorf(tok, "integer literal out of range")
		}
		return ast.NewLiteral(pos(tok), int32(n))

	case lexer.TRUE:
		p.advance()
		e := ast.NewLiteral(pos(tok), 1)
		e.Typ = ast.TypeBool
		return e

	case lexer.FALSE:
		p.advance()
		e := ast.NewLiteral(pos(tok), 0)
		e.Typ = ast.TypeBool
		return e

	case lexer.IDENT:
		p.advance()
		return ast.NewIdentifier(pos(tok), p.resolve(tok))

	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(lexer.RPAREN, "')'")
		return expr

	default:
		p.errorf(tok, "expected an expression, got '%s'", tok.Literal)
		p.advance()
		return ast.NewLiteral(pos(tok), 0)
	}
}
