package parser

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/lexer"
)

// ParseQueries parses verification queries against an already parsed
// system and appends them to its property list. A query is one of
//
//	A[] expr    E<> expr    A<> expr    E[] expr    expr --> expr
//
// Identifiers are resolved in the system's global scope.
func (p *Parser) ParseQueries(sys *ast.System) {
	p.sys = sys
	p.scopes = []*ast.Frame{sys.Global.Frame}

	for !p.at(lexer.EOF) {
		prop := p.parseQuery()
		if prop != nil {
			sys.Properties = append(sys.Properties, prop)
		}
		p.accept(lexer.SEMICOLON)
	}
}

func (p *Parser) parseQuery() *ast.Property {
	tok := p.cur()

	if quant := p.acceptQuantifier(); quant != "" {
		expr := p.parseExpr()
		return &ast.Property{Expr: expr, Quant: quant, Pos: pos(tok)}
	}

	expr := p.parseExpr()
	if p.at(lexer.LEADSTO) {
		arrow := p.advance()
		right := p.parseExpr()
		expr = &ast.Expression{Kind: ast.LeadsTo, Pos: pos(arrow),
			Sub: []*ast.Expression{expr, right}}
		return &ast.Property{Expr: expr, Pos: pos(tok)}
	}

	p.errorf(tok, "expected a path quantifier or a leads-to query")
	p.synchronize()
	return nil
}

// acceptQuantifier recognises the two-token path quantifiers A[], E<>,
// A<> and E[]
func (p *Parser) acceptQuantifier() string {
	if !p.at(lexer.IDENT) {
		return ""
	}
	name := p.cur().Literal
	if name != "A" && name != "E" {
		return ""
	}
	switch p.peek().Type {
	case lexer.LBRACKET:
		p.advance()
		p.advance()
		p.expect(lexer.RBRACKET, "']'")
		return name + "[]"
	case lexer.LT:
		p.advance()
		p.advance()
		p.expect(lexer.GT, "'>'")
		return name + "<>"
	}
	return ""
}
