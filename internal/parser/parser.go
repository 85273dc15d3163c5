// Package parser builds a system from the textual model dialect. The
// parser doubles as the system builder: it resolves identifiers against
// lexical scopes, establishes the types of identifiers, literals, field
// accesses and subscripts, and leaves everything else for the checker to
// annotate.
package parser

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/diagnostic"
	"github.com/rohitverma007/utap/internal/lexer"
)

// Parser parses a model source text into an ast.System
type Parser struct {
	tokens []lexer.Token
	pos    int
	diag   *diagnostic.Diagnostics

	sys       *ast.System
	scopes    []*ast.Frame
	typedefs  map[string]*ast.Type
	instances map[string]*ast.Instance
	templates map[string]*ast.Template

	// newxta records which dialect was requested. Both dialects are
	// parsed by the same grammar and the lexer accepts ':=' as well as
	// '=' for assignment in either, so the flag does not change parsing.
	newxta bool
}

// New creates a parser for the given source
func New(source string, newxta bool) *Parser {
	return &Parser{
		tokens:    lexer.New(source).Tokenize(),
		diag:      diagnostic.New(),
		typedefs:  make(map[string]*ast.Type),
		instances: make(map[string]*ast.Instance),
		templates: make(map[string]*ast.Template),
		newxta:    newxta,
	}
}

// Diagnostics returns the diagnostics collected while parsing
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diag
}

// Parse parses the whole model
func (p *Parser) Parse() *ast.System {
	p.sys = &ast.System{}
	p.sys.Global.Frame = ast.NewFrame()
	p.scopes = []*ast.Frame{p.sys.Global.Frame}

	for !p.at(lexer.EOF) {
		switch {
		case p.at(lexer.PROCESS):
			p.parseTemplate()
		case p.at(lexer.TYPEDEF):
			p.parseTypedef()
		case p.at(lexer.SYSTEM):
			p.parseSystemLine()
		case p.at(lexer.IDENT) && p.typedefs[p.cur().Literal] == nil && p.peek().Type == lexer.ASSIGN:
			p.parseInstantiation()
		case p.atTypeStart():
			p.parseDeclaration(&p.sys.Global)
		default:
			p.errorf(p.cur(), "unexpected token '%s'", p.cur().Literal)
			p.synchronize()
		}
	}

	return p.sys
}

// Token helpers

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) at(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if !p.at(lexer.EOF) {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(t lexer.TokenType) bool {
	if p.at(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType, what string) lexer.Token {
	if p.at(t) {
		return p.advance()
	}
	p.errorf(p.cur(), "expected %s, got '%s'", what, p.cur().Literal)
	return p.cur()
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) {
	p.diag.Errorf(tok.Line, tok.Column, format, args...)
}

// synchronize skips ahead to the next likely declaration boundary
func (p *Parser) synchronize() {
	for !p.at(lexer.EOF) {
		if p.accept(lexer.SEMICOLON) {
			return
		}
		if p.at(lexer.RBRACE) || p.at(lexer.PROCESS) || p.at(lexer.SYSTEM) {
			return
		}
		p.advance()
	}
}

func pos(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// Scopes

func (p *Parser) pushScope(frame *ast.Frame) {
	p.scopes = append(p.scopes, frame)
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) declare(tok lexer.Token, t *ast.Type) *ast.Symbol {
	frame := p.scopes[len(p.scopes)-1]
	if frame.Lookup(tok.Literal) != nil {
		p.errorf(tok, "'%s' already defined in this scope", tok.Literal)
	}
	return frame.Add(tok.Literal, t)
}

func (p *Parser) resolve(tok lexer.Token) *ast.Symbol {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if sym := p.scopes[i].Lookup(tok.Literal); sym != nil {
			return sym
		}
	}
	p.errorf(tok, "unknown identifier '%s'", tok.Literal)
	return &ast.Symbol{Name: tok.Literal, Typ: ast.TypeInt}
}

// Types and declarations

func (p *Parser) atTypeStart() bool {
	switch p.cur().Type {
	case lexer.CONST, lexer.URGENT, lexer.BROADCAST,
		lexer.INT_TYPE, lexer.BOOL_TYPE, lexer.CLOCK, lexer.CHAN,
		lexer.VOID_TYPE, lexer.STRUCT:
		return true
	case lexer.IDENT:
		return p.typedefs[p.cur().Literal] != nil
	}
	return false
}

func (p *Parser) parsePrefixes() ast.Prefix {
	var prefixes ast.Prefix
	for {
		switch {
		case p.accept(lexer.CONST):
			prefixes |= ast.PrefixConstant
		case p.accept(lexer.URGENT):
			prefixes |= ast.PrefixUrgent
		case p.accept(lexer.BROADCAST):
			prefixes |= ast.PrefixBroadcast
		default:
			return prefixes
		}
	}
}

func (p *Parser) parseType() *ast.Type {
	prefixes := p.parsePrefixes()

	var t *ast.Type
	tok := p.cur()
	switch tok.Type {
	case lexer.INT_TYPE:
		p.advance()
		if p.accept(lexer.LBRACKET) {
			lo := p.parseAssignExpr()
			p.expect(lexer.COMMA, "','")
			hi := p.parseAssignExpr()
			p.expect(lexer.RBRACKET, "']'")
			t = ast.NewIntRange(lo, hi)
		} else {
			t = ast.TypeInt
		}
	case lexer.BOOL_TYPE:
		p.advance()
		t = ast.TypeBool
	case lexer.CLOCK:
		p.advance()
		t = ast.TypeClock
	case lexer.CHAN:
		p.advance()
		t = ast.TypeChannel
	case lexer.VOID_TYPE:
		p.advance()
		t = ast.TypeVoid
	case lexer.STRUCT:
		p.advance()
		t = p.parseRecordType()
	case lexer.IDENT:
		if named := p.typedefs[tok.Literal]; named != nil {
			p.advance()
			t = named
		} else {
			p.errorf(tok, "unknown type '%s'", tok.Literal)
			p.advance()
			t = ast.TypeInt
		}
	default:
		p.errorf(tok, "expected a type, got '%s'", tok.Literal)
		t = ast.TypeInt
	}

	if prefixes != 0 {
		t = t.WithPrefix(prefixes)
	}
	return t
}

func (p *Parser) parseRecordType() *ast.Type {
	p.expect(lexer.LBRACE, "'{'")
	frame := ast.NewFrame()
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fieldType := p.parseType()
		for {
			name := p.expect(lexer.IDENT, "field name")
			t := p.parseArrayDims(fieldType)
			if frame.Lookup(name.Literal) != nil {
				p.errorf(name, "'%s' already defined in this scope", name.Literal)
			} else {
				frame.Add(name.Literal, t)
			}
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.SEMICOLON, "';'")
	}
	p.expect(lexer.RBRACE, "'}'")
	return ast.NewRecord(frame)
}

// parseArrayDims wraps the element type in one array layer per subscript
func (p *Parser) parseArrayDims(t *ast.Type) *ast.Type {
	var sizes []*ast.Expression
	for p.accept(lexer.LBRACKET) {
		sizes = append(sizes, p.parseAssignExpr())
		p.expect(lexer.RBRACKET, "']'")
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		t = ast.NewArray(sizes[i], t)
	}
	return t
}

func (p *Parser) parseTypedef() {
	p.expect(lexer.TYPEDEF, "'typedef'")
	t := p.parseType()
	name := p.expect(lexer.IDENT, "type name")
	t = p.parseArrayDims(t)
	if p.typedefs[name.Literal] != nil {
		p.errorf(name, "'%s' already defined in this scope", name.Literal)
	}
	p.typedefs[name.Literal] = t
	p.expect(lexer.SEMICOLON, "';'")
}

// parseDeclaration parses a variable, constant or function declaration
// into decls
func (p *Parser) parseDeclaration(decls *ast.Declarations) {
	t := p.parseType()

	// A '(' after the first declarator name starts a function
	if p.at(lexer.IDENT) && p.peek().Type == lexer.LPAREN {
		p.parseFunction(decls, t)
		return
	}

	for {
		name := p.expect(lexer.IDENT, "identifier")
		declType := p.parseArrayDims(t)
		sym := p.declare(name, declType)

		var init *ast.Expression
		if p.accept(lexer.ASSIGN) {
			init = p.parseInitialiser()
		}

		decls.Variables = append(decls.Variables, &ast.Variable{Sym: sym, Init: init})

		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.SEMICOLON, "';'")
}

// parseInitialiser parses either an expression or a braced initialiser
// list. A list carries an anonymous record type whose frame names the
// initialised fields; positional elements get empty names.
func (p *Parser) parseInitialiser() *ast.Expression {
	if !p.at(lexer.LBRACE) {
		return p.parseAssignExpr()
	}

	open := p.advance()
	frame := ast.NewFrame()
	list := &ast.Expression{Kind: ast.List, Pos: pos(open)}

	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		name := ""
		if p.at(lexer.IDENT) && p.peek().Type == lexer.COLON {
			name = p.advance().Literal
			p.advance()
		}
		elem := p.parseInitialiser()
		elem.Name = name
		list.Sub = append(list.Sub, elem)
		frame.Add(name, elem.Type())

		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "'}'")
	list.Typ = ast.NewRecord(frame)
	return list
}

func (p *Parser) parseFunction(decls *ast.Declarations, ret *ast.Type) {
	name := p.expect(lexer.IDENT, "function name")
	params := ast.NewFrame()
	p.expect(lexer.LPAREN, "'('")
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		p.parseParameter(params)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")

	funcType := ast.NewFunction(params, ret)
	sym := p.declare(name, funcType)

	p.pushScope(paramScope(params))
	body := p.parseBlock()
	p.popScope()

	decls.Functions = append(decls.Functions, &ast.FunctionDecl{Sym: sym, Body: body})
}

// paramScope exposes a parameter frame as a lexical scope
func paramScope(params *ast.Frame) *ast.Frame {
	scope := ast.NewFrame()
	for i := 0; i < params.Size(); i++ {
		scope.AddSymbol(params.At(i))
	}
	return scope
}

func (p *Parser) parseParameter(params *ast.Frame) {
	t := p.parseType()
	ref := p.accept(lexer.AMP)
	name := p.expect(lexer.IDENT, "parameter name")
	t = p.parseArrayDims(t)
	if ref {
		// The reference qualifier applies to the parameter as a whole,
		// so it goes on the outermost type.
		t = t.WithPrefix(ast.PrefixReference)
	}
	if params.Lookup(name.Literal) != nil {
		p.errorf(name, "'%s' already defined in this scope", name.Literal)
	} else {
		params.Add(name.Literal, t)
	}
}

// Statements

func (p *Parser) parseBlock() *ast.BlockStatement {
	p.expect(lexer.LBRACE, "'{'")
	block := &ast.BlockStatement{}
	frame := ast.NewFrame()
	p.pushScope(frame)

	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.atTypeStart() {
			var decls ast.Declarations
			p.parseDeclaration(&decls)
			block.Decls = append(block.Decls, decls.Variables...)
			continue
		}
		block.Stmts = append(block.Stmts, p.parseStatement())
	}

	p.popScope()
	p.expect(lexer.RBRACE, "'}'")
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case lexer.SEMICOLON:
		p.advance()
		return &ast.EmptyStatement{}

	case lexer.LBRACE:
		return p.parseBlock()

	case lexer.IF:
		p.advance()
		p.expect(lexer.LPAREN, "'('")
		cond := p.parseExpr()
		p.expect(lexer.RPAREN, "')'")
		then := p.parseStatement()
		var otherwise ast.Statement
		if p.accept(lexer.ELSE) {
			otherwise = p.parseStatement()
		}
		return &ast.IfStatement{Cond: cond, Then: then, Else: otherwise}

	case lexer.WHILE:
		p.advance()
		p.expect(lexer.LPAREN, "'('")
		cond := p.parseExpr()
		p.expect(lexer.RPAREN, "')'")
		return &ast.WhileStatement{Cond: cond, Body: p.parseStatement()}

	case lexer.DO:
		p.advance()
		body := p.parseStatement()
		p.expect(lexer.WHILE, "'while'")
		p.expect(lexer.LPAREN, "'('")
		cond := p.parseExpr()
		p.expect(lexer.RPAREN, "')'")
		p.expect(lexer.SEMICOLON, "';'")
		return &ast.DoWhileStatement{Cond: cond, Body: body}

	case lexer.FOR:
		p.advance()
		p.expect(lexer.LPAREN, "'('")
		init := p.parseExpr()
		p.expect(lexer.SEMICOLON, "';'")
		cond := p.parseExpr()
		p.expect(lexer.SEMICOLON, "';'")
		step := p.parseExpr()
		p.expect(lexer.RPAREN, "')'")
		return &ast.ForStatement{Init: init, Cond: cond, Step: step, Body: p.parseStatement()}

	case lexer.BREAK:
		p.advance()
		p.expect(lexer.SEMICOLON, "';'")
		return &ast.BreakStatement{}

	case lexer.CONTINUE:
		p.advance()
		p.expect(lexer.SEMICOLON, "';'")
		return &ast.ContinueStatement{}

	case lexer.RETURN:
		p.advance()
		var value *ast.Expression
		if !p.at(lexer.SEMICOLON) {
			value = p.parseExpr()
		}
		p.expect(lexer.SEMICOLON, "';'")
		return &ast.ReturnStatement{Value: value}

	case lexer.SWITCH:
		return p.parseSwitch()

	default:
		expr := p.parseExpr()
		p.expect(lexer.SEMICOLON, "';'")
		return &ast.ExprStatement{Expr: expr}
	}
}

func (p *Parser) parseSwitch() ast.Statement {
	p.expect(lexer.SWITCH, "'switch'")
	p.expect(lexer.LPAREN, "'('")
	cond := p.parseExpr()
	p.expect(lexer.RPAREN, "')'")
	p.expect(lexer.LBRACE, "'{'")

	sw := &ast.SwitchStatement{Cond: cond}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.accept(lexer.CASE) {
			caseCond := p.parseExpr()
			p.expect(lexer.COLON, "':'")
			arm := &ast.CaseStatement{Cond: caseCond}
			for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
				arm.Body = append(arm.Body, p.parseStatement())
			}
			sw.Body = append(sw.Body, arm)
		} else if p.accept(lexer.DEFAULT) {
			p.expect(lexer.COLON, "':'")
			arm := &ast.DefaultStatement{}
			for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
				arm.Body = append(arm.Body, p.parseStatement())
			}
			sw.Body = append(sw.Body, arm)
		} else {
			p.errorf(p.cur(), "expected 'case' or 'default', got '%s'", p.cur().Literal)
			p.synchronize()
		}
	}
	p.expect(lexer.RBRACE, "'}'")
	return sw
}

// Templates, instantiations and the system line

func (p *Parser) parseTemplate() {
	p.expect(lexer.PROCESS, "'process'")
	name := p.expect(lexer.IDENT, "template name")

	params := ast.NewFrame()
	p.expect(lexer.LPAREN, "'('")
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		p.parseParameter(params)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")

	tpl := &ast.Template{
		Sym:        &ast.Symbol{Name: name.Literal, Typ: ast.NewFunction(params, ast.TypeVoid)},
		Parameters: params,
	}
	tpl.Decls.Frame = ast.NewFrame()
	if p.templates[name.Literal] != nil {
		p.errorf(name, "'%s' already defined in this scope", name.Literal)
	}
	p.templates[name.Literal] = tpl
	p.sys.Templates = append(p.sys.Templates, tpl)

	p.pushScope(paramScope(params))
	p.pushScope(tpl.Decls.Frame)

	p.expect(lexer.LBRACE, "'{'")

	for p.atTypeStart() {
		p.parseDeclaration(&tpl.Decls)
	}

	states := make(map[string]*ast.State)

	p.expect(lexer.STATE, "'state'")
	for {
		stateName := p.expect(lexer.IDENT, "state name")
		state := &ast.State{Sym: &ast.Symbol{Name: stateName.Literal, Typ: ast.TypeVoid}}
		if p.accept(lexer.LBRACE) {
			state.Invariant = p.parseExpr()
			p.expect(lexer.RBRACE, "'}'")
		}
		if states[stateName.Literal] != nil {
			p.errorf(stateName, "'%s' already defined in this scope", stateName.Literal)
		}
		states[stateName.Literal] = state
		tpl.States = append(tpl.States, state)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.SEMICOLON, "';'")

	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		switch {
		case p.accept(lexer.INIT):
			initName := p.expect(lexer.IDENT, "state name")
			if state := states[initName.Literal]; state != nil {
				tpl.Init = state
			} else {
				p.errorf(initName, "unknown state '%s'", initName.Literal)
			}
			p.expect(lexer.SEMICOLON, "';'")

		case p.accept(lexer.COMMIT), p.accept(lexer.URGENT):
			// Committed and urgent location lists only mark states;
			// they carry no expressions to check.
			for {
				p.expect(lexer.IDENT, "state name")
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.SEMICOLON, "';'")

		case p.accept(lexer.TRANS):
			p.parseTransitions(tpl, states)

		default:
			p.errorf(p.cur(), "unexpected token '%s'", p.cur().Literal)
			p.synchronize()
		}
	}

	p.expect(lexer.RBRACE, "'}'")
	p.accept(lexer.SEMICOLON)

	p.popScope()
	p.popScope()
}

func (p *Parser) parseTransitions(tpl *ast.Template, states map[string]*ast.State) {
	for {
		srcName := p.expect(lexer.IDENT, "state name")
		p.expect(lexer.ARROW, "'->'")
		dstName := p.expect(lexer.IDENT, "state name")

		tr := &ast.Transition{}
		if src := states[srcName.Literal]; src != nil {
			tr.Src = src
		} else {
			p.errorf(srcName, "unknown state '%s'", srcName.Literal)
		}
		if dst := states[dstName.Literal]; dst != nil {
			tr.Dst = dst
		} else {
			p.errorf(dstName, "unknown state '%s'", dstName.Literal)
		}

		open := p.expect(lexer.LBRACE, "'{'")
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			switch {
			case p.accept(lexer.GUARD):
				tr.Guard = p.parseExpr()
				p.expect(lexer.SEMICOLON, "';'")
			case p.accept(lexer.SYNC):
				tr.Sync = p.parsePostfixExpr()
				if p.accept(lexer.NOT) {
					tr.Dir = ast.SyncBang
				} else if p.accept(lexer.QUESTION) {
					tr.Dir = ast.SyncQue
				} else {
					p.errorf(p.cur(), "expected '!' or '?', got '%s'", p.cur().Literal)
				}
				p.expect(lexer.SEMICOLON, "';'")
			case p.accept(lexer.ASSIGN_KW):
				tr.Assign = p.parseExpr()
				p.expect(lexer.SEMICOLON, "';'")
			default:
				p.errorf(p.cur(), "expected a transition label, got '%s'", p.cur().Literal)
				p.synchronize()
			}
		}
		p.expect(lexer.RBRACE, "'}'")

		// An absent assignment label defaults to the literal 1, which
		// the checker recognises as the deliberate no-op.
		if tr.Assign == nil {
			tr.Assign = ast.NewLiteral(pos(open), 1)
		}

		tpl.Transitions = append(tpl.Transitions, tr)

		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.SEMICOLON, "';'")
}

func (p *Parser) parseInstantiation() {
	name := p.expect(lexer.IDENT, "instance name")
	p.expect(lexer.ASSIGN, "'='")
	tplName := p.expect(lexer.IDENT, "template name")

	tpl := p.templates[tplName.Literal]
	if tpl == nil {
		p.errorf(tplName, "unknown template '%s'", tplName.Literal)
	}

	var args []*ast.Expression
	p.expect(lexer.LPAREN, "'('")
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseAssignExpr())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")
	p.expect(lexer.SEMICOLON, "';'")

	if tpl == nil {
		return
	}

	inst := &ast.Instance{
		Sym:      &ast.Symbol{Name: name.Literal, Typ: tpl.Sym.Typ},
		Template: tpl,
	}

	if len(args) < tpl.Parameters.Size() {
		p.errorf(name, "Too few arguments")
	} else if len(args) > tpl.Parameters.Size() {
		p.errorf(name, "Too many arguments")
	} else {
		for i := 0; i < tpl.Parameters.Size(); i++ {
			inst.Mapping = append(inst.Mapping, ast.Binding{
				Param: tpl.Parameters.At(i),
				Arg:   args[i],
			})
		}
	}

	if p.instances[name.Literal] != nil {
		p.errorf(name, "'%s' already defined in this scope", name.Literal)
	}
	p.instances[name.Literal] = inst
	p.sys.Instances = append(p.sys.Instances, inst)
}

func (p *Parser) parseSystemLine() {
	p.expect(lexer.SYSTEM, "'system'")
	for {
		name := p.expect(lexer.IDENT, "process name")
		if inst := p.instances[name.Literal]; inst != nil {
			p.sys.Processes = append(p.sys.Processes, inst)
		} else if tpl := p.templates[name.Literal]; tpl != nil {
			// A parameterless template may be used directly
			if tpl.Parameters.Size() > 0 {
				p.errorf(name, "Too few arguments")
			}
			inst := &ast.Instance{
				Sym:      &ast.Symbol{Name: name.Literal, Typ: tpl.Sym.Typ},
				Template: tpl,
			}
			p.instances[name.Literal] = inst
			p.sys.Instances = append(p.sys.Instances, inst)
			p.sys.Processes = append(p.sys.Processes, inst)
		} else {
			p.errorf(name, "unknown process '%s'", name.Literal)
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.SEMICOLON, "';'")
}
