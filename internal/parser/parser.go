// Package parser turns a token stream into the ast.Program tree described
// in §4.2: a block-structured, indentation-driven grammar with
// call-site argument ordering validation.
package parser

import (
	"strconv"
	"strings"

	"github.com/spellshift/eldritch/internal/ast"
	"github.com/spellshift/eldritch/internal/lexer"
	"github.com/spellshift/eldritch/internal/token"
)

// Parser consumes a materialized token stream. The grammar never needs
// unbounded lookahead, so a flat slice + index is simpler than a channel
// and lets us backtrack trivially for the tuple/paren-expr ambiguity.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse lexes and parses src into a Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return nil, &Error{Msg: le.Msg, Span: le.Span}
		}
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseProgram()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) at(t token.Type) bool { return p.cur().Type == t }
func (p *Parser) accept(t token.Type) (token.Token, bool) {
	if p.at(t) {
		return p.advance(), true
	}
	return token.Token{}, false
}
func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.at(t) {
		return token.Token{}, errAt(p.cur(), "expected %s, got %s", t, p.cur().Type)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.at(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, s)
		p.skipNewlines()
	}
	return prog, nil
}

// parseBlock consumes `: NEWLINE INDENT stmt* DEDENT`.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(token.INDENT); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		p.skipNewlines()
	}
	if _, err := p.expect(token.DEDENT); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().Type {
	case token.DEF:
		return p.parseFuncDef()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		t := p.advance()
		return &ast.BreakStmt{Base: spanOf(t)}, p.endSimple(t)
	case token.CONTINUE:
		t := p.advance()
		return &ast.ContinueStmt{Base: spanOf(t)}, p.endSimple(t)
	case token.PASS:
		t := p.advance()
		return &ast.PassStmt{Base: spanOf(t)}, p.endSimple(t)
	default:
		return p.parseSimpleOrAssign()
	}
}

func (p *Parser) endSimple(start token.Token) error {
	if p.at(token.NEWLINE) || p.at(token.EOF) || p.at(token.SEMICOLON) || p.at(token.DEDENT) {
		if p.at(token.SEMICOLON) {
			p.advance()
		}
		return nil
	}
	return errAt(p.cur(), "expected newline after statement")
}

func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	start := p.advance() // def
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParams(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Base: spanOf(start), Name: name.Literal, Params: params, Body: body}, nil
}

func spanOf(t token.Token) ast.Base { return ast.Base{Sp: t.Span} }

// parseParams parses a function/lambda parameter list: defaults must
// trail non-default positional params, with a single *args and/or
// **kwargs catch-all (§4.2).
func (p *Parser) parseParams(end token.Type) (ast.Params, error) {
	var params ast.Params
	seenDefault := false
	for !p.at(end) {
		if _, ok := p.accept(token.DSTAR); ok {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return params, err
			}
			params.KwArgs = name.Literal
		} else if _, ok := p.accept(token.STAR); ok {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return params, err
			}
			params.StarArgs = name.Literal
		} else {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return params, err
			}
			var def ast.Expr
			if _, ok := p.accept(token.ASSIGN); ok {
				seenDefault = true
				def, err = p.parseExpr()
				if err != nil {
					return params, err
				}
			} else if seenDefault {
				return params, errAt(p.cur(), "non-default argument follows default argument")
			}
			params.Positional = append(params.Positional, ast.Param{Name: name.Literal, Default: def})
		}
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	return params, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Base: spanOf(start), Cond: cond, Then: then}
	if p.at(token.ELIF) {
		elifStmt, err := p.parseElif()
		if err != nil {
			return nil, err
		}
		stmt.Else = []ast.Stmt{elifStmt}
	} else if _, ok := p.accept(token.ELSE); ok {
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}
	return stmt, nil
}

func (p *Parser) parseElif() (ast.Stmt, error) {
	start := p.advance() // elif
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Base: spanOf(start), Cond: cond, Then: then}
	if p.at(token.ELIF) {
		next, err := p.parseElif()
		if err != nil {
			return nil, err
		}
		stmt.Else = []ast.Stmt{next}
	} else if _, ok := p.accept(token.ELSE); ok {
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
	}
	return stmt, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	start := p.advance() // for
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Base: spanOf(start), Target: target, Iter: iter, Body: body}, nil
}

// parseTargetList parses `x` or `x, y` (the latter as a TupleExpr target)
// for `for` loop targets.
func (p *Parser) parseTargetList() (ast.Expr, error) {
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		return first, nil
	}
	elts := []ast.Expr{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.IN) {
			break
		}
		e, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &ast.TupleExpr{Elts: elts}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	start := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Base: spanOf(start), Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.advance()
	if p.at(token.NEWLINE) || p.at(token.EOF) {
		return &ast.ReturnStmt{Base: spanOf(start)}, nil
	}
	v, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Base: spanOf(start), Value: v}, p.endSimple(start)
}

// parseExprListElt parses one element of a comma-separated expression list,
// allowing a leading `*` so tuple-unpack targets can capture the surplus
// (`a, *rest = xs`, §4.4).
func (p *Parser) parseExprListElt() (ast.Expr, error) {
	if star, ok := p.accept(token.STAR); ok {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.StarTarget{Base: ast.Sp(star.Span), Target: e}, nil
	}
	return p.parseExpr()
}

// parseExprList parses a possibly comma-separated expression, wrapping
// multiple values in a TupleExpr (`return a, b`).
func (p *Parser) parseExprList() (ast.Expr, error) {
	first, err := p.parseExprListElt()
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		return first, nil
	}
	elts := []ast.Expr{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.NEWLINE) || p.at(token.EOF) || p.at(token.RPAREN) {
			break
		}
		e, err := p.parseExprListElt()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &ast.TupleExpr{Elts: elts}, nil
}

var augAssignOps = map[token.Type]bool{
	token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true, token.STAR_ASSIGN: true,
	token.SLASH_ASSIGN: true, token.DSLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.AMP_ASSIGN: true, token.PIPE_ASSIGN: true, token.CARET_ASSIGN: true,
}

func (p *Parser) parseSimpleOrAssign() (ast.Stmt, error) {
	start := p.cur()
	first, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if augAssignOps[p.cur().Type] {
		op := p.advance().Type
		val, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Base: spanOf(start), Targets: []ast.Expr{first}, Op: op, Value: val}, p.endSimple(start)
	}
	if _, ok := p.accept(token.ASSIGN); ok {
		targets := []ast.Expr{first}
		val, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		// chained assignment a = b = val: each intermediate value parsed so
		// far is actually another target, not the final value.
		for p.at(token.ASSIGN) {
			p.advance()
			targets = append(targets, val)
			val, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		if len(targets) == 1 {
			if tup, ok := targets[0].(*ast.TupleExpr); ok {
				return &ast.TupleUnpackStmt{Base: spanOf(start), Targets: tup.Elts, Value: val}, p.endSimple(start)
			}
		}
		return &ast.AssignStmt{Base: spanOf(start), Targets: targets, Op: token.ASSIGN, Value: val}, p.endSimple(start)
	}
	return &ast.ExprStmt{Base: spanOf(start), X: first}, p.endSimple(start)
}

// ---- Expressions ----

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseLambda() }

func (p *Parser) parseLambda() (ast.Expr, error) {
	if p.at(token.LAMBDA) {
		p.advance()
		params, err := p.parseParams(token.COLON)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return &ast.LambdaExpr{Params: params, Body: body}, nil
	}
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OR) {
		p.advance()
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = &ast.BoolOp{Op: token.OR, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at(token.AND) {
		p.advance()
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = &ast.BoolOp{Op: token.AND, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.at(token.NOT) {
		tok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: token.NOT, X: operand, Base: spanOf(tok)}, nil
	}
	return p.parseComparison()
}

var compareOps = map[token.Type]bool{
	token.EQ: true, token.NE: true, token.LT: true, token.LE: true, token.GT: true, token.GE: true,
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	first, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	if !compareOps[p.cur().Type] {
		return first, nil
	}
	var ops []token.Type
	var rest []ast.Expr
	for compareOps[p.cur().Type] {
		op := p.advance().Type
		next, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		rest = append(rest, next)
	}
	return &ast.CompareExpr{First: first, Ops: ops, Rest: rest}, nil
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	x, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.at(token.PIPE) {
		tok := p.advance()
		y, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: token.PIPE, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	x, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.CARET) {
		tok := p.advance()
		y, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: token.CARET, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	x, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.at(token.AMP) {
		tok := p.advance()
		y, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: token.AMP, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseShift() (ast.Expr, error) {
	x, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.at(token.LSHIFT) || p.at(token.RSHIFT) {
		tok := p.advance()
		y, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: tok.Type, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	x, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.PLUS) || p.at(token.MINUS) {
		tok := p.advance()
		y, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: tok.Type, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.DSLASH) || p.at(token.PERCENT) {
		tok := p.advance()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Op: tok.Type, X: x, Y: y, Base: spanOf(tok)}
	}
	return x, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(token.MINUS) || p.at(token.PLUS) || p.at(token.TILDE) {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: tok.Type, X: operand, Base: spanOf(tok)}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Expr, error) {
	base_, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.at(token.DSTAR) {
		tok := p.advance()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: token.DSTAR, X: base_, Y: exp, Base: spanOf(tok)}, nil
	}
	return base_, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(token.DOT):
			tok := p.advance()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			x = &ast.AttrExpr{X: x, Attr: name.Literal, Base: spanOf(tok)}
		case p.at(token.LPAREN):
			tok := p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			x = &ast.CallExpr{Func: x, Args: args, Base: spanOf(tok)}
		case p.at(token.LBRACKET):
			tok := p.advance()
			node, err := p.parseSubscript(x, tok)
			if err != nil {
				return nil, err
			}
			x = node
		default:
			return x, nil
		}
	}
}

// parseCallArgs validates call-site ordering per §4.2: positionals can't
// follow keywords or **kwargs; *args can't follow keywords.
func (p *Parser) parseCallArgs() ([]ast.CallArg, error) {
	var args []ast.CallArg
	seenKw, seenDStar := false, false
	for !p.at(token.RPAREN) {
		tok := p.cur()
		switch {
		case p.at(token.DSTAR):
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, ast.CallArg{Value: v, DStar: true})
			seenDStar = true
		case p.at(token.STAR):
			if seenKw {
				return nil, errAt(tok, "iterable argument unpacking follows keyword argument")
			}
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, ast.CallArg{Value: v, Star: true})
		case p.at(token.IDENT) && p.peekAt(1).Type == token.ASSIGN:
			name := p.advance()
			p.advance() // =
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, ast.CallArg{Name: name.Literal, Value: v})
			seenKw = true
		default:
			if seenKw {
				return nil, errAt(tok, "positional argument follows keyword argument")
			}
			if seenDStar {
				return nil, errAt(tok, "positional argument follows keyword argument unpacking")
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, ast.CallArg{Value: v})
		}
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	return args, nil
}

// parseSubscript handles both index and slice forms after `[`.
func (p *Parser) parseSubscript(x ast.Expr, open token.Token) (ast.Expr, error) {
	var start, stop, step ast.Expr
	var err error
	isSlice := false
	if !p.at(token.COLON) {
		start, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, ok := p.accept(token.COLON); ok {
		isSlice = true
		if !p.at(token.COLON) && !p.at(token.RBRACKET) {
			stop, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, ok := p.accept(token.COLON); ok {
			if !p.at(token.RBRACKET) {
				step, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	if isSlice {
		return &ast.SliceExpr{X: x, Start: start, Stop: stop, Step: step, Base: spanOf(open)}, nil
	}
	return &ast.IndexExpr{X: x, Idx: start, Base: spanOf(open)}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		v, err := parseIntLiteral(tok.Literal)
		if err != nil {
			return nil, errAt(tok, "%s", err.Error())
		}
		return &ast.IntLit{Value: v, Base: spanOf(tok)}, nil
	case token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, errAt(tok, "invalid float literal %q", tok.Literal)
		}
		return &ast.FloatLit{Value: v, Base: spanOf(tok)}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Base: spanOf(tok)}, nil
	case token.BYTES:
		p.advance()
		return &ast.BytesLit{Value: tok.BytesValue, Base: spanOf(tok)}, nil
	case token.FSTRING:
		p.advance()
		return p.buildFString(tok)
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Base: spanOf(tok)}, nil
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Base: spanOf(tok)}, nil
	case token.NONE:
		p.advance()
		return &ast.NoneLit{Base: spanOf(tok)}, nil
	case token.IDENT:
		p.advance()
		return &ast.Ident{Name: tok.Literal, Base: spanOf(tok)}, nil
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListOrComp()
	case token.LBRACE:
		return p.parseDictOrSetOrComp()
	default:
		return nil, errAt(tok, "unexpected token %s", tok.Type)
	}
}

func parseIntLiteral(lit string) (int64, error) {
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		return strconv.ParseInt(lit[2:], 16, 64)
	case strings.HasPrefix(lit, "0o") || strings.HasPrefix(lit, "0O"):
		return strconv.ParseInt(lit[2:], 8, 64)
	case strings.HasPrefix(lit, "0b") || strings.HasPrefix(lit, "0B"):
		return strconv.ParseInt(lit[2:], 2, 64)
	default:
		return strconv.ParseInt(lit, 10, 64)
	}
}

func (p *Parser) buildFString(tok token.Token) (ast.Expr, error) {
	var parts []ast.FStringPart
	for _, chunk := range tok.FString {
		if !chunk.IsExpr {
			parts = append(parts, ast.FStringPart{Literal: chunk.Text})
			continue
		}
		sub, err := Parse(chunk.Expr + "\n")
		if err != nil {
			return nil, err
		}
		if len(sub.Stmts) != 1 {
			return nil, errAt(tok, "invalid expression in f-string")
		}
		es, ok := sub.Stmts[0].(*ast.ExprStmt)
		if !ok {
			return nil, errAt(tok, "invalid expression in f-string")
		}
		parts = append(parts, ast.FStringPart{Expr: es.X})
	}
	return &ast.FStringExpr{Parts: parts, Base: spanOf(tok)}, nil
}

func (p *Parser) parseParenOrTuple() (ast.Expr, error) {
	open := p.advance()
	if _, ok := p.accept(token.RPAREN); ok {
		return &ast.TupleExpr{Base: spanOf(open)}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.COMMA) {
		elts := []ast.Expr{first}
		for p.at(token.COMMA) {
			p.advance()
			if p.at(token.RPAREN) {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.TupleExpr{Elts: elts, Base: spanOf(open)}, nil
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseListOrComp() (ast.Expr, error) {
	open := p.advance()
	if _, ok := p.accept(token.RBRACKET); ok {
		return &ast.ListExpr{Base: spanOf(open)}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.FOR) {
		comp, err := p.parseComprehensionTail(ast.ListComp, first, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Expr{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RBRACKET) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ListExpr{Elts: elts, Base: spanOf(open)}, nil
}

func (p *Parser) parseComprehensionTail(kind ast.ComprehensionKind, element ast.Expr, dictVal ast.Expr) (ast.Expr, error) {
	p.advance() // for
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	var cond ast.Expr
	if _, ok := p.accept(token.IF); ok {
		cond, err = p.parseOr()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Comprehension{Kind: kind, Element: element, DictValue: dictVal, Target: target, Iter: iter, Cond: cond}, nil
}

func (p *Parser) parseDictOrSetOrComp() (ast.Expr, error) {
	open := p.advance()
	if _, ok := p.accept(token.RBRACE); ok {
		return &ast.DictExpr{Base: spanOf(open)}, nil
	}
	firstKey, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.COLON); ok {
		firstVal, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(token.FOR) {
			comp, err := p.parseComprehensionTail(ast.DictComp, firstKey, firstVal)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACE); err != nil {
				return nil, err
			}
			return comp, nil
		}
		keys := []ast.Expr{firstKey}
		vals := []ast.Expr{firstVal}
		for {
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
			if p.at(token.RBRACE) {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.DictExpr{Keys: keys, Values: vals, Base: spanOf(open)}, nil
	}
	if p.at(token.FOR) {
		comp, err := p.parseComprehensionTail(ast.SetComp, firstKey, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Expr{firstKey}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RBRACE) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.SetExpr{Elts: elts, Base: spanOf(open)}, nil
}


