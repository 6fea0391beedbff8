// parser.go: recursive-descent parser with a Pratt-style precedence table
// for expressions (spec §4.D). Grounded on the teacher's parser.go in
// overall structure (token cursor + precedence-climbing expression parser)
// though this parser builds a typed Go AST (ast.go) rather than the
// teacher's S-expression representation, since the spec's registry/dispatch
// design wants concrete node types it can switch on.
package lumen

import (
	"strconv"
)

// precedence levels, low to high (spec §4.D table).
const (
	precNone = iota
	precAssign
	precOr
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precCall
)

var binPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"==": precEquality, "!=": precEquality,
	"<": precRelational, "<=": precRelational, ">": precRelational, ">=": precRelational,
	"<<": precShift, ">>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%", "<<=": "<<", ">>=": ">>",
}

// Parser consumes a token stream and builds an AST.
type Parser struct {
	toks []Token
	pos  int
}

// NewParser constructs a Parser over a pre-lexed token stream.
func NewParser(toks []Token) *Parser { return &Parser{toks: toks} }

// ParseSource lexes and parses src in one step.
func ParseSource(src string) (*Program, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(toks).ParseProgram()
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) atEnd() bool { return p.cur().Kind == TokEOF }

func (p *Parser) advance() Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(kind TokenKind, text string) bool {
	t := p.cur()
	return t.Kind == kind && (text == "" || t.Text == text)
}

func (p *Parser) match(kind TokenKind, text string) bool {
	if p.check(kind, text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind, text string) (Token, error) {
	if p.check(kind, text) {
		return p.advance(), nil
	}
	t := p.cur()
	return Token{}, &ParseError{Line: t.Line, Col: t.Col, Msg: "expected " + tokenDesc(kind, text) + ", found " + tokenDesc(t.Kind, t.Text)}
}

func tokenDesc(kind TokenKind, text string) string {
	if text != "" {
		return "'" + text + "'"
	}
	switch kind {
	case TokEOF:
		return "end of input"
	case TokIdent:
		return "identifier"
	default:
		return "token"
	}
}

func pos(t Token) Pos { return Pos{Line: t.Line, Col: t.Col} }

// ParseProgram parses a full source file's top level (spec §4.D: function
// definitions "parsed top-level or inside a module file").
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Funcs: map[string]*FnDecl{}}
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if fn, ok := stmt.(*FnDecl); ok {
			prog.Funcs[fn.Name] = fn
			continue
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

// parseStatement parses one statement. Block-tailed forms (if/while/loop/fn)
// are statements on their own and never require a trailing semicolon;
// everything else does, except an expression that ends the input, which
// becomes the program's trailing value.
func (p *Parser) parseStatement() (Stmt, error) {
	t := p.cur()
	switch {
	case p.check(TokKeyword, "let"):
		return p.parseLet()
	case p.check(TokKeyword, "if"):
		return p.parseIf()
	case p.check(TokKeyword, "while"):
		return p.parseWhile()
	case p.check(TokKeyword, "loop"):
		return p.parseLoop()
	case p.check(TokKeyword, "break"):
		p.advance()
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return &BreakStmt{Pos: pos(t)}, nil
	case p.check(TokKeyword, "return"):
		return p.parseReturn()
	case p.check(TokKeyword, "fn"):
		return p.parseFnDecl()
	case p.check(TokKeyword, "use"):
		return p.parseUse()
	case p.check(TokPunct, "{"):
		return p.parseBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLet() (Stmt, error) {
	kw := p.advance()
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokOperator, "="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &LetStmt{Pos: pos(kw), Name: name.Text, Value: val}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	kw := p.advance()
	cond, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els *Block
	if p.match(TokKeyword, "else") {
		if p.check(TokKeyword, "if") {
			s, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			els = &Block{Pos: s.stmtPos(), Stmts: []Stmt{s}}
		} else {
			els, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &IfStmt{Pos: pos(kw), Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	kw := p.advance()
	cond, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Pos: pos(kw), Cond: cond, Body: body}, nil
}

func (p *Parser) parseLoop() (Stmt, error) {
	kw := p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &LoopStmt{Pos: pos(kw), Body: body}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	kw := p.advance()
	if p.check(TokPunct, ";") {
		p.advance()
		return &ReturnStmt{Pos: pos(kw)}, nil
	}
	val, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &ReturnStmt{Pos: pos(kw), Value: val}, nil
}

func (p *Parser) parseUse() (Stmt, error) {
	kw := p.advance()
	mod, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "::"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &UseStmt{Pos: pos(kw), Module: mod.Text, Name: name.Text}, nil
}

func (p *Parser) parseFnDecl() (Stmt, error) {
	kw := p.advance()
	name, err := p.expect(TokIdent, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(TokPunct, ")") {
		pn, err := p.expect(TokIdent, "")
		if err != nil {
			return nil, err
		}
		params = append(params, pn.Text)
		if !p.match(TokPunct, ",") {
			break
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnDecl{Pos: pos(kw), Name: name.Text, Params: params, Body: body}, nil
}

// parseBlock parses `{ stmt* expr? }`. A trailing expression with no
// semicolon becomes the block's value via a tail ExprStmt.
func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect(TokPunct, "{")
	if err != nil {
		return nil, err
	}
	blk := &Block{Pos: pos(open)}
	for !p.check(TokPunct, "}") {
		if p.atEnd() {
			return nil, &ParseError{Line: open.Line, Col: open.Col, Msg: "unterminated block"}
		}
		if p.check(TokKeyword, "fn") {
			fn, err := p.parseFnDecl()
			if err != nil {
				return nil, err
			}
			blk.Stmts = append(blk.Stmts, fn)
			continue
		}
		if startsBlockStmt(p.cur()) {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			blk.Stmts = append(blk.Stmts, stmt)
			continue
		}
		exprPos := p.cur()
		expr, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		if p.match(TokPunct, ";") {
			blk.Stmts = append(blk.Stmts, &ExprStmt{Pos: pos(exprPos), X: expr})
			continue
		}
		blk.Stmts = append(blk.Stmts, &ExprStmt{Pos: pos(exprPos), X: expr, Tail: true})
		break
	}
	if _, err := p.expect(TokPunct, "}"); err != nil {
		return nil, err
	}
	return blk, nil
}

func startsBlockStmt(t Token) bool {
	if t.Kind != TokKeyword {
		return t.Kind == TokPunct && t.Text == "{"
	}
	switch t.Text {
	case "let", "if", "while", "loop", "break", "return", "use":
		return true
	default:
		return false
	}
}

func (p *Parser) parseExprStatement() (Stmt, error) {
	start := p.cur()
	expr, err := p.parseExpr(precAssign)
	if err != nil {
		return nil, err
	}
	if p.atEnd() {
		return &ExprStmt{Pos: pos(start), X: expr, Tail: true}, nil
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &ExprStmt{Pos: pos(start), X: expr}, nil
}

// --- expressions (Pratt) -------------------------------------------------

func (p *Parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.Kind == TokOperator {
			if op, ok := compoundOps[t.Text]; ok && precAssign >= minPrec {
				target, lerr := asLvalue(left)
				if lerr != nil {
					return nil, lerr
				}
				p.advance()
				rhs, err := p.parseExpr(precAssign)
				if err != nil {
					return nil, err
				}
				desugared := &Binary{Pos: pos(t), Op: op, X: left, Y: rhs}
				left = &Assign{Pos: pos(t), Target: target, Value: desugared}
				continue
			}
			if t.Text == "=" && precAssign >= minPrec {
				target, lerr := asLvalue(left)
				if lerr != nil {
					return nil, lerr
				}
				p.advance()
				rhs, err := p.parseExpr(precAssign)
				if err != nil {
					return nil, err
				}
				left = &Assign{Pos: pos(t), Target: target, Value: rhs}
				continue
			}
			if prec, ok := binPrec[t.Text]; ok && prec >= minPrec {
				p.advance()
				right, err := p.parseExpr(prec + 1)
				if err != nil {
					return nil, err
				}
				left = &Binary{Pos: pos(t), Op: t.Text, X: left, Y: right}
				continue
			}
		}
		return left, nil
	}
}

// asLvalue validates and passes through an expression shape usable as an
// assignment target: identifier, or a chain of index/property steps (spec
// §3 "Lvalue").
func asLvalue(e Expr) (Expr, error) {
	switch e.(type) {
	case *Ident, *Index, *Property:
		return e, nil
	default:
		p := e.exprPos()
		return nil, &ParseError{Line: p.Line, Col: p.Col, Msg: "invalid assignment target"}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	t := p.cur()
	if t.Kind == TokOperator && (t.Text == "-" || t.Text == "+" || t.Text == "!") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Pos: pos(t), Op: t.Text, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(TokPunct, "."):
			dot := p.advance()
			name, err := p.expect(TokIdent, "")
			if err != nil {
				return nil, err
			}
			if p.check(TokPunct, "(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &MethodCall{Pos: pos(dot), Object: expr, Name: name.Text, Args: args}
				continue
			}
			expr = &Property{Pos: pos(dot), Object: expr, Name: name.Text}
		case p.check(TokPunct, "["):
			lb := p.advance()
			idx, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokPunct, "]"); err != nil {
				return nil, err
			}
			expr = &Index{Pos: pos(lb), Collection: expr, IndexExpr: idx}
		case p.check(TokPunct, "("):
			lp := p.cur()
			switch callee := expr.(type) {
			case *Ident:
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &Call{Pos: pos(lp), Fn: callee.Name, Args: args}
			case *PathLookup:
				// m::fn(args) — a call to a script-defined function
				// collected into an imported module's record (spec
				// §3/§4.D/§4.G: a module carries "a mapping from name to
				// script-defined functions").
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &Call{Pos: pos(lp), Module: callee.Module, Fn: callee.Name, Args: args}
			default:
				p := expr.exprPos()
				return nil, &ParseError{Line: p.Line, Col: p.Col, Msg: "only a plain name or module path can be called"}
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	var args []Expr
	for !p.check(TokPunct, ")") {
		a, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !p.match(TokPunct, ",") {
			break
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	t := p.cur()
	switch {
	case t.Kind == TokInt:
		p.advance()
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return &IntLit{Pos: pos(t), Value: n}, nil
	case t.Kind == TokFloat:
		p.advance()
		f, _ := strconv.ParseFloat(t.Text, 64)
		return &FloatLit{Pos: pos(t), Value: f}, nil
	case t.Kind == TokString:
		p.advance()
		return &StringLit{Pos: pos(t), Value: t.Text}, nil
	case t.Kind == TokChar:
		p.advance()
		return &CharLit{Pos: pos(t), Value: []rune(t.Text)[0]}, nil
	case p.check(TokKeyword, "true"):
		p.advance()
		return &BoolLit{Pos: pos(t), Value: true}, nil
	case p.check(TokKeyword, "false"):
		p.advance()
		return &BoolLit{Pos: pos(t), Value: false}, nil
	case p.check(TokKeyword, "import"):
		p.advance()
		pathExpr, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &ImportExpr{Pos: pos(t), Path: pathExpr}, nil
	case t.Kind == TokIdent:
		p.advance()
		if p.check(TokPunct, "::") {
			p.advance()
			name, err := p.expect(TokIdent, "")
			if err != nil {
				return nil, err
			}
			return &PathLookup{Pos: pos(t), Module: t.Text, Name: name.Text}, nil
		}
		return &Ident{Pos: pos(t), Name: t.Text}, nil
	case p.check(TokPunct, "("):
		p.advance()
		inner, err := p.parseExpr(precAssign)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case p.check(TokPunct, "["):
		p.advance()
		var elems []Expr
		for !p.check(TokPunct, "]") {
			e, err := p.parseExpr(precAssign)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.match(TokPunct, ",") {
				break
			}
		}
		if _, err := p.expect(TokPunct, "]"); err != nil {
			return nil, err
		}
		return &ArrayLit{Pos: pos(t), Elems: elems}, nil
	default:
		return nil, &ParseError{Line: t.Line, Col: t.Col, Msg: "unexpected token " + tokenDesc(t.Kind, t.Text)}
	}
}
