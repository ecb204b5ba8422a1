// Package parser builds an ast.Program from the token stream of one file.
//
// Grammar:
//
//	program  := function+ EOF
//	function := "int" ident "(" "void" ")" "{" stmt "}"
//	stmt     := "return" expr ";"
//	expr     := constant | ("-" | "~") expr | "(" expr ")"
//
// The parser stops at the first error. It reports one diagnostic and returns
// ErrSyntax; invalid tokens were already reported by the lexer and end the
// parse without a second diagnostic.
package parser

import (
	"errors"
	"strconv"

	"lorax/internal/ast"
	"lorax/internal/diag"
	"lorax/internal/lexer"
	"lorax/internal/source"
	"lorax/internal/token"
)

// ErrSyntax is returned when the input is not a valid program.
var ErrSyntax = errors.New("syntax error")

type Options struct {
	Reporter diag.Reporter
}

// Parser holds the state for one file.
type Parser struct {
	lx       *lexer.Lexer
	opts     Options
	lastSpan source.Span // last consumed token, for diagnostics at "end of line"
	failed   bool
}

// ParseFile lexes and parses file. Lexical and syntax diagnostics go to
// opts.Reporter.
func ParseFile(file *source.File, opts Options) (*ast.Program, error) {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	return Parse(lx, opts)
}

// Parse consumes lx up to EOF.
func Parse(lx *lexer.Lexer, opts Options) (*ast.Program, error) {
	p := &Parser{lx: lx, opts: opts, lastSpan: lx.Peek().Span}
	p.lastSpan.End = p.lastSpan.Start
	prog := p.parseProgram()
	if p.failed {
		return nil, ErrSyntax
	}
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Span: p.lx.Peek().Span}
	for {
		fn, ok := p.parseFunction()
		if !ok {
			return nil
		}
		prog.Funcs = append(prog.Funcs, fn)
		prog.Span = prog.Span.Cover(fn.Span)

		switch p.lx.Peek().Kind {
		case token.EOF:
			return prog
		case token.KwInt:
			continue
		case token.Invalid:
			p.failed = true
			return nil
		default:
			tok := p.lx.Peek()
			p.fail(diag.SynTrailingTokens, tok.Span, "expected 'int' or end of file, found "+describe(tok))
			return nil
		}
	}
}

func (p *Parser) parseFunction() (*ast.FuncDecl, bool) {
	start, ok := p.expect(token.KwInt)
	if !ok {
		return nil, false
	}
	name, ok := p.expect(token.Ident)
	if !ok {
		return nil, false
	}
	for _, k := range []token.Kind{token.LParen, token.KwVoid, token.RParen, token.LBrace} {
		if _, ok := p.expect(k); !ok {
			return nil, false
		}
	}
	body, ok := p.parseStmt()
	if !ok {
		return nil, false
	}
	end, ok := p.expect(token.RBrace)
	if !ok {
		return nil, false
	}
	return &ast.FuncDecl{
		Name:     name.Text,
		NameSpan: name.Span,
		Body:     body,
		Span:     start.Span.Cover(end.Span),
	}, true
}

func (p *Parser) parseStmt() (*ast.ReturnStmt, bool) {
	start, ok := p.expect(token.KwReturn)
	if !ok {
		return nil, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	end, ok := p.expect(token.Semicolon)
	if !ok {
		return nil, false
	}
	return &ast.ReturnStmt{Value: value, Span: start.Span.Cover(end.Span)}, true
}

func (p *Parser) parseExpr() (ast.Expr, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Constant:
		p.advance()
		v, err := strconv.ParseUint(tok.Text, 10, 32)
		if err != nil {
			p.fail(diag.SynConstantRange, tok.Span, "constant "+tok.Text+" does not fit in 32 bits")
			return nil, false
		}
		return &ast.Constant{Value: uint32(v), Span: tok.Span}, true

	case token.Minus, token.Tilde:
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		op := ast.Negate
		if tok.Kind == token.Tilde {
			op = ast.Complement
		}
		return &ast.Unary{Op: op, X: x, Span: tok.Span.Cover(x.ExprSpan())}, true

	case token.LParen:
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		end, ok := p.expect(token.RParen)
		if !ok {
			return nil, false
		}
		widen(x, tok.Span.Cover(end.Span))
		return x, true
	}
	p.unexpected(tok, "expression")
	return nil, false
}

func widen(x ast.Expr, sp source.Span) {
	switch x := x.(type) {
	case *ast.Constant:
		x.Span = sp
	case *ast.Unary:
		x.Span = sp
	}
}
