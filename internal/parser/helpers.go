package parser

import (
	"strconv"

	"lorax/internal/diag"
	"lorax/internal/source"
	"lorax/internal/token"
)

// advance consumes the next token and updates lastSpan.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// expect consumes a token of kind k or reports the mismatch.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	tok := p.lx.Peek()
	if tok.Kind == k {
		return p.advance(), true
	}
	p.unexpected(tok, k.Spelling())
	return tok, false
}

// unexpected reports tok where want was required. A missing ';' is
// reported right after the previous token rather than on the next line.
func (p *Parser) unexpected(tok token.Token, want string) {
	switch {
	case tok.Kind == token.Invalid:
		p.failed = true
	case tok.Kind == token.EOF:
		p.fail(diag.SynUnexpectedEOF, tok.Span, "expected "+want+", found end of file")
	case want == token.Semicolon.Spelling():
		p.fail(diag.SynExpectSemicolon, p.afterLast(), "expected ';' after return value, found "+describe(tok))
	default:
		p.fail(diag.SynUnexpectedToken, tok.Span, "expected "+want+", found "+describe(tok))
	}
}

func (p *Parser) afterLast() source.Span {
	return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
}

func (p *Parser) fail(code diag.Code, sp source.Span, msg string) {
	p.failed = true
	if p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Ident, token.Constant:
		return tok.Kind.Spelling() + " " + strconv.Quote(tok.Text)
	}
	return tok.Kind.Spelling()
}
