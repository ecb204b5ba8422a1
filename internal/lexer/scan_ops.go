package lexer

import (
	"lorax/internal/diag"
	"lorax/internal/token"
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	if lx.try2('-', '-') {
		return lx.emit(token.MinusMinus, start)
	}

	switch lx.cursor.Bump() {
	case '(':
		return lx.emit(token.LParen, start)
	case ')':
		return lx.emit(token.RParen, start)
	case '{':
		return lx.emit(token.LBrace, start)
	case '}':
		return lx.emit(token.RBrace, start)
	case ';':
		return lx.emit(token.Semicolon, start)
	case '~':
		return lx.emit(token.Tilde, start)
	case '-':
		return lx.emit(token.Minus, start)
	}

	lx.cursor.Reset(start)
	lx.bumpRune()
	lx.skipToBoundary()
	tok := lx.emit(token.Invalid, start)
	lx.report(diag.LexUnknownChar, tok.Span, "unexpected character "+quote(tok.Text))
	return tok
}
