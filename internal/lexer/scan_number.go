package lexer

import (
	"lorax/internal/diag"
	"lorax/internal/token"
)

// scanNumber scans a decimal constant. Digits running straight into a letter,
// digit or underscore ("123abc") are a single bad number; any other byte ends
// the constant and is lexed on its own.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.EOF() || !lx.atAlnum() {
		return lx.emit(token.Constant, start)
	}
	digits := lx.cursor.SpanFrom(start)
	suffix := lx.cursor.Mark()
	lx.skipToBoundary()
	tok := lx.emit(token.Invalid, start)
	lx.reportFix(diag.LexBadNumber, tok.Span, "invalid suffix in constant "+quote(tok.Text),
		"remove the suffix "+quote(tok.Text[digits.Len():]),
		diag.FixEdit{Span: lx.cursor.SpanFrom(suffix), NewText: ""})
	return tok
}
