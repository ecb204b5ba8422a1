package lexer

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

// bumpRune consumes one UTF-8 sequence (or one byte if it is malformed).
func (lx *Lexer) bumpRune() {
	if lx.cursor.EOF() {
		return
	}
	_, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += usz
}

// skipToBoundary consumes input until whitespace, punctuation the lexer
// knows, or EOF.
func (lx *Lexer) skipToBoundary() {
	for !lx.cursor.EOF() && !isBoundary(lx.cursor.Peek()) {
		lx.bumpRune()
	}
}

// atAlnum reports whether the next rune is a letter, digit or underscore.
// Non-ASCII letters count too.
func (lx *Lexer) atAlnum() bool {
	b := lx.cursor.Peek()
	if b < utf8.RuneSelf {
		return isIdentContinueByte(b)
	}
	r, _ := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isBoundary(b byte) bool {
	switch b {
	case '(', ')', '{', '}', ';', '~', '-':
		return true
	}
	return isSpace(b)
}

func (lx *Lexer) try2(a, b byte) bool {
	b0, b1, ok := lx.cursor.Peek2()
	if !ok || b0 != a || b1 != b {
		return false
	}
	lx.cursor.Bump()
	lx.cursor.Bump()
	return true
}

func quote(s string) string {
	return strconv.Quote(s)
}
