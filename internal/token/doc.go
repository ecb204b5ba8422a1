// Package token defines lexical token kinds for the lorax C subset.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Whitespace is dropped by the lexer; there is no trivia.
//   - Invalid tokens cover the whole offending run up to the next word boundary.
package token
