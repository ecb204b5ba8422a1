// Package ast holds the syntax tree of a lorax translation unit.
//
// The tree is small and pointer based: a Program is a list of function
// definitions, each with a single return statement whose value is built from
// constants and the unary operators '-' and '~'. Parentheses do not survive
// parsing; they only widen the span of the expression they enclose.
package ast

import (
	"lorax/internal/source"
)

type Program struct {
	Funcs []*FuncDecl
	Span  source.Span
}

// FuncDecl is `int name(void) { body }`.
type FuncDecl struct {
	Name     string
	NameSpan source.Span
	Body     *ReturnStmt
	Span     source.Span
}

type ReturnStmt struct {
	Value Expr
	Span  source.Span
}

// Expr is implemented by *Constant and *Unary.
type Expr interface {
	exprNode()
	ExprSpan() source.Span
}

type Constant struct {
	Value uint32
	Span  source.Span
}

type UnaryOp uint8

const (
	Negate UnaryOp = iota
	Complement
)

func (op UnaryOp) String() string {
	if op == Complement {
		return "~"
	}
	return "-"
}

type Unary struct {
	Op   UnaryOp
	X    Expr
	Span source.Span
}

func (*Constant) exprNode() {}
func (*Unary) exprNode() {}

func (e *Constant) ExprSpan() source.Span { return e.Span }
func (e *Unary) ExprSpan() source.Span { return e.Span }

// Depth counts the unary operators on the longest path from e to a constant.
func Depth(e Expr) int {
	n := 0
	for {
		u, ok := e.(*Unary)
		if !ok {
			return n
		}
		n++
		e = u.X
	}
}

// Inspect calls f for e and every sub-expression, outermost first.
// Returning false stops the descent.
func Inspect(e Expr, f func(Expr) bool) {
	for e != nil && f(e) {
		u, ok := e.(*Unary)
		if !ok {
			return
		}
		e = u.X
	}
}
