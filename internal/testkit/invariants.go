// Package testkit holds checks shared by parser and driver tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lorax/internal/ast"
	"lorax/internal/source"
)

// CheckSpanInvariants runs the span invariants on a parsed program:
// 1) every span is non-empty, points at sf and lies within its content
// 2) each node is contained in its parent
// 3) the program span covers every function
func CheckSpanInvariants(prog *ast.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp, parent source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("%s span is empty: %v", what, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s span points to different file id: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End > size {
			return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, size)
		}
		if sp.Start < parent.Start || sp.End > parent.End {
			return fmt.Errorf("%s span %v not within %v", what, sp, parent)
		}
		return nil
	}

	whole := source.Span{File: sf.ID, Start: 0, End: size}
	if err := check("program", prog.Span, whole); err != nil {
		return err
	}
	for i, fn := range prog.Funcs {
		name := fmt.Sprintf("func #%d", i)
		if err := check(name, fn.Span, prog.Span); err != nil {
			return err
		}
		if err := check(name+" name", fn.NameSpan, fn.Span); err != nil {
			return err
		}
		if fn.Body == nil {
			return fmt.Errorf("%s has no body", name)
		}
		if err := check(name+" return", fn.Body.Span, fn.Span); err != nil {
			return err
		}
		parent := fn.Body.Span
		var exprErr error
		ast.Inspect(fn.Body.Value, func(e ast.Expr) bool {
			if exprErr = check(name+" expr", e.ExprSpan(), parent); exprErr != nil {
				return false
			}
			parent = e.ExprSpan()
			return true
		})
		if exprErr != nil {
			return exprErr
		}
	}
	return nil
}
