// Package irgen builds the generic IR of a translation unit from its AST.
//
// Each function becomes a func.func operation in the module block. Its region
// holds the expression tree flattened into arith operations followed by a
// func.ret. Functions that need stack temporaries start by reserving a frame
// with mem.alloca.
package irgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"lorax/internal/arena"
	"lorax/internal/ast"
	"lorax/internal/dialect/arith"
	"lorax/internal/dialect/function"
	"lorax/internal/dialect/mem"
	"lorax/internal/ir"
	"lorax/internal/trace"
)

const (
	// SlotSize is the stack space of one temporary.
	SlotSize = 4
	// StackAlign is the frame alignment required by the ABI.
	StackAlign = 16
)

var (
	ErrEmptyProgram  = errors.New("irgen: program has no functions")
	ErrDuplicateFunc = errors.New("irgen: duplicate function")
)

// Unit is one compilation unit: its context and the module block that holds
// every function.
type Unit struct {
	Context *ir.Context
	Module  *ir.Block
}

// FrameSize returns the 16-byte aligned frame needed for temps temporaries.
func FrameSize(temps int) uint32 {
	t, err := safecast.Conv[uint32](temps)
	if err != nil {
		panic(fmt.Errorf("frame size overflow: %w", err))
	}
	n := t * SlotSize
	return (n + StackAlign - 1) &^ (StackAlign - 1)
}

// Temporaries counts the stack slots an expression needs: one per unary
// operator, since each result is materialised in memory.
func Temporaries(e ast.Expr) int {
	n := 0
	ast.Inspect(e, func(x ast.Expr) bool {
		if _, ok := x.(*ast.Unary); ok {
			n++
		}
		return true
	})
	return n
}

// Build lowers prog into a fresh Unit.
func Build(ctx context.Context, prog *ast.Program) (*Unit, error) {
	if prog == nil || len(prog.Funcs) == 0 {
		return nil, ErrEmptyProgram
	}
	tr := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	u := &Unit{Context: ir.NewContext()}
	u.Module = u.Context.NewBlock()
	seen := make(map[string]bool, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[fn.Name] {
			return nil, fmt.Errorf("%w %q", ErrDuplicateFunc, fn.Name)
		}
		seen[fn.Name] = true

		span := trace.Begin(tr, trace.ScopeModule, "irgen:"+fn.Name, parent)
		entry := buildFunc(u.Context, fn)
		u.Module.Append(u.Context, function.Func(fn.Name, entry))
		span.WithExtra("ops", strconv.Itoa(entry.Len())).End("")
	}
	return u, nil
}

func buildFunc(c *ir.Context, fn *ast.FuncDecl) *ir.Block {
	entry := c.NewBlock()
	if size := FrameSize(Temporaries(fn.Body.Value)); size > 0 {
		v := result(c, entry.Append(c, arith.Constant(size)))
		entry.Append(c, mem.Alloca(v))
	}
	v := expr(c, entry, fn.Body.Value)
	entry.Append(c, function.Ret(v))
	return entry
}

func expr(c *ir.Context, b *ir.Block, e ast.Expr) ir.Value {
	switch e := e.(type) {
	case *ast.Constant:
		return result(c, b.Append(c, arith.Constant(e.Value)))
	case *ast.Unary:
		x := expr(c, b, e.X)
		if e.Op == ast.Complement {
			return result(c, b.Append(c, arith.Complement(x)))
		}
		return result(c, b.Append(c, arith.Negate(x)))
	}
	panic(fmt.Sprintf("irgen: unexpected expression %T", e))
}

// result reads back a value every arith constructor produces.
func result(c *ir.Context, h arena.Handle) ir.Value {
	v, err := c.ResultOf(h)
	if err != nil {
		panic(err)
	}
	return v
}
