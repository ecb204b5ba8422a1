package asm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorax/internal/arena"
	"lorax/internal/asm"
	"lorax/internal/ast"
	"lorax/internal/dialect/arith"
	"lorax/internal/dialect/function"
	"lorax/internal/dialect/mem"
	"lorax/internal/dialect/x86"
	"lorax/internal/ir"
	"lorax/internal/irgen"
	"lorax/internal/rewrite"
)

func lowered(t *testing.T, prog *ast.Program) *irgen.Unit {
	t.Helper()
	u, err := irgen.Build(context.Background(), prog)
	require.NoError(t, err)
	passes, err := x86.Pipeline()
	require.NoError(t, err)
	_, err = rewrite.RunAll(context.Background(), u.Context, u.Module, passes, nil)
	require.NoError(t, err)
	return u
}

func fn(name string, e ast.Expr) *ast.FuncDecl {
	return &ast.FuncDecl{Name: name, Body: &ast.ReturnStmt{Value: e}}
}

func emit(t *testing.T, u *irgen.Unit, os string) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, asm.Emit(&sb, u.Context, u.Module, asm.Options{OS: os}))
	return sb.String()
}

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

func TestEmit_ReturnZero(t *testing.T) {
	u := lowered(t, &ast.Program{Funcs: []*ast.FuncDecl{fn("main", &ast.Constant{Value: 0})}})
	assert.Equal(t, lines(
		"    .globl main",
		"main:",
		"    pushq %rbp",
		"    movq %rsp, %rbp",
		"    movl $0, %eax",
		"    movq %rbp, %rsp",
		"    popq %rbp",
		"    ret",
		`    .section .note.GNU-stack,"",@progbits`,
	), emit(t, u, "linux"))
}

func TestEmit_UnaryChainUsesSlotsAndScratch(t *testing.T) {
	e := &ast.Unary{Op: ast.Negate, X: &ast.Unary{Op: ast.Complement, X: &ast.Constant{Value: 2}}}
	u := lowered(t, &ast.Program{Funcs: []*ast.FuncDecl{fn("main", e)}})
	assert.Equal(t, lines(
		"    .globl _main",
		"_main:",
		"    pushq %rbp",
		"    movq %rsp, %rbp",
		"    subq $16, %rsp",
		"    movl $2, -4(%rbp)",
		"    notl -4(%rbp)",
		"    movl -4(%rbp), %r10d",
		"    movl %r10d, -8(%rbp)",
		"    negl -8(%rbp)",
		"    movl -8(%rbp), %eax",
		"    movq %rbp, %rsp",
		"    popq %rbp",
		"    ret",
	), emit(t, u, "darwin"))

	n, err := asm.Slots(u.Context, u.Context.MustOp(mustHead(t, u.Module)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.LessOrEqual(t, uint32(n*irgen.SlotSize), irgen.FrameSize(irgen.Temporaries(e)))
}

func TestEmit_RejectsUnlowered(t *testing.T) {
	u, err := irgen.Build(context.Background(), &ast.Program{Funcs: []*ast.FuncDecl{
		fn("main", &ast.Unary{Op: ast.Negate, X: &ast.Constant{Value: 1}}),
	}})
	require.NoError(t, err)

	var sb strings.Builder
	err = asm.Emit(&sb, u.Context, u.Module, asm.Options{OS: "linux"})
	require.ErrorIs(t, err, asm.ErrNotLowered)
	assert.Contains(t, err.Error(), mem.OpAlloca)
	assert.Contains(t, err.Error(), "function main")
}

func TestEmit_Svar(t *testing.T) {
	c := ir.NewContext()
	module, entry := c.NewBlock(), c.NewBlock()
	off, _ := c.ResultOf(entry.Append(c, arith.Constant(12)))
	slot, _ := c.ResultOf(entry.Append(c, x86.Svar(off)))
	k, _ := c.ResultOf(entry.Append(c, arith.Constant(7)))
	entry.Append(c, x86.Mov(k, slot))
	entry.Append(c, x86.Ret())
	module.Append(c, function.Func("f", entry))

	var sb strings.Builder
	require.NoError(t, asm.Emit(&sb, c, module, asm.Options{OS: "freebsd"}))
	assert.Equal(t, lines(
		"    .globl f",
		"f:",
		"    movl $7, -12(%rbp)",
		"    ret",
	), sb.String())
}

func TestEmit_BadOperands(t *testing.T) {
	c := ir.NewContext()
	module, entry := c.NewBlock(), c.NewBlock()
	k, _ := c.ResultOf(entry.Append(c, arith.Constant(1)))
	entry.Append(c, x86.Mov(c.NewValue(), k))
	module.Append(c, function.Func("f", entry))

	var sb strings.Builder
	err := asm.Emit(&sb, c, module, asm.Options{})
	assert.ErrorIs(t, err, asm.ErrOperand)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "_main", asm.Symbol("main", "darwin"))
	assert.Equal(t, "main", asm.Symbol("main", "linux"))
}

func mustHead(t *testing.T, b *ir.Block) arena.Handle {
	t.Helper()
	h, ok := b.Head()
	require.True(t, ok)
	return h
}
