// Package asm writes fully lowered IR as AT&T-syntax x86-64 assembly.
//
// Operands are resolved from the operation that defines each value:
// register reads become %rbp, %rsp or %eax, arith.constant becomes an
// immediate, x86.svar a frame slot at its offset, and every other value gets
// its own 4-byte slot below the frame base in order of first use.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"

	"lorax/internal/dialect/arith"
	"lorax/internal/dialect/function"
	"lorax/internal/dialect/x86"
	"lorax/internal/ir"
)

var (
	// ErrNotLowered means an operation outside the x86 dialect reached emission.
	ErrNotLowered = errors.New("asm: operation was not lowered")
	ErrOperand    = errors.New("asm: bad operand")
)

// scratch carries memory-to-memory moves.
const scratch = "%r10d"

type Options struct {
	// OS selects symbol and section conventions ("darwin", "linux", ...).
	// Empty means runtime.GOOS.
	OS string
}

func (o Options) os() string {
	if o.OS == "" {
		return runtime.GOOS
	}
	return o.OS
}

// Emit writes every func.func of module to w.
func Emit(w io.Writer, c *ir.Context, module *ir.Block, opts Options) error {
	bw := bufio.NewWriter(w)
	e := &emitter{w: bw, c: c, os: opts.os()}
	for h := range module.Ops(c) {
		op := c.MustOp(h)
		switch {
		case op.Is(function.OpFunc):
			if err := e.function(op); err != nil {
				return err
			}
		case op.Is(arith.OpConstant):
		default:
			return fmt.Errorf("%w: %s", ErrNotLowered, op.Name)
		}
	}
	if e.os == "linux" {
		e.line(`    .section .note.GNU-stack,"",@progbits`)
	}
	return bw.Flush()
}

// Symbol returns the assembler name of a C function on os.
func Symbol(name, os string) string {
	if os == "darwin" {
		return "_" + name
	}
	return name
}

type emitter struct {
	w     *bufio.Writer
	c     *ir.Context
	os    string
	slots map[uint32]int64 // value ID -> frame offset
	next  int64
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(e.w, format+"\n", args...)
}

func (e *emitter) function(op *ir.Operation) error {
	name, ok := function.Name(op)
	if !ok {
		return fmt.Errorf("%w: func.func without %s", ErrOperand, function.SymNameAttr)
	}
	entry, _ := function.Entry(op)
	sym := Symbol(name, e.os)
	e.slots = make(map[uint32]int64)
	e.next = 0

	e.line("    .globl %s", sym)
	e.line("%s:", sym)
	for h := range entry.Ops(e.c) {
		if err := e.instr(e.c.MustOp(h)); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
	}
	return nil
}

func (e *emitter) instr(op *ir.Operation) error {
	if x86.IsRegister(op.Name) {
		return nil
	}
	switch op.Name {
	case arith.OpConstant, x86.OpSvar:
		return nil
	case x86.OpRet:
		e.line("    ret")
		return nil
	case x86.OpPushq, x86.OpPopq:
		return e.unary(op, op.Mnemonic())
	case x86.OpNeg, x86.OpNot:
		return e.unary(op, op.Mnemonic()+"l")
	case x86.OpMov, x86.OpSubq:
		return e.binary(op)
	}
	return fmt.Errorf("%w: %s", ErrNotLowered, op.Name)
}

func (e *emitter) unary(op *ir.Operation, mnemonic string) error {
	if len(op.Operands) != 1 {
		return fmt.Errorf("%w: %s wants 1 operand", ErrOperand, op.Name)
	}
	a, err := e.operand(op.Operands[0])
	if err != nil {
		return err
	}
	e.line("    %s %s", mnemonic, a.text)
	return nil
}

func (e *emitter) binary(op *ir.Operation) error {
	if len(op.Operands) != 2 {
		return fmt.Errorf("%w: %s wants 2 operands", ErrOperand, op.Name)
	}
	src, err := e.operand(op.Operands[0])
	if err != nil {
		return err
	}
	dst, err := e.operand(op.Operands[1])
	if err != nil {
		return err
	}
	if dst.kind == kindImm {
		return fmt.Errorf("%w: %s writes to an immediate", ErrOperand, op.Name)
	}

	mnemonic := op.Mnemonic()
	if op.Is(x86.OpMov) {
		mnemonic = "mov"
		if src.kind == kindMem && dst.kind == kindMem {
			e.line("    movl %s, %s", src.text, scratch)
			e.line("    movl %s, %s", scratch, dst.text)
			return nil
		}
		if src.wide || dst.wide {
			mnemonic += "q"
		} else {
			mnemonic += "l"
		}
	}
	e.line("    %s %s, %s", mnemonic, src.text, dst.text)
	return nil
}

type operandKind uint8

const (
	kindImm operandKind = iota
	kindReg
	kindMem
)

type operand struct {
	kind operandKind
	wide bool // 64-bit register
	text string
}

func (e *emitter) operand(v ir.Value) (operand, error) {
	h, ok := v.Def()
	if !ok {
		return operand{}, fmt.Errorf("%w: %s has no producer", ErrOperand, v)
	}
	def, err := e.c.Op(h)
	if err != nil {
		return operand{}, err
	}
	switch def.Name {
	case arith.OpConstant:
		k, ok := def.IntAttr(arith.ValueAttr)
		if !ok {
			return operand{}, fmt.Errorf("%w: constant %s without value", ErrOperand, v)
		}
		return operand{kind: kindImm, text: fmt.Sprintf("$%d", k)}, nil
	case x86.OpRbp:
		return operand{kind: kindReg, wide: true, text: "%rbp"}, nil
	case x86.OpRsp:
		return operand{kind: kindReg, wide: true, text: "%rsp"}, nil
	case x86.OpAx:
		return operand{kind: kindReg, text: "%eax"}, nil
	case x86.OpSvar:
		off, err := e.svarOffset(def)
		if err != nil {
			return operand{}, err
		}
		return operand{kind: kindMem, text: fmt.Sprintf("-%d(%%rbp)", off)}, nil
	}
	return operand{kind: kindMem, text: fmt.Sprintf("%d(%%rbp)", e.slot(v))}, nil
}

func (e *emitter) svarOffset(def *ir.Operation) (uint32, error) {
	if len(def.Operands) != 1 {
		return 0, fmt.Errorf("%w: x86.svar wants 1 operand", ErrOperand)
	}
	h, ok := def.Operands[0].Def()
	if !ok {
		return 0, fmt.Errorf("%w: x86.svar offset is not a constant", ErrOperand)
	}
	k, err := e.c.Op(h)
	if err != nil {
		return 0, err
	}
	off, ok := k.IntAttr(arith.ValueAttr)
	if !k.Is(arith.OpConstant) || !ok {
		return 0, fmt.Errorf("%w: x86.svar offset is not a constant", ErrOperand)
	}
	return off, nil
}

func (e *emitter) slot(v ir.Value) int64 {
	if off, ok := e.slots[v.ID()]; ok {
		return off
	}
	e.next -= 4
	e.slots[v.ID()] = e.next
	return e.next
}

// Slots reports how many 4-byte temporaries function op uses; the frame
// reserved by mem.alloca must cover them.
func Slots(c *ir.Context, op *ir.Operation) (int, error) {
	entry, ok := function.Entry(op)
	if !ok {
		return 0, fmt.Errorf("%w: not a function", ErrOperand)
	}
	e := &emitter{w: bufio.NewWriter(io.Discard), c: c, slots: make(map[uint32]int64)}
	for h := range entry.Ops(c) {
		if err := e.instr(c.MustOp(h)); err != nil {
			return 0, err
		}
	}
	return len(e.slots), nil
}
