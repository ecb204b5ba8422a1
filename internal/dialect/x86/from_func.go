package x86

import (
	"lorax/internal/arena"
	"lorax/internal/dialect/function"
	"lorax/internal/ir"
	"lorax/internal/rewrite"
)

// FrameAttr marks a func.func whose entry block already has a prologue.
const FrameAttr = "x86.frame"

func lowerFunc(r *rewrite.Rewriter) {
	switch r.Name() {
	case function.OpFunc:
		lowerPrologue(r)
	case function.OpRet:
		lowerReturn(r)
	}
}

// lowerPrologue puts `push %rbp; mov %rsp, %rbp` at the front of the entry block.
func lowerPrologue(r *rewrite.Rewriter) {
	op := r.Op()
	if _, done := op.IntAttr(FrameAttr); done {
		return
	}
	entry, ok := function.Entry(op)
	if !ok {
		return
	}

	head, hasHead := entry.Head()
	place := func(o ir.Operation) arena.Handle {
		if hasHead {
			return r.InsertBeforeIn(entry, head, o)
		}
		return r.AppendTo(entry, o)
	}
	rbp := r.ResultOf(place(Rbp()))
	rsp := r.ResultOf(place(Rsp()))
	place(Pushq(rbp))
	place(Mov(rsp, rbp))

	r.SetAttr(FrameAttr, ir.IntAttr(1))
}

// lowerReturn moves the returned value into the accumulator.
func lowerReturn(r *rewrite.Rewriter) {
	operands := r.Operands()
	if len(operands) != 1 {
		return
	}
	v := operands[0]

	ax := r.ResultOf(r.InsertBefore(Ax()))
	r.InsertBefore(Mov(v, ax))
	r.Replace(Ret())
}
