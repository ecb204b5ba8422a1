package x86

import (
	"lorax/internal/dialect/mem"
	"lorax/internal/rewrite"
)

func lowerMem(r *rewrite.Rewriter) {
	switch r.Name() {
	case mem.OpAlloca:
		lowerAlloca(r)
	case OpRet:
		lowerEpilogue(r)
	}
}

// lowerAlloca grows the frame: `subq size, %rsp`.
func lowerAlloca(r *rewrite.Rewriter) {
	operands := r.Operands()
	if len(operands) != 1 {
		return
	}
	size := operands[0]

	rsp := r.ResultOf(r.InsertBefore(Rsp()))
	r.Replace(Subq(size, rsp))
}

// lowerEpilogue restores the caller's frame before x86.ret unless that was
// already done.
func lowerEpilogue(r *rewrite.Rewriter) {
	if prev, ok := r.Prev(); ok && r.Deref(prev).Is(OpPopq) {
		return
	}
	rbp := r.ResultOf(r.InsertBefore(Rbp()))
	rsp := r.ResultOf(r.InsertBefore(Rsp()))
	r.InsertBefore(Mov(rbp, rsp))
	r.InsertBefore(Popq(rbp))
}
