package x86

import (
	"lorax/internal/dialect/arith"
	"lorax/internal/ir"
	"lorax/internal/rewrite"
)

// lowerUnary turns `%r := arith.negate %s` into
//
//	%r := x86.mov %s, %r
//	%r := x86.neg %r
//
// and likewise arith.complement into x86.not.
func lowerUnary(r *rewrite.Rewriter) {
	var build func(ir.Value) ir.Operation
	switch r.Name() {
	case arith.OpNegate:
		build = Neg
	case arith.OpComplement:
		build = Not
	default:
		return
	}
	res, ok := r.Result()
	operands := r.Operands()
	if !ok || len(operands) != 1 {
		return
	}
	src := operands[0]

	moved := r.InsertBefore(Mov(src, res))
	r.Replace(build(r.ResultOf(moved)))
}
