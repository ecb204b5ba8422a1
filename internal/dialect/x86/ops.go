// Package x86 is the x86-64 instruction dialect together with the rule sets
// that lower the arith, func and mem dialects into it.
package x86

import (
	"lorax/internal/catalog"
	"lorax/internal/ir"
)

const (
	OpMov   = "x86.mov"
	OpSvar  = "x86.svar"
	OpSubq  = "x86.subq"
	OpPushq = "x86.pushq"
	OpPopq  = "x86.popq"
	OpNeg   = "x86.neg"
	OpNot   = "x86.not"
	OpRet   = "x86.ret"

	// register reads
	OpRbp = "x86.rbp"
	OpRsp = "x86.rsp"
	OpAx  = "x86.ax"
)

var (
	MovDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpMov, Operands: []string{"src", "dst"}, Result: catalog.ResultAlias, AliasOf: "dst",
		Summary: "copy src into dst",
	})
	SvarDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpSvar, Operands: []string{"offset"}, Result: catalog.ResultFresh,
		Summary: "stack slot at offset from the frame base",
	})
	SubqDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpSubq, Operands: []string{"num", "reg"}, Result: catalog.ResultAlias, AliasOf: "reg",
		Summary: "64-bit subtract in place",
	})
	PushqDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpPushq, Operands: []string{"num"},
	})
	PopqDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpPopq, Operands: []string{"num"},
	})
	NegDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpNeg, Operands: []string{"src"}, Result: catalog.ResultAlias, AliasOf: "src",
		Summary: "negate in place",
	})
	NotDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpNot, Operands: []string{"src"}, Result: catalog.ResultAlias, AliasOf: "src",
		Summary: "complement in place",
	})
	RetDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpRet,
	})
	RbpDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpRbp, Result: catalog.ResultFresh, Summary: "frame pointer",
	})
	RspDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpRsp, Result: catalog.ResultFresh, Summary: "stack pointer",
	})
	AxDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpAx, Result: catalog.ResultFresh, Summary: "accumulator, holds the return value",
	})
)

func Mov(src, dst ir.Value) ir.Operation { return MovDef.Build(src, dst) }
func Svar(offset ir.Value) ir.Operation { return SvarDef.Build(offset) }
func Subq(num, reg ir.Value) ir.Operation { return SubqDef.Build(num, reg) }
func Pushq(v ir.Value) ir.Operation { return PushqDef.Build(v) }
func Popq(v ir.Value) ir.Operation { return PopqDef.Build(v) }
func Neg(src ir.Value) ir.Operation { return NegDef.Build(src) }
func Not(src ir.Value) ir.Operation { return NotDef.Build(src) }
func Ret() ir.Operation { return RetDef.Build() }

func Rbp() ir.Operation { return RbpDef.Build() }
func Rsp() ir.Operation { return RspDef.Build() }
func Ax() ir.Operation { return AxDef.Build() }

// IsRegister reports whether name is one of the register read operations.
func IsRegister(name string) bool {
	switch name {
	case OpRbp, OpRsp, OpAx:
		return true
	}
	return false
}
