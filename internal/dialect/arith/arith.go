// Package arith is the target-independent arithmetic dialect.
package arith

import (
	"lorax/internal/catalog"
	"lorax/internal/ir"
)

const (
	OpNegate     = "arith.negate"
	OpComplement = "arith.complement"
	OpConstant   = "arith.constant"

	// ValueAttr carries the immediate of arith.constant.
	ValueAttr = "value"
)

var (
	NegateDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpNegate, Operands: []string{"src"}, Result: catalog.ResultFresh,
		Summary: "two's complement negation",
	})
	ComplementDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpComplement, Operands: []string{"src"}, Result: catalog.ResultFresh,
		Summary: "bitwise complement",
	})
	ConstantDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpConstant, Result: catalog.ResultFresh,
		Attr: ValueAttr, AttrKind: ir.AttrInt,
		Summary: "32-bit unsigned immediate",
	})
)

func Negate(src ir.Value) ir.Operation { return NegateDef.Build(src) }
func Complement(src ir.Value) ir.Operation { return ComplementDef.Build(src) }

func Constant(v uint32) ir.Operation {
	return ConstantDef.MustInstantiate(catalog.Args{Attr: ir.IntAttr(v)})
}
