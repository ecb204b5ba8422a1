// Package function is the "func" dialect: function definitions and returns.
package function

import (
	"lorax/internal/catalog"
	"lorax/internal/ir"
)

const (
	OpFunc = "func.func"
	OpRet  = "func.ret"

	SymNameAttr = "sym_name"
)

var (
	FuncDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpFunc, Attr: SymNameAttr, AttrKind: ir.AttrString, Regions: 1,
		Summary: "function definition; the region is the entry block",
	})
	RetDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpRet, Operands: []string{"value"},
		Summary: "return value to the caller",
	})
)

// Func builds a function whose body is entry.
func Func(name string, entry *ir.Block) ir.Operation {
	return FuncDef.MustInstantiate(catalog.Args{
		Attr:    ir.StringAttr(name),
		Regions: []*ir.Block{entry},
	})
}

func Ret(v ir.Value) ir.Operation { return RetDef.Build(v) }

// Name returns the symbol name of a func.func operation.
func Name(op *ir.Operation) (string, bool) {
	if !op.Is(OpFunc) {
		return "", false
	}
	return op.StringAttr(SymNameAttr)
}

// Entry returns the entry block of a func.func operation.
func Entry(op *ir.Operation) (*ir.Block, bool) {
	if !op.Is(OpFunc) || len(op.Regions) == 0 {
		return nil, false
	}
	return op.Regions[0], true
}
