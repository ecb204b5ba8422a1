// Package mem is the stack memory dialect.
package mem

import (
	"lorax/internal/catalog"
	"lorax/internal/ir"
)

const (
	OpAlloca   = "mem.alloca"
	OpDealloca = "mem.dealloca"
)

var (
	AllocaDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpAlloca, Operands: []string{"size"}, Result: catalog.ResultFresh,
		Summary: "reserve size bytes of stack",
	})
	DeallocaDef = catalog.Default.MustRegister(catalog.OpDef{
		Name: OpDealloca, Operands: []string{"size"},
		Summary: "release size bytes of stack",
	})
)

func Alloca(size ir.Value) ir.Operation { return AllocaDef.Build(size) }
func Dealloca(size ir.Value) ir.Operation { return DeallocaDef.Build(size) }
