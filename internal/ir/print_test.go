package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorax/internal/ir"
)

func TestFormatOp(t *testing.T) {
	c := ir.NewContext()
	b := c.NewBlock()
	a := c.NewValue()
	bv := c.NewValue()

	tests := []struct {
		name string
		op   ir.Operation
		want string
	}{
		{name: "no result no operands", op: named("x86.ret"), want: "x86.ret"},
		{name: "fresh", op: fresh("x86.rsp"), want: "%3 := x86.rsp"},
		{name: "operands", op: ir.Operation{Name: "mem.dealloca", Operands: []ir.Value{a}}, want: "mem.dealloca %1"},
		{name: "alias", op: ir.Operation{Name: "x86.mov", Operands: []ir.Value{a, bv}, Result: bv, HasResult: true}, want: "%2 := x86.mov %1, %2"},
		{
			name: "attributes sorted",
			op: ir.Operation{Name: "t.attrs", Attrs: ir.AttrMap{
				"value": ir.IntAttr(16), "sym_name": ir.StringAttr("main"),
			}},
			want: `t.attrs {sym_name = "main", value = 16}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := b.Append(c, tt.op)
			assert.Equal(t, tt.want, ir.FormatOp(c.MustOp(h)))
		})
	}
}

func TestFormatBlock_NestedRegions(t *testing.T) {
	c := ir.NewContext()
	module := c.NewBlock()
	body := c.NewBlock()

	k := body.Append(c, ir.Operation{Name: "arith.constant", HasResult: true, Attrs: ir.AttrMap{"value": ir.IntAttr(2)}})
	kv, err := c.ResultOf(k)
	require.NoError(t, err)
	n := body.Append(c, fresh("arith.negate", kv))
	nv, err := c.ResultOf(n)
	require.NoError(t, err)
	body.Append(c, ir.Operation{Name: "func.ret", Operands: []ir.Value{nv}})
	module.Append(c, ir.Operation{
		Name:    "func.func",
		Attrs:   ir.AttrMap{"sym_name": ir.StringAttr("main")},
		Regions: []*ir.Block{body},
	})

	want := strings.Join([]string{
		".bb0:",
		`    func.func {sym_name = "main"}`,
		"        .bb1:",
		"            %1 := arith.constant {value = 2}",
		"            %2 := arith.negate %1",
		"            func.ret %2",
		"",
	}, "\n")
	assert.Equal(t, want, ir.FormatBlock(c, module))
	require.NoError(t, ir.Validate(c, module))
}

func TestParseHeader_RoundTrip(t *testing.T) {
	c := ir.NewContext()
	b := c.NewBlock()
	x := c.NewValue()
	y := c.NewValue()
	b.Append(c, fresh("x86.rbp"))
	b.Append(c, ir.Operation{Name: "x86.mov", Operands: []ir.Value{x, y}, Result: y, HasResult: true})
	b.Append(c, ir.Operation{Name: "x86.pushq", Operands: []ir.Value{x}})
	b.Append(c, ir.Operation{Name: "arith.constant", HasResult: true, Attrs: ir.AttrMap{"value": ir.IntAttr(0)}})
	b.Append(c, ir.Operation{Name: "func.func", Attrs: ir.AttrMap{"sym_name": ir.StringAttr("a, %9 {")}})
	b.Append(c, named("x86.ret"))

	for h := range b.Ops(c) {
		op := c.MustOp(h)
		line := "    " + ir.FormatOp(op)
		got, err := ir.ParseHeader(line)
		require.NoError(t, err, line)

		assert.Equal(t, op.Name, got.Name, line)
		assert.Equal(t, op.HasResult, got.HasResult, line)
		if op.HasResult {
			assert.Equal(t, op.Result.ID(), got.Result, line)
		}
		var ids []uint32
		for _, v := range op.Operands {
			ids = append(ids, v.ID())
		}
		assert.Equal(t, ids, got.Operands, line)
	}
}

func TestParseHeader_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"%1 x86.rsp",
		"%x := x86.rsp",
		"x86.mov 1, 2",
		"%1 := {value = 3}",
	} {
		_, err := ir.ParseHeader(line)
		assert.ErrorIs(t, err, ir.ErrMalformedHeader, "%q", line)
	}
}
