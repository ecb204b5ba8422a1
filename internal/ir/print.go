package ir

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const indentStep = "    "

// FormatOp renders the single-line header of op:
//
//	%3 := x86.neg %2
//	mem.dealloca %1
//	%1 := arith.constant {value = 16}
//
// Nested regions are not included.
func FormatOp(op *Operation) string {
	var sb strings.Builder
	if op.HasResult {
		sb.WriteString(op.Result.String())
		sb.WriteString(" := ")
	}
	sb.WriteString(op.Name)
	for i, v := range op.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	if len(op.Attrs) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(op.Attrs.String())
	}
	return sb.String()
}

// Fprint writes b as a block header followed by one indented line per
// operation. Regions are printed under their owning operation, one level
// deeper.
func Fprint(w io.Writer, c *Context, b *Block) error {
	bw := bufio.NewWriter(w)
	if err := printBlock(bw, c, b, ""); err != nil {
		return err
	}
	return bw.Flush()
}

// FormatBlock is Fprint into a string.
func FormatBlock(c *Context, b *Block) string {
	var sb strings.Builder
	_ = Fprint(&sb, c, b)
	return sb.String()
}

func printBlock(w *bufio.Writer, c *Context, b *Block, indent string) error {
	if _, err := fmt.Fprintf(w, "%s.bb%d:\n", indent, b.ID()); err != nil {
		return err
	}
	inner := indent + indentStep
	for h := range b.Ops(c) {
		op, err := c.Op(h)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", inner, FormatOp(op)); err != nil {
			return err
		}
		for _, r := range op.Regions {
			if err := printBlock(w, c, r, inner+indentStep); err != nil {
				return err
			}
		}
	}
	return nil
}
