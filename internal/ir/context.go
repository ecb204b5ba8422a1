package ir

import (
	"fmt"

	"lorax/internal/arena"
)

// Context owns the operation arena and the value/block counters for one
// compilation unit. It is not safe for concurrent use.
type Context struct {
	ops       arena.Arena[Operation]
	nextValue uint32
	nextBlock uint32
}

// NewContext returns an empty context. Value identities start at 1.
func NewContext() *Context {
	return &Context{nextValue: 1}
}

// NewValue mints a fresh numbered value with no producer, e.g. for block inputs.
func (c *Context) NewValue() Value {
	v := Value{id: c.nextValue}
	c.nextValue++
	return v
}

// NewBlock returns an empty sequence with a fresh block id.
func (c *Context) NewBlock() *Block {
	b := &Block{id: c.nextBlock}
	c.nextBlock++
	return b
}

// Op dereferences an operation handle.
func (c *Context) Op(h arena.Handle) (*Operation, error) {
	return c.ops.Get(h)
}

// MustOp dereferences h and panics on a bad handle.
func (c *Context) MustOp(h arena.Handle) *Operation {
	return c.ops.MustGet(h)
}

// ResultOf returns the result value of the operation at h.
func (c *Context) ResultOf(h arena.Handle) (Value, error) {
	op, err := c.ops.Get(h)
	if err != nil {
		return Value{}, err
	}
	v, err := op.ResultValue()
	if err != nil {
		return Value{}, fmt.Errorf("%w (at %s)", err, h)
	}
	return v, nil
}

// NumOps returns how many operation slots have been allocated, live or not.
func (c *Context) NumOps() int { return c.ops.Len() }

// NumValues returns how many value identities have been handed out.
func (c *Context) NumValues() int { return int(c.nextValue - 1) }

// place stores op in a new slot. An unnumbered result gets the next identity
// and every result learns its producer unless it already has one. Links start
// unset; the caller threads them.
func (c *Context) place(op Operation) arena.Handle {
	op.next, op.prev = 0, 0
	if op.HasResult && !op.Result.Numbered() {
		op.Result.id = c.nextValue
		c.nextValue++
	}
	h := c.ops.Alloc(op)
	if op.HasResult {
		c.ops.MustGet(h).Result.setDef(h)
	}
	return h
}
