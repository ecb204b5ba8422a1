package rewrite

import (
	"lorax/internal/arena"
	"lorax/internal/ir"
	"lorax/internal/trace"
)

// Rewriter is the view a rule gets of the IR: the context, the block being
// walked and the operation under the cursor. It is only valid during Apply.
type Rewriter struct {
	c   *ir.Context
	b   *ir.Block
	cur arena.Handle

	mutations int
	tr        trace.Tracer
	parent    uint64
}

// NewRewriter positions a rewriter on cur. Run creates these itself; this is
// for applying a single rule by hand.
func NewRewriter(c *ir.Context, b *ir.Block, cur arena.Handle) *Rewriter {
	return &Rewriter{c: c, b: b, cur: cur, tr: trace.Nop}
}

func (r *Rewriter) Context() *ir.Context { return r.c }
func (r *Rewriter) Block() *ir.Block { return r.b }
func (r *Rewriter) Handle() arena.Handle { return r.cur }
func (r *Rewriter) Mutations() int { return r.mutations }

// Op returns the operation under the cursor.
func (r *Rewriter) Op() *ir.Operation { return r.c.MustOp(r.cur) }

func (r *Rewriter) Name() string { return r.Op().Name }

func (r *Rewriter) Operands() []ir.Value { return r.Op().Operands }

// Result returns the current op's result, if it has one.
func (r *Rewriter) Result() (ir.Value, bool) {
	op := r.Op()
	return op.Result, op.HasResult
}

// Deref returns any operation by handle; a bad handle panics.
func (r *Rewriter) Deref(h arena.Handle) *ir.Operation { return r.c.MustOp(h) }

// ResultOf returns the result of the operation at h. It panics with an error
// wrapping ir.ErrNoResult when that operation has none.
func (r *Rewriter) ResultOf(h arena.Handle) ir.Value {
	v, err := r.c.ResultOf(h)
	if err != nil {
		panic(err)
	}
	return v
}

// Prev returns the operation right before the cursor, if any.
func (r *Rewriter) Prev() (arena.Handle, bool) { return r.b.Prev(r.c, r.cur) }

// InsertBefore splices op immediately before the cursor and returns its handle.
func (r *Rewriter) InsertBefore(op ir.Operation) arena.Handle {
	h := r.b.InsertBefore(r.c, r.cur, op)
	r.touched("insert", h)
	return h
}

// Append adds op at the end of the block being walked. The walk reaches it later.
func (r *Rewriter) Append(op ir.Operation) arena.Handle {
	h := r.b.Append(r.c, op)
	r.touched("append", h)
	return h
}

// InsertBeforeIn splices op before anchor in another block, typically a
// region of the current op.
func (r *Rewriter) InsertBeforeIn(b *ir.Block, anchor arena.Handle, op ir.Operation) arena.Handle {
	h := b.InsertBefore(r.c, anchor, op)
	r.touched("insert", h)
	return h
}

// AppendTo adds op at the end of another block.
func (r *Rewriter) AppendTo(b *ir.Block, op ir.Operation) arena.Handle {
	h := b.Append(r.c, op)
	r.touched("append", h)
	return h
}

// Replace overwrites the current op, keeping its position.
func (r *Rewriter) Replace(op ir.Operation) {
	r.b.Replace(r.c, r.cur, op)
	r.touched("replace", r.cur)
}

// SetAttr updates an attribute of the current op.
func (r *Rewriter) SetAttr(name string, a ir.Attribute) {
	r.Op().SetAttr(name, a)
	r.touched("attr", r.cur)
}

func (r *Rewriter) touched(what string, h arena.Handle) {
	r.mutations++
	if r.tr != nil && r.tr.Enabled() {
		trace.Point(r.tr, trace.ScopeNode, what, r.parent, ir.FormatOp(r.c.MustOp(h)))
	}
}
