package ir

import (
	"iter"

	"lorax/internal/arena"
)

// Block is an ordered sequence of operations threaded through their link
// fields. Blocks are created by Context.NewBlock; the zero Block is an empty
// sequence with id 0.
//
// Anchors passed to InsertBefore and Replace must be members of the receiver;
// this is not checked here, Validate reports the resulting corruption.
type Block struct {
	id         uint32
	head, tail link
	n          int
}

func (b *Block) ID() uint32 { return b.id }

// Len returns the number of linked operations.
func (b *Block) Len() int { return b.n }

func (b *Block) Empty() bool { return b.n == 0 }

// Head returns the first operation, if any.
func (b *Block) Head() (arena.Handle, bool) { return b.head.get() }

// Tail returns the last operation, if any.
func (b *Block) Tail() (arena.Handle, bool) { return b.tail.get() }

// Append places op at the end of b and returns its handle.
func (b *Block) Append(c *Context, op Operation) arena.Handle {
	h := c.place(op)
	node := c.ops.MustGet(h)
	if t, ok := b.tail.get(); ok {
		c.ops.MustGet(t).next = linkTo(h)
		node.prev = linkTo(t)
	} else {
		b.head = linkTo(h)
	}
	b.tail = linkTo(h)
	b.n++
	return h
}

// InsertBefore places op immediately before anchor. When anchor is the head,
// the new operation becomes the head.
func (b *Block) InsertBefore(c *Context, anchor arena.Handle, op Operation) arena.Handle {
	h := c.place(op)
	node := c.ops.MustGet(h)
	at := c.ops.MustGet(anchor)

	node.next = linkTo(anchor)
	node.prev = at.prev
	if p, ok := at.prev.get(); ok {
		c.ops.MustGet(p).next = linkTo(h)
	} else {
		b.head = linkTo(h)
	}
	at.prev = linkTo(h)
	b.n++
	return h
}

// Replace overwrites the operation stored at target with op. The slot keeps
// its position in the sequence, so target stays valid and now names op.
// A result that has no producer yet is attributed to target.
func (b *Block) Replace(c *Context, target arena.Handle, op Operation) {
	old := c.ops.MustGet(target)
	op.next, op.prev = old.next, old.prev
	if op.HasResult {
		if !op.Result.Numbered() {
			op.Result = c.NewValue()
		}
		op.Result.setDef(target)
	}
	*old = op
}

// Next returns the successor of h.
func (b *Block) Next(c *Context, h arena.Handle) (arena.Handle, bool) {
	return c.ops.MustGet(h).next.get()
}

// Prev returns the predecessor of h.
func (b *Block) Prev(c *Context, h arena.Handle) (arena.Handle, bool) {
	return c.ops.MustGet(h).prev.get()
}

// Ops yields handles in program order. The successor is read before yielding,
// so replacing the yielded op is safe; inserting before it is not observed.
func (b *Block) Ops(c *Context) iter.Seq[arena.Handle] {
	return func(yield func(arena.Handle) bool) {
		cur, ok := b.head.get()
		for ok {
			next, more := c.ops.MustGet(cur).next.get()
			if !yield(cur) {
				return
			}
			cur, ok = next, more
		}
	}
}

// Handles collects Ops into a slice.
func (b *Block) Handles(c *Context) []arena.Handle {
	out := make([]arena.Handle, 0, b.n)
	for h := range b.Ops(c) {
		out = append(out, h)
	}
	return out
}
