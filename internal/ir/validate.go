package ir

import (
	"errors"
	"fmt"

	"lorax/internal/arena"
)

// ErrInvariant marks structural violations found by Validate.
var ErrInvariant = errors.New("ir: invariant violated")

// Validate checks the sequence and value invariants of root and every region
// reachable from it. All violations are reported, joined.
func Validate(c *Context, root *Block) error {
	v := validator{
		c:     c,
		owner: make(map[arena.Handle]uint32),
	}
	v.walk(root)
	v.checkValues()
	return errors.Join(v.errs...)
}

type validator struct {
	c     *Context
	owner map[arena.Handle]uint32 // op -> block id
	order []arena.Handle
	errs  []error
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
}

func (v *validator) walk(b *Block) {
	head, hasHead := b.head.get()
	tail, hasTail := b.tail.get()
	if hasHead != hasTail {
		v.fail(".bb%d: head/tail disagree on emptiness", b.id)
		return
	}
	if !hasHead {
		if b.n != 0 {
			v.fail(".bb%d: empty chain but length %d", b.id, b.n)
		}
		return
	}

	var regions []*Block
	cur, prev, hasPrev := head, arena.Nil, false
	steps := 0
	for {
		op, err := v.c.Op(cur)
		if err != nil {
			v.fail(".bb%d: %v", b.id, err)
			return
		}
		if blk, seen := v.owner[cur]; seen {
			v.fail(".bb%d: %s already linked (in .bb%d)", b.id, cur, blk)
			return
		}
		v.owner[cur] = b.id
		v.order = append(v.order, cur)
		steps++

		p, ok := op.prev.get()
		if ok != hasPrev || (ok && p != prev) {
			v.fail(".bb%d: %s predecessor link does not mirror successor", b.id, cur)
		}
		regions = append(regions, op.Regions...)

		next, more := op.next.get()
		if !more {
			break
		}
		if steps > b.n {
			v.fail(".bb%d: chain longer than length %d", b.id, b.n)
			return
		}
		prev, hasPrev, cur = cur, true, next
	}
	if cur != tail {
		v.fail(".bb%d: chain ends at %s, tail is %s", b.id, cur, tail)
	}
	if steps != b.n {
		v.fail(".bb%d: chain has %d ops, length is %d", b.id, steps, b.n)
	}
	for _, r := range regions {
		v.walk(r)
	}
}

func (v *validator) checkValues() {
	producer := make(map[uint32]arena.Handle)
	for _, h := range v.order {
		op := v.c.MustOp(h)
		if op.HasResult {
			if d, ok := op.Result.Def(); ok {
				v.checkDef(h, op.Result)
				if d == h {
					if other, dup := producer[op.Result.id]; dup {
						v.fail("%s produced by both %s and %s", op.Result, other, h)
					} else {
						producer[op.Result.id] = h
					}
				}
			}
		}
		for _, o := range op.Operands {
			v.checkDef(h, o)
		}
	}
}

func (v *validator) checkDef(at arena.Handle, val Value) {
	d, ok := val.Def()
	if !ok {
		return
	}
	if _, live := v.owner[d]; !live {
		v.fail("%s (used at %s) names producer %s which is not in any sequence", val, at, d)
	}
}
