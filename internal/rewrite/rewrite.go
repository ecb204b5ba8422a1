// Package rewrite drives rule-based transformation of IR sequences.
//
// A Pass is a named RuleSet. Run walks a block from head to tail and, at
// every position, applies each rule of the set in order through a Rewriter
// positioned on the current operation. Rules see the current op, may splice
// new operations before it, append to the end of the block and replace it in
// place. After the rules ran the cursor moves to the current successor of
// the current position, so operations inserted before the cursor are not
// revisited while operations appended at the tail are.
//
// Nested regions are visited depth-first right after their owning operation.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"lorax/internal/arena"
	"lorax/internal/ir"
	"lorax/internal/trace"
)

// Rule inspects the operation under the cursor and optionally rewrites it.
// Not matching is not an error: a rule simply returns.
type Rule interface {
	Apply(r *Rewriter)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(r *Rewriter)

func (f RuleFunc) Apply(r *Rewriter) { f(r) }

// RuleSet applies every member in order at the same position. Members must
// not both match the same operation.
type RuleSet []Rule

func (s RuleSet) Apply(r *Rewriter) {
	for _, rule := range s {
		rule.Apply(r)
	}
}

// Pass is a named rule set.
type Pass struct {
	Name  string
	Rules RuleSet
}

// Stats summarises one Run.
type Stats struct {
	Blocks    int // sequences walked, root included
	Visited   int // cursor positions
	Mutations int // appends, insertions, replacements and attribute updates
}

func (s *Stats) add(o Stats) {
	s.Blocks += o.Blocks
	s.Visited += o.Visited
	s.Mutations += o.Mutations
}

// Run applies pass to root and every nested region. Panics raised by rules
// on bad handles or missing results are returned as errors; any other panic
// is re-raised.
func Run(ctx context.Context, c *ir.Context, root *ir.Block, pass Pass) (stats Stats, err error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "pass:"+pass.Name, trace.CurrentSpan(ctx).SpanID)
	defer func() {
		span.WithExtra("visited", strconv.Itoa(stats.Visited)).
			WithExtra("mutations", strconv.Itoa(stats.Mutations))
		if err != nil {
			span.End(err.Error())
			return
		}
		span.End("")
	}()
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if e, ok := rec.(error); ok && (errors.Is(e, arena.ErrOutOfRange) || errors.Is(e, ir.ErrNoResult)) {
			err = fmt.Errorf("pass %s: %w", pass.Name, e)
			return
		}
		panic(rec)
	}()

	w := walker{ctx: ctx, c: c, pass: pass, tr: tr, parent: span.ID()}
	err = w.block(root, &stats)
	return stats, err
}

type walker struct {
	ctx    context.Context
	c      *ir.Context
	pass   Pass
	tr     trace.Tracer
	parent uint64
}

func (w *walker) block(b *ir.Block, stats *Stats) error {
	stats.Blocks++
	cur, ok := b.Head()
	for ok {
		if err := w.ctx.Err(); err != nil {
			return fmt.Errorf("pass %s: %w", w.pass.Name, err)
		}
		r := &Rewriter{c: w.c, b: b, cur: cur, tr: w.tr, parent: w.parent}
		w.pass.Rules.Apply(r)
		stats.Visited++
		stats.Mutations += r.mutations

		for _, region := range w.c.MustOp(cur).Regions {
			if err := w.block(region, stats); err != nil {
				return err
			}
		}
		cur, ok = b.Next(w.c, cur)
	}
	return nil
}

// RunAll runs passes in order and sums their statistics.
// verify, when non-nil, is called after each pass.
func RunAll(ctx context.Context, c *ir.Context, root *ir.Block, passes []Pass, verify func(Pass) error) (Stats, error) {
	var total Stats
	for _, p := range passes {
		s, err := Run(ctx, c, root, p)
		total.add(s)
		if err != nil {
			return total, err
		}
		if verify != nil {
			if err := verify(p); err != nil {
				return total, fmt.Errorf("after pass %s: %w", p.Name, err)
			}
		}
	}
	return total, nil
}
