package x86

import (
	"errors"
	"fmt"
	"strings"

	"lorax/internal/rewrite"
)

// Rule sets, one per source dialect.
var (
	LowerArith = rewrite.RuleSet{rewrite.RuleFunc(lowerUnary)}
	LowerFunc  = rewrite.RuleSet{rewrite.RuleFunc(lowerFunc)}
	// LowerMem also emits the epilogue, so it has to run after LowerFunc
	// produced x86.ret.
	LowerMem = rewrite.RuleSet{rewrite.RuleFunc(lowerMem)}
)

// DefaultPipeline is the pass order used when none is configured.
var DefaultPipeline = []string{"arith", "func", "mem"}

var ErrUnknownPass = errors.New("x86: unknown pass")

// Passes returns every lowering pass in default order.
func Passes() []rewrite.Pass {
	return []rewrite.Pass{
		{Name: "arith", Rules: LowerArith},
		{Name: "func", Rules: LowerFunc},
		{Name: "mem", Rules: LowerMem},
	}
}

// Pipeline resolves pass names. No names means DefaultPipeline.
func Pipeline(names ...string) ([]rewrite.Pass, error) {
	if len(names) == 0 {
		names = DefaultPipeline
	}
	byName := make(map[string]rewrite.Pass, 3)
	for _, p := range Passes() {
		byName[p.Name] = p
	}
	out := make([]rewrite.Pass, 0, len(names))
	for _, n := range names {
		p, ok := byName[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPass, n, strings.Join(DefaultPipeline, ", "))
		}
		out = append(out, p)
	}
	return out, nil
}
