package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorax/internal/ast"
	"lorax/internal/source"
)

func program(fs *source.FileSet) (*ast.Program, *source.File) {
	id := fs.AddVirtual("k.c", []byte("int k(void) { return -1; }"))
	sp := func(a, b uint32) source.Span { return source.Span{File: id, Start: a, End: b} }
	prog := &ast.Program{
		Span: sp(0, 26),
		Funcs: []*ast.FuncDecl{{
			Name:     "k",
			NameSpan: sp(4, 5),
			Span:     sp(0, 26),
			Body: &ast.ReturnStmt{
				Span: sp(14, 24),
				Value: &ast.Unary{
					Op:   ast.Negate,
					Span: sp(21, 23),
					X:    &ast.Constant{Value: 1, Span: sp(22, 23)},
				},
			},
		}},
	}
	return prog, fs.Get(id)
}

func TestCheckSpanInvariants_OK(t *testing.T) {
	prog, f := program(source.NewFileSet())
	require.NoError(t, CheckSpanInvariants(prog, f))
}

func TestCheckSpanInvariants_Violations(t *testing.T) {
	cases := map[string]func(*ast.Program){
		"empty":      func(p *ast.Program) { p.Funcs[0].NameSpan.End = p.Funcs[0].NameSpan.Start },
		"past end":   func(p *ast.Program) { p.Span.End = 99 },
		"other file": func(p *ast.Program) { p.Funcs[0].Span.File++ },
		"escapes":    func(p *ast.Program) { p.Funcs[0].Body.Value.(*ast.Unary).X.(*ast.Constant).Span.End = 25 },
		"no body":    func(p *ast.Program) { p.Funcs[0].Body = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			prog, f := program(source.NewFileSet())
			mutate(prog)
			assert.Error(t, CheckSpanInvariants(prog, f))
		})
	}
	assert.Error(t, CheckSpanInvariants(nil, nil))
}
