package driver

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorax/internal/asm"
	"lorax/internal/diag"
	"lorax/internal/dialect/x86"
	"lorax/internal/observ"
	"lorax/internal/token"
	"lorax/internal/trace"
)

const returnZero = "int main(void) {\n    return 0;\n}\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

// copyPreprocess stands in for `cc -E`: the sources used here need no
// preprocessing.
func copyPreprocess(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want FileKind
	}{
		{"main.c", KindSource},
		{"dir/main.i", KindPreprocessed},
		{"main.S", KindAssembly},
		{"main.s", KindBinary},
		{"main", KindBinary},
		{"main.o", KindBinary},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.path), tt.path)
	}
}

func TestProcFile(t *testing.T) {
	f := NewProcFile(filepath.Join("src", "main.c"))
	assert.Equal(t, ProcFile{Dir: "src", Stem: "main", Kind: KindSource}, f)
	assert.Equal(t, filepath.Join("src", "main.i"), f.WithKind(KindPreprocessed).Path())
	assert.Equal(t, filepath.Join("src", "main.S"), f.WithKind(KindAssembly).Path())
	assert.Equal(t, filepath.Join("src", "main"), f.WithKind(KindBinary).Path())
	assert.Equal(t, KindSource, f.Kind, "WithKind copies")

	bin := NewProcFile("tool.v2")
	assert.Equal(t, "tool.v2", bin.Stem)
	assert.Equal(t, "assembly", KindAssembly.String())
}

func TestTokenize(t *testing.T) {
	res, err := Tokenize(writeTemp(t, "main.c", returnZero), 10)
	require.NoError(t, err)
	assert.False(t, res.Bag.HasErrors())
	require.Len(t, res.Tokens, 11)
	assert.Equal(t, token.KwInt, res.Tokens[0].Kind)
	assert.Equal(t, token.EOF, res.Tokens[10].Kind)

	_, err = Tokenize(filepath.Join(t.TempDir(), "missing.c"), 10)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTokenize_ReportsLexErrors(t *testing.T) {
	res, err := Tokenize(writeTemp(t, "bad.c", "int main(void) { return 1foo @; }"), 10)
	require.NoError(t, err)
	require.Equal(t, 2, res.Bag.Len())
	assert.Equal(t, diag.LexBadNumber, res.Bag.Items()[0].Code)
	assert.Equal(t, diag.LexUnknownChar, res.Bag.Items()[1].Code)
}

func TestParse(t *testing.T) {
	res, err := Parse(writeTemp(t, "main.c", returnZero), 10)
	require.NoError(t, err)
	require.NotNil(t, res.Program)
	require.Len(t, res.Program.Funcs, 1)
	assert.Equal(t, "main", res.Program.Funcs[0].Name)

	res, err = Parse(writeTemp(t, "bad.c", "int main(void) { return 0 }"), 10)
	require.NoError(t, err, "syntax errors stay in the bag")
	assert.Nil(t, res.Program)
	require.True(t, res.Bag.HasErrors())
	assert.Equal(t, diag.SynExpectSemicolon, res.Bag.Items()[0].Code)
}

func TestLower_ReturnZero(t *testing.T) {
	res, err := Lower(context.Background(), writeTemp(t, "main.c", returnZero), LowerOptions{
		MaxDiagnostics: 10,
		Verify:         true,
		KeepGeneric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, lines(
		".bb0:",
		`    func.func {sym_name = "main"}`,
		"        .bb1:",
		"            %1 := arith.constant {value = 0}",
		"            func.ret %1",
	), res.Generic)
	assert.Positive(t, res.Stats.Mutations)

	var sb strings.Builder
	require.NoError(t, EmitAssembly(&sb, res, asm.Options{OS: "linux"}))
	assert.Equal(t, lines(
		"    .globl main",
		"main:",
		"    pushq %rbp",
		"    movq %rsp, %rbp",
		"    movl $0, %eax",
		"    movq %rbp, %rsp",
		"    popq %rbp",
		"    ret",
		`    .section .note.GNU-stack,"",@progbits`,
	), sb.String())
}

func TestLower_SyntaxError(t *testing.T) {
	res, err := Lower(context.Background(), writeTemp(t, "bad.c", "int main(void) { return ; }"), LowerOptions{MaxDiagnostics: 10})
	require.ErrorIs(t, err, ErrDiagnostics)
	require.NotNil(t, res)
	assert.Nil(t, res.Unit)
	assert.True(t, res.Bag.HasErrors())
}

func TestLower_UnknownPass(t *testing.T) {
	_, err := Lower(context.Background(), writeTemp(t, "main.c", returnZero), LowerOptions{Passes: []string{"arith", "sched"}})
	assert.ErrorIs(t, err, x86.ErrUnknownPass)
	var ce *diag.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, diag.IRUnknownPass, ce.Code)
}

func TestCC_MissingCompiler(t *testing.T) {
	cc := CC{Path: filepath.Join(t.TempDir(), "no-such-cc")}
	err := cc.Preprocess(context.Background(), "in.c", "out.i")
	var ce *diag.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, diag.IOToolchain, ce.Code)
	assert.Contains(t, err.Error(), "no-such-cc")
}

func TestCC_FailureKeepsExitError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script as the compiler")
	}
	script := filepath.Join(t.TempDir(), "fake-cc")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'fatal: no input' >&2\nexit 3\n"), 0o700))

	err := CC{Path: script}.Assemble(context.Background(), "in.S", "out")
	var ce *diag.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, diag.IOToolchain, ce.Code)
	assert.Contains(t, err.Error(), "fatal: no input")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestLower_PartialPipelineIsNotEmittable(t *testing.T) {
	res, err := Lower(context.Background(), writeTemp(t, "main.c", returnZero), LowerOptions{
		MaxDiagnostics: 10,
		Passes:         []string{"arith"},
	})
	require.NoError(t, err)
	err = EmitAssembly(&strings.Builder{}, res, asm.Options{OS: "linux"})
	require.ErrorIs(t, err, asm.ErrNotLowered)
	require.Equal(t, 1, res.Bag.Len())
	assert.Equal(t, diag.IRLeftoverOp, res.Bag.Items()[0].Code)
}

func TestLower_TimerAndTrace(t *testing.T) {
	timer := observ.NewTimer()
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := Lower(ctx, writeTemp(t, "main.c", returnZero), LowerOptions{Timer: timer})
	require.NoError(t, err)

	report := timer.Report()
	require.Len(t, report.Phases, 2)
	assert.True(t, strings.HasPrefix(report.Phases[0].Name, "parse "))
	assert.True(t, strings.HasPrefix(report.Phases[1].Name, "lower "))

	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"parse", "lower", "pass:arith", "pass:func", "pass:mem"}, names)
}

type phaseLog struct {
	mu  sync.Mutex
	end []string
}

func (l *phaseLog) observe(ev PhaseEvent) {
	if ev.Status != PhaseEnd {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.end = append(l.end, ev.Name)
}

func TestCompile_Source(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)

	src := writeTemp(t, "main.c", returnZero)
	dir := filepath.Dir(src)
	pre := filepath.Join(dir, "main.i")
	asmPath := filepath.Join(dir, "main.S")
	bin := filepath.Join(dir, "main")

	gomock.InOrder(
		tc.EXPECT().Preprocess(gomock.Any(), src, pre).DoAndReturn(copyPreprocess),
		tc.EXPECT().Assemble(gomock.Any(), asmPath, bin).DoAndReturn(func(_ context.Context, src, _ string) error {
			data, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Contains(t, string(data), "movl $0, %eax")
			return nil
		}),
	)

	log := &phaseLog{}
	ws := NewWorkspace(false)
	res, err := Compile(context.Background(), &CompileRequest{
		Input:     src,
		Toolchain: tc,
		Workspace: ws,
		Lower:     LowerOptions{MaxDiagnostics: 10, OnPhase: log.observe},
		Asm:       asm.Options{OS: "linux"},
	})
	require.NoError(t, err)
	assert.Equal(t, bin, res.Output)
	assert.False(t, res.CacheHit)
	assert.Equal(t, []string{PhasePreprocess, PhaseParse, PhaseLower, PhaseEmit, PhaseAssemble}, log.end)

	assert.Equal(t, []string{pre, asmPath}, ws.Files())
	require.NoError(t, ws.Close())
	assert.False(t, exists(pre))
	assert.False(t, exists(asmPath))
	assert.True(t, exists(src))
}

func TestCompile_KeepIntermediates(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	tc.EXPECT().Preprocess(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(copyPreprocess)
	tc.EXPECT().Assemble(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	src := writeTemp(t, "main.c", returnZero)
	ws := NewWorkspace(true)
	_, err := Compile(context.Background(), &CompileRequest{Input: src, Toolchain: tc, Workspace: ws})
	require.NoError(t, err)
	require.NoError(t, ws.Close())
	for _, f := range ws.Files() {
		assert.True(t, exists(f), f)
	}
}

func TestCompile_AssemblyOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	// Assemble must not run.
	src := writeTemp(t, "main.i", returnZero)

	ws := NewWorkspace(false)
	res, err := Compile(context.Background(), &CompileRequest{
		Input:        src,
		AssemblyOnly: true,
		Toolchain:    tc,
		Workspace:    ws,
		Asm:          asm.Options{OS: "darwin"},
	})
	require.NoError(t, err)
	require.NoError(t, ws.Close())
	assert.Equal(t, filepath.Join(filepath.Dir(src), "main.S"), res.Output)
	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "_main:")
	assert.True(t, exists(src), "user-supplied .i files are never removed")
}

func TestCompile_AssemblyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	src := writeTemp(t, "prog.S", "    ret\n")
	out := filepath.Join(t.TempDir(), "prog")
	tc.EXPECT().Assemble(gomock.Any(), src, out).Return(nil)

	res, err := Compile(context.Background(), &CompileRequest{Input: src, Output: out, Toolchain: tc})
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	assert.Nil(t, res.Bag())
}

func TestCompile_RejectsBinaries(t *testing.T) {
	_, err := Compile(context.Background(), &CompileRequest{Input: "a.out"})
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestCompile_ToolchainFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	boom := errors.New("gcc: fatal error")
	tc.EXPECT().Preprocess(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	_, err := Compile(context.Background(), &CompileRequest{Input: writeTemp(t, "main.c", returnZero), Toolchain: tc})
	assert.ErrorIs(t, err, boom)
}

func TestCompile_SyntaxErrorKeepsDiagnostics(t *testing.T) {
	ctrl := gomock.NewController(t)
	tc := NewMockToolchain(ctrl)
	tc.EXPECT().Preprocess(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(copyPreprocess)

	res, err := Compile(context.Background(), &CompileRequest{
		Input:     writeTemp(t, "main.c", "int main(void) { return -; }"),
		Toolchain: tc,
		Lower:     LowerOptions{MaxDiagnostics: 10},
	})
	require.ErrorIs(t, err, ErrDiagnostics)
	require.NotNil(t, res.Bag())
	assert.True(t, res.Bag().HasErrors())
	assert.NotNil(t, res.FileSet())
}

func TestCompile_CacheHit(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	require.NoError(t, err)
	src := writeTemp(t, "main.i", "int main(void) { return ~3; }")

	compileOnce := func() *CompileResult {
		res, err := Compile(context.Background(), &CompileRequest{
			Input:        src,
			AssemblyOnly: true,
			Cache:        cache,
			Version:      "test",
			Asm:          asm.Options{OS: "linux"},
		})
		require.NoError(t, err)
		return res
	}

	first := compileOnce()
	assert.False(t, first.CacheHit)
	want, err := os.ReadFile(first.Output)
	require.NoError(t, err)
	require.NoError(t, os.Remove(first.Output))

	second := compileOnce()
	assert.True(t, second.CacheHit)
	assert.Nil(t, second.Lowered)
	got, err := os.ReadFile(second.Output)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestCache(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	require.NoError(t, err)
	key := KeyFor([]byte("int main(void) { return 0; }"), x86.DefaultPipeline, "0.1.0")

	_, ok, err := cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(key, &CachePayload{Source: "main.c", Passes: x86.DefaultPipeline, Assembly: []byte("    ret\n")}))
	got, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "main.c", got.Source)
	assert.Equal(t, []byte("    ret\n"), got.Assembly)
	assert.Equal(t, cacheSchemaVersion, got.Schema)

	require.NoError(t, cache.DropAll())
	_, ok, err = cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Nil(t *testing.T) {
	var cache *Cache
	require.NoError(t, cache.Put(CacheKey{}, &CachePayload{}))
	_, ok, err := cache.Get(CacheKey{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, cache.Dir())
}

func TestKeyFor(t *testing.T) {
	src := []byte("int main(void) { return 0; }")
	base := KeyFor(src, []string{"arith", "func", "mem"}, "1")
	assert.Equal(t, base, KeyFor(src, []string{"arith", "func", "mem"}, "1"))
	assert.NotEqual(t, base, KeyFor(src, []string{"arith", "func"}, "1"))
	assert.NotEqual(t, base, KeyFor(src, []string{"arith", "func", "mem"}, "2"))
	assert.NotEqual(t, base, KeyFor([]byte("int main(void) { return 1; }"), []string{"arith", "func", "mem"}, "1"))
	assert.Len(t, base.String(), 64)
}

func TestWorkspace(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.i")
	require.NoError(t, os.WriteFile(a, nil, 0o600))

	ws := NewWorkspace(false)
	ws.Track(a)
	ws.Track(filepath.Join(dir, "never-written.S"))
	require.NoError(t, ws.Close())
	assert.False(t, exists(a))
}
