package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"lorax/internal/asm"
	"lorax/internal/diag"
	"lorax/internal/dialect/x86"
	"lorax/internal/source"
	"lorax/internal/trace"
)

var ErrUnsupportedInput = errors.New("driver: input is not a .c, .i or .S file")

// CompileRequest describes the build of one input file.
type CompileRequest struct {
	Input string
	// Output is the executable to produce; empty means the input's stem next
	// to it.
	Output string
	// AssemblyOnly stops after the .S file, which is then kept.
	AssemblyOnly bool

	Toolchain Toolchain
	Workspace *Workspace
	Cache     *Cache
	Version   string

	Lower LowerOptions
	Asm   asm.Options
}

type CompileResult struct {
	Input    ProcFile
	Output   string
	Lowered  *LowerResult
	CacheHit bool
}

// Bag returns the diagnostics of the front end, if it ran.
func (r *CompileResult) Bag() *diag.Bag {
	if r == nil || r.Lowered == nil || r.Lowered.ParseResult == nil {
		return nil
	}
	return r.Lowered.Bag
}

// FileSet returns the files the diagnostics refer to, if the front end ran.
func (r *CompileResult) FileSet() *source.FileSet {
	if r == nil || r.Lowered == nil || r.Lowered.ParseResult == nil {
		return nil
	}
	return r.Lowered.FileSet
}

// Compile runs one file through preprocess, parse, lower, emit and assemble,
// starting at the stage its kind calls for.
func Compile(ctx context.Context, req *CompileRequest) (*CompileResult, error) {
	if req == nil {
		return nil, errors.New("driver: missing compile request")
	}
	in := NewProcFile(req.Input)
	if in.Kind == KindBinary {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, req.Input)
	}
	if req.Toolchain == nil {
		req.Toolchain = CC{}
	}
	if req.Workspace == nil {
		req.Workspace = NewWorkspace(false)
		defer req.Workspace.Close()
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "compile "+req.Input, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	res := &CompileResult{Input: in}
	err := compile(ctx, req, in, res)
	if err != nil {
		span.End(err.Error())
		return res, err
	}
	span.End(res.Output)
	return res, nil
}

func compile(ctx context.Context, req *CompileRequest, in ProcFile, res *CompileResult) error {
	ph := phases{file: req.Input, timer: req.Lower.Timer, observer: req.Lower.OnPhase}
	cur := in

	if cur.Kind == KindSource {
		pre := cur.WithKind(KindPreprocessed)
		err := ph.run(ctx, PhasePreprocess, func(ctx context.Context) error {
			return req.Toolchain.Preprocess(ctx, cur.Path(), req.Workspace.Track(pre.Path()))
		})
		if err != nil {
			return err
		}
		cur = pre
	}

	if cur.Kind == KindPreprocessed {
		out := cur.WithKind(KindAssembly)
		if err := emitFile(ctx, ph, req, cur, out, res); err != nil {
			return err
		}
		if !req.AssemblyOnly {
			req.Workspace.Track(out.Path())
		}
		cur = out
	}

	if req.AssemblyOnly {
		res.Output = cur.Path()
		return nil
	}

	res.Output = req.Output
	if res.Output == "" {
		res.Output = in.WithKind(KindBinary).Path()
	}
	return ph.run(ctx, PhaseAssemble, func(ctx context.Context) error {
		return req.Toolchain.Assemble(ctx, cur.Path(), res.Output)
	})
}

// emitFile turns the preprocessed file pre into assembly at out, reusing a
// cached result when one exists.
func emitFile(ctx context.Context, ph phases, req *CompileRequest, pre, out ProcFile, res *CompileResult) error {
	fs := source.NewFileSet()
	id, err := fs.Load(pre.Path())
	if err != nil {
		return diag.WithCode(diag.IOLoadFileError, err)
	}
	file := fs.Get(id)

	passes := req.Lower.Passes
	if len(passes) == 0 {
		passes = x86.DefaultPipeline
	}
	// The target changes the output as much as the compiler version does.
	target := req.Asm.OS
	if target == "" {
		target = runtime.GOOS
	}
	key := KeyFor(file.Content, passes, req.Version+"/"+target)
	if cached, ok, cerr := req.Cache.Get(key); cerr == nil && ok {
		res.CacheHit = true
		trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache-hit", trace.CurrentSpan(ctx).SpanID, key.String())
		return writeFile(out.Path(), cached.Assembly)
	}

	lowered, err := lowerFile(ctx, ph, fs, file, req.Lower)
	res.Lowered = lowered
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = ph.run(ctx, PhaseEmit, func(context.Context) error {
		if err := EmitAssembly(&buf, lowered, req.Asm); err != nil {
			return err
		}
		return writeFile(out.Path(), buf.Bytes())
	})
	if err != nil {
		return err
	}
	// A failed cache write only costs the next build time.
	_ = req.Cache.Put(key, &CachePayload{
		Source:   req.Input,
		Passes:   passes,
		Version:  req.Version,
		Assembly: buf.Bytes(),
	})
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
