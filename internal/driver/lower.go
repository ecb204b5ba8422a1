package driver

import (
	"context"
	"errors"
	"fmt"

	"lorax/internal/diag"
	"lorax/internal/dialect/x86"
	"lorax/internal/ir"
	"lorax/internal/irgen"
	"lorax/internal/observ"
	"lorax/internal/rewrite"
	"lorax/internal/source"
)

// ErrDiagnostics means the file produced error diagnostics; they are in the
// result's Bag.
var ErrDiagnostics = errors.New("driver: diagnostics reported errors")

type LowerOptions struct {
	MaxDiagnostics int
	// Passes names the lowering passes to run; empty means x86.DefaultPipeline.
	Passes []string
	// Verify runs ir.Validate after every pass.
	Verify bool
	// KeepGeneric renders the IR before lowering into LowerResult.Generic.
	KeepGeneric bool

	Timer   *observ.Timer
	OnPhase PhaseObserver
}

type LowerResult struct {
	*ParseResult
	Unit    *irgen.Unit
	Generic string
	Stats   rewrite.Stats
}

// Lower parses path, builds its IR and runs the lowering passes over it.
// Syntax errors leave Unit nil and return ErrDiagnostics.
func Lower(ctx context.Context, path string, opts LowerOptions) (*LowerResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, diag.WithCode(diag.IOLoadFileError, err)
	}
	ph := phases{file: path, timer: opts.Timer, observer: opts.OnPhase}
	return lowerFile(ctx, ph, fs, fs.Get(fileID), opts)
}

func lowerFile(ctx context.Context, ph phases, fs *source.FileSet, file *source.File, opts LowerOptions) (*LowerResult, error) {
	passes, err := x86.Pipeline(opts.Passes...)
	if err != nil {
		return nil, diag.WithCode(diag.IRUnknownPass, err)
	}

	res := &LowerResult{}
	err = ph.run(ctx, PhaseParse, func(context.Context) error {
		pr, perr := parseLoaded(fs, file, opts.MaxDiagnostics)
		if perr != nil {
			return perr
		}
		res.ParseResult = pr
		if pr.Bag.HasErrors() {
			return ErrDiagnostics
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	err = ph.run(ctx, PhaseLower, func(ctx context.Context) error {
		unit, gerr := irgen.Build(ctx, res.Program)
		if gerr != nil {
			return gerr
		}
		res.Unit = unit
		if opts.KeepGeneric {
			res.Generic = ir.FormatBlock(unit.Context, unit.Module)
		}

		var verify func(rewrite.Pass) error
		if opts.Verify {
			verify = func(rewrite.Pass) error { return ir.Validate(unit.Context, unit.Module) }
		}
		res.Stats, gerr = rewrite.RunAll(ctx, unit.Context, unit.Module, passes, verify)
		if gerr != nil {
			if errors.Is(gerr, ir.ErrInvariant) {
				reportFileError(res.Bag, file, diag.IRInvariant, gerr.Error())
			}
			return fmt.Errorf("%s: %w", file.Path, gerr)
		}
		return nil
	})
	return res, err
}

// reportFileError attaches a diagnostic to the start of file, for failures
// that have no better source location.
func reportFileError(bag *diag.Bag, file *source.File, code diag.Code, msg string) {
	if bag == nil {
		return
	}
	sp := source.Span{File: file.ID}
	diag.ReportError(diag.BagReporter{Bag: bag}, code, sp, msg).Emit()
}
