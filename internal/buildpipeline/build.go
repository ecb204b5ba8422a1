// Package buildpipeline compiles several files in parallel and reports their
// progress stage by stage.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lorax/internal/asm"
	"lorax/internal/driver"
)

// ErrBuildFailed means at least one file failed; see the per-file errors.
var ErrBuildFailed = errors.New("build failed")

// BuildRequest configures a multi-file build.
type BuildRequest struct {
	Files []string
	// Output names the executable. Only valid with a single file.
	Output       string
	AssemblyOnly bool
	// Jobs bounds the files compiled at once; 0 means GOMAXPROCS.
	Jobs int

	KeepIntermediates bool
	Toolchain         driver.Toolchain
	Cache             *driver.Cache
	Version           string
	Lower             driver.LowerOptions
	Asm               asm.Options

	Progress ProgressSink
}

// FileResult is the outcome for one input.
type FileResult struct {
	File    string
	Result  *driver.CompileResult
	Err     error
	Elapsed time.Duration
}

// BuildResult holds the outcome of every input, in input order.
type BuildResult struct {
	Files   []FileResult
	Timings Timings
}

// Failed lists the files that did not build.
func (r BuildResult) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Build compiles every file of req. A failing file does not stop the others;
// only cancellation of ctx does.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no input files")
	}
	if req.Output != "" && len(req.Files) > 1 {
		return result, fmt.Errorf("-o cannot be used with %d input files", len(req.Files))
	}
	sink := req.Progress
	if sink == nil {
		sink = NopSink{}
	}

	ws := driver.NewWorkspace(req.KeepIntermediates)
	defer ws.Close()

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, f := range req.Files {
		sink.OnEvent(Event{File: f, Stage: StagePreprocess, Status: StatusQueued})
	}

	var timingsMu sync.Mutex
	result.Files = make([]FileResult, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stage := StagePreprocess
			lower := req.Lower
			lower.OnPhase = func(ev driver.PhaseEvent) {
				if ev.Status == driver.PhaseStart {
					stage = Stage(ev.Name)
					sink.OnEvent(Event{File: ev.File, Stage: stage, Status: StatusWorking})
				}
				if ev.Status == driver.PhaseEnd {
					timingsMu.Lock()
					result.Timings.Add(Stage(ev.Name), ev.Elapsed)
					timingsMu.Unlock()
				}
				if req.Lower.OnPhase != nil {
					req.Lower.OnPhase(ev)
				}
			}

			start := time.Now()
			res, err := driver.Compile(gctx, &driver.CompileRequest{
				Input:        path,
				Output:       req.Output,
				AssemblyOnly: req.AssemblyOnly,
				Toolchain:    req.Toolchain,
				Workspace:    ws,
				Cache:        req.Cache,
				Version:      req.Version,
				Lower:        lower,
				Asm:          req.Asm,
			})
			fr := FileResult{File: path, Result: res, Err: err, Elapsed: time.Since(start)}
			result.Files[i] = fr

			if err != nil {
				sink.OnEvent(Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: fr.Elapsed})
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}
			sink.OnEvent(Event{File: path, Stage: stage, Status: StatusDone, Elapsed: fr.Elapsed})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if n := len(result.Failed()); n > 0 {
		return result, fmt.Errorf("%w: %d of %d files", ErrBuildFailed, n, len(req.Files))
	}
	return result, nil
}
