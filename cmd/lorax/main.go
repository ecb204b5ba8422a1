// Package main implements the lorax CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"lorax/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lorax",
		Short:         "A tiny C compiler built on a rewritable IR",
		Long:          `lorax compiles a subset of C to x86-64 assembly by lowering a generic IR with rewrite passes`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("diag-format", "pretty", "diagnostic output format (pretty|json)")
	pf.String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	pf.String("trace", "", "write trace events to this file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		atexit.Register(cleanup)
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		atexit.Register(stopProfiling)
		return nil
	}

	root.AddCommand(
		newTokenizeCmd(),
		newParseCmd(),
		newIRCmd(),
		newBuildCmd(),
		newCleanCmd(),
		newVersionCmd(),
	)
	return root
}

// main runs the root command. Exiting through atexit flushes the tracer and
// removes intermediate files left by an interrupted build.
func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %v\n", err)
		if dumpTraceOnFailure != nil {
			dumpTraceOnFailure()
		}
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for output going to w.
func useColor(cmd *cobra.Command, w io.Writer) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
