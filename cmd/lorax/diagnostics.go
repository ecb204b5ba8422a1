package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lorax/internal/diag"
	"lorax/internal/diagfmt"
	"lorax/internal/source"
)

// printDiagnostics renders bag to stderr, sorted and deduplicated, in the
// format chosen by --diag-format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	pf := cmd.Root().PersistentFlags()
	format, err := pf.GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	pathFlag, err := pf.GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := readPathMode(pathFlag)
	if err != nil {
		return err
	}
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}

	w := cmd.ErrOrStderr()
	bag.Sort()
	bag.Dedup()
	switch strings.ToLower(format) {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          baseDir,
			IncludeNotes:     true,
			IncludeFixes:     true,
		})
	case "pretty", "":
	default:
		return fmt.Errorf("invalid --diag-format value %q (expected pretty|json)", format)
	}

	color, err := useColor(cmd, w)
	if err != nil {
		return err
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     color,
		PathMode:  pathMode,
		BaseDir:   baseDir,
		ShowNotes: true,
		ShowFixes: true,
	})
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown (raise --max-diagnostics)\n", n)
	}
	return nil
}

func readPathMode(value string) (diagfmt.PathMode, error) {
	switch strings.ToLower(value) {
	case "", "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute":
		return diagfmt.PathModeAbsolute, nil
	case "relative":
		return diagfmt.PathModeRelative, nil
	case "basename":
		return diagfmt.PathModeBasename, nil
	}
	return diagfmt.PathModeAuto, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", value)
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return n, nil
}
