package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lorax/internal/diagfmt"
	"lorax/internal/driver"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.c",
		Short: "Parse a C source file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(args[0], maxDiag)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if err := printDiagnostics(cmd, result.Bag, result.FileSet); err != nil {
		return err
	}
	if result.Program == nil {
		return driver.ErrDiagnostics
	}

	if format == "json" {
		return diagfmt.FormatASTJSON(cmd.OutOrStdout(), result.Program)
	}
	return diagfmt.FormatASTPretty(cmd.OutOrStdout(), result.Program, result.FileSet)
}
