package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lorax/internal/catalog"
	"lorax/internal/dialect/x86"
	"lorax/internal/driver"
	"lorax/internal/ir"
)

func newIRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ir [flags] file.c",
		Short: "Print the IR of a C source file before and after lowering",
		Long: `ir builds the generic IR of a file and runs the lowering passes over it.
With --ops it lists the operation catalog instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIR,
	}
	cmd.Flags().StringSlice("passes", nil, "lowering passes to run, in order (default arith,func,mem)")
	cmd.Flags().String("stage", "both", "which IR to print (generic|lowered|both)")
	cmd.Flags().Bool("verify", true, "validate the IR after every pass")
	cmd.Flags().Bool("ops", false, "list every registered operation and exit")
	cmd.Flags().Bool("stats", false, "print rewrite statistics")
	return cmd
}

func runIR(cmd *cobra.Command, args []string) error {
	listOps, err := cmd.Flags().GetBool("ops")
	if err != nil {
		return err
	}
	if listOps {
		return printCatalog(cmd.OutOrStdout(), catalog.Default)
	}
	if len(args) != 1 {
		return errors.New("ir needs a source file (or --ops)")
	}

	passes, err := cmd.Flags().GetStringSlice("passes")
	if err != nil {
		return err
	}
	stage, err := cmd.Flags().GetString("stage")
	if err != nil {
		return err
	}
	if stage != "generic" && stage != "lowered" && stage != "both" {
		return fmt.Errorf("invalid --stage value %q (expected generic|lowered|both)", stage)
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return err
	}

	res, err := driver.Lower(cmd.Context(), args[0], driver.LowerOptions{
		MaxDiagnostics: maxDiag,
		Passes:         passes,
		Verify:         verify,
		KeepGeneric:    true,
	})
	if res != nil && res.ParseResult != nil {
		if perr := printDiagnostics(cmd, res.Bag, res.FileSet); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if stage != "lowered" {
		fmt.Fprintln(out, "// generic")
		fmt.Fprint(out, res.Generic)
	}
	if stage != "generic" {
		if len(passes) == 0 {
			passes = x86.DefaultPipeline
		}
		fmt.Fprintf(out, "// lowered (%s)\n", strings.Join(passes, ", "))
		if err := ir.Fprint(out, res.Unit.Context, res.Unit.Module); err != nil {
			return err
		}
	}
	if stats {
		fmt.Fprintf(out, "// %d blocks, %d positions visited, %d mutations\n",
			res.Stats.Blocks, res.Stats.Visited, res.Stats.Mutations)
	}
	return nil
}

func printCatalog(w io.Writer, reg *catalog.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range reg.Defs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Signature(), d.Result, d.Summary)
	}
	return tw.Flush()
}
