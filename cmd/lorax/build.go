package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lorax/internal/buildpipeline"
	"lorax/internal/diag"
	"lorax/internal/driver"
	"lorax/internal/observ"
	"lorax/internal/version"
)

const noManifestMessage = "no input files and no " + manifestName + " found\nplease name the sources explicitly, e.g.:\n  lorax build main.c"

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [file.c|file.i|file.S ...]",
		Short: "Compile C sources to executables",
		Long: `Build preprocesses, compiles and assembles each input into an executable
next to it. Without arguments the sources come from lorax.toml.`,
		RunE: runBuild,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output executable (single input only)")
	f.Bool("emit-asm", false, "stop after writing the .S file")
	f.Bool("keep-intermediates", false, "keep .i and .S files")
	f.Bool("print-commands", false, "print the toolchain commands as they run")
	f.Bool("no-cache", false, "do not read or write the build cache")
	f.Int("jobs", 0, "files compiled in parallel (0=auto)")
	f.String("ui", "auto", "progress view (auto|on|off)")
	f.StringSlice("passes", nil, "lowering passes to run, in order")
	f.String("cc", "", "C compiler used to preprocess and assemble (default gcc)")
	f.Bool("verify", true, "validate the IR after every pass")
	return cmd
}

type buildFlags struct {
	output        string
	emitAsm       bool
	keep          bool
	printCommands bool
	noCache       bool
	jobs          int
	ui            uiMode
	passes        []string
	cc            string
	verify        bool
}

func readBuildFlags(cmd *cobra.Command) (buildFlags, error) {
	var bf buildFlags
	var err error
	f := cmd.Flags()
	if bf.output, err = f.GetString("output"); err != nil {
		return bf, err
	}
	if bf.emitAsm, err = f.GetBool("emit-asm"); err != nil {
		return bf, err
	}
	if bf.keep, err = f.GetBool("keep-intermediates"); err != nil {
		return bf, err
	}
	if bf.printCommands, err = f.GetBool("print-commands"); err != nil {
		return bf, err
	}
	if bf.noCache, err = f.GetBool("no-cache"); err != nil {
		return bf, err
	}
	if bf.jobs, err = f.GetInt("jobs"); err != nil {
		return bf, err
	}
	uiValue, err := f.GetString("ui")
	if err != nil {
		return bf, err
	}
	if bf.ui, err = readUIMode(uiValue); err != nil {
		return bf, err
	}
	if bf.passes, err = f.GetStringSlice("passes"); err != nil {
		return bf, err
	}
	if bf.cc, err = f.GetString("cc"); err != nil {
		return bf, err
	}
	if bf.verify, err = f.GetBool("verify"); err != nil {
		return bf, err
	}
	return bf, nil
}

// buildRequest merges flags over the manifest, if any.
func buildRequest(cmd *cobra.Command, args []string, bf buildFlags, manifest *projectManifest) (*buildpipeline.BuildRequest, error) {
	maxDiag, err := maxDiagnostics(cmd)
	if err != nil {
		return nil, err
	}
	req := &buildpipeline.BuildRequest{
		Files:             args,
		Output:            bf.output,
		AssemblyOnly:      bf.emitAsm,
		Jobs:              bf.jobs,
		KeepIntermediates: bf.keep,
		Version:           version.Version,
		Lower: driver.LowerOptions{
			MaxDiagnostics: maxDiag,
			Passes:         bf.passes,
			Verify:         bf.verify,
		},
	}
	cc := driver.CC{Path: bf.cc, PrintCommands: bf.printCommands, Stdout: cmd.OutOrStdout()}
	useCache := !bf.noCache

	if manifest != nil {
		mc := manifest.Config.Build
		if len(req.Files) == 0 {
			if req.Files, err = manifest.sources(); err != nil {
				return nil, err
			}
			if req.Output == "" && mc.Output != "" && len(req.Files) == 1 {
				req.Output = mc.Output
			}
		}
		if !cmd.Flags().Changed("passes") {
			req.Lower.Passes = mc.Passes
		}
		if !cmd.Flags().Changed("jobs") && mc.Jobs > 0 {
			req.Jobs = mc.Jobs
		}
		if !cmd.Flags().Changed("keep-intermediates") {
			req.KeepIntermediates = mc.KeepIntermediates
		}
		if !cmd.Flags().Changed("verify") {
			req.Lower.Verify = mc.verifyEnabled()
		}
		if !cmd.Flags().Changed("no-cache") {
			useCache = mc.cacheEnabled()
		}
		if cc.Path == "" {
			cc.Path = manifest.Config.Toolchain.CC
		}
	}
	if len(req.Files) == 0 {
		return nil, manifestError(diag.ProjNoSources, manifestName, noManifestMessage)
	}
	req.Toolchain = cc

	if useCache {
		cache, cerr := driver.OpenCache("lorax")
		if cerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: build cache disabled: %v\n", cerr)
		} else {
			req.Cache = cache
		}
	}
	return req, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	bf, err := readBuildFlags(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, args, bf, manifest)
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
		req.Lower.Timer = timer
	}

	out := cmd.OutOrStdout()
	var res buildpipeline.BuildResult
	if !quiet && shouldUseTUI(bf.ui, out, len(req.Files)) {
		title := "build"
		if manifest != nil {
			title = "build " + manifest.Config.Package.Name
		}
		res, err = runBuildWithUI(cmd.Context(), out, title, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}

	for _, fr := range res.Files {
		if fr.Result != nil {
			if perr := printDiagnostics(cmd, fr.Result.Bag(), fr.Result.FileSet()); perr != nil {
				return perr
			}
		}
		switch {
		case fr.Err == nil && fr.Result != nil:
			if !quiet {
				cached := ""
				if fr.Result.CacheHit {
					cached = " (cached)"
				}
				fmt.Fprintf(out, "%s -> %s%s\n", fr.File, fr.Result.Output, cached)
			}
		case fr.Err != nil && !errors.Is(fr.Err, driver.ErrDiagnostics):
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", fr.File, fr.Err)
		}
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings, timer)
	}
	return err
}
