package main

import (
	"fmt"
	"io"
	"time"

	"lorax/internal/buildpipeline"
	"lorax/internal/observ"
)

// printStageTimings prints the summed duration of each stage across all
// files, then the per-file phases recorded by timer.
func printStageTimings(out io.Writer, timings buildpipeline.Timings, timer *observ.Timer) {
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-10s %7.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
