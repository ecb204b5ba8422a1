package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"lorax/internal/trace"
)

// setupTracing reads the trace flags, attaches a tracer to the command's
// context and returns the function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace alone means phase-level tracing
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(ctx, tracer))
	if _, ringOnly := tracer.(*trace.RingTracer); ringOnly {
		dumpTraceOnFailure = func() { dumpRing(cmd, tracer, cfg) }
	}

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if heartbeat != nil {
				heartbeat.Stop()
			}
			if err := tracer.Flush(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
			}
			if err := tracer.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
			}
		})
	}, nil
}

// dumpTraceOnFailure is set when events are only kept in memory; main calls
// it when the command fails.
var dumpTraceOnFailure func()

func dumpRing(cmd *cobra.Command, tracer trace.Tracer, cfg trace.Config) {
	w, err := trace.OpenOutput(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		return
	}
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		defer c.Close()
	}
	if err := trace.Dump(tracer, w, cfg.OutputFormat()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}
