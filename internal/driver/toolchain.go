package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"lorax/internal/diag"
)

//go:generate mockgen -destination=mock_toolchain_test.go -package=driver lorax/internal/driver Toolchain

// Toolchain runs the external steps of a build: the C preprocessor before
// the front end and the assembler/linker after it.
type Toolchain interface {
	Preprocess(ctx context.Context, src, dst string) error
	Assemble(ctx context.Context, src, dst string) error
}

// CC drives a gcc-compatible compiler driver.
type CC struct {
	// Path is the compiler executable; empty means "gcc".
	Path string
	// PrintCommands echoes every command line to Stdout before running it.
	PrintCommands bool
	Stdout        io.Writer
}

func (c CC) path() string {
	if c.Path == "" {
		return "gcc"
	}
	return c.Path
}

func (c CC) Preprocess(ctx context.Context, src, dst string) error {
	return c.run(ctx, "-E", "-P", src, "-o", dst)
}

func (c CC) Assemble(ctx context.Context, src, dst string) error {
	return c.run(ctx, src, "-o", dst)
}

func (c CC) run(ctx context.Context, args ...string) error {
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	name := c.path()
	if c.PrintCommands {
		if _, err := fmt.Fprintf(stdout, "%s %s\n", name, strings.Join(args, " ")); err != nil {
			return fmt.Errorf("failed to print command: %w", err)
		}
	}
	// #nosec G204 -- the compiler path comes from the user's configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return diag.WithCode(diag.IOToolchain, fmt.Errorf("%s: %w", name, err))
		}
		return diag.WithCode(diag.IOToolchain, fmt.Errorf("%s: %s: %w", name, msg, err))
	}
	return nil
}
