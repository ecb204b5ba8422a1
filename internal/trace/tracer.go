package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Dumper is implemented by tracers that hold events in memory.
type Dumper interface {
	Dump(w io.Writer, format Format) error
}

// Dump writes whatever t holds in memory to w. Tracers that keep nothing
// write nothing.
func Dump(t Tracer, w io.Writer, format Format) error {
	if d, ok := t.(Dumper); ok {
		return d.Dump(w, format)
	}
	return nil
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory
	ModeBoth
)

var modeNames = [...]string{"", "stream", "ring", "both"}

func (m StorageMode) String() string {
	if m > 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (StorageMode, error) {
	for i := 1; i < len(modeNames); i++ {
		if strings.EqualFold(s, modeNames[i]) {
			return StorageMode(i), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format        // FormatAuto picks from OutputPath
	Output     io.Writer     // overrides OutputPath
	OutputPath string        // "" or "-" is stderr
	RingSize   int           // default 4096
	Heartbeat  time.Duration // 0 disables
}

// OutputFormat resolves FormatAuto against the output path.
func (c Config) OutputFormat() Format {
	if c.Format != FormatAuto {
		return c.Format
	}
	return formatFor(c.OutputPath)
}

// New builds the tracer described by cfg. LevelError always keeps events in
// a ring regardless of Mode; the caller dumps it when the run fails.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	mode := cfg.Mode
	if cfg.Level == LevelError {
		mode = ModeRing
	}
	switch mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, err := OpenOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, cfg.OutputFormat())
		if mode == ModeStream {
			return stream, nil
		}
		return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
	}
	return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// OpenOutput opens the writer cfg points at. The caller closes files.
func OpenOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
