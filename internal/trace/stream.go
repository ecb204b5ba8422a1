package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer encodes every accepted event straight to a writer. Output to
// anything other than stdout or stderr is buffered until Flush.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer // nil for the standard streams
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{dst: w, level: level, format: format}
	if !isStdStream(w) {
		t.buf = bufio.NewWriter(w)
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	line := FormatEvent(ev, t.format)
	// write errors never fail a compilation
	if t.buf != nil {
		_, _ = t.buf.Write(line)
	} else {
		_, _ = t.dst.Write(line)
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf != nil {
		return t.buf.Flush()
	}
	return nil
}

// Close flushes and closes the writer. Standard streams stay open.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.dst.(io.Closer); ok && !isStdStream(t.dst) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}
